package protocol

// Participant 房间内的一名玩家
type Participant struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	// Role is only populated for the local player while the game is in
	// progress, and for everyone once the game has finished.
	Role Role `json:"role,omitempty"`
	Wins int  `json:"wins"`
}

// RoomConfig 房主可调的可选角色与湖中仙女配置
type RoomConfig struct {
	Merlin   bool `json:"merlin"`
	Mordred  bool `json:"mordred"`
	Morgana  bool `json:"morgana"`
	Percival bool `json:"percival"`
	Oberon   bool `json:"oberon"`

	LadyEnabled     bool  `json:"lady_enabled"`
	LadyAfterRounds []int `json:"lady_after_rounds"`
}

// QuestRecord is one completed quest as the server reports it. Names,
// not ids: the record is display material, immutable once appended.
type QuestRecord struct {
	Round      int             `json:"round"`
	Team       []string        `json:"team"`
	Votes      map[string]bool `json:"votes"`
	Fails      int             `json:"fails"`
	Success    bool            `json:"success"`
	Proposer   string          `json:"proposer,omitempty"`
	Leader     string          `json:"leader,omitempty"`
	NextLeader string          `json:"next_leader,omitempty"`
}

// Phase 外层阶段
type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseInGame        Phase = "in_game"
	PhaseAssassination Phase = "assassination"
	PhaseFinished      Phase = "finished"
)

// Subphase 仅在对局进行中有效的内层阶段
type Subphase string

const (
	SubphaseProposal      Subphase = "proposal"
	SubphaseVoting        Subphase = "voting"
	SubphaseQuest         Subphase = "quest"
	SubphaseLady          Subphase = "lady"
	SubphaseAssassination Subphase = "assassination"
)

// RoomSnapshot is the full authoritative room state at one instant.
// The client never constructs one and never mutates one, it only swaps
// its cached copy for the next push.
type RoomSnapshot struct {
	RoomID                string            `json:"room_id"`
	HostID                string            `json:"host_id"`
	Players               []Participant     `json:"players"`
	Phase                 Phase             `json:"phase"`
	Subphase              Subphase          `json:"subphase,omitempty"`
	Config                RoomConfig        `json:"config"`
	RoundNumber           int               `json:"round_number"`
	GoodWins              int               `json:"good_wins"`
	EvilWins              int               `json:"evil_wins"`
	CurrentLeader         string            `json:"current_leader,omitempty"`
	ProposalLeader        string            `json:"proposal_leader,omitempty"`
	CurrentTeam           []string          `json:"current_team"`
	Votes                 map[string]bool   `json:"votes"`
	Submissions           map[string]string `json:"submissions"`
	QuestHistory          []QuestRecord     `json:"quest_history"`
	ConsecutiveRejections int               `json:"consecutive_rejections"`
	RoundLeaders          []string          `json:"round_leaders"`
	Winner                string            `json:"winner,omitempty"`
	AssassinCandidates    []string          `json:"assassin_candidates"`
	AssassinVotes         map[string]string `json:"assassin_votes"`
	EvilPlayers           []string          `json:"evil_players"`
	LadyHolder            string            `json:"lady_holder,omitempty"`
	LadyHistory           []string          `json:"lady_history"`
	LadyAfterRounds       []int             `json:"lady_after_rounds"`
}

// Player returns the participant with the given id.
func (s *RoomSnapshot) Player(userID string) (Participant, bool) {
	for _, p := range s.Players {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participant{}, false
}

// NameOf resolves a participant id to its display name, falling back to
// the id itself so renderers never show an empty label.
func (s *RoomSnapshot) NameOf(userID string) string {
	if p, ok := s.Player(userID); ok {
		return p.Name
	}
	return userID
}

// Knowledge categories carried by private info packets.
const (
	KnowEvil     = "evil"
	KnowMerlin   = "merlin_knows"
	KnowPercival = "percival_knows"
)

// PrivateInfoPacket is role-scoped knowledge delivered only to the
// owning connection. It arrives separately from snapshots and is
// replaced wholesale, like them.
type PrivateInfoPacket struct {
	Evil          []string `json:"evil,omitempty"`
	MerlinKnows   []string `json:"merlin_knows,omitempty"`
	PercivalKnows []string `json:"percival_knows,omitempty"`
}

// Category returns the names filed under one knowledge category.
func (p *PrivateInfoPacket) Category(key string) []string {
	switch key {
	case KnowEvil:
		return p.Evil
	case KnowMerlin:
		return p.MerlinKnows
	case KnowPercival:
		return p.PercivalKnows
	}
	return nil
}
