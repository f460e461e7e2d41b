// phase classifies each snapshot into exactly one interactive view and
// computes which actions are legal for the local identity. Transition
// authority lives entirely on the server; nothing here advances state.
package phase

import (
	"github.com/sooswastaken/Avalon/protocol"
	"github.com/sooswastaken/Avalon/voting"
)

// ViewKind 当前应当渲染的视图
type ViewKind string

const (
	ViewLobby         ViewKind = "lobby"
	ViewProposal      ViewKind = "proposal"
	ViewVoting        ViewKind = "voting"
	ViewQuest         ViewKind = "quest"
	ViewLady          ViewKind = "lady"
	ViewAssassination ViewKind = "assassination"
	ViewFinished      ViewKind = "finished"
)

// Action 本地玩家当前可执行的操作
type Action string

const (
	ActionToggleReady Action = "toggle_ready"
	ActionStartGame   Action = "start_game"
	ActionSetConfig   Action = "set_config"
	ActionKick        Action = "kick"
	ActionProposeTeam Action = "propose_team"
	ActionVoteTeam    Action = "vote_team"
	ActionSubmitCard  Action = "submit_card"
	ActionLadyChoose  Action = "lady_choose"
	ActionAssassinate Action = "assassination_vote"
	ActionRestart     Action = "restart_game"
	ActionResetLobby  Action = "reset_lobby"
)

// View is the router's full answer for one snapshot and one viewer. It
// is recomputed from scratch on every render; rendering the same
// snapshot twice yields the same View.
type View struct {
	Kind  ViewKind
	Legal map[Action]bool

	// RequiredTeamSize is set on the proposal view for the leader.
	RequiredTeamSize int
	// Candidates are the selectable targets for the lady and
	// assassination views.
	Candidates []protocol.Participant
	// CanPlayFail is the cosmetic role gate on the quest view; the
	// authoritative check happens server-side.
	CanPlayFail bool
	// WaitingOn lists required-but-not-yet-acted display names,
	// computed from the complement of who has acted.
	WaitingOn []string
}

func (v View) Allows(a Action) bool {
	return v.Legal[a]
}

// Route selects the active view for localID. The aggregator supplies
// the assassination revote flag, the only local input that is not part
// of the snapshot.
func Route(snap *protocol.RoomSnapshot, localID string, agg *voting.Aggregator) View {
	switch snap.Phase {
	case protocol.PhaseLobby:
		return routeLobby(snap, localID)
	case protocol.PhaseFinished:
		return routeFinished(snap, localID)
	case protocol.PhaseAssassination:
		return routeAssassination(snap, localID, agg)
	}

	switch snap.Subphase {
	case protocol.SubphaseProposal:
		return routeProposal(snap, localID)
	case protocol.SubphaseVoting:
		return routeVoting(snap, localID)
	case protocol.SubphaseQuest:
		return routeQuest(snap, localID)
	case protocol.SubphaseLady:
		return routeLady(snap, localID)
	case protocol.SubphaseAssassination:
		return routeAssassination(snap, localID, agg)
	}

	// A playing-phase snapshot without a recognised subphase renders as
	// a passive proposal wait.
	return View{Kind: ViewProposal, Legal: map[Action]bool{}}
}

func routeLobby(snap *protocol.RoomSnapshot, localID string) View {
	legal := map[Action]bool{ActionToggleReady: true}

	if snap.HostID == localID {
		legal[ActionSetConfig] = true
		legal[ActionKick] = len(snap.Players) > 1
		legal[ActionStartGame] = canStart(snap)
		legal[ActionResetLobby] = true
	}

	return View{Kind: ViewLobby, Legal: legal}
}

func canStart(snap *protocol.RoomSnapshot) bool {
	n := len(snap.Players)
	if n < protocol.MinPlayers || n > protocol.MaxPlayers {
		return false
	}
	for _, p := range snap.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func routeFinished(snap *protocol.RoomSnapshot, localID string) View {
	legal := map[Action]bool{}
	if snap.HostID == localID {
		legal[ActionRestart] = true
		legal[ActionResetLobby] = true
	}
	return View{Kind: ViewFinished, Legal: legal}
}

func routeProposal(snap *protocol.RoomSnapshot, localID string) View {
	v := View{Kind: ViewProposal, Legal: map[Action]bool{}}
	if snap.CurrentLeader == localID {
		v.Legal[ActionProposeTeam] = true
		v.RequiredTeamSize = protocol.RequiredTeamSize(len(snap.Players), snap.RoundNumber)
	} else {
		v.WaitingOn = []string{snap.NameOf(snap.CurrentLeader)}
	}
	return v
}

func routeVoting(snap *protocol.RoomSnapshot, localID string) View {
	v := View{Kind: ViewVoting, Legal: map[Action]bool{}}
	if _, voted := snap.Votes[localID]; !voted {
		v.Legal[ActionVoteTeam] = true
	}
	v.WaitingOn = waitingWithoutSelf(snap, localID)
	return v
}

func routeQuest(snap *protocol.RoomSnapshot, localID string) View {
	v := View{Kind: ViewQuest, Legal: map[Action]bool{}}

	onTeam := false
	for _, id := range snap.CurrentTeam {
		if id == localID {
			onTeam = true
			break
		}
	}
	_, submitted := snap.Submissions[localID]
	if onTeam && !submitted {
		v.Legal[ActionSubmitCard] = true
		if me, ok := snap.Player(localID); ok {
			v.CanPlayFail = !me.Role.IsGood()
		}
	}
	v.WaitingOn = waitingWithoutSelf(snap, localID)
	return v
}

func routeLady(snap *protocol.RoomSnapshot, localID string) View {
	v := View{Kind: ViewLady, Legal: map[Action]bool{}}
	if snap.LadyHolder != localID {
		v.WaitingOn = []string{snap.NameOf(snap.LadyHolder)}
		return v
	}

	v.Legal[ActionLadyChoose] = true
	v.Candidates = LadyTargets(snap, localID)
	return v
}

// LadyTargets 可被湖中仙女查验的玩家：排除持有者自己和全部历史持有者
func LadyTargets(snap *protocol.RoomSnapshot, holderID string) []protocol.Participant {
	inspected := make(map[string]bool, len(snap.LadyHistory))
	for _, id := range snap.LadyHistory {
		inspected[id] = true
	}
	var out []protocol.Participant
	for _, p := range snap.Players {
		if p.UserID == holderID || inspected[p.UserID] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func routeAssassination(snap *protocol.RoomSnapshot, localID string, agg *voting.Aggregator) View {
	v := View{Kind: ViewAssassination, Legal: map[Action]bool{}}

	if isEvil(snap, localID) && !agg.HasVoted(snap, localID) {
		v.Legal[ActionAssassinate] = true
		v.Candidates = AssassinCandidates(snap)
	}
	v.WaitingOn = waitingWithoutSelf(snap, localID)
	return v
}

// AssassinCandidates is the explicit candidate list when the snapshot
// carries one (revote after a tie), otherwise every non-evil
// participant.
func AssassinCandidates(snap *protocol.RoomSnapshot) []protocol.Participant {
	if len(snap.AssassinCandidates) > 0 {
		var out []protocol.Participant
		for _, id := range snap.AssassinCandidates {
			if p, ok := snap.Player(id); ok {
				out = append(out, p)
			}
		}
		return out
	}

	evilByName := make(map[string]bool, len(snap.EvilPlayers))
	for _, name := range snap.EvilPlayers {
		evilByName[name] = true
	}
	var out []protocol.Participant
	for _, p := range snap.Players {
		if evilByName[p.Name] || p.Role.IsEvil() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isEvil(snap *protocol.RoomSnapshot, userID string) bool {
	p, ok := snap.Player(userID)
	if !ok {
		return false
	}
	if p.Role.IsEvil() {
		return true
	}
	// Own role can be absent from a mid-reconnect snapshot; the evil
	// name list published during the assassination phase still tells us.
	for _, name := range snap.EvilPlayers {
		if name == p.Name {
			return true
		}
	}
	return false
}

func waitingWithoutSelf(snap *protocol.RoomSnapshot, localID string) []string {
	var out []string
	for _, p := range voting.WaitingOn(snap) {
		if p.UserID == localID {
			continue
		}
		out = append(out, p.Name)
	}
	return out
}
