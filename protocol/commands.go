package protocol

import "encoding/json"

// 出站指令类型
const (
	CmdToggleReady       = "toggle_ready"
	CmdStartGame         = "start_game"
	CmdRestartGame       = "restart_game"
	CmdResetLobby        = "reset_lobby"
	CmdKick              = "kick"
	CmdSetConfig         = "set_config"
	CmdProposeTeam       = "propose_team"
	CmdVoteTeam          = "vote_team"
	CmdSubmitCard        = "submit_card"
	CmdLadyChoose        = "lady_choose"
	CmdAssassinationVote = "assassination_vote"
)

// Quest cards.
const (
	CardSuccess = "S"
	CardFail    = "F"
)

// Command is a fire-and-forget user intent. No correlation id, no
// timeout: the next pushed snapshot reflects the effect or rejection.
type Command struct {
	Type string `json:"type"`

	Target  string   `json:"target,omitempty"`
	Team    []string `json:"team,omitempty"`
	Approve *bool    `json:"approve,omitempty"`
	Card    string   `json:"card,omitempty"`

	// set_config payload
	Merlin          *bool `json:"merlin,omitempty"`
	Mordred         *bool `json:"mordred,omitempty"`
	Morgana         *bool `json:"morgana,omitempty"`
	Percival        *bool `json:"percival,omitempty"`
	Oberon          *bool `json:"oberon,omitempty"`
	LadyEnabled     *bool `json:"lady_enabled,omitempty"`
	LadyAfterRounds []int `json:"lady_after_rounds,omitempty"`
}

func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}

func ToggleReady() Command  { return Command{Type: CmdToggleReady} }
func StartGame() Command    { return Command{Type: CmdStartGame} }
func RestartGame() Command  { return Command{Type: CmdRestartGame} }
func ResetLobby() Command   { return Command{Type: CmdResetLobby} }

func Kick(target string) Command {
	return Command{Type: CmdKick, Target: target}
}

func SetConfig(cfg RoomConfig) Command {
	merlin, mordred := cfg.Merlin, cfg.Mordred
	morgana, percival, oberon, lady := cfg.Morgana, cfg.Percival, cfg.Oberon, cfg.LadyEnabled
	return Command{
		Type:            CmdSetConfig,
		Merlin:          &merlin,
		Mordred:         &mordred,
		Morgana:         &morgana,
		Percival:        &percival,
		Oberon:          &oberon,
		LadyEnabled:     &lady,
		LadyAfterRounds: cfg.LadyAfterRounds,
	}
}

func ProposeTeam(team []string) Command {
	return Command{Type: CmdProposeTeam, Team: team}
}

func VoteTeam(approve bool) Command {
	return Command{Type: CmdVoteTeam, Approve: &approve}
}

func SubmitCard(card string) Command {
	return Command{Type: CmdSubmitCard, Card: card}
}

func LadyChoose(target string) Command {
	return Command{Type: CmdLadyChoose, Target: target}
}

func AssassinationVote(target string) Command {
	return Command{Type: CmdAssassinationVote, Target: target}
}
