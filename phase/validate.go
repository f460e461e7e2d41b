package phase

import (
	"errors"

	"github.com/sooswastaken/Avalon/protocol"
)

// Local validation errors. Illegal action attempts are rejected here,
// before any command is sent, and surfaced as a transient notice.
var (
	ErrNotLegal           = errors.New("action is not legal in the current view")
	ErrWrongTeamSize      = errors.New("wrong team size")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrDuplicateMember    = errors.New("duplicate team member")
	ErrBadCard            = errors.New("card must be S or F")
	ErrGoodCannotFail     = errors.New("good roles cannot play a fail card")
	ErrNotCandidate       = errors.New("target is not a candidate")
	ErrAlreadyInspected   = errors.New("target was already inspected")
	ErrSelfTarget         = errors.New("cannot target yourself")
	ErrConfigPairing      = errors.New("morgana and percival must be enabled together")
	ErrConfigPlayerCount  = errors.New("optional roles require at least seven players")
	ErrBadLadyRounds      = errors.New("lady rounds must be between 1 and 5")
)

// ValidateProposeTeam checks an exact-size, duplicate-free team of
// known participants before the propose_team command is sent.
func ValidateProposeTeam(snap *protocol.RoomSnapshot, localID string, team []string) error {
	v := Route(snap, localID, nil)
	if !v.Allows(ActionProposeTeam) {
		return ErrNotLegal
	}
	if len(team) != v.RequiredTeamSize {
		return ErrWrongTeamSize
	}
	seen := make(map[string]bool, len(team))
	for _, id := range team {
		if seen[id] {
			return ErrDuplicateMember
		}
		seen[id] = true
		if _, ok := snap.Player(id); !ok {
			return ErrUnknownParticipant
		}
	}
	return nil
}

// ValidateSubmitCard applies the role gate: roles that cannot benefit
// from failing never send a fail card. Cosmetic only, the server checks
// too.
func ValidateSubmitCard(snap *protocol.RoomSnapshot, localID, card string) error {
	v := Route(snap, localID, nil)
	if !v.Allows(ActionSubmitCard) {
		return ErrNotLegal
	}
	if card != protocol.CardSuccess && card != protocol.CardFail {
		return ErrBadCard
	}
	if card == protocol.CardFail && !v.CanPlayFail {
		return ErrGoodCannotFail
	}
	return nil
}

// ValidateLadyChoose enforces one never-inspected target per holder.
func ValidateLadyChoose(snap *protocol.RoomSnapshot, localID, target string) error {
	v := Route(snap, localID, nil)
	if !v.Allows(ActionLadyChoose) {
		return ErrNotLegal
	}
	if target == localID {
		return ErrSelfTarget
	}
	if _, ok := snap.Player(target); !ok {
		return ErrUnknownParticipant
	}
	for _, id := range snap.LadyHistory {
		if id == target {
			return ErrAlreadyInspected
		}
	}
	return nil
}

// ValidateAssassinationVote restricts the target to the current
// candidate set.
func ValidateAssassinationVote(v View, target string) error {
	if !v.Allows(ActionAssassinate) {
		return ErrNotLegal
	}
	for _, c := range v.Candidates {
		if c.UserID == target {
			return nil
		}
	}
	return ErrNotCandidate
}

// ValidateSetConfig mirrors the host-side config rules: Morgana and
// Percival come as a pair, Oberon needs a seven-player table, and lady
// rounds stay within 1..5.
func ValidateSetConfig(snap *protocol.RoomSnapshot, cfg protocol.RoomConfig) error {
	if cfg.Morgana != cfg.Percival {
		return ErrConfigPairing
	}
	if (cfg.Morgana || cfg.Oberon) && len(snap.Players) < 7 {
		return ErrConfigPlayerCount
	}
	for _, r := range cfg.LadyAfterRounds {
		if r < 1 || r > protocol.MaxRounds {
			return ErrBadLadyRounds
		}
	}
	return nil
}
