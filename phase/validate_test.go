package phase

import (
	"errors"
	"testing"

	"github.com/sooswastaken/Avalon/protocol"
)

func TestValidateProposeTeam(t *testing.T) {
	snap := playingSnapshot(5, protocol.SubphaseProposal)
	snap.RoundNumber = 1 // needs a team of 2
	snap.CurrentLeader = "u1"

	if err := ValidateProposeTeam(snap, "u1", []string{"u1", "u2"}); err != nil {
		t.Errorf("Valid proposal rejected: %v", err)
	}
	if err := ValidateProposeTeam(snap, "u2", []string{"u1", "u2"}); !errors.Is(err, ErrNotLegal) {
		t.Errorf("Non-leader proposal should be illegal, got %v", err)
	}
	if err := ValidateProposeTeam(snap, "u1", []string{"u1"}); !errors.Is(err, ErrWrongTeamSize) {
		t.Errorf("Undersized team should fail, got %v", err)
	}
	if err := ValidateProposeTeam(snap, "u1", []string{"u1", "u1"}); !errors.Is(err, ErrDuplicateMember) {
		t.Errorf("Duplicate member should fail, got %v", err)
	}
	if err := ValidateProposeTeam(snap, "u1", []string{"u1", "stranger"}); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("Unknown member should fail, got %v", err)
	}
}

func TestValidateSubmitCard(t *testing.T) {
	snap := playingSnapshot(5, protocol.SubphaseQuest)
	snap.CurrentTeam = []string{"u1", "u2"}
	snap.Players[0].Role = protocol.RoleServant
	snap.Players[1].Role = protocol.RoleMinion

	if err := ValidateSubmitCard(snap, "u1", protocol.CardSuccess); err != nil {
		t.Errorf("Success card rejected: %v", err)
	}
	if err := ValidateSubmitCard(snap, "u1", protocol.CardFail); !errors.Is(err, ErrGoodCannotFail) {
		t.Errorf("Good fail card should be blocked, got %v", err)
	}
	if err := ValidateSubmitCard(snap, "u2", protocol.CardFail); err != nil {
		t.Errorf("Evil fail card rejected: %v", err)
	}
	if err := ValidateSubmitCard(snap, "u1", "X"); !errors.Is(err, ErrBadCard) {
		t.Errorf("Unknown card should fail, got %v", err)
	}
	if err := ValidateSubmitCard(snap, "u3", protocol.CardSuccess); !errors.Is(err, ErrNotLegal) {
		t.Errorf("Off-team submission should be illegal, got %v", err)
	}
}

func TestValidateLadyChoose(t *testing.T) {
	snap := playingSnapshot(5, protocol.SubphaseLady)
	snap.LadyHolder = "u1"
	snap.LadyHistory = []string{"u1", "u4"}

	if err := ValidateLadyChoose(snap, "u1", "u2"); err != nil {
		t.Errorf("Valid inspection rejected: %v", err)
	}
	if err := ValidateLadyChoose(snap, "u1", "u1"); !errors.Is(err, ErrSelfTarget) {
		t.Errorf("Self inspection should fail, got %v", err)
	}
	if err := ValidateLadyChoose(snap, "u1", "u4"); !errors.Is(err, ErrAlreadyInspected) {
		t.Errorf("Re-inspection should fail, got %v", err)
	}
	if err := ValidateLadyChoose(snap, "u1", "stranger"); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("Unknown target should fail, got %v", err)
	}
	if err := ValidateLadyChoose(snap, "u2", "u3"); !errors.Is(err, ErrNotLegal) {
		t.Errorf("Non-holder inspection should be illegal, got %v", err)
	}
}

func TestValidateAssassinationVote(t *testing.T) {
	snap := playingSnapshot(5, "")
	snap.Phase = protocol.PhaseAssassination
	snap.EvilPlayers = []string{"B"}

	v := Route(snap, "u2", nil)
	if err := ValidateAssassinationVote(v, "u3"); err != nil {
		t.Errorf("Valid vote rejected: %v", err)
	}
	if err := ValidateAssassinationVote(v, "u2"); !errors.Is(err, ErrNotCandidate) {
		t.Errorf("Voting for an evil player should fail, got %v", err)
	}

	good := Route(snap, "u3", nil)
	if err := ValidateAssassinationVote(good, "u1"); !errors.Is(err, ErrNotLegal) {
		t.Errorf("A good player's vote should be illegal, got %v", err)
	}
}

func TestValidateSetConfig(t *testing.T) {
	five := lobbySnapshot(false)
	seven := playingSnapshot(7, "")
	seven.Phase = protocol.PhaseLobby

	base := protocol.RoomConfig{Merlin: true}
	if err := ValidateSetConfig(five, base); err != nil {
		t.Errorf("Plain config rejected: %v", err)
	}

	// Morgana and Percival come as a pair.
	cfg := base
	cfg.Morgana = true
	if err := ValidateSetConfig(seven, cfg); !errors.Is(err, ErrConfigPairing) {
		t.Errorf("Unpaired Morgana should fail, got %v", err)
	}
	cfg.Percival = true
	if err := ValidateSetConfig(seven, cfg); err != nil {
		t.Errorf("Paired Morgana/Percival rejected: %v", err)
	}

	// The pair and Oberon need a seven-player table.
	if err := ValidateSetConfig(five, cfg); !errors.Is(err, ErrConfigPlayerCount) {
		t.Errorf("Morgana at five players should fail, got %v", err)
	}
	oberon := base
	oberon.Oberon = true
	if err := ValidateSetConfig(five, oberon); !errors.Is(err, ErrConfigPlayerCount) {
		t.Errorf("Oberon at five players should fail, got %v", err)
	}
	if err := ValidateSetConfig(seven, oberon); err != nil {
		t.Errorf("Oberon at seven players rejected: %v", err)
	}

	// Lady rounds stay within the game length.
	lady := base
	lady.LadyEnabled = true
	lady.LadyAfterRounds = []int{2, 6}
	if err := ValidateSetConfig(five, lady); !errors.Is(err, ErrBadLadyRounds) {
		t.Errorf("Round six should fail, got %v", err)
	}
	lady.LadyAfterRounds = []int{2, 4}
	if err := ValidateSetConfig(five, lady); err != nil {
		t.Errorf("Valid lady rounds rejected: %v", err)
	}
}
