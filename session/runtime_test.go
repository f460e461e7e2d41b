package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/sooswastaken/Avalon/connection"
	"github.com/sooswastaken/Avalon/phase"
	"github.com/sooswastaken/Avalon/protocol"
	"github.com/sooswastaken/Avalon/store"
)

func newTestRuntime(t *testing.T) (*Runtime, *fixture) {
	t.Helper()
	f := newFixture(t)
	rt := NewRuntime("u1", store.New(), f.manager, f.excl)
	return rt, f
}

func lobbySnapshot() *protocol.RoomSnapshot {
	snap := &protocol.RoomSnapshot{
		RoomID: "r1",
		HostID: "u1",
		Phase:  protocol.PhaseLobby,
	}
	for _, id := range []string{"u1", "u2", "u3", "u4", "u5"} {
		snap.Players = append(snap.Players, protocol.Participant{UserID: id, Name: "P" + id})
	}
	return snap
}

func TestRuntime_SnapshotFlowsIntoProjection(t *testing.T) {
	rt, _ := newTestRuntime(t)

	if p := rt.View(); p.HaveSnapshot {
		t.Fatal("A fresh runtime has no snapshot")
	}

	rt.handle(connection.Event{Kind: connection.EventSnapshot, Snapshot: lobbySnapshot()})

	p := rt.View()
	if !p.HaveSnapshot {
		t.Fatal("Snapshot should be visible after the event")
	}
	if p.View.Kind != phase.ViewLobby {
		t.Errorf("Expected the lobby view, got %s", p.View.Kind)
	}
	if !p.View.Allows(phase.ActionToggleReady) {
		t.Error("The lobby should offer the ready toggle")
	}
}

func TestRuntime_PrivateInfoFlowsIntoProjection(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.handle(connection.Event{Kind: connection.EventSnapshot, Snapshot: lobbySnapshot()})

	rt.handle(connection.Event{
		Kind: connection.EventPrivateInfo,
		Info: &protocol.PrivateInfoPacket{Evil: []string{"Pu2"}},
	})

	p := rt.View()
	if !p.HaveInfo || len(p.Info.Evil) != 1 {
		t.Errorf("Private info lost: %+v", p.Info)
	}
}

// Returning to the lobby resets every per-game local flag.
func TestRuntime_LobbyResetsLocalState(t *testing.T) {
	rt, _ := newTestRuntime(t)

	playing := lobbySnapshot()
	playing.Phase = protocol.PhaseInGame
	playing.Subphase = protocol.SubphaseQuest
	rt.handle(connection.Event{Kind: connection.EventSnapshot, Snapshot: playing})

	rt.mutex.Lock()
	rt.local.LadyChosen = true
	rt.local.LastQuestResult = &protocol.QuestRecord{Round: 1}
	rt.mutex.Unlock()
	rt.agg.MarkVoted()

	rt.handle(connection.Event{Kind: connection.EventSnapshot, Snapshot: lobbySnapshot()})

	local := rt.Local()
	if local.LadyChosen || local.LastQuestResult != nil {
		t.Errorf("Per-game flags must reset in the lobby: %+v", local)
	}
	if rt.agg.HasVoted(nil, "u1") {
		t.Error("The assassination flag must reset in the lobby")
	}
}

func TestRuntime_TieReoffersTheVote(t *testing.T) {
	rt, _ := newTestRuntime(t)

	snap := lobbySnapshot()
	snap.Phase = protocol.PhaseAssassination
	snap.EvilPlayers = []string{"Pu1"}
	rt.handle(connection.Event{Kind: connection.EventSnapshot, Snapshot: snap})

	if err := rt.AssassinationVote("u2"); err != nil {
		t.Fatalf("First vote rejected: %v", err)
	}
	if err := rt.AssassinationVote("u3"); !errors.Is(err, phase.ErrNotLegal) {
		t.Fatalf("Second vote should be illegal before a tie, got %v", err)
	}

	var notice string
	rt.OnNotice(func(text string) { notice = text })
	rt.handle(connection.Event{
		Kind:      connection.EventLifecycle,
		Lifecycle: protocol.AssassinationTieMessage{Candidates: []string{"u2", "u3"}},
	})

	if notice == "" {
		t.Error("A tie should produce a notice")
	}
	if !rt.View().View.Allows(phase.ActionAssassinate) {
		t.Error("After a tie the vote must be re-offered")
	}
}

// Voting from the command loop while tie pushes arrive on the event
// loop must be race-free either way.
func TestRuntime_VoteDuringTiePushes(t *testing.T) {
	rt, _ := newTestRuntime(t)

	snap := lobbySnapshot()
	snap.Phase = protocol.PhaseAssassination
	snap.EvilPlayers = []string{"Pu1"}
	rt.handle(connection.Event{Kind: connection.EventSnapshot, Snapshot: snap})

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rt.AssassinationVote("u2")
		}()
		go func() {
			defer wg.Done()
			rt.handle(connection.Event{
				Kind:      connection.EventLifecycle,
				Lifecycle: protocol.AssassinationTieMessage{Candidates: []string{"u2", "u3"}},
			})
		}()
	}
	wg.Wait()

	rt.handle(connection.Event{
		Kind:      connection.EventLifecycle,
		Lifecycle: protocol.AssassinationTieMessage{Candidates: []string{"u2", "u3"}},
	})
	if !rt.View().View.Allows(phase.ActionAssassinate) {
		t.Error("After the final tie the vote must be re-offered")
	}
}

func TestRuntime_PauseListTracksPushes(t *testing.T) {
	rt, _ := newTestRuntime(t)

	rt.handle(connection.Event{
		Kind:      connection.EventLifecycle,
		Lifecycle: protocol.PauseMessage{Players: []string{"Pu3"}},
	})
	if got := rt.Local().WaitingReconnect; len(got) != 1 || got[0] != "Pu3" {
		t.Errorf("Expected the pause list, got %v", got)
	}

	rt.handle(connection.Event{
		Kind:      connection.EventLifecycle,
		Lifecycle: protocol.PauseMessage{},
	})
	if got := rt.Local().WaitingReconnect; len(got) != 0 {
		t.Errorf("An empty pause push resumes the game, got %v", got)
	}
}

func TestRuntime_QuestResultKeptForDisplay(t *testing.T) {
	rt, _ := newTestRuntime(t)

	rt.handle(connection.Event{
		Kind:      connection.EventLifecycle,
		Lifecycle: protocol.QuestResultMessage{Record: protocol.QuestRecord{Round: 2, Fails: 1}},
	})

	rec := rt.Local().LastQuestResult
	if rec == nil || rec.Round != 2 || rec.Fails != 1 {
		t.Errorf("Quest record lost: %+v", rec)
	}
}

func TestRuntime_LadyResultClearsLocalFlag(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.mutex.Lock()
	rt.local.LadyChosen = true
	rt.mutex.Unlock()

	rt.handle(connection.Event{
		Kind:      connection.EventLifecycle,
		Lifecycle: protocol.LadyResultMessage{Target: "Pu2", Loyalty: "Evil"},
	})

	if rt.Local().LadyChosen {
		t.Error("The lady flag must clear after the result arrives")
	}
}

func TestRuntime_SupersededKickFreezes(t *testing.T) {
	rt, f := newTestRuntime(t)

	rt.handle(connection.Event{
		Kind:      connection.EventLifecycle,
		Lifecycle: protocol.KickedMessage{Target: "u1", Reason: protocol.ReasonSuperseded},
	})

	if !rt.Local().Frozen {
		t.Error("The superseded kick must freeze the session")
	}
	if f.manager.State() != connection.StateTerminal {
		t.Errorf("Expected a terminal connection, got %v", f.manager.State())
	}
}

// The superseded kick freezes and notifies once; the terminal close
// event it triggers must stay silent.
func TestRuntime_SupersededFreezeNotifiesOnce(t *testing.T) {
	rt, _ := newTestRuntime(t)

	var notices []string
	rt.OnNotice(func(text string) { notices = append(notices, text) })

	rt.handle(connection.Event{
		Kind:      connection.EventLifecycle,
		Lifecycle: protocol.KickedMessage{Target: "u1", Reason: protocol.ReasonSuperseded},
	})
	rt.handle(connection.Event{
		Kind:  connection.EventStateChanged,
		State: connection.StateTerminal,
		Close: protocol.CloseTerminalSuperseded,
	})

	if len(notices) != 1 {
		t.Errorf("Expected exactly one freeze notice, got %v", notices)
	}
	if !rt.Local().Frozen {
		t.Error("The frozen flag must survive both events")
	}
}

func TestRuntime_TerminalAuthCloseClearsCredential(t *testing.T) {
	rt, f := newTestRuntime(t)

	rt.handle(connection.Event{
		Kind:  connection.EventStateChanged,
		State: connection.StateTerminal,
		Close: protocol.CloseTerminalAuth,
	})

	c, err := f.creds.Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Credential != "" {
		t.Error("An auth close must clear the cached credential")
	}
}

func TestRuntime_CommandsRequireLegality(t *testing.T) {
	rt, _ := newTestRuntime(t)

	// No snapshot yet: everything is illegal.
	if err := rt.ToggleReady(); !errors.Is(err, phase.ErrNotLegal) {
		t.Errorf("Expected ErrNotLegal before any snapshot, got %v", err)
	}

	rt.handle(connection.Event{Kind: connection.EventSnapshot, Snapshot: lobbySnapshot()})

	if err := rt.ToggleReady(); err != nil {
		t.Errorf("Ready toggle rejected in the lobby: %v", err)
	}
	// u1 is the host, so kick and config are legal.
	if err := rt.Kick("u2"); err != nil {
		t.Errorf("Host kick rejected: %v", err)
	}
	if err := rt.SetConfig(protocol.RoomConfig{Merlin: true}); err != nil {
		t.Errorf("Host config rejected: %v", err)
	}
	// Starting needs everyone ready.
	if err := rt.StartGame(); !errors.Is(err, phase.ErrNotLegal) {
		t.Errorf("Start with unready players should be illegal, got %v", err)
	}
	// No proposal is running.
	if err := rt.ProposeTeam([]string{"u1", "u2"}); !errors.Is(err, phase.ErrNotLegal) {
		t.Errorf("Proposing from the lobby should be illegal, got %v", err)
	}
}

func TestRuntime_RoleRevealedOnce(t *testing.T) {
	rt, _ := newTestRuntime(t)

	var notices []string
	rt.OnNotice(func(text string) { notices = append(notices, text) })

	snap := lobbySnapshot()
	snap.Phase = protocol.PhaseInGame
	snap.Subphase = protocol.SubphaseProposal
	snap.Players[0].Role = protocol.RoleMerlin

	rt.handle(connection.Event{Kind: connection.EventSnapshot, Snapshot: snap})
	rt.handle(connection.Event{Kind: connection.EventSnapshot, Snapshot: snap})

	if len(notices) != 1 || notices[0] != "You are Merlin." {
		t.Errorf("Expected a single reveal notice, got %v", notices)
	}
}

func TestRuntime_LadyChooseOncePerHolding(t *testing.T) {
	rt, _ := newTestRuntime(t)

	snap := lobbySnapshot()
	snap.Phase = protocol.PhaseInGame
	snap.Subphase = protocol.SubphaseLady
	snap.LadyHolder = "u1"
	snap.LadyHistory = []string{"u1"}
	rt.handle(connection.Event{Kind: connection.EventSnapshot, Snapshot: snap})

	if err := rt.LadyChoose("u2"); err != nil {
		t.Fatalf("First inspection rejected: %v", err)
	}
	if err := rt.LadyChoose("u3"); !errors.Is(err, phase.ErrAlreadyInspected) {
		t.Errorf("A second inspection before the result should fail, got %v", err)
	}
}
