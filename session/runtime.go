// session/runtime.go
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/sooswastaken/Avalon/connection"
	"github.com/sooswastaken/Avalon/logger"
	"github.com/sooswastaken/Avalon/phase"
	"github.com/sooswastaken/Avalon/protocol"
	"github.com/sooswastaken/Avalon/store"
	"github.com/sooswastaken/Avalon/visibility"
	"github.com/sooswastaken/Avalon/voting"
)

// Runtime 会话运行时
//
// Runtime is the single consumer of the connection event stream and the
// only writer of the store. Every other goroutine reads the store
// through snapshots, so renders never observe a half-applied update.
type Runtime struct {
	localID string
	store   *store.Store
	manager *connection.Manager
	agg     *voting.Aggregator
	excl    *Exclusivity

	mutex     sync.Mutex
	local     LocalState
	lastPhase protocol.Phase

	onNotice func(string)
	onUpdate func()
}

func NewRuntime(localID string, st *store.Store, m *connection.Manager, excl *Exclusivity) *Runtime {
	return &Runtime{
		localID: localID,
		store:   st,
		manager: m,
		agg:     voting.NewAggregator(),
		excl:    excl,
	}
}

// OnNotice registers the callback for user-facing one-off notices.
func (r *Runtime) OnNotice(fn func(string)) {
	r.onNotice = fn
}

// OnUpdate registers the callback fired after every applied event.
func (r *Runtime) OnUpdate(fn func()) {
	r.onUpdate = fn
}

// Run consumes connection events until the context is cancelled or the
// event stream ends.
func (r *Runtime) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.manager.Stop()
			return
		case ev, ok := <-r.manager.Events():
			if !ok {
				return
			}
			r.handle(ev)
			r.notifyUpdate()
		}
	}
}

func (r *Runtime) handle(ev connection.Event) {
	switch ev.Kind {
	case connection.EventSnapshot:
		r.applySnapshot(ev.Snapshot)
	case connection.EventPrivateInfo:
		r.store.ReplacePrivateInfo(*ev.Info)
	case connection.EventLifecycle:
		r.handleLifecycle(ev.Lifecycle)
	case connection.EventStateChanged:
		r.handleStateChanged(ev)
	}
}

func (r *Runtime) applySnapshot(snap *protocol.RoomSnapshot) {
	r.store.ReplaceSnapshot(*snap)

	var reveal protocol.Role
	r.mutex.Lock()
	if snap.Phase == protocol.PhaseLobby && r.lastPhase != protocol.PhaseLobby {
		// Back in the lobby, all per-game flags are stale.
		r.local.ResetForLobby()
		r.agg.Reset()
	}
	if snap.Phase == protocol.PhaseInGame && !r.local.RoleShown {
		if me, ok := snap.Player(r.localID); ok && me.Role.Known() {
			r.local.RoleShown = true
			reveal = me.Role
		}
	}
	r.lastPhase = snap.Phase
	r.mutex.Unlock()

	if reveal != "" {
		r.notifyNotice(fmt.Sprintf("You are %s.", reveal))
	}
}

func (r *Runtime) handleLifecycle(msg protocol.Message) {
	switch v := msg.(type) {
	case protocol.KickedMessage:
		r.mutex.Lock()
		notice := r.excl.HandleKicked(&r.local, v)
		r.mutex.Unlock()
		r.notifyNotice(notice)
	case protocol.PauseMessage:
		r.mutex.Lock()
		r.local.WaitingReconnect = v.Players
		r.mutex.Unlock()
		if len(v.Players) > 0 {
			logger.Log.Infof("Game paused, waiting for %v", v.Players)
		}
	case protocol.AssassinationTieMessage:
		r.agg.OnTie(v.Candidates)
		r.notifyNotice("The assassination vote was tied. Vote again.")
	case protocol.QuestResultMessage:
		rec := v.Record
		r.mutex.Lock()
		r.local.LastQuestResult = &rec
		r.mutex.Unlock()
	case protocol.LadyResultMessage:
		r.mutex.Lock()
		r.local.LadyChosen = false
		r.mutex.Unlock()
		r.notifyNotice(fmt.Sprintf("%s is %s.", v.Target, v.Loyalty))
	case protocol.LadyInspectMessage:
		r.notifyNotice(fmt.Sprintf("%s used the Lady of the Lake on %s.", v.Inspector, v.Target))
	default:
		logger.Log.Debugf("Ignoring lifecycle message %s", msg.Kind())
	}
}

func (r *Runtime) handleStateChanged(ev connection.Event) {
	if ev.State != connection.StateTerminal || !ev.Close.Terminal() {
		return
	}
	r.mutex.Lock()
	notice := r.excl.HandleTerminal(&r.local, ev.Close)
	r.mutex.Unlock()
	r.notifyNotice(notice)
}

func (r *Runtime) notifyNotice(text string) {
	if text != "" && r.onNotice != nil {
		r.onNotice(text)
	}
}

func (r *Runtime) notifyUpdate() {
	if r.onUpdate != nil {
		r.onUpdate()
	}
}

// Local returns a copy of the local flag record.
func (r *Runtime) Local() LocalState {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	l := r.local
	l.WaitingReconnect = append([]string(nil), r.local.WaitingReconnect...)
	return l
}

// Projection is everything a renderer needs for one frame.
type Projection struct {
	HaveSnapshot bool
	Snapshot     protocol.RoomSnapshot
	Info         protocol.PrivateInfoPacket
	HaveInfo     bool
	View         phase.View
	Visibility   visibility.Result
	Local        LocalState
	ConnState    connection.State
	Generation   uint64
}

// View renders the current projection. Pure with respect to the store:
// calling it twice without an intervening event yields identical legal
// action sets and waiting lists.
func (r *Runtime) View() Projection {
	p := Projection{
		Local:      r.Local(),
		ConnState:  r.manager.State(),
		Generation: r.store.Generation(),
	}

	snap, ok := r.store.Snapshot()
	if !ok {
		return p
	}
	p.HaveSnapshot = true
	p.Snapshot = snap
	p.View = phase.Route(&snap, r.localID, r.agg)

	p.Visibility = visibility.Resolve(r.localID, snap.Players)
	if info, ok := r.store.PrivateInfo(); ok {
		p.Info = info
		p.HaveInfo = true
	}
	return p
}

// command helpers, each validates against the current view before
// sending. Validation failures come back to the caller; the wire is
// never touched on an illegal action.

func (r *Runtime) ToggleReady() error {
	return r.sendIfLegal(phase.ActionToggleReady, protocol.ToggleReady())
}

func (r *Runtime) StartGame() error {
	return r.sendIfLegal(phase.ActionStartGame, protocol.StartGame())
}

func (r *Runtime) RestartGame() error {
	return r.sendIfLegal(phase.ActionRestart, protocol.RestartGame())
}

func (r *Runtime) ResetLobby() error {
	return r.sendIfLegal(phase.ActionResetLobby, protocol.ResetLobby())
}

func (r *Runtime) Kick(target string) error {
	return r.sendIfLegal(phase.ActionKick, protocol.Kick(target))
}

func (r *Runtime) SetConfig(cfg protocol.RoomConfig) error {
	snap, ok := r.store.Snapshot()
	if !ok {
		return phase.ErrNotLegal
	}
	if !phase.Route(&snap, r.localID, r.agg).Allows(phase.ActionSetConfig) {
		return phase.ErrNotLegal
	}
	if err := phase.ValidateSetConfig(&snap, cfg); err != nil {
		return err
	}
	r.manager.Send(protocol.SetConfig(cfg))
	return nil
}

func (r *Runtime) ProposeTeam(team []string) error {
	snap, ok := r.store.Snapshot()
	if !ok {
		return phase.ErrNotLegal
	}
	if err := phase.ValidateProposeTeam(&snap, r.localID, team); err != nil {
		return err
	}
	r.manager.Send(protocol.ProposeTeam(team))
	return nil
}

func (r *Runtime) VoteTeam(approve bool) error {
	return r.sendIfLegal(phase.ActionVoteTeam, protocol.VoteTeam(approve))
}

func (r *Runtime) SubmitCard(card string) error {
	snap, ok := r.store.Snapshot()
	if !ok {
		return phase.ErrNotLegal
	}
	if err := phase.ValidateSubmitCard(&snap, r.localID, card); err != nil {
		return err
	}
	r.manager.Send(protocol.SubmitCard(card))
	return nil
}

func (r *Runtime) LadyChoose(target string) error {
	r.mutex.Lock()
	chosen := r.local.LadyChosen
	r.mutex.Unlock()
	if chosen {
		return phase.ErrAlreadyInspected
	}

	snap, ok := r.store.Snapshot()
	if !ok {
		return phase.ErrNotLegal
	}
	if err := phase.ValidateLadyChoose(&snap, r.localID, target); err != nil {
		return err
	}

	r.mutex.Lock()
	r.local.LadyChosen = true
	r.mutex.Unlock()
	r.manager.Send(protocol.LadyChoose(target))
	return nil
}

func (r *Runtime) AssassinationVote(target string) error {
	snap, ok := r.store.Snapshot()
	if !ok {
		return phase.ErrNotLegal
	}
	v := phase.Route(&snap, r.localID, r.agg)
	if err := phase.ValidateAssassinationVote(v, target); err != nil {
		return err
	}
	r.agg.MarkVoted()
	r.manager.Send(protocol.AssassinationVote(target))
	return nil
}

func (r *Runtime) sendIfLegal(a phase.Action, cmd protocol.Command) error {
	snap, ok := r.store.Snapshot()
	if !ok {
		return phase.ErrNotLegal
	}
	if !phase.Route(&snap, r.localID, r.agg).Allows(a) {
		return phase.ErrNotLegal
	}
	r.manager.Send(cmd)
	return nil
}
