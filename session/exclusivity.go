// session/exclusivity.go
package session

import (
	"fmt"
	"time"

	"github.com/sooswastaken/Avalon/connection"
	"github.com/sooswastaken/Avalon/credentials"
	"github.com/sooswastaken/Avalon/logger"
	"github.com/sooswastaken/Avalon/protocol"
	"github.com/sooswastaken/Avalon/timer"
)

// Exclusivity 单活跃会话协调器
//
// Two distinct removals look similar on the wire and must not be
// confused. A supersede means another tab took over the identity: this
// tab freezes, never retries, and leaves the cached credential alone
// because the other tab still owns it. A host kick means the identity
// itself was expelled: the cached credential and room id are cleared
// and the user is redirected after a fixed delay.
type Exclusivity struct {
	localID       string
	manager       *connection.Manager
	creds         *credentials.FileStore
	sched         *timer.Scheduler
	redirectDelay time.Duration
	onRedirect    func()
}

func NewExclusivity(localID string, m *connection.Manager, creds *credentials.FileStore, sched *timer.Scheduler, redirectDelay time.Duration) *Exclusivity {
	return &Exclusivity{
		localID:       localID,
		manager:       m,
		creds:         creds,
		sched:         sched,
		redirectDelay: redirectDelay,
	}
}

// OnRedirect registers the callback fired after the kick delay.
func (e *Exclusivity) OnRedirect(fn func()) {
	e.onRedirect = fn
}

// HandleKicked processes a kicked push. The returned notice is empty
// when the push targets someone else.
func (e *Exclusivity) HandleKicked(local *LocalState, msg protocol.KickedMessage) string {
	if msg.Target != "" && msg.Target != e.localID {
		// Someone else was removed; the follow-up snapshot carries the
		// roster change.
		return ""
	}

	if msg.Reason == protocol.ReasonSuperseded {
		logger.Log.Infof("Session superseded by another tab, freezing")
		e.manager.Freeze()
		local.Frozen = true
		return "This room is open in another tab. This session is now inactive."
	}

	logger.Log.Infof("Kicked by host: %s", msg.Reason)
	local.KickedOut = true
	e.manager.Stop()
	if e.creds != nil {
		if err := e.creds.ClearCredential(); err != nil {
			logger.Log.Warnf("Clear cached credential: %v", err)
		}
	}
	e.sched.After(e.redirectDelay, func() {
		if e.onRedirect != nil {
			e.onRedirect()
		}
	})

	notice := "You were removed from the room by the host."
	if msg.Reason != "" {
		notice = fmt.Sprintf("You were removed from the room: %s", msg.Reason)
	}
	return notice
}

// HandleTerminal processes a terminal connection close. Each terminal
// class has its own credential policy.
func (e *Exclusivity) HandleTerminal(local *LocalState, class protocol.CloseClass) string {
	switch class {
	case protocol.CloseTerminalAuth:
		if e.creds != nil {
			if err := e.creds.ClearCredential(); err != nil {
				logger.Log.Warnf("Clear cached credential: %v", err)
			}
		}
		return "Your session credential is no longer valid. Please join again."
	case protocol.CloseTerminalRoom:
		// The credential survives; only the room binding is stale.
		if e.creds != nil {
			if err := e.creds.ClearRoom(); err != nil {
				logger.Log.Warnf("Clear cached room: %v", err)
			}
		}
		return "This room no longer exists."
	case protocol.CloseTerminalSuperseded:
		// A superseded kick has already frozen and announced; the
		// terminal close that follows it must not repeat the notice.
		if local.Frozen {
			return ""
		}
		local.Frozen = true
		return "This room is open in another tab. This session is now inactive."
	}
	return ""
}
