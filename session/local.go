// session/local.go
package session

import "github.com/sooswastaken/Avalon/protocol"

// LocalState is the single record of client-side ephemeral flags. The
// renderer receives it next to the snapshot instead of consulting
// scattered globals, and every field resets deterministically when the
// phase returns to lobby.
type LocalState struct {
	// LadyChosen blocks a second lady submission by the same holder
	// before the next push lands.
	LadyChosen bool
	// RoleShown records that the role reveal was already offered for
	// this game.
	RoleShown bool
	// Frozen means this tab yielded to another active session for the
	// same identity. The notice is non-dismissable and nothing ever
	// retries.
	Frozen bool
	// KickedOut means the host removed us; credentials were cleared
	// and a redirect is pending.
	KickedOut bool
	// WaitingReconnect names the players the game is paused for.
	WaitingReconnect []string
	// LastQuestResult is the most recent quest record pushed for modal
	// display.
	LastQuestResult *protocol.QuestRecord
}

// ResetForLobby clears per-game flags. Freeze and kick survive: they
// outlive any one game.
func (l *LocalState) ResetForLobby() {
	l.LadyChosen = false
	l.RoleShown = false
	l.WaitingReconnect = nil
	l.LastQuestResult = nil
}
