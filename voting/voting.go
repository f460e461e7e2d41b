// voting derives "waiting on" lists from the current snapshot and owns
// the one piece of local state that is not a pure projection of it: the
// assassination revote flag.
package voting

import (
	"sync"

	"github.com/sooswastaken/Avalon/protocol"
)

// WaitingOn returns, in roster order, the identities required to act in
// the snapshot's active collection who have not yet acted. It is
// recomputed from the snapshot on every call and never accumulates.
func WaitingOn(snap *protocol.RoomSnapshot) []protocol.Participant {
	switch {
	case snap.Phase == protocol.PhaseAssassination || snap.Subphase == protocol.SubphaseAssassination:
		return pendingAssassins(snap)
	case snap.Subphase == protocol.SubphaseVoting:
		return pendingVoters(snap)
	case snap.Subphase == protocol.SubphaseQuest:
		return pendingSubmitters(snap)
	default:
		return nil
	}
}

// WaitingOnNames 等待行动玩家的显示名列表
func WaitingOnNames(snap *protocol.RoomSnapshot) []string {
	pending := WaitingOn(snap)
	names := make([]string, 0, len(pending))
	for _, p := range pending {
		names = append(names, p.Name)
	}
	return names
}

func pendingVoters(snap *protocol.RoomSnapshot) []protocol.Participant {
	var out []protocol.Participant
	for _, p := range snap.Players {
		if _, voted := snap.Votes[p.UserID]; !voted {
			out = append(out, p)
		}
	}
	return out
}

func pendingSubmitters(snap *protocol.RoomSnapshot) []protocol.Participant {
	onTeam := make(map[string]bool, len(snap.CurrentTeam))
	for _, id := range snap.CurrentTeam {
		onTeam[id] = true
	}
	var out []protocol.Participant
	for _, p := range snap.Players {
		if !onTeam[p.UserID] {
			continue
		}
		if _, submitted := snap.Submissions[p.UserID]; !submitted {
			out = append(out, p)
		}
	}
	return out
}

// pendingAssassins lists evil players who have not cast an elimination
// vote. The snapshot names evil players explicitly during this phase;
// fall back to roles when it does not (finished-game renders).
func pendingAssassins(snap *protocol.RoomSnapshot) []protocol.Participant {
	evilByName := make(map[string]bool, len(snap.EvilPlayers))
	for _, name := range snap.EvilPlayers {
		evilByName[name] = true
	}
	var out []protocol.Participant
	for _, p := range snap.Players {
		if !evilByName[p.Name] && !p.Role.IsEvil() {
			continue
		}
		if _, voted := snap.AssassinVotes[p.UserID]; !voted {
			out = append(out, p)
		}
	}
	return out
}

// Tally is the approve/reject breakdown of the current proposal vote,
// display only.
type Tally struct {
	Approvals  int
	Rejections int
}

func TallyVotes(votes map[string]bool) Tally {
	var t Tally
	for _, approve := range votes {
		if approve {
			t.Approvals++
		} else {
			t.Rejections++
		}
	}
	return t
}

// Aggregator tracks the local revote flag for the assassination tie
// sub-protocol. Everything else it exposes derives from the snapshot.
// The flag is written from both the event loop (tie pushes, lobby
// reset) and the command path, so all field access goes through the
// mutex.
type Aggregator struct {
	mutex         sync.Mutex
	voted         bool
	tieCandidates []string
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// MarkVoted records that the local identity submitted an elimination
// vote. Display only; the server keeps the authoritative map.
func (a *Aggregator) MarkVoted() {
	a.mutex.Lock()
	a.voted = true
	a.mutex.Unlock()
}

// HasVoted reports whether the vote action should be withheld. The
// snapshot's own vote map wins when present; the local flag covers the
// gap between sending the command and the next push.
func (a *Aggregator) HasVoted(snap *protocol.RoomSnapshot, localID string) bool {
	if snap != nil {
		if _, ok := snap.AssassinVotes[localID]; ok {
			return true
		}
	}
	if a == nil {
		return false
	}
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.voted
}

// OnTie resets the local flag so the next render re-offers the vote,
// and keeps the tied names for display.
func (a *Aggregator) OnTie(candidates []string) {
	a.mutex.Lock()
	a.voted = false
	a.tieCandidates = append([]string(nil), candidates...)
	a.mutex.Unlock()
}

func (a *Aggregator) TieCandidates() []string {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return append([]string(nil), a.tieCandidates...)
}

// Reset clears all local state. Called whenever phase returns to lobby.
func (a *Aggregator) Reset() {
	a.mutex.Lock()
	a.voted = false
	a.tieCandidates = nil
	a.mutex.Unlock()
}
