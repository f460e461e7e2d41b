// visibility implements the fixed role-knowledge table: given a viewer
// and the full assignment, who that viewer is permitted to know.
package visibility

import (
	"github.com/sooswastaken/Avalon/protocol"
)

// Result of resolving one viewer against one assignment.
type Result struct {
	// VisiblePeers are the participants this viewer is permitted to
	// know about, in roster order, never including the viewer.
	VisiblePeers []protocol.Participant
	// DisplayExactRole is false when the viewer sees that the peers are
	// special without learning which role each one holds (Percival).
	DisplayExactRole bool
	// KnowledgeLabel is the heading rendered above the peer list.
	KnowledgeLabel string
}

// Labels match the headings the info packet categories are rendered
// under.
const (
	labelEvil     = "Your fellow minions of Mordred"
	labelMerlin   = "You see these players as Evil"
	labelPercival = "You see these players as Merlin or Morgana"
)

// Resolve applies the canonical rule table:
//
//   - Merlin sees every evil player except Mordred, who is concealed
//     from him.
//   - Percival sees Merlin and Morgana without being told which is
//     which.
//   - Evil players other than Oberon see each other; Oberon sees no
//     one and is seen by no one within the faction.
//   - Everyone else sees no one.
//
// The resolver consults nothing but its arguments and produces the same
// output for the same input, so it is recomputed on every render.
func Resolve(viewerID string, participants []protocol.Participant) Result {
	var myRole protocol.Role
	for _, p := range participants {
		if p.UserID == viewerID {
			myRole = p.Role
			break
		}
	}

	switch {
	case myRole == protocol.RoleMerlin:
		return Result{
			VisiblePeers:     filter(participants, viewerID, merlinSees),
			DisplayExactRole: true,
			KnowledgeLabel:   labelMerlin,
		}
	case myRole == protocol.RolePercival:
		return Result{
			VisiblePeers:     filter(participants, viewerID, percivalSees),
			DisplayExactRole: false,
			KnowledgeLabel:   labelPercival,
		}
	case myRole.IsEvil() && myRole != protocol.RoleOberon:
		return Result{
			VisiblePeers: filter(participants, viewerID, func(p protocol.Participant) bool {
				return p.Role.IsEvil() && p.Role != protocol.RoleOberon
			}),
			DisplayExactRole: true,
			KnowledgeLabel:   labelEvil,
		}
	default:
		// Servants and Oberon learn nothing.
		return Result{DisplayExactRole: true}
	}
}

func merlinSees(p protocol.Participant) bool {
	return p.Role.IsEvil() && p.Role != protocol.RoleMordred
}

func percivalSees(p protocol.Participant) bool {
	return p.Role == protocol.RoleMerlin || p.Role == protocol.RoleMorgana
}

func filter(participants []protocol.Participant, viewerID string, keep func(protocol.Participant) bool) []protocol.Participant {
	var out []protocol.Participant
	for _, p := range participants {
		if p.UserID == viewerID {
			continue
		}
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// PeerNames is a convenience for rendering.
func (r Result) PeerNames() []string {
	names := make([]string, 0, len(r.VisiblePeers))
	for _, p := range r.VisiblePeers {
		names = append(names, p.Name)
	}
	return names
}
