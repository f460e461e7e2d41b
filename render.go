package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sooswastaken/Avalon/connection"
	"github.com/sooswastaken/Avalon/phase"
	"github.com/sooswastaken/Avalon/protocol"
	"github.com/sooswastaken/Avalon/session"
)

// render prints one frame for the current projection. It is a pure
// function of the projection; nothing here mutates state.
func render(w io.Writer, p session.Projection, localID string) {
	if p.Local.Frozen {
		fmt.Fprintln(w, "Session inactive: this room is open in another tab.")
		return
	}
	if p.Local.KickedOut {
		return
	}
	if !p.HaveSnapshot {
		fmt.Fprintf(w, "[%s] waiting for room state...\n", p.ConnState)
		return
	}

	snap := p.Snapshot
	fmt.Fprintf(w, "\n== Room %s", snap.RoomID)
	if p.ConnState != connection.StateOpen {
		fmt.Fprintf(w, " (%s)", p.ConnState)
	}
	fmt.Fprintln(w)

	renderPlayers(w, snap, p, localID)

	if len(p.Local.WaitingReconnect) > 0 {
		fmt.Fprintf(w, "Game paused, waiting for: %s\n", strings.Join(p.Local.WaitingReconnect, ", "))
	}

	if rec := p.Local.LastQuestResult; rec != nil {
		outcome := "FAILED"
		if rec.Success {
			outcome = "SUCCEEDED"
		}
		fmt.Fprintf(w, "Quest %d %s: %d fail card(s), team %s\n",
			rec.Round, outcome, rec.Fails, strings.Join(rec.Team, ", "))
	}

	switch snap.Phase {
	case protocol.PhaseLobby:
		renderLobby(w, snap, p.View)
	case protocol.PhaseFinished:
		renderFinished(w, snap, p.View)
	default:
		renderGame(w, snap, p)
	}

	if len(p.View.WaitingOn) > 0 {
		fmt.Fprintf(w, "Waiting on: %s\n", strings.Join(p.View.WaitingOn, ", "))
	}
}

func renderPlayers(w io.Writer, snap protocol.RoomSnapshot, p session.Projection, localID string) {
	for _, pl := range snap.Players {
		marks := make([]string, 0, 3)
		if pl.UserID == snap.HostID {
			marks = append(marks, "host")
		}
		if pl.UserID == localID {
			marks = append(marks, "you")
		}
		if snap.Phase == protocol.PhaseLobby && pl.Ready {
			marks = append(marks, "ready")
		}
		if pl.Role != "" && (pl.UserID == localID || snap.Phase == protocol.PhaseFinished) {
			marks = append(marks, string(pl.Role))
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = " (" + strings.Join(marks, ", ") + ")"
		}
		fmt.Fprintf(w, "  %s%s\n", pl.Name, suffix)
	}

	if p.HaveInfo {
		// Live knowledge comes from the private packet; the snapshot
		// hides everyone else's role until the game finishes.
		for _, cat := range []struct{ key, label string }{
			{protocol.KnowEvil, "Your fellow minions of Mordred"},
			{protocol.KnowMerlin, "You see these players as Evil"},
			{protocol.KnowPercival, "You see these players as Merlin or Morgana"},
		} {
			if names := p.Info.Category(cat.key); len(names) > 0 {
				fmt.Fprintf(w, "%s: %s\n", cat.label, strings.Join(names, ", "))
			}
		}
	}

	if len(p.Visibility.VisiblePeers) > 0 && snap.Phase == protocol.PhaseFinished {
		names := make([]string, 0, len(p.Visibility.VisiblePeers))
		for _, peer := range p.Visibility.VisiblePeers {
			if p.Visibility.DisplayExactRole && peer.Role != "" {
				names = append(names, fmt.Sprintf("%s (%s)", peer.Name, peer.Role))
			} else {
				names = append(names, peer.Name)
			}
		}
		fmt.Fprintf(w, "%s: %s\n", p.Visibility.KnowledgeLabel, strings.Join(names, ", "))
	}
}

func renderLobby(w io.Writer, snap protocol.RoomSnapshot, v phase.View) {
	cfg := snap.Config
	var opts []string
	for _, o := range []struct {
		name string
		on   bool
	}{
		{"Merlin", cfg.Merlin}, {"Percival", cfg.Percival}, {"Mordred", cfg.Mordred},
		{"Morgana", cfg.Morgana}, {"Oberon", cfg.Oberon}, {"Lady of the Lake", cfg.LadyEnabled},
	} {
		if o.on {
			opts = append(opts, o.name)
		}
	}
	if len(opts) > 0 {
		fmt.Fprintf(w, "Options: %s\n", strings.Join(opts, ", "))
	}
	fmt.Fprintf(w, "Lobby. Commands: %s\n", legalList(v))
}

func renderFinished(w io.Writer, snap protocol.RoomSnapshot, v phase.View) {
	fmt.Fprintf(w, "Game over, %s wins.\n", snap.Winner)
	if cmds := legalList(v); cmds != "" {
		fmt.Fprintf(w, "Commands: %s\n", cmds)
	}
}

func renderGame(w io.Writer, snap protocol.RoomSnapshot, p session.Projection) {
	fmt.Fprintf(w, "Round %d of %d. Good %d : %d Evil. Rejections in a row: %d\n",
		snap.RoundNumber, protocol.MaxRounds, snap.GoodWins, snap.EvilWins, snap.ConsecutiveRejections)
	for _, rec := range snap.QuestHistory {
		outcome := "failed"
		if rec.Success {
			outcome = "succeeded"
		}
		fmt.Fprintf(w, "  quest %d %s (%d fail cards, team %s)\n",
			rec.Round, outcome, rec.Fails, strings.Join(rec.Team, ", "))
	}
	if len(snap.RoundLeaders) > 0 {
		names := make([]string, 0, len(snap.RoundLeaders))
		for _, id := range snap.RoundLeaders {
			names = append(names, snap.NameOf(id))
		}
		fmt.Fprintf(w, "Leaders so far: %s\n", strings.Join(names, ", "))
	}

	v := p.View
	switch v.Kind {
	case phase.ViewProposal:
		if v.Allows(phase.ActionProposeTeam) {
			fmt.Fprintf(w, "You are the leader. Propose a team of %d: propose <name,name,...>\n", v.RequiredTeamSize)
		}
	case phase.ViewVoting:
		fmt.Fprintf(w, "Proposed team: %s\n", teamNames(snap))
		if v.Allows(phase.ActionVoteTeam) {
			fmt.Fprintln(w, "Vote: approve | reject")
		}
	case phase.ViewQuest:
		if protocol.TwoFailsRequired(len(snap.Players), snap.RoundNumber) {
			fmt.Fprintln(w, "This quest fails only with two fail cards.")
		}
		if v.Allows(phase.ActionSubmitCard) {
			if v.CanPlayFail {
				fmt.Fprintln(w, "You are on the quest. Play: success | fail")
			} else {
				fmt.Fprintln(w, "You are on the quest. Play: success")
			}
		}
	case phase.ViewLady:
		if v.Allows(phase.ActionLadyChoose) {
			fmt.Fprintf(w, "You hold the Lady of the Lake. Inspect: lady <name> (%s)\n", participantNames(v.Candidates))
		} else {
			fmt.Fprintf(w, "%s holds the Lady of the Lake.\n", snap.NameOf(snap.LadyHolder))
		}
	case phase.ViewAssassination:
		fmt.Fprintln(w, "Three quests succeeded. Evil confers to identify Merlin.")
		if v.Allows(phase.ActionAssassinate) {
			fmt.Fprintf(w, "Cast your vote: assassinate <name> (%s)\n", participantNames(v.Candidates))
		}
	}
}

func legalList(v phase.View) string {
	var out []string
	for _, a := range []phase.Action{
		phase.ActionToggleReady, phase.ActionStartGame, phase.ActionSetConfig,
		phase.ActionKick, phase.ActionRestart, phase.ActionResetLobby,
	} {
		if v.Allows(a) {
			out = append(out, string(a))
		}
	}
	return strings.Join(out, ", ")
}

func teamNames(snap protocol.RoomSnapshot) string {
	names := make([]string, 0, len(snap.CurrentTeam))
	for _, id := range snap.CurrentTeam {
		names = append(names, snap.NameOf(id))
	}
	return strings.Join(names, ", ")
}

func participantNames(list []protocol.Participant) string {
	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
