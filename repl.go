package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sooswastaken/Avalon/protocol"
	"github.com/sooswastaken/Avalon/session"
)

// readCommands turns stdin lines into game commands until quit or the
// session ends.
func readCommands(rt *session.Runtime, done <-chan struct{}, finish func()) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-done:
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error
		switch verb {
		case "ready":
			err = rt.ToggleReady()
		case "start":
			err = rt.StartGame()
		case "restart":
			err = rt.RestartGame()
		case "reset":
			err = rt.ResetLobby()
		case "kick":
			err = withID(rt, rest, rt.Kick)
		case "propose":
			err = propose(rt, rest)
		case "approve":
			err = rt.VoteTeam(true)
		case "reject":
			err = rt.VoteTeam(false)
		case "success":
			err = rt.SubmitCard(protocol.CardSuccess)
		case "fail":
			err = rt.SubmitCard(protocol.CardFail)
		case "lady":
			err = withID(rt, rest, rt.LadyChoose)
		case "assassinate":
			err = withID(rt, rest, rt.AssassinationVote)
		case "config":
			err = setConfig(rt, rest)
		case "quit", "exit":
			finish()
			return
		default:
			fmt.Printf("Unknown command %q\n", verb)
			continue
		}
		if err != nil {
			fmt.Printf("Cannot %s: %v\n", verb, err)
		}
	}
}

// withID resolves a display name (or raw id) before invoking fn.
func withID(rt *session.Runtime, name string, fn func(string) error) error {
	id, err := resolveID(rt, name)
	if err != nil {
		return err
	}
	return fn(id)
}

func propose(rt *session.Runtime, rest string) error {
	var team []string
	for _, name := range strings.Split(rest, ",") {
		id, err := resolveID(rt, strings.TrimSpace(name))
		if err != nil {
			return err
		}
		team = append(team, id)
	}
	return rt.ProposeTeam(team)
}

func resolveID(rt *session.Runtime, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("missing player name")
	}
	p := rt.View()
	if !p.HaveSnapshot {
		return "", fmt.Errorf("no room state yet")
	}
	for _, pl := range p.Snapshot.Players {
		if strings.EqualFold(pl.Name, name) || pl.UserID == name {
			return pl.UserID, nil
		}
	}
	return "", fmt.Errorf("no player named %q", name)
}

// setConfig parses "config merlin=on oberon=off lady=1,3" style lines,
// starting from the room's current options so omitted keys keep their
// value.
func setConfig(rt *session.Runtime, rest string) error {
	p := rt.View()
	if !p.HaveSnapshot {
		return fmt.Errorf("no room state yet")
	}
	cfg := p.Snapshot.Config

	for _, field := range strings.Fields(rest) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", field)
		}
		if key == "lady_rounds" {
			rounds, err := parseRounds(value)
			if err != nil {
				return err
			}
			cfg.LadyAfterRounds = rounds
			continue
		}

		on := value == "on" || value == "true"
		switch key {
		case "merlin":
			cfg.Merlin = on
		case "percival":
			cfg.Percival = on
		case "mordred":
			cfg.Mordred = on
		case "morgana":
			cfg.Morgana = on
		case "oberon":
			cfg.Oberon = on
		case "lady":
			cfg.LadyEnabled = on
		default:
			return fmt.Errorf("unknown option %q", key)
		}
	}
	return rt.SetConfig(cfg)
}

func parseRounds(value string) ([]int, error) {
	var rounds []int
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad round number %q", part)
		}
		rounds = append(rounds, n)
	}
	return rounds, nil
}
