package protocol

import (
	"errors"
	"testing"
)

func TestDecodeMessage_State(t *testing.T) {
	data := []byte(`{"type":"state","data":{"room_id":"r1","host_id":"u1","phase":"lobby","players":[{"user_id":"u1","name":"Alice","ready":true}]}}`)

	msg, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}

	state, ok := msg.(StateMessage)
	if !ok {
		t.Fatalf("Expected StateMessage, got %T", msg)
	}
	if state.State.RoomID != "r1" {
		t.Errorf("Expected room id r1, got %s", state.State.RoomID)
	}
	if len(state.State.Players) != 1 || state.State.Players[0].Name != "Alice" {
		t.Errorf("Players not decoded: %+v", state.State.Players)
	}
	if !state.State.Players[0].Ready {
		t.Error("Ready flag lost in decoding")
	}
}

func TestDecodeMessage_Info(t *testing.T) {
	// Knowledge categories ride at the top level of the frame, not
	// under a data key.
	data := []byte(`{"type":"info","evil":["Bob","Carol"]}`)

	msg, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}

	info, ok := msg.(InfoMessage)
	if !ok {
		t.Fatalf("Expected InfoMessage, got %T", msg)
	}
	if len(info.Info.Evil) != 2 {
		t.Errorf("Expected 2 evil names, got %v", info.Info.Evil)
	}
	if got := info.Info.Category(KnowEvil); len(got) != 2 {
		t.Errorf("Category(evil) = %v", got)
	}
}

func TestDecodeMessage_QuestResult(t *testing.T) {
	data := []byte(`{"type":"quest_result","data":{"round":2,"team":["Alice","Bob"],"fails":1,"success":false}}`)

	msg, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}

	qr, ok := msg.(QuestResultMessage)
	if !ok {
		t.Fatalf("Expected QuestResultMessage, got %T", msg)
	}
	if qr.Record.Round != 2 || qr.Record.Fails != 1 || qr.Record.Success {
		t.Errorf("Record decoded wrong: %+v", qr.Record)
	}
}

func TestDecodeMessage_Kicked(t *testing.T) {
	data := []byte(`{"type":"kicked","target":"u3","reason":"Logged in elsewhere"}`)

	msg, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}

	k, ok := msg.(KickedMessage)
	if !ok {
		t.Fatalf("Expected KickedMessage, got %T", msg)
	}
	if k.Target != "u3" {
		t.Errorf("Expected target u3, got %s", k.Target)
	}
	if k.Reason != ReasonSuperseded {
		t.Errorf("Expected superseded reason, got %q", k.Reason)
	}
}

func TestDecodeMessage_LifecycleKinds(t *testing.T) {
	cases := []struct {
		data []byte
		kind string
	}{
		{[]byte(`{"type":"pause","players":["Alice"]}`), MsgPause},
		{[]byte(`{"type":"assassination_tie","candidates":["u1","u2"]}`), MsgAssassinationTie},
		{[]byte(`{"type":"lady_result","target":"Bob","loyalty":"Evil"}`), MsgLadyResult},
		{[]byte(`{"type":"lady_inspect","inspector":"Alice","target":"Bob"}`), MsgLadyInspect},
	}

	for _, c := range cases {
		msg, err := DecodeMessage(c.data)
		if err != nil {
			t.Fatalf("DecodeMessage(%s) failed: %v", c.data, err)
		}
		if msg.Kind() != c.kind {
			t.Errorf("Expected kind %s, got %s", c.kind, msg.Kind())
		}
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyMessage},
		{"no type", []byte(`{"data":{}}`), ErrMissingType},
		{"unknown type", []byte(`{"type":"surprise"}`), ErrUnknownMessage},
	}

	for _, c := range cases {
		msg, err := DecodeMessage(c.data)
		if !errors.Is(err, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, err)
		}
		if msg != nil {
			t.Errorf("%s: a failed decode must not yield a message, got %T", c.name, msg)
		}
	}

	if msg, err := DecodeMessage([]byte(`{broken`)); err == nil {
		t.Errorf("Expected error for invalid JSON, got %T", msg)
	}
}

func TestCommand_Encode(t *testing.T) {
	data, err := ProposeTeam([]string{"u1", "u2"}).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := `{"type":"propose_team","team":["u1","u2"]}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}

	data, err = VoteTeam(false).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want = `{"type":"vote_team","approve":false}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}

	// Omitted optional fields must not appear on the wire.
	data, err = ToggleReady().Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want = `{"type":"toggle_ready"}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}
