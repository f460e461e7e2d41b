package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// 入站消息类型
const (
	MsgState            = "state"
	MsgInfo             = "info"
	MsgQuestResult      = "quest_result"
	MsgKicked           = "kicked"
	MsgPause            = "pause"
	MsgAssassinationTie = "assassination_tie"
	MsgLadyResult       = "lady_result"
	MsgLadyInspect      = "lady_inspect"
)

var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrMissingType    = errors.New("message has no type field")
	ErrUnknownMessage = errors.New("unknown message type")
)

// Message is one decoded inbound push. Exactly one concrete type per
// wire kind.
type Message interface {
	Kind() string
}

// StateMessage carries a full room snapshot.
type StateMessage struct {
	State RoomSnapshot `json:"data"`
}

// InfoMessage carries the caller's private information packet. The
// knowledge keys sit at the top level of the wire payload.
type InfoMessage struct {
	Info PrivateInfoPacket
}

// QuestResultMessage carries one immutable quest record for modal display.
type QuestResultMessage struct {
	Record QuestRecord `json:"data"`
}

// KickedMessage is a termination notice. Reason distinguishes a host
// kick from a superseded session.
type KickedMessage struct {
	Target string `json:"target"`
	Reason string `json:"reason"`
}

// ReasonSuperseded is the kick reason meaning the same identity opened
// the game from another connection. 与服务端字符串保持一致。
const ReasonSuperseded = "Logged in elsewhere"

// PauseMessage lists players the game is waiting to reconnect.
type PauseMessage struct {
	Players []string `json:"players"`
}

// AssassinationTieMessage names the tied candidates and triggers the
// client-side revote reset.
type AssassinationTieMessage struct {
	Candidates []string `json:"candidates"`
}

// LadyResultMessage is the private inspection result sent only to the
// holder.
type LadyResultMessage struct {
	Target  string `json:"target"`
	Loyalty string `json:"loyalty"`
}

// LadyInspectMessage is the public broadcast of who inspected whom. No
// alignment is carried.
type LadyInspectMessage struct {
	Inspector string `json:"inspector"`
	Target    string `json:"target"`
}

func (StateMessage) Kind() string            { return MsgState }
func (InfoMessage) Kind() string             { return MsgInfo }
func (QuestResultMessage) Kind() string      { return MsgQuestResult }
func (KickedMessage) Kind() string           { return MsgKicked }
func (PauseMessage) Kind() string            { return MsgPause }
func (AssassinationTieMessage) Kind() string { return MsgAssassinationTie }
func (LadyResultMessage) Kind() string       { return MsgLadyResult }
func (LadyInspectMessage) Kind() string      { return MsgLadyInspect }

// DecodeMessage parses one inbound frame. A failed parse returns an
// error and no message; the caller discards the frame and keeps the
// stored snapshot untouched.
func DecodeMessage(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if probe.Type == "" {
		return nil, ErrMissingType
	}

	switch probe.Type {
	case MsgState:
		var m StateMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode state: %w", err)
		}
		return m, nil
	case MsgInfo:
		var m InfoMessage
		if err := json.Unmarshal(data, &m.Info); err != nil {
			return nil, fmt.Errorf("decode info: %w", err)
		}
		return m, nil
	case MsgQuestResult:
		var m QuestResultMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode quest result: %w", err)
		}
		return m, nil
	case MsgKicked:
		var m KickedMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode kicked: %w", err)
		}
		return m, nil
	case MsgPause:
		var m PauseMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode pause: %w", err)
		}
		return m, nil
	case MsgAssassinationTie:
		var m AssassinationTieMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode assassination tie: %w", err)
		}
		return m, nil
	case MsgLadyResult:
		var m LadyResultMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode lady result: %w", err)
		}
		return m, nil
	case MsgLadyInspect:
		var m LadyInspectMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode lady inspect: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, probe.Type)
	}
}
