// connection/manager.go
package connection

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sooswastaken/Avalon/logger"
	"github.com/sooswastaken/Avalon/monitor"
	"github.com/sooswastaken/Avalon/protocol"
	"github.com/sooswastaken/Avalon/timer"
)

// State 连接生命周期状态
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateRetrying
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateRetrying:
		return "closed-will-retry"
	case StateTerminal:
		return "closed-terminal"
	default:
		return "unknown"
	}
}

// EventKind discriminates manager events.
type EventKind int

const (
	// EventSnapshot carries a full room snapshot.
	EventSnapshot EventKind = iota
	// EventPrivateInfo carries the caller's private info packet.
	EventPrivateInfo
	// EventLifecycle carries every other push: quest results, kicks,
	// pauses, tie notices, lady results.
	EventLifecycle
	// EventStateChanged reports a connection state transition.
	EventStateChanged
)

// Event is what the manager emits to the session runtime. The runtime
// consumes these on a single goroutine, which is the only writer of the
// session store.
type Event struct {
	Kind      EventKind
	Snapshot  *protocol.RoomSnapshot
	Info      *protocol.PrivateInfoPacket
	Lifecycle protocol.Message
	State     State
	Close     protocol.CloseClass
}

// Manager owns the push connection lifecycle: the authentication
// handshake (credential on the connect URI), the read loop, the fixed
// delay reconnect policy, and close-code interpretation.
type Manager struct {
	serverURL      string
	dialer         Dialer
	scheduler      *timer.Scheduler
	monitor        *monitor.Monitor
	reconnectDelay time.Duration
	events         chan Event

	mutex        sync.Mutex
	roomID       string
	credential   string
	conn         Conn
	state        State
	closeClass   protocol.CloseClass
	retryTask    int64
	retryPending bool
	stopped      bool
}

func NewManager(serverURL string, reconnectDelay time.Duration, sched *timer.Scheduler, mon *monitor.Monitor) *Manager {
	return &Manager{
		serverURL:      serverURL,
		dialer:         DefaultDialer,
		scheduler:      sched,
		monitor:        mon,
		reconnectDelay: reconnectDelay,
		events:         make(chan Event, 64),
		state:          StateTerminal,
		closeClass:     protocol.CloseTransient,
	}
}

// SetDialer replaces the websocket dialer. Tests use this to feed the
// manager scripted connections.
func (m *Manager) SetDialer(d Dialer) {
	m.dialer = d
}

// Events is the single stream the session runtime consumes.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Connect opens the push connection for one room. The credential rides
// on the URI; no re-authentication happens mid-session.
func (m *Manager) Connect(roomID, credential string) {
	m.mutex.Lock()
	m.roomID = roomID
	m.credential = credential
	m.stopped = false
	m.closeClass = protocol.CloseTransient
	m.mutex.Unlock()
	m.dial()
}

func (m *Manager) connectURL() string {
	return fmt.Sprintf("%s/ws/%s?auth=%s", m.serverURL, m.roomID, url.QueryEscape(m.credential))
}

func (m *Manager) dial() {
	m.setState(StateConnecting, protocol.CloseTransient)

	m.mutex.Lock()
	target := m.connectURL()
	dialer := m.dialer
	m.mutex.Unlock()

	conn, err := dialer(target)
	if err != nil {
		logger.Log.Warnf("Dial %s failed: %v", target, err)
		m.scheduleRetry()
		return
	}

	m.mutex.Lock()
	if m.stopped {
		m.mutex.Unlock()
		conn.Close()
		return
	}
	m.conn = conn
	m.mutex.Unlock()

	m.setState(StateOpen, protocol.CloseTransient)
	logger.Log.Infof("Connected to room %s at %s", m.roomID, conn.RemoteAddr())

	// The server pushes a fresh snapshot immediately on connect; the
	// client replays nothing of its own.
	go m.readLoop(conn)
}

func (m *Manager) readLoop(conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.handleClosed(err)
			return
		}
		m.dispatch(data)
	}
}

func (m *Manager) dispatch(data []byte) {
	received := time.Now()

	msg, err := protocol.DecodeMessage(data)
	if err != nil {
		// A malformed frame is discarded on its own; it must not kill
		// the handler or touch the stored snapshot.
		logger.Log.Warnf("Discarding inbound frame: %v", err)
		m.monitor.IncMessagesDiscarded()
		return
	}

	switch v := msg.(type) {
	case protocol.StateMessage:
		m.monitor.IncSnapshotsReceived()
		m.monitor.ObserveApplyLatency(time.Since(received))
		m.events <- Event{Kind: EventSnapshot, Snapshot: &v.State}
	case protocol.InfoMessage:
		m.events <- Event{Kind: EventPrivateInfo, Info: &v.Info}
	default:
		m.events <- Event{Kind: EventLifecycle, Lifecycle: msg}
	}
}

func (m *Manager) handleClosed(err error) {
	code := -1
	if ce, ok := err.(*websocket.CloseError); ok {
		code = ce.Code
	}
	class := protocol.ClassifyClose(code)

	m.mutex.Lock()
	m.conn = nil
	stopped := m.stopped
	m.mutex.Unlock()

	if stopped {
		return
	}

	if class.Terminal() {
		logger.Log.Infof("Connection closed with terminal code %d", code)
		m.setState(StateTerminal, class)
		return
	}

	logger.Log.Infof("Connection lost (%v), will retry in %v", err, m.reconnectDelay)
	m.scheduleRetry()
}

// scheduleRetry arms exactly one reconnect attempt after the fixed
// delay. No backoff growth, no retry cap; navigating away is the only
// way to stop the loop.
func (m *Manager) scheduleRetry() {
	m.setState(StateRetrying, protocol.CloseTransient)

	m.mutex.Lock()
	if m.retryPending || m.stopped {
		m.mutex.Unlock()
		return
	}
	m.retryPending = true
	m.mutex.Unlock()

	m.monitor.IncReconnects()
	taskID := m.scheduler.After(m.reconnectDelay, func() {
		m.mutex.Lock()
		m.retryPending = false
		skip := m.stopped || m.state == StateTerminal
		m.mutex.Unlock()
		if skip {
			return
		}
		m.dial()
	})

	m.mutex.Lock()
	m.retryTask = taskID
	m.mutex.Unlock()
}

// Send writes one command. Commands issued while the connection is not
// open are dropped: best effort, the next snapshot wins.
func (m *Manager) Send(cmd protocol.Command) {
	m.mutex.Lock()
	conn := m.conn
	open := m.state == StateOpen && conn != nil
	m.mutex.Unlock()

	if !open {
		logger.Log.Debugf("Dropping %s command, connection not open", cmd.Type)
		m.monitor.IncCommandsDropped()
		return
	}

	data, err := cmd.Encode()
	if err != nil {
		logger.Log.Errorf("Encode %s command: %v", cmd.Type, err)
		return
	}
	if err := conn.WriteMessage(data); err != nil {
		// The read loop observes the closure and drives the retry.
		logger.Log.Debugf("Write %s command failed: %v", cmd.Type, err)
		return
	}
	m.monitor.IncCommandsSent()
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.state
}

// CloseClass returns the classification of the last terminal close.
func (m *Manager) CloseClass() protocol.CloseClass {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.closeClass
}

// Freeze tears the connection down as superseded: the close frame
// carries the superseded code so the server knows this tab yielded, no
// retry is ever scheduled, and the credential is left alone because the
// other session still owns it.
func (m *Manager) Freeze() {
	m.mutex.Lock()
	m.stopped = true
	conn := m.conn
	m.conn = nil
	if m.retryPending {
		m.scheduler.Cancel(m.retryTask)
		m.retryPending = false
	}
	m.mutex.Unlock()

	if conn != nil {
		conn.CloseWithCode(protocol.CloseSuperseded, "Superseded by another tab")
	}
	m.setState(StateTerminal, protocol.CloseTerminalSuperseded)
}

// Stop closes the connection and cancels any pending retry. Used when
// the user navigates away.
func (m *Manager) Stop() {
	m.mutex.Lock()
	m.stopped = true
	conn := m.conn
	m.conn = nil
	if m.retryPending {
		m.scheduler.Cancel(m.retryTask)
		m.retryPending = false
	}
	m.mutex.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (m *Manager) setState(s State, class protocol.CloseClass) {
	m.mutex.Lock()
	if m.state == s && m.closeClass == class {
		m.mutex.Unlock()
		return
	}
	m.state = s
	m.closeClass = class
	m.mutex.Unlock()

	m.monitor.SetConnectionState(int(s))

	// Freeze runs on the consumer's own goroutine, so this send must
	// never block. State() stays authoritative when the buffer is full.
	select {
	case m.events <- Event{Kind: EventStateChanged, State: s, Close: class}:
	default:
		logger.Log.Warnf("Event buffer full, state change %s not emitted", s)
	}
}
