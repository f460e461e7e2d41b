package protocol

// Abnormal-closure codes with defined client meaning. Everything else
// is treated as transient.
const (
	CloseBadAuthFormat     = 4000
	CloseInvalidCredential = 4001
	CloseInvalidRoom       = 4002
	CloseSuperseded        = 4003
)

// CloseClass 关闭码的客户端处理分类
type CloseClass int

const (
	// CloseTransient schedules one reconnect after the fixed delay.
	CloseTransient CloseClass = iota
	// CloseTerminalAuth redirects to re-authenticate and discards the
	// cached credential.
	CloseTerminalAuth
	// CloseTerminalRoom redirects home; the credential stays valid.
	CloseTerminalRoom
	// CloseTerminalSuperseded freezes this tab only. The other session
	// keeps the credential, so nothing is cleared and nothing retries.
	CloseTerminalSuperseded
)

func ClassifyClose(code int) CloseClass {
	switch code {
	case CloseBadAuthFormat, CloseInvalidCredential:
		return CloseTerminalAuth
	case CloseInvalidRoom:
		return CloseTerminalRoom
	case CloseSuperseded:
		return CloseTerminalSuperseded
	default:
		return CloseTransient
	}
}

// Terminal reports whether the class forbids any further reconnect.
func (c CloseClass) Terminal() bool {
	return c != CloseTransient
}
