package device

// State is the connection state the bridge reports for a device.
type State int

const (
	StateUnknown State = iota
	StateDevice
	StateOffline
	StateUnauthorized
)

func (s State) String() string {
	switch s {
	case StateDevice:
		return "device"
	case StateOffline:
		return "offline"
	case StateUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// ParseState maps the second column of a device listing to a State.
func ParseState(token string) State {
	switch token {
	case "device":
		return StateDevice
	case "offline":
		return StateOffline
	case "unauthorized":
		return StateUnauthorized
	default:
		return StateUnknown
	}
}

// Device is a bridge-assigned identifier plus its last reported state.
// Network devices carry the address and port in the identifier (host:port).
type Device struct {
	ID    string
	State State
}

func (d Device) String() string {
	return d.ID + " (" + d.State.String() + ")"
}
