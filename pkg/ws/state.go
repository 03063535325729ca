package ws

// State tracks the connection lifecycle. Transitions are linear:
// Pending -> Open -> Closed, with Error as the terminal state for
// connections that died rather than closed.
type State int32

const (
	StatePending State = iota
	StateOpen
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	}
	return "unknown"
}
