package wizard

// State is the lifecycle state of a Wizard
type State int

// Wizard states
const (
	StateLoading State = iota
	StateReady
	StateLoadFailed
	StateSubmitting
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateLoadFailed:
		return "load_failed"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON views
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
