package widget

// State is a widget lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateInvalid    State = "invalid"
	StateValid      State = "valid"
	StateLoading    State = "loading"
	StateDisplayed  State = "displayed"
	StateFailed     State = "failed"
)

// Transition is one state change, reported to observers in order.
type Transition struct {
	From     State
	To       State
	Sequence uint64
}

// Observer receives transitions synchronously while the widget lock is held.
// It must not call back into the widget.
type Observer func(Transition)
