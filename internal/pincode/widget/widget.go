// Package widget implements the pincode widget as an explicit state machine.
//
// A Widget owns its input, validation verdict and last lookup result. Rendering
// is a pure projection of that state (see View), so transitions can be driven
// and inspected without any display surface.
package widget

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pincheck/internal/pincode/models"
	"pincheck/internal/pincode/tracer"
	"pincheck/pkg/domain"
)

// Lookuper validates input and performs lookups for validated pincodes.
type Lookuper interface {
	Validate(raw string) models.ValidationResult
	LookupPincode(ctx context.Context, pin domain.Pincode) models.LookupResult
}

// StaleRecorder counts lookup completions dropped because a newer submission exists.
type StaleRecorder interface {
	IncrementStaleResults()
}

// Widget is safe for concurrent use. Lookups run on their own goroutine; each
// carries a sequence number and only the latest one may write its result.
type Widget struct {
	id            domain.WidgetID
	lookuper      Lookuper
	lookupTimeout time.Duration
	observers     []Observer
	stale         StaleRecorder
	tracer        tracer.Tracer
	logger        *slog.Logger
	now           func() time.Time

	mu          sync.Mutex
	state       State
	input       string
	validation  models.ValidationResult
	validated   bool
	submitted   string
	result      *models.LookupResult
	outcome     State
	seq         uint64
	settled     chan struct{}
	lastTouched time.Time
}

// Option configures a Widget.
type Option func(*Widget)

// WithLookupTimeout bounds each lookup. Zero keeps the transport default.
func WithLookupTimeout(d time.Duration) Option {
	return func(w *Widget) {
		w.lookupTimeout = d
	}
}

func WithObserver(o Observer) Option {
	return func(w *Widget) {
		if o != nil {
			w.observers = append(w.observers, o)
		}
	}
}

func WithStaleRecorder(r StaleRecorder) Option {
	return func(w *Widget) {
		w.stale = r
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(w *Widget) {
		if t != nil {
			w.tracer = t
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Widget) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock overrides time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(w *Widget) {
		if now != nil {
			w.now = now
		}
	}
}

// New creates a widget in StateIdle.
func New(id domain.WidgetID, lookuper Lookuper, opts ...Option) *Widget {
	settled := make(chan struct{})
	close(settled)

	w := &Widget{
		id:       id,
		lookuper: lookuper,
		tracer:   tracer.NewNoop(),
		logger:   slog.Default(),
		now:      time.Now,
		state:    StateIdle,
		settled:  settled,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.lastTouched = w.now()
	return w
}

func (w *Widget) ID() domain.WidgetID {
	return w.id
}

// State returns the current state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastTouched returns when the widget last received input or a submission.
func (w *Widget) LastTouched() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastTouched
}

// Input records a keystroke: the widget passes through StateValidating and
// settles on StateValid or StateInvalid before Input returns. Clearing the
// field returns the widget to StateIdle without showing a message.
func (w *Widget) Input(raw string) models.ValidationResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastTouched = w.now()
	w.input = raw
	if raw == "" {
		w.validated = false
		w.validation = models.ValidationResult{}
		w.transition(StateIdle)
		return w.lookuper.Validate(raw)
	}
	w.transition(StateValidating)
	return w.validateLocked(raw)
}

// Submit handles a form submission.
//
// The previous result and the input field are cleared on every submission.
// An invalid input leaves the widget in StateInvalid and starts nothing; a
// lookup already in flight keeps running. A valid input moves the widget to
// StateLoading and starts one lookup in the background, which makes any
// lookup still in flight stale.
func (w *Widget) Submit(ctx context.Context) View {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastTouched = w.now()
	w.result = nil
	w.outcome = ""

	raw := w.input
	if w.state != StateValid && w.state != StateInvalid {
		w.transition(StateValidating)
		w.validateLocked(raw)
	}
	w.input = ""
	if !w.validation.IsValid {
		return w.viewLocked()
	}

	pin, err := domain.ParsePincode(raw)
	if err != nil {
		// Validate and ParsePincode share their rules; this only guards drift.
		w.validation = models.ValidationResult{Message: err.Error()}
		w.transition(StateInvalid)
		return w.viewLocked()
	}

	// Only a new lookup supersedes the one in flight.
	w.seq++
	if w.pendingLocked() {
		close(w.settled)
	}
	seq := w.seq
	w.submitted = pin.String()
	w.settled = make(chan struct{})
	w.transition(StateLoading)

	lookupCtx := context.WithoutCancel(ctx)
	go w.runLookup(lookupCtx, seq, pin, w.settled)

	return w.viewLocked()
}

func (w *Widget) runLookup(ctx context.Context, seq uint64, pin domain.Pincode, settled chan struct{}) {
	ctx, span := w.tracer.Start(ctx, tracer.SpanWidgetSubmit,
		tracer.String(tracer.AttrWidgetID, w.id.String()),
		tracer.Int64(tracer.AttrSequence, int64(seq)),
		tracer.String(tracer.AttrPincode, pin.String()),
	)
	defer span.End(nil)

	if w.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.lookupTimeout)
		defer cancel()
	}

	result := w.lookuper.LookupPincode(ctx, pin)

	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.seq {
		span.AddEvent(tracer.EventStaleResultDropped, tracer.Int64(tracer.AttrSequence, int64(seq)))
		if w.stale != nil {
			w.stale.IncrementStaleResults()
		}
		w.logger.DebugContext(ctx, "dropping stale lookup result",
			"widget_id", w.id.String(),
			"sequence", seq,
			"latest_sequence", w.seq,
		)
		return
	}

	w.result = &result
	w.outcome = StateDisplayed
	if result.Kind == models.KindTransportError {
		w.outcome = StateFailed
	}
	// Typing during a lookup already moved the widget on; only a widget still
	// waiting on this lookup walks through the outcome state.
	if w.state == StateLoading {
		w.transition(w.outcome)
		w.transition(StateIdle)
	}
	close(settled)
}

// Await blocks until the latest submitted lookup has been applied or ctx ends.
func (w *Widget) Await(ctx context.Context) error {
	w.mu.Lock()
	settled := w.settled
	w.mu.Unlock()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Busy reports whether a lookup is in flight.
func (w *Widget) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pendingLocked()
}

// View projects the current state onto the display regions.
func (w *Widget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Widget) viewLocked() View {
	return Project(Snapshot{
		WidgetID:   w.id.String(),
		State:      w.state,
		Input:      w.input,
		Validation: w.validation,
		Validated:  w.validated,
		Submitted:  w.submitted,
		Result:     w.result,
		Outcome:    w.outcome,
		Pending:    w.pendingLocked(),
		Sequence:   w.seq,
	})
}

func (w *Widget) pendingLocked() bool {
	select {
	case <-w.settled:
		return false
	default:
		return true
	}
}

func (w *Widget) validateLocked(raw string) models.ValidationResult {
	w.validation = w.lookuper.Validate(raw)
	w.validated = true
	if w.validation.IsValid {
		w.transition(StateValid)
	} else {
		w.transition(StateInvalid)
	}
	return w.validation
}

func (w *Widget) transition(to State) {
	t := Transition{From: w.state, To: to, Sequence: w.seq}
	w.state = to
	for _, o := range w.observers {
		o(t)
	}
}
