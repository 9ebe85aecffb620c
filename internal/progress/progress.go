// Package progress carries fetch progress from an entity handler to whatever
// displays it.
//
// A handler emits two kinds of events: PhaseStart opens a new phase and
// PhaseAdvance moves the open phase forward. There is no explicit end event.
// The Tracker closes a phase when the next one opens, and closes the last
// phase when the pass ends. This means a phase abandoned part way through is
// still shown as complete; the display is an approximation of the work done,
// not an exact accounting.
package progress

// Total is the number of units every phase is measured in.
const Total = 100

// Event is a progress message. It is either a PhaseStart or a PhaseAdvance.
type Event interface {
	isEvent()
}

// PhaseStart opens a phase. Weight is the number of units credited at once.
type PhaseStart struct {
	Label  string
	Weight int
}

// PhaseAdvance credits Amount more units to the open phase.
type PhaseAdvance struct {
	Amount int
}

func (PhaseStart) isEvent()   {}
func (PhaseAdvance) isEvent() {}

// Emit delivers events synchronously to a consumer.
type Emit func(Event)

// Handle identifies a task opened on a Reporter.
type Handle int

// Reporter displays progress tasks.
type Reporter interface {
	Open(label string, weight int) Handle
	Advance(h Handle, amount int)
	Complete(h Handle)
	// Close releases the display. No calls may follow it.
	Close()
}

// Tracker consumes events and applies them to a Reporter, closing each phase
// when the next one opens.
type Tracker struct {
	r         Reporter
	current   Handle
	open      bool
	opened    int
	completed int
}

// NewTracker returns a tracker writing to r.
func NewTracker(r Reporter) *Tracker {
	return &Tracker{r: r}
}

// Handle applies one event. Its method value satisfies Emit.
func (t *Tracker) Handle(e Event) {
	switch e := e.(type) {
	case PhaseStart:
		t.finishOpen()
		t.current = t.r.Open(e.Label, e.Weight)
		t.open = true
		t.opened++
	case PhaseAdvance:
		if t.open {
			t.r.Advance(t.current, e.Amount)
		}
	}
}

// Finish force-completes the phase still open, if any.
func (t *Tracker) Finish() {
	t.finishOpen()
}

func (t *Tracker) finishOpen() {
	if !t.open {
		return
	}
	t.r.Complete(t.current)
	t.open = false
	t.completed++
}

// Run drives fetch, feeding its events to r. On success the last phase is
// completed before r is closed. On failure the display stops where it is.
func Run(r Reporter, fetch func(Emit) error) error {
	t := NewTracker(r)
	defer r.Close()

	if err := fetch(t.Handle); err != nil {
		return err
	}
	t.Finish()
	return nil
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Open(string, int) Handle { return 0 }
func (Nop) Advance(Handle, int)     {}
func (Nop) Complete(Handle)         {}
func (Nop) Close()                  {}
