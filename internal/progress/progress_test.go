package progress

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// recorder keeps the calls it receives and the completion of each task.
type recorder struct {
	calls  []string
	done   map[Handle]int
	next   Handle
	closed bool
}

func newRecorder() *recorder { return &recorder{done: make(map[Handle]int)} }

func (r *recorder) Open(label string, weight int) Handle {
	r.next++
	r.done[r.next] = weight
	r.calls = append(r.calls, fmt.Sprintf("open %s %d", label, weight))
	return r.next
}

func (r *recorder) Advance(h Handle, n int) {
	r.done[h] += n
	r.calls = append(r.calls, fmt.Sprintf("advance %d %d", h, n))
}

func (r *recorder) Complete(h Handle) {
	r.done[h] = Total
	r.calls = append(r.calls, fmt.Sprintf("complete %d", h))
}

func (r *recorder) Close() { r.closed = true }

func TestTrackerClosesPreviousPhaseOnOpen(t *testing.T) {
	rec := newRecorder()
	tr := NewTracker(rec)

	tr.Handle(PhaseStart{Label: "one", Weight: 50})
	tr.Handle(PhaseAdvance{Amount: 20})
	tr.Handle(PhaseStart{Label: "two", Weight: 10})
	tr.Handle(PhaseAdvance{Amount: 5})
	tr.Finish()

	want := []string{
		"open one 50",
		"advance 1 20",
		"complete 1",
		"open two 10",
		"advance 2 5",
		"complete 2",
	}
	if strings.Join(rec.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if tr.opened != 2 || tr.completed != 2 {
		t.Errorf("opened/completed = %d/%d, want 2/2", tr.opened, tr.completed)
	}
	for h, done := range rec.done {
		if done != Total {
			t.Errorf("task %d left at %d", h, done)
		}
	}
}

func TestTrackerIgnoresAdvanceWithoutPhase(t *testing.T) {
	rec := newRecorder()
	tr := NewTracker(rec)
	tr.Handle(PhaseAdvance{Amount: 10})
	tr.Finish()
	if len(rec.calls) != 0 {
		t.Errorf("expected no calls, got %v", rec.calls)
	}
	if tr.completed != 0 {
		t.Errorf("completed = %d, want 0", tr.completed)
	}
}

func TestRun(t *testing.T) {
	t.Run("success completes last phase", func(t *testing.T) {
		rec := newRecorder()
		err := Run(rec, func(emit Emit) error {
			emit(PhaseStart{Label: "a", Weight: 33})
			emit(PhaseAdvance{Amount: 33})
			emit(PhaseStart{Label: "b", Weight: 50})
			return nil
		})
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
		if rec.done[1] != Total || rec.done[2] != Total {
			t.Errorf("phases not completed: %v", rec.done)
		}
		if !rec.closed {
			t.Error("reporter not closed")
		}
	})

	t.Run("failure stops without completing", func(t *testing.T) {
		rec := newRecorder()
		boom := errors.New("boom")
		err := Run(rec, func(emit Emit) error {
			emit(PhaseStart{Label: "a", Weight: 33})
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Run returned %v, want boom", err)
		}
		if rec.done[1] != 33 {
			t.Errorf("failed phase should stay at 33, got %d", rec.done[1])
		}
		if !rec.closed {
			t.Error("reporter not closed")
		}
	})
}

func TestPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)
	h := p.Open("Fetching data from VirusTotal", 50)
	p.Advance(h, 50)
	p.Complete(h)
	if got := buf.String(); got != "Fetching data from VirusTotal...\n" {
		t.Errorf("output = %q", got)
	}
}

func TestNewQuiet(t *testing.T) {
	if _, ok := New(&bytes.Buffer{}, true).(Nop); !ok {
		t.Error("quiet should select Nop")
	}
	if _, ok := New(&bytes.Buffer{}, false).(*Plain); !ok {
		t.Error("non-terminal writer should select Plain")
	}
}

func TestBarModel(t *testing.T) {
	var m any = newBarModel()
	step := func(msg any) {
		next, _ := m.(barModel).Update(msg)
		m = next
	}

	step(openMsg{id: 1, label: "Fetching data from VirusTotal", weight: 50})
	step(advanceMsg{id: 1, amount: 80})
	if got := m.(barModel).tasks[0].done; got != Total {
		t.Errorf("advance should clamp at %d, got %d", Total, got)
	}

	step(openMsg{id: 2, label: "Fetching domain whois", weight: 10})
	step(completeMsg{id: 2})
	view := m.(barModel).View()
	if !strings.Contains(view, "Fetching domain whois") || !strings.Contains(view, "100%") {
		t.Errorf("unexpected view %q", view)
	}

	step(closeMsg{})
	if v := m.(barModel).View(); v != "" {
		t.Errorf("closed view should be empty, got %q", v)
	}
}
