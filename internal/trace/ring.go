package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the newest events of a run in memory, so the modules and
// phases that led to a failed check can be dumped afterwards. With a next
// tracer every event is forwarded as well; that is the "both" mode.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	head   int
	full   bool
	level  Level
	next   Tracer
}

// NewRingTracer creates a ring of capacity events (4096 when not positive).
// next may be nil.
func NewRingTracer(capacity int, level Level, next Tracer) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level, next: next}
}

func (t *RingTracer) Emit(ev *Event) {
	if t.next != nil {
		t.next.Emit(ev)
	}
	if !t.level.Retains(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	stored := *ev
	if t.next == nil {
		stored.Seq = NextSeq()
	}
	t.events[t.head] = stored
	t.head++
	if t.head == len(t.events) {
		t.head, t.full = 0, true
	}
}

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]Event(nil), t.events[:t.head]...)
	}
	out := make([]Event, 0, len(t.events))
	out = append(out, t.events[t.head:]...)
	return append(out, t.events[:t.head]...)
}

// Dump writes the retained events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error {
	if t.next != nil {
		return t.next.Flush()
	}
	return nil
}

func (t *RingTracer) Close() error {
	if t.next != nil {
		return t.next.Close()
	}
	return nil
}

func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
