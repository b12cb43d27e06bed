package midi

import "sync"

// HistorySize is how many recent note-on events are kept for the monitor
const HistorySize = 20

// History is a bounded log of recent events, newest first
type History struct {
	mu     sync.Mutex
	events []NoteOnEvent
	size   int
}

// NewHistory creates a history holding at most size events
func NewHistory(size int) *History {
	if size <= 0 {
		size = HistorySize
	}
	return &History{size: size, events: make([]NoteOnEvent, 0, size)}
}

// Add puts ev at the front, dropping the oldest event when full
func (h *History) Add(ev NoteOnEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) < h.size {
		h.events = append(h.events, NoteOnEvent{})
	}
	copy(h.events[1:], h.events[:len(h.events)-1])
	h.events[0] = ev
}

// Events returns a copy, newest first
func (h *History) Events() []NoteOnEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]NoteOnEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Len returns the number of events held
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}
