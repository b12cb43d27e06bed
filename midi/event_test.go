package midi

import (
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	at := time.Unix(1700000000, 0)

	tests := []struct {
		name string
		raw  []byte
		want NoteOnEvent
		ok   bool
	}{
		{"note on ch0", []byte{0x90, 36, 100}, NoteOnEvent{Note: 36, Velocity: 100, Channel: 0, Timestamp: at}, true},
		{"note on ch16", []byte{0x9F, 60, 1}, NoteOnEvent{Note: 60, Velocity: 1, Channel: 15, Timestamp: at}, true},
		{"max values", []byte{0x92, 127, 127}, NoteOnEvent{Note: 127, Velocity: 127, Channel: 2, Timestamp: at}, true},
		{"zero velocity", []byte{0x90, 60, 0}, NoteOnEvent{}, false},
		{"note off", []byte{0x80, 60, 64}, NoteOnEvent{}, false},
		{"control change", []byte{0xB0, 7, 100}, NoteOnEvent{}, false},
		{"pitch bend", []byte{0xE0, 0, 64}, NoteOnEvent{}, false},
		{"truncated", []byte{0x90, 60}, NoteOnEvent{}, false},
		{"empty", nil, NoteOnEvent{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.raw, at)
			if ok != tt.ok {
				t.Fatalf("Decode(% X) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Decode(% X) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestHistoryNewestFirstBounded(t *testing.T) {
	h := NewHistory(HistorySize)
	for i := 0; i < 25; i++ {
		h.Add(NoteOnEvent{Note: uint8(i), Velocity: 1})
	}

	events := h.Events()
	if len(events) != HistorySize {
		t.Fatalf("len = %d, want %d", len(events), HistorySize)
	}
	if events[0].Note != 24 {
		t.Errorf("newest = %d, want 24", events[0].Note)
	}
	if events[HistorySize-1].Note != 5 {
		t.Errorf("oldest = %d, want 5", events[HistorySize-1].Note)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Note != events[i-1].Note-1 {
			t.Fatalf("events out of order at %d: %d after %d", i, events[i].Note, events[i-1].Note)
		}
	}
}

func TestHistoryEventsIsCopy(t *testing.T) {
	h := NewHistory(3)
	h.Add(NoteOnEvent{Note: 1})
	events := h.Events()
	events[0].Note = 99
	if got := h.Events()[0].Note; got != 1 {
		t.Errorf("history mutated through snapshot: %d", got)
	}
}

func TestPortLabel(t *testing.T) {
	tests := []struct {
		port Port
		want string
	}{
		{Port{ID: "id", Name: "Pad", Manufacturer: "Acme"}, "Pad"},
		{Port{ID: "id", Manufacturer: "Acme"}, "Acme"},
		{Port{ID: "id"}, "id"},
	}
	for _, tt := range tests {
		if got := tt.port.Label(); got != tt.want {
			t.Errorf("%+v.Label() = %q, want %q", tt.port, got, tt.want)
		}
	}
}

func TestNoteNames(t *testing.T) {
	tests := []struct {
		note uint8
		want string
	}{
		{60, "C3"},
		{36, "C1 Kick"},
		{38, "D1 Snare"},
		{0, "C-2"},
		{127, "G8"},
		{70, "A#3 Maracas"},
		{90, "F#5"},
	}
	for _, tt := range tests {
		if got := Describe(tt.note); got != tt.want {
			t.Errorf("Describe(%d) = %q, want %q", tt.note, got, tt.want)
		}
	}
}
