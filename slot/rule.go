// Package slot binds playable pads to their samples and MIDI match rules.
package slot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"fractunes/midi"
)

// ErrOutOfRange is returned for filter values outside a field's legal range
var ErrOutOfRange = errors.New("slot: filter value out of range")

// Filter matches one field of a note-on event: either every value ("all")
// or exactly one.
type Filter struct {
	any   bool
	value uint8
}

// Any matches every value
func Any() Filter { return Filter{any: true} }

// Only matches exactly v
func Only(v uint8) Filter { return Filter{value: v} }

func (f Filter) IsAny() bool { return f.any }

// Value returns the exact value and false for an "all" filter
func (f Filter) Value() (uint8, bool) {
	return f.value, !f.any
}

func (f Filter) Matches(v uint8) bool {
	return f.any || f.value == v
}

func (f Filter) String() string {
	if f.any {
		return "all"
	}
	return strconv.Itoa(int(f.value))
}

// MarshalJSON writes "all" or the number, the stored rule format
func (f Filter) MarshalJSON() ([]byte, error) {
	if f.any {
		return []byte(`"all"`), nil
	}
	return []byte(strconv.Itoa(int(f.value))), nil
}

func (f *Filter) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "all" || s == "any" {
			*f = Any()
			return nil
		}
		return fmt.Errorf("slot: bad filter %q", s)
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("slot: bad filter %s: %w", data, err)
	}
	if n < 0 || n > 127 {
		return fmt.Errorf("%w: %d", ErrOutOfRange, n)
	}
	*f = Only(uint8(n))
	return nil
}

// Field names one filter of a MatchRule
type Field int

const (
	FieldNote Field = iota
	FieldVelocity
	FieldChannel
)

// Fields in display order
var Fields = []Field{FieldNote, FieldVelocity, FieldChannel}

func (f Field) String() string {
	switch f {
	case FieldNote:
		return "note"
	case FieldVelocity:
		return "velocity"
	case FieldChannel:
		return "channel"
	}
	return "unknown"
}

// Max is the largest legal value of the field
func (f Field) Max() uint8 {
	if f == FieldChannel {
		return 15
	}
	return 127
}

// MatchRule decides whether a note-on event triggers a slot
type MatchRule struct {
	Note     Filter `json:"note"`
	Velocity Filter `json:"velocity"`
	Channel  Filter `json:"channel"`
}

// AnyRule matches every event
func AnyRule() MatchRule {
	return MatchRule{Note: Any(), Velocity: Any(), Channel: Any()}
}

// Matches is true iff all three filters accept the event
func (r MatchRule) Matches(ev midi.NoteOnEvent) bool {
	return r.Note.Matches(ev.Note) &&
		r.Velocity.Matches(ev.Velocity) &&
		r.Channel.Matches(ev.Channel)
}

// Get returns the filter for field
func (r MatchRule) Get(field Field) Filter {
	switch field {
	case FieldVelocity:
		return r.Velocity
	case FieldChannel:
		return r.Channel
	}
	return r.Note
}

// With returns a copy of r with field replaced by f
func (r MatchRule) With(field Field, f Filter) (MatchRule, error) {
	if v, ok := f.Value(); ok && v > field.Max() {
		return r, fmt.Errorf("%w: %s %d > %d", ErrOutOfRange, field, v, field.Max())
	}
	switch field {
	case FieldNote:
		r.Note = f
	case FieldVelocity:
		r.Velocity = f
	case FieldChannel:
		r.Channel = f
	default:
		return r, fmt.Errorf("slot: unknown field %d", field)
	}
	return r, nil
}

// Validate checks every filter against its field's range
func (r MatchRule) Validate() error {
	for _, field := range Fields {
		if v, ok := r.Get(field).Value(); ok && v > field.Max() {
			return fmt.Errorf("%w: %s %d > %d", ErrOutOfRange, field, v, field.Max())
		}
	}
	return nil
}

func (r MatchRule) String() string {
	return fmt.Sprintf("note:%s vel:%s ch:%s", r.Note, r.Velocity, r.Channel)
}
