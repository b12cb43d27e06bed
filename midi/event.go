package midi

import (
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// NoteOnEvent is a decoded key or pad press
type NoteOnEvent struct {
	Note      uint8 // 0-127
	Velocity  uint8 // 1-127
	Channel   uint8 // 0-15
	Timestamp time.Time
}

// Decode interprets one complete channel message. Only note-on with a
// non-zero velocity produces an event; everything else, including the
// note-on/velocity-0 form of note-off, is discarded.
func Decode(raw []byte, at time.Time) (NoteOnEvent, bool) {
	if len(raw) != 3 || raw[0]&0xF0 != NoteOn {
		return NoteOnEvent{}, false
	}
	var channel, note, velocity uint8
	if !gomidi.Message(raw).GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return NoteOnEvent{}, false
	}
	return NoteOnEvent{
		Note:      note,
		Velocity:  velocity,
		Channel:   channel,
		Timestamp: at,
	}, true
}
