package midi

import "fmt"

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName spells a note number with middle C (60) as C3
func NoteName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note)/12-2)
}

// General MIDI percussion map, channel 10
var drumNames = map[uint8]string{
	35: "Acoustic Bass Drum",
	36: "Kick",
	37: "Rimshot",
	38: "Snare",
	39: "Clap",
	40: "Electric Snare",
	41: "Low Floor Tom",
	42: "Closed HH",
	43: "High Floor Tom",
	44: "Pedal HH",
	45: "Low Tom",
	46: "Open HH",
	47: "Low-Mid Tom",
	48: "Hi-Mid Tom",
	49: "Crash",
	50: "High Tom",
	51: "Ride",
	52: "China",
	53: "Ride Bell",
	54: "Tambourine",
	55: "Splash",
	56: "Cowbell",
	57: "Crash 2",
	59: "Ride 2",
	60: "Hi Bongo",
	61: "Low Bongo",
	62: "Mute Hi Conga",
	63: "High Conga",
	64: "Low Conga",
	69: "Cabasa",
	70: "Maracas",
	75: "Clave",
	76: "Hi Wood Block",
	77: "Low Wood Block",
}

// DrumName returns the General MIDI percussion name for note, or "" if it
// has none
func DrumName(note uint8) string {
	return drumNames[note]
}

// Describe names a note for display: "C1 Kick", or just "A#3"
func Describe(note uint8) string {
	if d := DrumName(note); d != "" {
		return NoteName(note) + " " + d
	}
	return NoteName(note)
}
