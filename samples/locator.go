// Package samples resolves, fetches and decodes the audio for each slot.
package samples

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ext is the extension of every sample file
const Ext = ".wav"

// Dir is the directory holding the samples of mode
func Dir(mode string) string {
	return "fractunes-" + mode + "-mode"
}

// FileName turns a slot name into its sample file name:
// whitespace removed, lowercased, first letter upper-cased ("Kick" -> "Kick.wav").
func FileName(slot string) string {
	name := strings.ToLower(strings.Join(strings.Fields(slot), "")) + Ext
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// Locate returns the resource path of a slot's sample in mode
func Locate(mode, slot string) string {
	return path.Join(Dir(mode), FileName(slot))
}
