// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV returns a 16-bit PCM wav file holding the interleaved samples.
func EncodeWAV(t *testing.T, sampleRate, numChans int, data []int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, numChans, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: numChans, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return b
}

// Tone returns n mono samples alternating between +amp and -amp
func Tone(n, amp int) []int {
	data := make([]int, n)
	for i := range data {
		if i%2 == 0 {
			data[i] = amp
		} else {
			data[i] = -amp
		}
	}
	return data
}
