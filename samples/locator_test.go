package samples

import "testing"

func TestLocate(t *testing.T) {
	tests := []struct {
		mode, slot, want string
	}{
		{"default", "Kick", "fractunes-default-mode/Kick.wav"},
		{"europapa", "Quarter", "fractunes-europapa-mode/Quarter.wav"},
		{"default", "Hi Hat", "fractunes-default-mode/Hihat.wav"},
		{"default", "  open\thi hat ", "fractunes-default-mode/Openhihat.wav"},
		{"default", "CLAP", "fractunes-default-mode/Clap.wav"},
	}
	for _, tt := range tests {
		if got := Locate(tt.mode, tt.slot); got != tt.want {
			t.Errorf("Locate(%q, %q) = %q, want %q", tt.mode, tt.slot, got, tt.want)
		}
	}
}
