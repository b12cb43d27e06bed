package audio

import "testing"

func TestEnvelopeEmpty(t *testing.T) {
	for _, samples := range [][]float32{nil, {}} {
		peaks := Envelope(samples, 140)
		if len(peaks) != 140 {
			t.Fatalf("len = %d, want 140", len(peaks))
		}
		for i, p := range peaks {
			if p != (Peak{}) {
				t.Fatalf("peak %d = %+v, want zero", i, p)
			}
		}
	}
	if Envelope([]float32{1}, 0) != nil {
		t.Error("zero width should give nil")
	}
}

func TestEnvelopeMinMax(t *testing.T) {
	samples := []float32{0.1, -0.5, 0.9, 0.2, -0.3, -0.1, 0.4}
	peaks := Envelope(samples, 3) // windows of 3: [0,3) [3,6) [6,7)

	want := []Peak{
		{Min: -0.5, Max: 0.9},
		{Min: -0.3, Max: 0.2},
		{Min: 0.4, Max: 0.4},
	}
	for i := range want {
		if peaks[i] != want[i] {
			t.Errorf("peak %d = %+v, want %+v", i, peaks[i], want[i])
		}
	}
}

func TestEnvelopeShortBufferPadsWithZero(t *testing.T) {
	peaks := Envelope([]float32{0.5, -0.5}, 4)
	if peaks[0] != (Peak{0.5, 0.5}) || peaks[1] != (Peak{-0.5, -0.5}) {
		t.Errorf("peaks = %+v", peaks)
	}
	if peaks[2] != (Peak{}) || peaks[3] != (Peak{}) {
		t.Errorf("trailing peaks not zero: %+v", peaks[2:])
	}
}

func TestWindowsPartitionSamples(t *testing.T) {
	cases := []struct{ n, width int }{
		{140, 140}, {141, 140}, {1000, 140}, {44100, 140}, {7, 3}, {9, 3}, {10, 1},
	}
	for _, c := range cases {
		covered := make([]int, c.n)
		next := 0
		for i := 0; i < c.width; i++ {
			lo, hi := Window(i, c.n, c.width)
			if lo > hi {
				t.Fatalf("n=%d w=%d: window %d inverted [%d,%d)", c.n, c.width, i, lo, hi)
			}
			if lo != next && lo != hi {
				t.Fatalf("n=%d w=%d: window %d starts at %d, want %d", c.n, c.width, i, lo, next)
			}
			for j := lo; j < hi; j++ {
				covered[j]++
			}
			if hi > next {
				next = hi
			}
		}
		for j, count := range covered {
			if count != 1 {
				t.Fatalf("n=%d w=%d: sample %d covered %d times", c.n, c.width, j, count)
			}
		}
	}
}
