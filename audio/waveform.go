package audio

// Peak is the amplitude range of one envelope column
type Peak struct {
	Min, Max float32
}

// Window returns the half-open sample range [lo, hi) summarised by column i
// when n samples are spread over width columns. Windows hold ceil(n/width)
// samples; the last one may be short and trailing ones may be empty.
func Window(i, n, width int) (lo, hi int) {
	if width <= 0 || n <= 0 {
		return 0, 0
	}
	step := (n + width - 1) / width
	lo = min(i*step, n)
	hi = min(lo+step, n)
	return lo, hi
}

// Envelope reduces samples to width min/max pairs. Columns with no samples
// are (0, 0), so an empty input gives width zero pairs.
func Envelope(samples []float32, width int) []Peak {
	if width <= 0 {
		return nil
	}
	peaks := make([]Peak, width)
	for i := range peaks {
		lo, hi := Window(i, len(samples), width)
		if lo >= hi {
			continue
		}
		p := Peak{Min: samples[lo], Max: samples[lo]}
		for _, s := range samples[lo+1 : hi] {
			if s < p.Min {
				p.Min = s
			}
			if s > p.Max {
				p.Max = s
			}
		}
		peaks[i] = p
	}
	return peaks
}
