package samples

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fractunes/audio"
	"fractunes/debug"
)

// LoadError means the sample resource could not be fetched
type LoadError struct {
	Path   string
	Status int // HTTP status, 0 when not applicable
	Err    error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("load %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DecodeError means the fetched bytes are not playable audio
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Loader fetches and decodes slot samples. Each resource is decoded once;
// later loads of the same (mode, slot) share the buffer.
type Loader struct {
	fetcher Fetcher

	mu    sync.Mutex
	cache map[string]*audio.Buffer
}

func NewLoader(f Fetcher) *Loader {
	return &Loader{fetcher: f, cache: make(map[string]*audio.Buffer)}
}

// Load resolves, fetches and decodes the sample for slot in mode
func (l *Loader) Load(ctx context.Context, mode, slot string) (*audio.Buffer, error) {
	p := Locate(mode, slot)

	l.mu.Lock()
	buf, ok := l.cache[p]
	l.mu.Unlock()
	if ok {
		return buf, nil
	}

	data, err := l.fetcher.Fetch(ctx, p)
	if err != nil {
		var le *LoadError
		if !errors.As(err, &le) {
			err = &LoadError{Path: p, Err: err}
		}
		return nil, err
	}

	buf, err = audio.Decode(data)
	if err != nil {
		return nil, &DecodeError{Path: p, Err: err}
	}

	l.mu.Lock()
	l.cache[p] = buf
	l.mu.Unlock()

	debug.Log("samples", "loaded %s: %d frames @ %dHz, %d ch", p, buf.Frames(), buf.SampleRate(), buf.NumChannels())
	return buf, nil
}
