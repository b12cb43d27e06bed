package samples

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"fractunes/internal/testutil"
)

func TestLoaderHTTP(t *testing.T) {
	wav := testutil.EncodeWAV(t, 44100, 1, testutil.Tone(64, 1000))
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/sound/fractunes-default-mode/Kick.wav":
			w.Write(wav)
		case "/sound/fractunes-default-mode/Clap.wav":
			w.Write([]byte("this is not audio"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(NewFetcher(srv.URL + "/sound"))
	ctx := context.Background()

	t.Run("Loads", func(t *testing.T) {
		buf, err := l.Load(ctx, "default", "Kick")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if buf.Frames() != 64 {
			t.Errorf("frames = %d", buf.Frames())
		}
	})

	t.Run("Cached", func(t *testing.T) {
		before := hits.Load()
		if _, err := l.Load(ctx, "default", "Kick"); err != nil {
			t.Fatal(err)
		}
		if hits.Load() != before {
			t.Error("cached sample fetched again")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		buf, err := l.Load(ctx, "default", "Whole")
		if buf != nil {
			t.Error("buffer returned on failure")
		}
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("err = %v, want LoadError", err)
		}
		if le.Status != http.StatusNotFound {
			t.Errorf("status = %d", le.Status)
		}
	})

	t.Run("NotAudio", func(t *testing.T) {
		_, err := l.Load(ctx, "default", "Clap")
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("err = %v, want DecodeError", err)
		}
		if de.Path != "fractunes-default-mode/Clap.wav" {
			t.Errorf("path = %q", de.Path)
		}
	})
}

func TestLoaderDir(t *testing.T) {
	fsys := fstest.MapFS{
		"fractunes-europapa-mode/Half.wav": {Data: testutil.EncodeWAV(t, 48000, 2, testutil.Tone(20, 500))},
	}
	l := NewLoader(&DirFetcher{FS: fsys})

	buf, err := l.Load(context.Background(), "europapa", "Half")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if buf.NumChannels() != 2 || buf.Frames() != 10 || buf.SampleRate() != 48000 {
		t.Errorf("buffer = %d ch, %d frames, %d Hz", buf.NumChannels(), buf.Frames(), buf.SampleRate())
	}

	_, err = l.Load(context.Background(), "default", "Half")
	var le *LoadError
	if !errors.As(err, &le) {
		t.Errorf("missing file err = %v, want LoadError", err)
	}
}

func TestDirFetcherHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &DirFetcher{FS: fstest.MapFS{}}
	if _, err := f.Fetch(ctx, "x.wav"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
