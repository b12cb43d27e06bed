package samples

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves the raw bytes of a sample resource
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// NewFetcher returns an HTTPFetcher for http(s) URLs and a DirFetcher otherwise
func NewFetcher(source string) Fetcher {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return &HTTPFetcher{BaseURL: source}
	}
	return &DirFetcher{FS: os.DirFS(source)}
}

// HTTPFetcher fetches samples from a web server, the way the browser build
// loads them from /sound/
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	u, err := url.JoinPath(f.BaseURL, p)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{Path: p, Status: resp.StatusCode, Err: fmt.Errorf("GET %s: %s", u, resp.Status)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}
	return data, nil
}

// DirFetcher reads samples from a file system, usually the samples directory
type DirFetcher struct {
	FS fs.FS
}

func (f *DirFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}
	data, err := fs.ReadFile(f.FS, p)
	if err != nil {
		return nil, &LoadError{Path: p, Err: err}
	}
	return data, nil
}
