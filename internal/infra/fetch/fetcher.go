package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"p2composite/internal/app"
	appErrors "p2composite/internal/errors"
	"p2composite/internal/infra/fs"
)

const DefaultTimeout = 30 * time.Second

// Fetcher reads file: URLs through FS and http(s) URLs over the network.
type Fetcher struct {
	Client *http.Client
	FS     app.FileReader
}

func New() Fetcher {
	return Fetcher{Client: &http.Client{Timeout: DefaultTimeout}, FS: fs.OSFS{}}
}

func (f Fetcher) Fetch(ctx context.Context, location *url.URL) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch strings.ToLower(location.Scheme) {
	case "file":
		return f.readFile(location)
	case "http", "https":
		return f.get(ctx, location)
	default:
		return nil, appErrors.New(appErrors.InvalidArgs, "fetch", location.String(), fmt.Sprintf("unsupported scheme %q", location.Scheme))
	}
}

func (f Fetcher) get(ctx context.Context, location *url.URL) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location.String(), nil)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.InvalidArgs, "fetch", location.String(), err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "fetch", location.String(), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, appErrors.New(appErrors.NotFound, "fetch", location.String(), resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, appErrors.New(appErrors.IOFailure, "fetch", location.String(), resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "fetch", location.String(), err)
	}
	return data, nil
}

func (f Fetcher) readFile(location *url.URL) ([]byte, error) {
	reader := f.FS
	if reader == nil {
		reader = fs.OSFS{}
	}

	path := Path(location)
	data, err := reader.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, appErrors.Wrap(appErrors.NotFound, "read", path, err)
		}
		return nil, appErrors.Wrap(appErrors.IOFailure, "read", path, err)
	}
	return data, nil
}

// Path converts a file: URL to a local path.
func Path(location *url.URL) string {
	p := location.Path
	if p == "" {
		p = location.Opaque
	}
	// file:///C:/dir
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	if location.Host != "" && location.Host != "localhost" {
		p = "//" + location.Host + p
	}
	return filepath.FromSlash(p)
}
