package app

import (
	"context"
	"net/url"

	"p2composite/internal/domain"
)

// RepositoryStore loads and saves p2 repositories. Load and
// LoadArtifactRepository return an error of kind NotFound when nothing
// exists at the location.
type RepositoryStore interface {
	Load(ctx context.Context, location *url.URL, kind domain.Kind) (*domain.Composite, error)
	Save(ctx context.Context, repo *domain.Composite) error
	LoadArtifactRepository(ctx context.Context, location *url.URL) (*domain.ArtifactRepository, error)
}

// Fetcher reads the content behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, location *url.URL) ([]byte, error)
}

// FileReader reads local files. A missing file yields an error matching
// fs.ErrNotExist.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// FileSystem is the local storage written when saving file: repositories.
type FileSystem interface {
	FileReader
	WriteFile(path string, data []byte) error
	Remove(path string) error
}
