package app

import (
	"archive/zip"
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"

	"p2composite/internal/domain"
	appErrors "p2composite/internal/errors"
	"p2composite/internal/logging"
)

// ProgressFunc reports how many child repositories have been checked.
type ProgressFunc func(current, total int)

// ArtifactSource is one artifact together with the repository holding it.
type ArtifactSource struct {
	Repo     *domain.ArtifactRepository
	Artifact domain.Artifact
}

// Comparator decides whether two artifacts with the same key are the same.
type Comparator interface {
	Equal(ctx context.Context, a, b ArtifactSource) (bool, error)
}

func NewComparator(id string, fetcher Fetcher) (Comparator, error) {
	switch id {
	case domain.MD5ComparatorID:
		return MD5Comparator{}, nil
	case domain.JarComparatorID:
		if fetcher == nil {
			return nil, errors.New("jar comparator requires Fetcher")
		}
		return JarComparator{Fetcher: fetcher}, nil
	default:
		return nil, fmt.Errorf("unknown comparator %q", id)
	}
}

// MD5Comparator compares the recorded download digests. An artifact
// without a digest matches anything.
type MD5Comparator struct{}

func (MD5Comparator) Equal(_ context.Context, a, b ArtifactSource) (bool, error) {
	sumA, sumB := a.Artifact.MD5(), b.Artifact.MD5()
	if sumA == "" || sumB == "" {
		return true, nil
	}
	return sumA == sumB, nil
}

// JarComparator downloads both artifacts and compares their entries,
// ignoring the manifest and signature files.
type JarComparator struct {
	Fetcher Fetcher
}

func (c JarComparator) Equal(ctx context.Context, a, b ArtifactSource) (bool, error) {
	entriesA, err := c.entries(ctx, a)
	if err != nil {
		return false, err
	}
	entriesB, err := c.entries(ctx, b)
	if err != nil {
		return false, err
	}
	return slices.Equal(entriesA, entriesB), nil
}

type jarEntry struct {
	name string
	crc  uint32
}

// entries lists the compared entries of the jar sorted by name. Duplicate
// names are kept so that a jar carrying one twice differs from one that
// does not.
func (c JarComparator) entries(ctx context.Context, src ArtifactSource) ([]jarEntry, error) {
	location, err := src.Repo.ArtifactURL(src.Artifact.Key)
	if err != nil {
		return nil, err
	}
	data, err := c.Fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	entries := make([]jarEntry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || ignoredJarEntry(f.Name) {
			continue
		}
		entries = append(entries, jarEntry{name: f.Name, crc: f.CRC32})
	}
	slices.SortFunc(entries, func(a, b jarEntry) int {
		if n := strings.Compare(a.name, b.name); n != 0 {
			return n
		}
		return cmp.Compare(a.crc, b.crc)
	})
	return entries, nil
}

func ignoredJarEntry(name string) bool {
	upper := strings.ToUpper(name)
	if !strings.HasPrefix(upper, "META-INF/") {
		return false
	}
	if upper == "META-INF/MANIFEST.MF" {
		return true
	}
	switch path.Ext(upper) {
	case ".SF", ".RSA", ".DSA", ".EC":
		return true
	}
	return false
}

// Validator checks that the children of a composite artifact repository
// agree on every artifact they have in common.
type Validator struct {
	Store      RepositoryStore
	Comparator Comparator
	Logger     logging.Logger
	OnProgress ProgressFunc
}

func (v *Validator) Validate(ctx context.Context, repo *domain.Composite) error {
	stop := v.Logger.Measure("Validating " + repo.Location.String())
	defer stop()

	var leaves []*domain.ArtifactRepository
	visited := map[string]bool{repo.Location.String(): true}
	total := len(repo.Children)
	for i, c := range repo.Children {
		found, err := v.expand(ctx, repo.ResolveChild(c), visited)
		if err != nil {
			return err
		}
		leaves = append(leaves, found...)
		if v.OnProgress != nil {
			v.OnProgress(i+1, total)
		}
	}

	seen := map[domain.ArtifactKey]ArtifactSource{}
	var conflicts []string
	for _, leaf := range leaves {
		for _, artifact := range leaf.Artifacts {
			current := ArtifactSource{Repo: leaf, Artifact: artifact}
			previous, ok := seen[artifact.Key]
			if !ok {
				seen[artifact.Key] = current
				continue
			}
			equal, err := v.Comparator.Equal(ctx, previous, current)
			if err != nil {
				return appErrors.Wrap(appErrors.Validation, "compare", artifact.Key.String(), err)
			}
			if !equal {
				conflicts = append(conflicts, describe(artifact.Key, previous.Repo.Location, leaf.Location))
			}
		}
	}
	v.Logger.Verbosef("Compared %d distinct artifacts across %d repositories", len(seen), len(leaves))

	if len(conflicts) > 0 {
		for _, c := range conflicts {
			v.Logger.Warnf("%s", c)
		}
		return appErrors.New(appErrors.Validation, "validate", repo.Location.String(),
			fmt.Sprintf("%d artifacts with the same key have different content (first: %s)", len(conflicts), conflicts[0]))
	}
	return nil
}

// expand returns the simple artifact repositories reachable from location,
// following nested composites once each.
func (v *Validator) expand(ctx context.Context, location *url.URL, visited map[string]bool) ([]*domain.ArtifactRepository, error) {
	if visited[location.String()] {
		return nil, nil
	}
	visited[location.String()] = true

	composite, err := v.Store.Load(ctx, location, domain.KindArtifact)
	if err == nil {
		var leaves []*domain.ArtifactRepository
		for _, c := range composite.Children {
			found, err := v.expand(ctx, composite.ResolveChild(c), visited)
			if err != nil {
				return nil, err
			}
			leaves = append(leaves, found...)
		}
		return leaves, nil
	}
	if !appErrors.Is(err, appErrors.NotFound) && !appErrors.Is(err, appErrors.NotComposite) {
		return nil, appErrors.Wrap(appErrors.Validation, "load child", location.String(), err)
	}

	simple, err := v.Store.LoadArtifactRepository(ctx, location)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.Validation, "load child", location.String(), err)
	}
	return []*domain.ArtifactRepository{simple}, nil
}

func describe(key domain.ArtifactKey, a, b *url.URL) string {
	return fmt.Sprintf("artifact %s differs between %s and %s", key, a, b)
}
