package p2

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"p2composite/internal/app"
	"p2composite/internal/domain"
	appErrors "p2composite/internal/errors"
	"p2composite/internal/infra/fetch"
)

// Store reads repositories through Fetcher and writes local (file:)
// composites through FS.
type Store struct {
	Fetcher app.Fetcher
	FS      app.FileSystem
	Now     func() time.Time
}

func (s Store) Load(ctx context.Context, location *url.URL, kind domain.Kind) (*domain.Composite, error) {
	l := layoutFor(kind)

	data, found, err := s.fetchIndex(ctx, location, l.composite)
	if err != nil {
		return nil, err
	}
	if !found {
		_, simple, err := s.fetchIndex(ctx, location, l.simple)
		if err != nil {
			return nil, err
		}
		if simple {
			return nil, appErrors.New(appErrors.NotComposite, "load", location.String(), "simple "+kind.String()+" repository found")
		}
		return nil, appErrors.New(appErrors.NotFound, "load", location.String(), "no "+kind.String()+" repository")
	}

	repo, isComposite, err := decodeComposite(data, kind, location)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "parse", location.String(), err)
	}
	if !isComposite {
		return nil, appErrors.New(appErrors.NotComposite, "load", location.String(), "unexpected repository type")
	}
	return repo, nil
}

func (s Store) LoadArtifactRepository(ctx context.Context, location *url.URL) (*domain.ArtifactRepository, error) {
	data, found, err := s.fetchIndex(ctx, location, layoutFor(domain.KindArtifact).simple)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, appErrors.New(appErrors.NotFound, "load", location.String(), "no artifact repository")
	}
	repo, err := decodeArtifactRepository(data, location)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "parse", location.String(), err)
	}
	return repo, nil
}

// Save writes repo in its compressed or plain form and removes the other.
func (s Store) Save(ctx context.Context, repo *domain.Composite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.EqualFold(repo.Location.Scheme, "file") {
		return appErrors.New(appErrors.IOFailure, "save", repo.Location.String(), "only file: repositories can be written")
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	repo.SetProperty(domain.PropTimestamp, strconv.FormatInt(now().UnixMilli(), 10))

	l := layoutFor(repo.Kind)
	xmlName := l.composite + ".xml"
	jarName := l.composite + ".jar"

	data, err := encodeComposite(repo)
	if err != nil {
		return appErrors.Wrap(appErrors.Internal, "encode", repo.Location.String(), err)
	}

	keep, drop := xmlName, jarName
	if repo.IsCompressed() {
		keep, drop = jarName, xmlName
		if data, err = jar(xmlName, data); err != nil {
			return appErrors.Wrap(appErrors.Internal, "compress", repo.Location.String(), err)
		}
	}

	keepPath := fetch.Path(child(repo.Location, keep))
	if err := s.FS.WriteFile(keepPath, data); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "write", keepPath, err)
	}
	dropPath := fetch.Path(child(repo.Location, drop))
	if err := s.FS.Remove(dropPath); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "remove", dropPath, err)
	}
	return nil
}

// fetchIndex returns the content of base.jar or base.xml under location,
// preferring the jar.
func (s Store) fetchIndex(ctx context.Context, location *url.URL, base string) ([]byte, bool, error) {
	data, err := s.Fetcher.Fetch(ctx, child(location, base+".jar"))
	if err == nil {
		xmlData, err := unjar(base+".xml", data)
		if err != nil {
			return nil, false, appErrors.Wrap(appErrors.IOFailure, "decompress", child(location, base+".jar").String(), err)
		}
		return xmlData, true, nil
	}
	if !appErrors.Is(err, appErrors.NotFound) {
		return nil, false, err
	}

	data, err = s.Fetcher.Fetch(ctx, child(location, base+".xml"))
	if err == nil {
		return data, true, nil
	}
	if appErrors.Is(err, appErrors.NotFound) {
		return nil, false, nil
	}
	return nil, false, err
}

func child(location *url.URL, name string) *url.URL {
	return domain.DirURL(location).ResolveReference(&url.URL{Path: name})
}
