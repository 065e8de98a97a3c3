package app

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"

	"p2composite/internal/domain"
	appErrors "p2composite/internal/errors"
	"p2composite/internal/logging"
)

// StepFunc is called when the application moves on to a new step.
type StepFunc func(label string)

// CompositeApplication creates and modifies composite repositories.
type CompositeApplication struct {
	Store    RepositoryStore
	Fetcher  Fetcher
	Logger   logging.Logger
	OnStep   StepFunc
	OnVerify ProgressFunc

	destinations []domain.Descriptor
	toAdd        []domain.Descriptor
	toRemove     []domain.Descriptor
	comparatorID string
	failOnExists bool
}

func (a *CompositeApplication) AddDestination(d domain.Descriptor) {
	a.destinations = append(a.destinations, d)
}

func (a *CompositeApplication) AddChild(d domain.Descriptor) {
	a.toAdd = append(a.toAdd, d)
}

func (a *CompositeApplication) RemoveChild(d domain.Descriptor) {
	a.toRemove = append(a.toRemove, d)
}

func (a *CompositeApplication) SetComparator(id string) {
	a.comparatorID = id
}

func (a *CompositeApplication) SetFailOnExists(v bool) {
	a.failOnExists = v
}

// Run applies the queued child changes to every destination and saves them.
// Nothing is written when validation fails.
func (a *CompositeApplication) Run(ctx context.Context) error {
	if a.Store == nil {
		return errors.New("composite application requires Store")
	}
	if len(a.destinations) == 0 {
		return appErrors.New(appErrors.InvalidArgs, "run", "", "no valid destinations")
	}

	stop := a.Logger.Measure("Updating composite repositories")
	defer stop()

	a.step("Loading destination repositories")
	var repos []*domain.Composite
	for _, d := range a.destinations {
		for _, kind := range kindsOf(d) {
			repo, err := a.initDestination(ctx, d, kind)
			if err != nil {
				return err
			}
			repos = append(repos, repo)
		}
	}

	a.step("Updating children")
	for _, repo := range repos {
		for _, c := range a.toRemove {
			if repo.RemoveChild(c.Location) {
				a.Logger.Verbosef("Removed %s from %s repository %s", c.Location, repo.Kind, repo.Location)
			} else {
				a.Logger.Verbosef("%s is not a child of %s repository %s", c.Location, repo.Kind, repo.Location)
			}
		}
		for _, c := range a.toAdd {
			if repo.AddChild(c.Location) {
				a.Logger.Verbosef("Added %s to %s repository %s", c.Location, repo.Kind, repo.Location)
			} else {
				a.Logger.Verbosef("%s is already a child of %s repository %s", c.Location, repo.Kind, repo.Location)
			}
		}
	}

	if a.comparatorID != "" {
		a.step("Validating child repositories")
		for _, repo := range repos {
			if repo.Kind != domain.KindArtifact {
				continue
			}
			if err := a.validate(ctx, repo); err != nil {
				return err
			}
		}
	}

	a.step("Saving repositories")
	for _, repo := range repos {
		if err := a.Store.Save(ctx, repo); err != nil {
			return err
		}
		a.Logger.Verbosef("Saved %s repository %s (%d children)", repo.Kind, repo.Location, len(repo.Children))
	}
	return nil
}

// initDestination loads the repository at d, or creates it when absent,
// then applies the descriptor's name and compression.
func (a *CompositeApplication) initDestination(ctx context.Context, d domain.Descriptor, kind domain.Kind) (*domain.Composite, error) {
	repo, err := a.Store.Load(ctx, d.Location, kind)
	switch {
	case err == nil:
		if a.failOnExists {
			return nil, appErrors.New(appErrors.AlreadyExists, "init", d.Location.String(), kind.String()+" repository already exists")
		}
		if d.Name != "" {
			repo.Name = d.Name
		}
	case appErrors.Is(err, appErrors.NotFound):
		a.Logger.Verbosef("Creating %s repository at %s", kind, d.Location)
		repo = domain.NewComposite(kind, d.Location, d.Name)
	default:
		return nil, err
	}

	if d.Compressed {
		repo.SetProperty(domain.PropCompressed, "true")
	}
	return repo, nil
}

// Children returns the children of the first metadata destination, or of
// the first artifact destination when no metadata repository exists.
func (a *CompositeApplication) Children(ctx context.Context) ([]*url.URL, error) {
	if a.Store == nil {
		return nil, errors.New("composite application requires Store")
	}

	var metadataDesc, artifactDesc *domain.Descriptor
	for i := range a.destinations {
		d := &a.destinations[i]
		if metadataDesc == nil && d.IsMetadata() {
			metadataDesc = d
		}
		if artifactDesc == nil && d.IsArtifact() {
			artifactDesc = d
		}
		if metadataDesc != nil && artifactDesc != nil {
			break
		}
	}

	var metadata, artifact *domain.Composite
	var err error
	if artifactDesc != nil {
		if artifact, err = a.loadExisting(ctx, artifactDesc.Location, domain.KindArtifact); err != nil {
			return nil, err
		}
	}
	if metadataDesc != nil {
		if metadata, err = a.loadExisting(ctx, metadataDesc.Location, domain.KindMetadata); err != nil {
			return nil, err
		}
	}

	switch {
	case metadata != nil:
		return metadata.Children, nil
	case artifact != nil:
		return artifact.Children, nil
	default:
		return nil, appErrors.New(appErrors.NotFound, "list", checkedLocations(metadataDesc, artifactDesc), "no valid destinations")
	}
}

// checkedLocations joins the distinct locations list mode looked at.
func checkedLocations(descs ...*domain.Descriptor) string {
	var locations []string
	for _, d := range descs {
		if d == nil || slices.Contains(locations, d.Location.String()) {
			continue
		}
		locations = append(locations, d.Location.String())
	}
	return strings.Join(locations, ", ")
}

// loadExisting returns nil without error when nothing is at location.
func (a *CompositeApplication) loadExisting(ctx context.Context, location *url.URL, kind domain.Kind) (*domain.Composite, error) {
	repo, err := a.Store.Load(ctx, location, kind)
	if err != nil {
		if appErrors.Is(err, appErrors.NotFound) {
			a.Logger.Verbosef("No %s repository at %s", kind, location)
			return nil, nil
		}
		return nil, err
	}
	return repo, nil
}

func (a *CompositeApplication) validate(ctx context.Context, repo *domain.Composite) error {
	comparator, err := NewComparator(a.comparatorID, a.Fetcher)
	if err != nil {
		return appErrors.Wrap(appErrors.InvalidArgs, "validate", "", err)
	}
	v := Validator{
		Store:      a.Store,
		Comparator: comparator,
		Logger:     a.Logger,
		OnProgress: a.OnVerify,
	}
	if err := v.Validate(ctx, repo); err != nil {
		return err
	}
	return nil
}

func (a *CompositeApplication) step(label string) {
	a.Logger.Verbosef("%s", label)
	if a.OnStep != nil {
		a.OnStep(label)
	}
}

func kindsOf(d domain.Descriptor) []domain.Kind {
	var kinds []domain.Kind
	if d.IsMetadata() {
		kinds = append(kinds, domain.KindMetadata)
	}
	if d.IsArtifact() {
		kinds = append(kinds, domain.KindArtifact)
	}
	return kinds
}
