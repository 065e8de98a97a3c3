package domain

import (
	"net/url"
	"strings"
)

// Kind selects which half of a p2 repository a descriptor refers to.
type Kind int

const (
	KindMetadata Kind = iota
	KindArtifact
)

func (k Kind) String() string {
	switch k {
	case KindMetadata:
		return "metadata"
	case KindArtifact:
		return "artifact"
	default:
		return "unknown"
	}
}

// Repository property keys.
const (
	PropCompressed = "p2.compressed"
	PropTimestamp  = "p2.timestamp"
)

// Descriptor describes a repository given on the command line.
// A descriptor with no Kinds covers both metadata and artifacts.
type Descriptor struct {
	Location   *url.URL
	Name       string
	Compressed bool
	Kinds      []Kind
}

func (d Descriptor) IsMetadata() bool { return d.covers(KindMetadata) }
func (d Descriptor) IsArtifact() bool { return d.covers(KindArtifact) }

func (d Descriptor) covers(kind Kind) bool {
	if len(d.Kinds) == 0 {
		return true
	}
	for _, k := range d.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Property is a single name/value pair; order is preserved on save.
type Property struct {
	Name  string
	Value string
}

// Composite is a composite metadata or artifact repository.
type Composite struct {
	Kind       Kind
	Location   *url.URL
	Name       string
	Properties []Property
	Children   []*url.URL
}

func NewComposite(kind Kind, location *url.URL, name string) *Composite {
	if name == "" {
		name = location.String()
	}
	return &Composite{Kind: kind, Location: location, Name: name}
}

func (c *Composite) Property(name string) (string, bool) {
	for _, p := range c.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

func (c *Composite) SetProperty(name, value string) {
	for i, p := range c.Properties {
		if p.Name == name {
			c.Properties[i].Value = value
			return
		}
	}
	c.Properties = append(c.Properties, Property{Name: name, Value: value})
}

func (c *Composite) IsCompressed() bool {
	v, _ := c.Property(PropCompressed)
	return strings.EqualFold(v, "true")
}

// AddChild appends child unless it is already present in either its given,
// absolute or relative form. It reports whether the list changed.
func (c *Composite) AddChild(child *url.URL) bool {
	if c.indexOf(child) >= 0 || c.indexOf(c.absolute(child)) >= 0 || c.indexOf(c.relative(child)) >= 0 {
		return false
	}
	c.Children = append(c.Children, child)
	return true
}

// RemoveChild removes child, trying the exact form before its
// relative/absolute counterpart against the composite location.
func (c *Composite) RemoveChild(child *url.URL) bool {
	idx := c.indexOf(child)
	if idx < 0 {
		other := c.absolute(child)
		if child.IsAbs() {
			other = c.relative(child)
		}
		idx = c.indexOf(other)
	}
	if idx < 0 {
		return false
	}
	c.Children = append(c.Children[:idx], c.Children[idx+1:]...)
	return true
}

// ResolveChild returns the absolute location of child.
func (c *Composite) ResolveChild(child *url.URL) *url.URL {
	return c.absolute(child)
}

func (c *Composite) indexOf(u *url.URL) int {
	if u == nil {
		return -1
	}
	want := canonical(u)
	for i, child := range c.Children {
		if canonical(child) == want {
			return i
		}
	}
	return -1
}

func (c *Composite) absolute(child *url.URL) *url.URL {
	if child.IsAbs() || c.Location == nil {
		return child
	}
	return DirURL(c.Location).ResolveReference(child)
}

func (c *Composite) relative(child *url.URL) *url.URL {
	if !child.IsAbs() || c.Location == nil {
		return child
	}
	base := DirURL(c.Location)
	if child.Scheme != base.Scheme || child.Host != base.Host {
		return child
	}
	if !strings.HasPrefix(child.Path, base.Path) {
		return child
	}
	rel := strings.TrimPrefix(child.Path, base.Path)
	if rel == "" {
		return child
	}
	return &url.URL{Path: rel}
}

// DirURL returns u with a trailing slash so that relative references
// resolve inside it rather than next to it.
func DirURL(u *url.URL) *url.URL {
	dir := *u
	if !strings.HasSuffix(dir.Path, "/") {
		dir.Path += "/"
		if dir.RawPath != "" {
			dir.RawPath += "/"
		}
	}
	return &dir
}

// canonical folds the spellings file:/x and file:///x together and ignores
// a trailing slash.
func canonical(u *url.URL) string {
	if !u.IsAbs() {
		return strings.TrimSuffix(u.String(), "/")
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + strings.TrimSuffix(u.EscapedPath(), "/") + "?" + u.RawQuery
}
