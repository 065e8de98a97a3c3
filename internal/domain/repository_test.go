package domain

import (
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func childStrings(c *Composite) []string {
	out := make([]string, 0, len(c.Children))
	for _, child := range c.Children {
		out = append(out, child.String())
	}
	return out
}

func TestNewCompositeDefaultsNameToLocation(t *testing.T) {
	repo := NewComposite(KindMetadata, mustParse(t, "file:///repo/composite"), "")
	if repo.Name != "file:///repo/composite" {
		t.Fatalf("unexpected name %q", repo.Name)
	}
}

func TestAddChildSkipsEquivalentLocations(t *testing.T) {
	repo := NewComposite(KindArtifact, mustParse(t, "file:///repo/composite"), "c")
	if !repo.AddChild(mustParse(t, "child1")) {
		t.Fatalf("expected first add to change the list")
	}
	for _, dup := range []string{"child1", "child1/", "file:///repo/composite/child1", "file:/repo/composite/child1"} {
		if repo.AddChild(mustParse(t, dup)) {
			t.Fatalf("%s should be treated as already present", dup)
		}
	}
	if !repo.AddChild(mustParse(t, "http://example.org/child1")) {
		t.Fatalf("expected remote child to be added")
	}
	if got := childStrings(repo); len(got) != 2 || got[0] != "child1" || got[1] != "http://example.org/child1" {
		t.Fatalf("unexpected children %v", got)
	}
}

func TestAddChildAbsoluteMatchesExistingRelative(t *testing.T) {
	repo := NewComposite(KindArtifact, mustParse(t, "file:///repo/composite"), "c")
	repo.AddChild(mustParse(t, "file:///repo/composite/nested/child"))
	if repo.AddChild(mustParse(t, "nested/child")) {
		t.Fatalf("relative form of an absolute child should not be added")
	}
}

func TestRemoveChildTriesCounterpart(t *testing.T) {
	repo := NewComposite(KindMetadata, mustParse(t, "file:///repo/composite"), "c")
	repo.Children = []*url.URL{
		mustParse(t, "child1"),
		mustParse(t, "file:///repo/composite/child2"),
		mustParse(t, "child3"),
	}

	if !repo.RemoveChild(mustParse(t, "file:///repo/composite/child1")) {
		t.Fatalf("absolute form should remove the relative child")
	}
	if !repo.RemoveChild(mustParse(t, "child2")) {
		t.Fatalf("relative form should remove the absolute child")
	}
	if repo.RemoveChild(mustParse(t, "missing")) {
		t.Fatalf("removing an absent child should report false")
	}
	if got := childStrings(repo); len(got) != 1 || got[0] != "child3" {
		t.Fatalf("unexpected children %v", got)
	}
}

func TestResolveChild(t *testing.T) {
	repo := NewComposite(KindArtifact, mustParse(t, "https://example.org/releases"), "c")
	got := repo.ResolveChild(mustParse(t, "2024-06")).String()
	if got != "https://example.org/releases/2024-06" {
		t.Fatalf("unexpected resolved child %s", got)
	}
	abs := "https://mirror.example.net/other"
	if got := repo.ResolveChild(mustParse(t, abs)).String(); got != abs {
		t.Fatalf("absolute child should be returned as is, got %s", got)
	}
}

func TestSetPropertyKeepsOrder(t *testing.T) {
	repo := &Composite{}
	repo.SetProperty(PropTimestamp, "1")
	repo.SetProperty(PropCompressed, "true")
	repo.SetProperty(PropTimestamp, "2")

	if len(repo.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(repo.Properties))
	}
	if repo.Properties[0].Name != PropTimestamp || repo.Properties[0].Value != "2" {
		t.Fatalf("unexpected first property %+v", repo.Properties[0])
	}
	if !repo.IsCompressed() {
		t.Fatalf("expected repository to be compressed")
	}
}

func TestDescriptorKinds(t *testing.T) {
	both := Descriptor{}
	if !both.IsMetadata() || !both.IsArtifact() {
		t.Fatalf("descriptor without kinds should cover both")
	}
	artifactOnly := Descriptor{Kinds: []Kind{KindArtifact}}
	if artifactOnly.IsMetadata() || !artifactOnly.IsArtifact() {
		t.Fatalf("unexpected kinds for artifact descriptor")
	}
}
