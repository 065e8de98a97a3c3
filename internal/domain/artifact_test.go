package domain

import "testing"

func TestArtifactURLUsesDefaultMappings(t *testing.T) {
	repo := &ArtifactRepository{Location: mustParse(t, "http://example.org/r/")}
	got, err := repo.ArtifactURL(ArtifactKey{Classifier: "osgi.bundle", ID: "org.foo", Version: "1.0.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "http://example.org/r/plugins/org.foo_1.0.0.jar" {
		t.Fatalf("unexpected artifact URL %s", got)
	}
}

func TestArtifactURLUsesRepositoryMappings(t *testing.T) {
	repo := &ArtifactRepository{
		Location: mustParse(t, "file:///repo/simple"),
		Mappings: []MappingRule{{Classifier: "osgi.bundle", Output: "${repoUrl}/bundles/${id}-${version}.jar"}},
	}
	got, err := repo.ArtifactURL(ArtifactKey{Classifier: "osgi.bundle", ID: "org.foo", Version: "2.0.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "file:///repo/simple/bundles/org.foo-2.0.0.jar" {
		t.Fatalf("unexpected artifact URL %s", got)
	}

	if _, err := repo.ArtifactURL(ArtifactKey{Classifier: "binary", ID: "x", Version: "1"}); err == nil {
		t.Fatalf("expected error for classifier without a rule")
	}
}

func TestArtifactMD5PrefersChecksumProperty(t *testing.T) {
	a := Artifact{Properties: []Property{
		{Name: "download.md5", Value: "AAA"},
		{Name: "download.checksum.md5", Value: "BBB"},
	}}
	if a.MD5() != "bbb" {
		t.Fatalf("unexpected md5 %q", a.MD5())
	}
	if (Artifact{}).MD5() != "" {
		t.Fatalf("expected empty md5 when no property is set")
	}
}
