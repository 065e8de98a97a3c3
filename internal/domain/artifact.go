package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Comparator ids accepted by -validate.
const (
	JarComparatorID = "org.eclipse.equinox.p2.repository.tools.jar.comparator"
	MD5ComparatorID = "org.eclipse.equinox.artifact.md5.comparator"
)

// Artifact property keys carrying an MD5 digest, newest first.
var MD5Properties = []string{"download.checksum.md5", "download.md5"}

type ArtifactKey struct {
	Classifier string
	ID         string
	Version    string
}

func (k ArtifactKey) String() string {
	return fmt.Sprintf("%s,%s,%s", k.Classifier, k.ID, k.Version)
}

type Artifact struct {
	Key        ArtifactKey
	Properties []Property
}

func (a Artifact) Property(name string) (string, bool) {
	for _, p := range a.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

func (a Artifact) MD5() string {
	for _, name := range MD5Properties {
		if v, ok := a.Property(name); ok && v != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}

// MappingRule maps artifacts of a classifier to a download location.
type MappingRule struct {
	Classifier string
	Output     string
}

// ArtifactRepository is a simple (non-composite) artifact repository.
type ArtifactRepository struct {
	Location  *url.URL
	Name      string
	Mappings  []MappingRule
	Artifacts []Artifact
}

var defaultMappings = []MappingRule{
	{Classifier: "osgi.bundle", Output: "${repoUrl}/plugins/${id}_${version}.jar"},
	{Classifier: "binary", Output: "${repoUrl}/binary/${id}_${version}"},
	{Classifier: "org.eclipse.update.feature", Output: "${repoUrl}/features/${id}_${version}.jar"},
}

// ArtifactURL resolves where the file for key can be downloaded.
func (r *ArtifactRepository) ArtifactURL(key ArtifactKey) (*url.URL, error) {
	rules := r.Mappings
	if len(rules) == 0 {
		rules = defaultMappings
	}
	for _, rule := range rules {
		if rule.Classifier != key.Classifier {
			continue
		}
		repoURL := strings.TrimSuffix(r.Location.String(), "/")
		out := strings.NewReplacer(
			"${repoUrl}", repoURL,
			"${id}", key.ID,
			"${version}", key.Version,
			"${classifier}", key.Classifier,
		).Replace(rule.Output)
		return url.Parse(out)
	}
	return nil, fmt.Errorf("no mapping rule for artifact %s", key)
}
