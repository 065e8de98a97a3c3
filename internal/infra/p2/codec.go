package p2

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"p2composite/internal/domain"
)

const (
	compositeMetadataType = "org.eclipse.equinox.internal.p2.metadata.repository.CompositeMetadataRepository"
	compositeArtifactType = "org.eclipse.equinox.internal.p2.artifact.repository.CompositeArtifactRepository"
	compositeVersion      = "1.0.0"
)

type layout struct {
	composite   string
	simple      string
	repoType    string
	instruction string
}

func layoutFor(kind domain.Kind) layout {
	if kind == domain.KindArtifact {
		return layout{
			composite:   "compositeArtifacts",
			simple:      "artifacts",
			repoType:    compositeArtifactType,
			instruction: "compositeArtifactRepository",
		}
	}
	return layout{
		composite:   "compositeContent",
		simple:      "content",
		repoType:    compositeMetadataType,
		instruction: "compositeMetadataRepository",
	}
}

type repositoryXML struct {
	XMLName    xml.Name       `xml:"repository"`
	Name       string         `xml:"name,attr"`
	Type       string         `xml:"type,attr"`
	Version    string         `xml:"version,attr"`
	Properties *propertiesXML `xml:"properties"`
	Mappings   *mappingsXML   `xml:"mappings,omitempty"`
	Children   *childrenXML   `xml:"children,omitempty"`
	Artifacts  *artifactsXML  `xml:"artifacts,omitempty"`
}

type propertiesXML struct {
	Size  int           `xml:"size,attr"`
	Items []propertyXML `xml:"property"`
}

type propertyXML struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type childrenXML struct {
	Size  int        `xml:"size,attr"`
	Items []childXML `xml:"child"`
}

type childXML struct {
	Location string `xml:"location,attr"`
}

type mappingsXML struct {
	Items []ruleXML `xml:"rule"`
}

type ruleXML struct {
	Filter string `xml:"filter,attr"`
	Output string `xml:"output,attr"`
}

type artifactsXML struct {
	Items []artifactXML `xml:"artifact"`
}

type artifactXML struct {
	Classifier string         `xml:"classifier,attr"`
	ID         string         `xml:"id,attr"`
	Version    string         `xml:"version,attr"`
	Properties *propertiesXML `xml:"properties"`
}

func encodeComposite(repo *domain.Composite) ([]byte, error) {
	l := layoutFor(repo.Kind)
	doc := repositoryXML{
		Name:       repo.Name,
		Type:       l.repoType,
		Version:    compositeVersion,
		Properties: encodeProperties(repo.Properties),
		Children:   &childrenXML{Size: len(repo.Children)},
	}
	for _, child := range repo.Children {
		doc.Children.Items = append(doc.Children.Items, childXML{Location: child.String()})
	}

	var buf bytes.Buffer
	buf.WriteString("<?xml version='1.0' encoding='UTF-8'?>\n")
	fmt.Fprintf(&buf, "<?%s version='%s'?>\n", l.instruction, compositeVersion)
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeProperties(props []domain.Property) *propertiesXML {
	out := &propertiesXML{Size: len(props)}
	for _, p := range props {
		out.Items = append(out.Items, propertyXML{Name: p.Name, Value: p.Value})
	}
	return out
}

func decodeProperties(in *propertiesXML) []domain.Property {
	if in == nil {
		return nil
	}
	props := make([]domain.Property, 0, len(in.Items))
	for _, p := range in.Items {
		props = append(props, domain.Property{Name: p.Name, Value: p.Value})
	}
	return props
}

// decodeComposite parses a composite index. isComposite is false when the
// document is a repository of another type.
func decodeComposite(data []byte, kind domain.Kind, location *url.URL) (repo *domain.Composite, isComposite bool, err error) {
	var doc repositoryXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, false, err
	}
	if doc.Type != layoutFor(kind).repoType {
		return nil, false, nil
	}

	repo = &domain.Composite{
		Kind:       kind,
		Location:   location,
		Name:       doc.Name,
		Properties: decodeProperties(doc.Properties),
	}
	if doc.Children != nil {
		for _, c := range doc.Children.Items {
			child, err := url.Parse(strings.TrimSpace(c.Location))
			if err != nil {
				return nil, true, fmt.Errorf("malformed child location %q: %w", c.Location, err)
			}
			repo.Children = append(repo.Children, child)
		}
	}
	return repo, true, nil
}

var classifierFilter = regexp.MustCompile(`\(classifier=([^)]+)\)`)

func decodeArtifactRepository(data []byte, location *url.URL) (*domain.ArtifactRepository, error) {
	var doc repositoryXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	repo := &domain.ArtifactRepository{Location: location, Name: doc.Name}
	if doc.Mappings != nil {
		for _, rule := range doc.Mappings.Items {
			// Rules for packed formats point at alternate encodings.
			if strings.Contains(rule.Filter, "format=") {
				continue
			}
			m := classifierFilter.FindStringSubmatch(rule.Filter)
			if m == nil {
				continue
			}
			repo.Mappings = append(repo.Mappings, domain.MappingRule{
				Classifier: strings.TrimSpace(m[1]),
				Output:     rule.Output,
			})
		}
	}
	if doc.Artifacts != nil {
		for _, a := range doc.Artifacts.Items {
			repo.Artifacts = append(repo.Artifacts, domain.Artifact{
				Key:        domain.ArtifactKey{Classifier: a.Classifier, ID: a.ID, Version: a.Version},
				Properties: decodeProperties(a.Properties),
			})
		}
	}
	return repo, nil
}

// jar wraps an index file the way p2 compresses repositories.
func jar(entry string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(entry)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unjar(entry string, data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", entry)
}
