package gen

import (
	"path"
	"strings"
)

// Artifact paths, relative to the output root.
const (
	HelpersPath    = "routers/helpers/createRouter.ts"
	AggregatorPath = "routers/index.ts"
)

// RouterPath returns the artifact path of the router of the given model.
func RouterPath(model string) string {
	return path.Join("routers", model+".router.ts")
}

// Artifact is one generated source file.
type Artifact struct {
	// Path is slash-separated and relative to the output root.
	Path string
	// Header is written before the statements. Empty omits it.
	Header     string
	Statements []string
}

// Content returns the artifact text: the header followed by the
// statements separated by blank lines.
func (a *Artifact) Content() []byte {
	var b strings.Builder
	if a.Header != "" {
		b.WriteString(a.Header)
		b.WriteString("\n\n")
	}
	for i, s := range a.Statements {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s)
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// ArtifactSet is the ordered output of one generation run: the router
// helpers, the entity routers in schema order and the aggregator.
type ArtifactSet struct {
	Artifacts []*Artifact
}

// Lookup returns the artifact with the given path.
func (s *ArtifactSet) Lookup(p string) (*Artifact, bool) {
	for _, a := range s.Artifacts {
		if a.Path == p {
			return a, true
		}
	}
	return nil, false
}

// Paths returns the artifact paths in order.
func (s *ArtifactSet) Paths() []string {
	paths := make([]string, len(s.Artifacts))
	for i, a := range s.Artifacts {
		paths[i] = a.Path
	}
	return paths
}

// Len returns the number of artifacts.
func (s *ArtifactSet) Len() int { return len(s.Artifacts) }
