package gen

import (
	"path/filepath"
	"strings"
)

// helpersDir is the directory, relative to the output root, of the
// artifact that imports user modules.
var helpersDir = filepath.Join("routers", "helpers")

// ResolvePath returns the module specifier that the router helpers
// artifact uses to import target. Internal targets are relative to the
// output root; external targets are relative to the directory of the
// schema file. The result always uses forward slashes and starts with
// a dot.
func ResolvePath(outputRoot, target string, external bool, schemaPath string) (string, error) {
	from := filepath.Join(outputRoot, helpersDir)
	to := filepath.Join(outputRoot, target)
	if external {
		to = filepath.Join(filepath.Dir(schemaPath), target)
	}
	rel, err := filepath.Rel(from, to)
	if err != nil {
		return "", NewGenerationError("resolve", "", "cannot relate "+target+" to "+from, err)
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel, nil
}
