package load

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// SchemaURL identifies the document JSON Schema.
const SchemaURL = "https://github.com/syssam/trpcgen/document.schema.json"

var (
	//go:embed document.schema.json
	documentSchema []byte

	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Schema returns the compiled JSON Schema of the document format.
func Schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft7
		if err := c.AddResource(SchemaURL, bytes.NewReader(documentSchema)); err != nil {
			compileErr = fmt.Errorf("add document schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(SchemaURL)
	})
	return compiled, compileErr
}

// ValidateSchema validates the generic form of a document, as returned
// by json.Unmarshal into an any, against the document JSON Schema.
func ValidateSchema(v any) error {
	s, err := Schema()
	if err != nil {
		return err
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}
	return nil
}

// generic decodes buf into its JSON data model. YAML input goes through
// a JSON round trip so that numbers and maps have their JSON types.
func generic(buf []byte, yamlFormat bool) (any, error) {
	if yamlFormat {
		var v any
		if err := yaml.Unmarshal(buf, &v); err != nil {
			return nil, fmt.Errorf("decode yaml document: %w", err)
		}
		var err error
		if buf, err = json.Marshal(v); err != nil {
			return nil, fmt.Errorf("convert yaml document: %w", err)
		}
	}
	var v any
	if err := json.Unmarshal(buf, &v); err != nil {
		return nil, fmt.Errorf("decode json document: %w", err)
	}
	return v, nil
}
