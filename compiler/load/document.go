package load

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"
)

// Document represents the data-model document produced by the schema
// introspector. It is the only input of the generation pipeline besides
// the generator configuration.
type Document struct {
	// Provider is the storage engine identifier, e.g. "postgresql" or "mongodb".
	Provider string    `json:"provider,omitempty" yaml:"provider,omitempty"`
	Entities []*Entity `json:"entities,omitempty" yaml:"entities,omitempty"`
}

// Entity represents one model of the introspected schema.
type Entity struct {
	Name          string     `json:"name" yaml:"name"`
	Plural        string     `json:"plural,omitempty" yaml:"plural,omitempty"`
	Documentation string     `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Operations    Operations `json:"operations,omitempty" yaml:"operations,omitempty"`
}

// Operation pairs a data-access action (e.g. "findUnique") with the name
// of the procedure generated for it (e.g. "findUniqueUser").
type Operation struct {
	Action string `json:"action" yaml:"action"`
	Name   string `json:"name" yaml:"name"`
}

// Operations is the ordered list of operations an entity declares.
//
// It decodes from either an object (`{"findUnique": "findUniqueUser"}`)
// or an array of Operation objects. The declaration order of the object
// form is preserved.
type Operations []Operation

// PluralName returns the plural name used for router identifiers. When the
// document does not carry one, it is derived from the entity name.
func (e *Entity) PluralName() string {
	if e.Plural != "" {
		return e.Plural
	}
	return lowerFirst(inflect.Pluralize(e.Name))
}

// Receiver returns the lower-first entity name used to reach the entity
// delegate of the data-access client.
func (e *Entity) Receiver() string {
	return lowerFirst(e.Name)
}

// Actions returns the entity actions in declaration order.
func (e *Entity) Actions() []string {
	actions := make([]string, len(e.Operations))
	for i, op := range e.Operations {
		actions[i] = op.Action
	}
	return actions
}

// Validate reports the first structural problem of the document.
func (d *Document) Validate() error {
	var (
		names   = make(map[string]string, len(d.Entities))
		plurals = make(map[string]string, len(d.Entities))
	)
	for i, e := range d.Entities {
		if e == nil {
			return fmt.Errorf("entity #%d: missing definition", i)
		}
		if e.Name == "" {
			return fmt.Errorf("entity #%d: missing name", i)
		}
		// Names are compared case-insensitively.
		key := strings.ToLower(e.Name)
		switch prev, ok := names[key]; {
		case ok && prev == e.Name:
			return fmt.Errorf("entity %q: declared more than once", e.Name)
		case ok:
			return fmt.Errorf("entity %q: name collides with entity %q", e.Name, prev)
		}
		names[key] = e.Name
		plural := e.PluralName()
		if prev, ok := plurals[plural]; ok {
			return fmt.Errorf("entity %q: plural name %q collides with entity %q", e.Name, plural, prev)
		}
		plurals[plural] = e.Name
		actions := make(map[string]struct{}, len(e.Operations))
		for _, op := range e.Operations {
			if op.Action == "" || op.Name == "" {
				return fmt.Errorf("entity %q: operation with empty action or name", e.Name)
			}
			if _, ok := actions[op.Action]; ok {
				return fmt.Errorf("entity %q: action %q declared more than once", e.Name, op.Action)
			}
			actions[op.Action] = struct{}{}
		}
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Operations) UnmarshalJSON(buf []byte) error {
	buf = bytes.TrimSpace(buf)
	switch {
	case len(buf) == 0 || bytes.Equal(buf, []byte("null")):
		*o = nil
		return nil
	case buf[0] == '[':
		var ops []Operation
		if err := json.Unmarshal(buf, &ops); err != nil {
			return err
		}
		*o = ops
		return nil
	case buf[0] != '{':
		return fmt.Errorf("operations: expect object or array, got %q", buf[:1])
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	// Opening brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	var ops Operations
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		action, ok := tok.(string)
		if !ok {
			return fmt.Errorf("operations: unexpected key %v", tok)
		}
		var name string
		if err := dec.Decode(&name); err != nil {
			return fmt.Errorf("operations: action %q: %w", action, err)
		}
		ops = append(ops, Operation{Action: action, Name: name})
	}
	*o = ops
	return nil
}

// MarshalJSON implements json.Marshaler. Operations are encoded in the
// object form with their declaration order.
func (o Operations) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, op := range o {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(op.Action)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(op.Name)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Operations) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		ops := make(Operations, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return fmt.Errorf("operations: line %d: action %q must map to a procedure name", v.Line, k.Value)
			}
			ops = append(ops, Operation{Action: k.Value, Name: v.Value})
		}
		*o = ops
		return nil
	case yaml.SequenceNode:
		var ops []Operation
		if err := node.Decode(&ops); err != nil {
			return err
		}
		*o = ops
		return nil
	default:
		return fmt.Errorf("operations: line %d: expect mapping or sequence", node.Line)
	}
}

// Decode decodes a document from buf. YAML is accepted when the format
// is "yaml" or "yml"; anything else is decoded as JSON. The document is
// checked against the document JSON Schema before it is decoded.
func Decode(buf []byte, format string) (*Document, error) {
	yamlFormat := false
	switch strings.ToLower(format) {
	case "yaml", "yml":
		yamlFormat = true
	}
	v, err := generic(buf, yamlFormat)
	if err != nil {
		return nil, err
	}
	if err := ValidateSchema(v); err != nil {
		return nil, err
	}
	doc := &Document{}
	if yamlFormat {
		err = yaml.Unmarshal(buf, doc)
	} else {
		err = json.Unmarshal(buf, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ErrEmptyDocument is returned by File for empty input files.
var ErrEmptyDocument = errors.New("load: empty document")

// File loads a document from the given path. The format is derived from
// the file extension.
func File(path string) (*Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(bytes.TrimSpace(buf)) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}
	doc, err := Decode(buf, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
