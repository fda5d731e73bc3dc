package gen

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultHeader is prepended to every generated artifact.
const DefaultHeader = "// Code generated by trpcgen. DO NOT EDIT."

// DefaultContextPath is the context module location, relative to the schema file.
const DefaultContextPath = "../../../../src/context"

// MiddlewareMode selects where the general-purpose middleware comes from.
type MiddlewareMode uint8

const (
	// MiddlewareNone disables the middleware binding.
	MiddlewareNone MiddlewareMode = iota
	// MiddlewareDefault emits a logging pass-through middleware.
	MiddlewareDefault
	// MiddlewareExternal imports the middleware from a user module.
	MiddlewareExternal
)

// MiddlewareSource is the configured middleware: none, the built-in
// logging middleware, or an external module.
type MiddlewareSource struct {
	Mode MiddlewareMode
	// Path of the external module, relative to the schema file.
	Path string
}

// NoMiddleware returns the source that disables the middleware.
func NoMiddleware() MiddlewareSource { return MiddlewareSource{} }

// DefaultMiddleware returns the source of the built-in logging middleware.
func DefaultMiddleware() MiddlewareSource { return MiddlewareSource{Mode: MiddlewareDefault} }

// ExternalMiddleware returns the source of a middleware defined in the module at path.
func ExternalMiddleware(path string) MiddlewareSource {
	return MiddlewareSource{Mode: MiddlewareExternal, Path: path}
}

// Enabled reports whether a middleware binding is emitted.
func (m MiddlewareSource) Enabled() bool { return m.Mode != MiddlewareNone }

// String implements fmt.Stringer.
func (m MiddlewareSource) String() string {
	switch m.Mode {
	case MiddlewareDefault:
		return "true"
	case MiddlewareExternal:
		return m.Path
	default:
		return "false"
	}
}

// Config holds the generator configuration.
type Config struct {
	// Middleware is the general-purpose middleware applied to protected procedures.
	Middleware MiddlewareSource
	// Shield enables the authorization middleware built from the policy module.
	Shield bool
	// Zod attaches the generated input validators to procedures.
	Zod bool
	// ContextPath is the context module location, relative to the schema file.
	ContextPath string
	// TRPCOptionsPath is an optional module, relative to the schema file,
	// whose default export is passed to initTRPC.create.
	TRPCOptionsPath string
	// ShowModelNameInProcedure keeps the entity name in procedure names.
	ShowModelNameInProcedure bool
	// ModelActions is the allow-list of generated actions.
	ModelActions []Action

	// Target is the output root directory.
	Target string
	// SchemaPath is the schema file that external module paths are relative to.
	SchemaPath string
	// Header is prepended to every artifact. Empty disables it.
	Header string
}

// DefaultConfig returns the configuration used when no option is given.
func DefaultConfig() *Config {
	return &Config{
		Middleware:               DefaultMiddleware(),
		Shield:                   true,
		Zod:                      true,
		ContextPath:              DefaultContextPath,
		ShowModelNameInProcedure: true,
		ModelActions:             slices.Clone(AllActions),
		Target:                   "generated",
		Header:                   DefaultHeader,
	}
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	switch {
	case len(c.ModelActions) == 0:
		return NewConfigError("generateModelActions", nil, "at least one action is required")
	case c.ContextPath == "":
		return NewConfigError("contextPath", nil, "context path cannot be empty")
	case c.Middleware.Mode == MiddlewareExternal && c.Middleware.Path == "":
		return NewConfigError("withMiddleware", nil, "middleware path cannot be empty")
	case c.Target == "":
		return NewConfigError("output", nil, "target directory cannot be empty")
	}
	for _, a := range c.ModelActions {
		if !a.Valid() {
			return NewConfigError("generateModelActions", a, "unknown action")
		}
	}
	return nil
}

// ActionEnabled reports whether the action, or its base action, is listed
// in the allow-list.
func (c *Config) ActionEnabled(a Action) bool {
	return slices.Contains(c.ModelActions, a) || slices.Contains(c.ModelActions, a.Base())
}

// Keys of the generator key/value configuration.
const (
	KeyWithMiddleware           = "withMiddleware"
	KeyWithShield               = "withShield"
	KeyWithZod                  = "withZod"
	KeyContextPath              = "contextPath"
	KeyTRPCOptionsPath          = "trpcOptionsPath"
	KeyShowModelNameInProcedure = "showModelNameInProcedure"
	KeyGenerateModelActions     = "generateModelActions"
)

// RawConfig is the generator configuration as key/value pairs. Booleans
// are encoded as "true"/"false" and lists as comma-separated tokens.
type RawConfig map[string]string

// UnmarshalYAML implements yaml.Unmarshaler. Values can be scalars or
// sequences of scalars; sequences are joined with commas.
func (r *RawConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: generator config must be a mapping", node.Line)
	}
	raw := make(RawConfig, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		switch v.Kind {
		case yaml.ScalarNode:
			raw[k.Value] = v.Value
		case yaml.SequenceNode:
			var list []string
			if err := v.Decode(&list); err != nil {
				return fmt.Errorf("line %d: %s: %w", v.Line, k.Value, err)
			}
			raw[k.Value] = strings.Join(list, ",")
		default:
			return fmt.Errorf("line %d: %s: expect scalar or sequence", v.Line, k.Value)
		}
	}
	*r = raw
	return nil
}

// ParseConfig builds a configuration from key/value pairs on top of the
// defaults. Unknown keys are ignored; every invalid value is reported.
func ParseConfig(raw RawConfig, opts ...Option) (*Config, error) {
	var parsed []Option
	if v, ok := raw[KeyWithMiddleware]; ok {
		parsed = append(parsed, parseMiddleware(v))
	}
	if v, ok := raw[KeyWithShield]; ok {
		parsed = append(parsed, parseBool(KeyWithShield, v, WithShield))
	}
	if v, ok := raw[KeyWithZod]; ok {
		parsed = append(parsed, parseBool(KeyWithZod, v, WithZod))
	}
	if v, ok := raw[KeyContextPath]; ok {
		parsed = append(parsed, WithContextPath(v))
	}
	if v, ok := raw[KeyTRPCOptionsPath]; ok {
		parsed = append(parsed, WithTRPCOptionsPath(v))
	}
	if v, ok := raw[KeyShowModelNameInProcedure]; ok {
		parsed = append(parsed, parseBool(KeyShowModelNameInProcedure, v, WithModelNameInProcedure))
	}
	if v, ok := raw[KeyGenerateModelActions]; ok {
		parsed = append(parsed, parseActions(v))
	}
	c := DefaultConfig()
	if err := c.ApplyAll(append(parsed, opts...)...); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func parseBool(key, v string, opt func(bool) Option) Option {
	switch v {
	case "true":
		return opt(true)
	case "false":
		return opt(false)
	default:
		return func(*Config) error {
			return NewConfigError(key, v, `expect "true" or "false"`)
		}
	}
}

func parseMiddleware(v string) Option {
	switch v {
	case "true":
		return WithMiddleware(DefaultMiddleware())
	case "false":
		return WithMiddleware(NoMiddleware())
	default:
		return WithMiddleware(ExternalMiddleware(v))
	}
}

func parseActions(v string) Option {
	return func(c *Config) error {
		var actions []Action
		for _, token := range strings.Split(v, ",") {
			a := Action(strings.TrimSpace(token))
			if !a.Valid() {
				return NewConfigError(KeyGenerateModelActions, token, "unknown action")
			}
			if !slices.Contains(actions, a) {
				actions = append(actions, a)
			}
		}
		return WithModelActions(actions...)(c)
	}
}
