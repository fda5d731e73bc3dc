package gen

import (
	"errors"
	"slices"
)

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated artifact.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithMiddleware sets the middleware source.
func WithMiddleware(m MiddlewareSource) Option {
	return func(c *Config) error {
		if m.Mode == MiddlewareExternal && m.Path == "" {
			return NewConfigError(KeyWithMiddleware, nil, "middleware path cannot be empty")
		}
		c.Middleware = m
		return nil
	}
}

// WithShield enables or disables the authorization middleware.
func WithShield(enabled bool) Option {
	return func(c *Config) error {
		c.Shield = enabled
		return nil
	}
}

// WithZod enables or disables input validators.
func WithZod(enabled bool) Option {
	return func(c *Config) error {
		c.Zod = enabled
		return nil
	}
}

// WithContextPath sets the context module path, relative to the schema file.
func WithContextPath(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError(KeyContextPath, nil, "context path cannot be empty")
		}
		c.ContextPath = path
		return nil
	}
}

// WithTRPCOptionsPath sets the tRPC options module path, relative to the
// schema file. An empty path removes it.
func WithTRPCOptionsPath(path string) Option {
	return func(c *Config) error {
		c.TRPCOptionsPath = path
		return nil
	}
}

// WithModelNameInProcedure controls whether procedure names keep the entity name.
func WithModelNameInProcedure(show bool) Option {
	return func(c *Config) error {
		c.ShowModelNameInProcedure = show
		return nil
	}
}

// WithModelActions replaces the allow-list of generated actions.
func WithModelActions(actions ...Action) Option {
	return func(c *Config) error {
		if len(actions) == 0 {
			return NewConfigError(KeyGenerateModelActions, nil, "at least one action is required")
		}
		for _, a := range actions {
			if !a.Valid() {
				return NewConfigError(KeyGenerateModelActions, a, "unknown action")
			}
		}
		c.ModelActions = slices.Clone(actions)
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("output", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithSchemaPath sets the schema file that external module paths are relative to.
func WithSchemaPath(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("schema", nil, "schema path cannot be empty")
		}
		c.SchemaPath = path
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config from the defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := DefaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
