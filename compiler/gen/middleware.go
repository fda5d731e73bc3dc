package gen

import "strings"

// Base procedure identifiers exported by the router helpers artifact.
const (
	PublicProcedure    = "publicProcedure"
	ProtectedProcedure = "protectedProcedure"
	ShieldedProcedure  = "shieldedProcedure"
)

// Binding names in the router helpers artifact.
const (
	GlobalMiddleware      = "globalMiddleware"
	PermissionsMiddleware = "permissionsMiddleware"
)

// ShieldModule is the policy module location, relative to the output root.
const ShieldModule = "shield/shield"

// BindingKind is the kind of a middleware binding.
type BindingKind uint8

const (
	// BindingLogging is the built-in pass-through middleware.
	BindingLogging BindingKind = iota + 1
	// BindingExternal is a middleware imported from a user module.
	BindingExternal
	// BindingAuthorization wraps the permission rules of the policy module.
	BindingAuthorization
)

// String implements fmt.Stringer.
func (k BindingKind) String() string {
	switch k {
	case BindingLogging:
		return "logging"
	case BindingExternal:
		return "external"
	case BindingAuthorization:
		return "authorization"
	default:
		return "invalid"
	}
}

// Binding is a named middleware applied to procedures.
type Binding struct {
	Name string
	Kind BindingKind
	// Module is the imported module location for external and
	// authorization bindings. External modules are relative to the
	// schema file, the policy module to the output root.
	Module string
	// Import is the identifier the module export is bound to.
	Import string
}

// Imported reports whether the middleware comes from another module.
func (b Binding) Imported() bool { return b.Kind != BindingLogging }

// DefaultImport reports whether the binding imports the default export.
func (b Binding) DefaultImport() bool { return b.Kind == BindingExternal }

// MiddlewareChain is the ordered list of middleware bindings together
// with the procedure identifier that procedures bind to.
type MiddlewareChain struct {
	Bindings []Binding
	Base     string
}

// BuildChain builds the middleware chain for the config. The general
// middleware, if any, comes first and the authorization binding last.
func BuildChain(cfg *Config) *MiddlewareChain {
	c := &MiddlewareChain{Base: PublicProcedure}
	switch cfg.Middleware.Mode {
	case MiddlewareDefault:
		c.Bindings = append(c.Bindings, Binding{Name: GlobalMiddleware, Kind: BindingLogging})
	case MiddlewareExternal:
		c.Bindings = append(c.Bindings, Binding{
			Name:   GlobalMiddleware,
			Kind:   BindingExternal,
			Module: cfg.Middleware.Path,
			Import: "defaultMiddleware",
		})
	}
	if cfg.Shield {
		c.Bindings = append(c.Bindings, Binding{
			Name:   PermissionsMiddleware,
			Kind:   BindingAuthorization,
			Module: ShieldModule,
			Import: "permissions",
		})
	}
	switch {
	case c.Authorized():
		c.Base = ShieldedProcedure
	case len(c.Bindings) > 0:
		c.Base = ProtectedProcedure
	}
	return c
}

// Authorized reports whether the chain holds an authorization binding.
func (c *MiddlewareChain) Authorized() bool {
	for _, b := range c.Bindings {
		if b.Kind == BindingAuthorization {
			return true
		}
	}
	return false
}

// Binding returns the binding of the given kind, if any.
func (c *MiddlewareChain) Binding(kind BindingKind) (Binding, bool) {
	for _, b := range c.Bindings {
		if b.Kind == kind {
			return b, true
		}
	}
	return Binding{}, false
}

// Composed returns the expression of the base procedure: the plain
// procedure builder followed by one use call per binding, in order.
func (c *MiddlewareChain) Composed() string {
	var b strings.Builder
	b.WriteString("t.procedure")
	for _, m := range c.Bindings {
		b.WriteString(".use(")
		b.WriteString(m.Name)
		b.WriteString(")")
	}
	return b.String()
}
