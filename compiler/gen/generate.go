package gen

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/trpcgen/compiler/load"
)

// ProviderMongoDB is the document-database provider that supports the
// raw operations.
const ProviderMongoDB = "mongodb"

// Generator assembles the router artifacts of a document.
type Generator struct {
	cfg     *Config
	log     logrus.FieldLogger
	workers int
}

// NewGenerator creates a generator for the given config. A nil config
// uses the defaults.
//
// Example:
//
//	cfg, err := gen.NewConfig(gen.WithShield(false))
//	if err != nil {
//		return err
//	}
//	g, err := gen.NewGenerator(cfg)
//	if err != nil {
//		return err
//	}
//	set, err := g.WithWorkers(4).Generate(ctx, doc)
func NewGenerator(cfg *Config) (*Generator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg:     cfg,
		log:     logrus.StandardLogger(),
		workers: runtime.GOMAXPROCS(0),
	}, nil
}

// WithWorkers sets the number of entities synthesized in parallel.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// WithLogger sets the logger that receives generation diagnostics.
func (g *Generator) WithLogger(l logrus.FieldLogger) *Generator {
	if l != nil {
		g.log = l
	}
	return g
}

// Config returns the generator config.
func (g *Generator) Config() *Config { return g.cfg }

// entityRouter is the template data of an entity router artifact.
type entityRouter struct {
	Model      string
	Plural     string
	Base       string
	Validators []Validator
	Procedures []*Procedure
}

// Generate assembles the artifacts of the document. Entities are
// processed in parallel, but the artifact order only depends on the
// document. Failures of single entities do not stop the others: they
// are joined into the returned error, which comes with the artifacts of
// the entities that succeeded.
func (g *Generator) Generate(ctx context.Context, doc *load.Document) (*ArtifactSet, error) {
	if doc == nil {
		return nil, NewGenerationError("load", "", "nil document", nil)
	}
	for i, e := range doc.Entities {
		if e == nil {
			return nil, NewGenerationError("load", "", fmt.Sprintf("entity #%d: missing definition", i), nil)
		}
	}
	chain := BuildChain(g.cfg)
	helpers, err := g.helpers(chain)
	if err != nil {
		return nil, err
	}
	hidden := g.hiddenEntities(doc.Entities)

	var (
		routers = make([]*entityRouter, len(doc.Entities))
		errs    = make([]error, len(doc.Entities))
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, e := range doc.Entities {
		if _, ok := hidden[e.Name]; ok {
			g.log.WithField("entity", e.Name).Debug("entity hidden by annotation")
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			routers[i], errs[i] = g.router(e, doc.Provider, chain)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	set := &ArtifactSet{Artifacts: []*Artifact{helpers}}
	var selected []*entityRouter
	for i, r := range routers {
		if r == nil || errs[i] != nil {
			continue
		}
		a, err := g.routerArtifact(r)
		if err != nil {
			errs[i] = NewEntityError(r.Model, "render router", err)
			continue
		}
		set.Artifacts = append(set.Artifacts, a)
		selected = append(selected, r)
	}
	agg, err := g.aggregator(selected)
	if err != nil {
		return nil, err
	}
	set.Artifacts = append(set.Artifacts, agg)
	g.log.WithFields(logrus.Fields{
		"entities": len(doc.Entities),
		"hidden":   len(hidden),
		"routers":  len(selected),
	}).Info("generated routers")
	return set, errors.Join(errs...)
}

// hiddenEntities returns the names of the entities hidden by their
// model annotation. Malformed annotations are reported and ignored.
func (g *Generator) hiddenEntities(entities []*load.Entity) map[string]struct{} {
	hidden := make(map[string]struct{})
	for _, e := range entities {
		args, err := ModelArgs(e.Documentation)
		if err != nil {
			if annErr := (*AnnotationError)(nil); errors.As(err, &annErr) {
				annErr.Entity = e.Name
			}
			g.log.WithField("entity", e.Name).WithError(err).Warn("ignoring malformed annotation")
			continue
		}
		if Hidden(args) {
			hidden[e.Name] = struct{}{}
		}
	}
	return hidden
}

// router synthesizes the procedures of an entity. It returns nil if no
// operation of the entity is selected by the config.
func (g *Generator) router(e *load.Entity, provider string, chain *MiddlewareChain) (*entityRouter, error) {
	log := g.log.WithField("entity", e.Name)
	r := &entityRouter{
		Model:  e.Name,
		Plural: e.PluralName(),
		Base:   chain.Base,
	}
	for _, op := range e.Operations {
		a := Action(op.Action)
		if !a.Valid() {
			log.WithField("action", op.Action).Warn("skipping unknown operation")
			continue
		}
		if !g.cfg.ActionEnabled(a) {
			continue
		}
		if a.Raw() {
			switch provider {
			case "":
				return nil, NewEntityError(e.Name, "raw operation "+op.Action, ErrMissingProvider)
			case ProviderMongoDB:
			default:
				log.WithFields(logrus.Fields{"action": op.Action, "provider": provider}).
					Warn("dropping raw operation unsupported by provider")
				continue
			}
		}
		p, err := Synthesize(e, op, chain.Base, g.cfg)
		if err != nil {
			return nil, NewEntityError(e.Name, "synthesize "+op.Name, err)
		}
		r.Procedures = append(r.Procedures, p)
		if p.Validator != nil {
			r.addValidator(*p.Validator)
		}
	}
	if len(r.Procedures) == 0 {
		log.Debug("no operation selected, skipping entity")
		return nil, nil
	}
	if g.cfg.Zod && provider == ProviderMongoDB {
		for _, a := range []Action{ActionFindRaw, ActionAggregateRaw} {
			c, _ := Classify(a)
			r.addValidator(c.Validator(e.Name))
		}
	}
	return r, nil
}

func (r *entityRouter) addValidator(v Validator) {
	if !slices.Contains(r.Validators, v) {
		r.Validators = append(r.Validators, v)
	}
}

func (g *Generator) routerArtifact(r *entityRouter) (*Artifact, error) {
	return g.artifact(RouterPath(r.Model), r, "router/imports", "router")
}

func (g *Generator) aggregator(routers []*entityRouter) (*Artifact, error) {
	return g.artifact(AggregatorPath, routers, "aggregator/imports", "aggregator")
}

// artifact renders one statement per template.
func (g *Generator) artifact(path string, data any, names ...string) (*Artifact, error) {
	a := &Artifact{Path: path, Header: g.cfg.Header}
	for _, name := range names {
		s, err := execute(name, data)
		if err != nil {
			return nil, withFile(err, path)
		}
		a.Statements = append(a.Statements, s)
	}
	return a, nil
}

// moduleImport is an import of the router helpers artifact.
type moduleImport struct {
	Name    string
	Path    string
	Default bool
}

// helpersData is the template data of the router helpers artifact.
type helpersData struct {
	ContextPath string
	OptionsPath string
	Imports     []moduleImport
	Chain       *MiddlewareChain
	Public      string
}

// helpers renders the router helpers artifact. User modules are
// resolved relative to the schema file, the policy module relative to
// the output root.
func (g *Generator) helpers(chain *MiddlewareChain) (*Artifact, error) {
	resolve := func(target string, external bool) (string, error) {
		p, err := ResolvePath(g.cfg.Target, target, external, g.cfg.SchemaPath)
		return p, withFile(err, HelpersPath)
	}
	data := &helpersData{Chain: chain, Public: PublicProcedure}
	var err error
	if data.ContextPath, err = resolve(g.cfg.ContextPath, true); err != nil {
		return nil, err
	}
	if g.cfg.TRPCOptionsPath != "" {
		if data.OptionsPath, err = resolve(g.cfg.TRPCOptionsPath, true); err != nil {
			return nil, err
		}
	}
	for _, b := range chain.Bindings {
		if !b.Imported() {
			continue
		}
		p, err := resolve(b.Module, b.Kind == BindingExternal)
		if err != nil {
			return nil, err
		}
		data.Imports = append(data.Imports, moduleImport{Name: b.Import, Path: p, Default: b.DefaultImport()})
	}

	a, err := g.artifact(HelpersPath, data, "helpers/imports", "helpers/init")
	if err != nil {
		return nil, err
	}
	for _, b := range chain.Bindings {
		s, err := execute("helpers/middleware", b)
		if err != nil {
			return nil, withFile(err, HelpersPath)
		}
		a.Statements = append(a.Statements, s)
	}
	s, err := execute("helpers/procedures", data)
	if err != nil {
		return nil, withFile(err, HelpersPath)
	}
	a.Statements = append(a.Statements, s)
	return a, nil
}

// withFile sets the file of generation errors that have none.
func withFile(err error, file string) error {
	var genErr *GenerationError
	if errors.As(err, &genErr) && genErr.File == "" {
		genErr.File = file
	}
	return err
}
