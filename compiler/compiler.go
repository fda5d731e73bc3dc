// Package compiler runs a complete generation: it loads the document,
// runs the external generators, assembles the routers and writes them.
package compiler

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/syssam/trpcgen/compiler/gen"
	"github.com/syssam/trpcgen/compiler/load"
)

// Introspector produces the data-model document of a schema.
type Introspector interface {
	Introspect(context.Context) (*load.Document, error)
}

// IntrospectorFunc adapts a function to an Introspector.
type IntrospectorFunc func(context.Context) (*load.Document, error)

// Introspect calls f(ctx).
func (f IntrospectorFunc) Introspect(ctx context.Context) (*load.Document, error) {
	return f(ctx)
}

// DocumentFile returns an introspector that loads the document at path.
func DocumentFile(path string) Introspector {
	return IntrospectorFunc(func(context.Context) (*load.Document, error) {
		return load.File(path)
	})
}

// ValidatorGenerator generates the input validators the routers import.
type ValidatorGenerator interface {
	GenerateValidators(context.Context, *load.Document, *gen.Config) error
}

// PolicyGenerator generates the policy module exporting "permissions".
type PolicyGenerator interface {
	GeneratePolicy(context.Context, *load.Document, *gen.Config) error
}

type options struct {
	introspector Introspector
	validators   ValidatorGenerator
	policy       PolicyGenerator
	log          logrus.FieldLogger
	workers      int
	dryRun       bool
}

// Option configures Generate.
type Option func(*options)

// WithIntrospector sets the source of the document.
func WithIntrospector(i Introspector) Option {
	return func(o *options) { o.introspector = i }
}

// WithValidatorGenerator sets the generator called when validators are enabled.
func WithValidatorGenerator(v ValidatorGenerator) Option {
	return func(o *options) { o.validators = v }
}

// WithPolicyGenerator sets the generator called when the shield is enabled.
func WithPolicyGenerator(p PolicyGenerator) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithDryRun disables writing the artifacts. The validator and policy
// generators are not called either, since they write their own files.
func WithDryRun() Option {
	return func(o *options) { o.dryRun = true }
}

// Generate runs a generation with the given config and writes the
// artifacts to the config target. Errors of single entities do not stop
// the run; they are returned together with the artifacts that were
// generated and written.
func Generate(ctx context.Context, cfg *gen.Config, opts ...Option) (*gen.ArtifactSet, error) {
	o := &options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(o)
	}
	if o.introspector == nil {
		return nil, gen.NewConfigError("introspector", nil, "no document source")
	}
	g, err := gen.NewGenerator(cfg)
	if err != nil {
		return nil, err
	}
	cfg = g.Config()
	doc, err := o.introspector.Introspect(ctx)
	if err != nil {
		return nil, gen.NewGenerationError("introspect", "", "load document", err)
	}
	if !o.dryRun {
		if err := o.collaborate(ctx, doc, cfg); err != nil {
			return nil, err
		}
	}
	set, genErr := g.WithWorkers(o.workers).WithLogger(o.log).Generate(ctx, doc)
	if set == nil || o.dryRun {
		return set, genErr
	}
	w := gen.NewWriter(cfg.Target).WithWorkers(o.workers).WithLogger(o.log)
	if err := w.Write(ctx, set); err != nil {
		return set, errors.Join(genErr, err)
	}
	m := w.Metrics()
	o.log.WithFields(logrus.Fields{
		"written":   m.FilesWritten,
		"unchanged": m.FilesUnchanged,
		"removed":   m.FilesRemoved,
		"bytes":     m.TotalBytes,
	}).Info("wrote artifacts")
	return set, genErr
}

// collaborate runs the validator and policy generators enabled by cfg.
func (o *options) collaborate(ctx context.Context, doc *load.Document, cfg *gen.Config) error {
	if cfg.Zod && o.validators != nil {
		if err := o.validators.GenerateValidators(ctx, doc, cfg); err != nil {
			return gen.NewGenerationError("validators", "", "generate validators", err)
		}
	}
	if cfg.Shield && o.policy != nil {
		if err := o.policy.GeneratePolicy(ctx, doc, cfg); err != nil {
			return gen.NewGenerationError("policy", "", "generate policy", err)
		}
	}
	return nil
}
