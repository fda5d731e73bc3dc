package gen

import (
	"strings"

	"github.com/syssam/trpcgen/compiler/load"
)

// Procedure is one generated procedure of an entity router.
type Procedure struct {
	// Name is the public procedure name in the router.
	Name string
	// Action is the operation action the procedure exposes.
	Action Action
	// Base is the procedure identifier the definition binds to.
	Base string
	Kind ProcedureKind
	// Validator is the input validator, nil when validation is disabled.
	Validator *Validator
	// Receiver and Verb form the data-access call ctx.prisma.<Receiver>.<Verb>.
	Receiver string
	Verb     string
	Input    InputTemplate
	// Text is the rendered procedure definition.
	Text string
}

// Unchecked reports whether the input is passed through without validation.
func (p *Procedure) Unchecked() bool { return p.Validator == nil }

// Synthesize builds the procedure exposing op on the entity and renders
// its definition.
func Synthesize(e *load.Entity, op load.Operation, base string, cfg *Config) (*Procedure, error) {
	c, err := Classify(Action(op.Action))
	if err != nil {
		return nil, &OperationError{Entity: e.Name, Action: op.Action}
	}
	p := &Procedure{
		Name:     procedureName(e.Name, op.Name, cfg.ShowModelNameInProcedure),
		Action:   c.Action,
		Base:     base,
		Kind:     c.Kind,
		Receiver: e.Receiver(),
		Verb:     c.Verb(),
		Input:    c.Input,
	}
	if cfg.Zod {
		v := c.Validator(e.Name)
		p.Validator = &v
	}
	if p.Text, err = execute("procedure", p); err != nil {
		return nil, err
	}
	return p, nil
}

// procedureName strips the first occurrence of the model name from the
// operation name unless it is kept. A name consisting of the model name
// alone is kept as is.
func procedureName(model, name string, keep bool) string {
	if keep {
		return name
	}
	if stripped := strings.Replace(name, model, "", 1); stripped != "" {
		return stripped
	}
	return name
}
