package gen

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Action is a data-access operation an entity exposes, e.g. "findUnique".
// Actions may carry the "OrThrow" suffix, which is ignored for
// classification but kept in the procedure name.
type Action string

// Known actions.
const (
	ActionFindUnique   Action = "findUnique"
	ActionFindFirst    Action = "findFirst"
	ActionFindMany     Action = "findMany"
	ActionFindRaw      Action = "findRaw"
	ActionCreateOne    Action = "createOne"
	ActionCreateMany   Action = "createMany"
	ActionDeleteOne    Action = "deleteOne"
	ActionUpdateOne    Action = "updateOne"
	ActionDeleteMany   Action = "deleteMany"
	ActionUpdateMany   Action = "updateMany"
	ActionUpsertOne    Action = "upsertOne"
	ActionAggregate    Action = "aggregate"
	ActionAggregateRaw Action = "aggregateRaw"
	ActionGroupBy      Action = "groupBy"
)

const orThrowSuffix = "OrThrow"

// AllActions holds the list of all base actions in their canonical order.
var AllActions = []Action{
	ActionFindUnique,
	ActionFindFirst,
	ActionFindMany,
	ActionFindRaw,
	ActionCreateOne,
	ActionCreateMany,
	ActionDeleteOne,
	ActionUpdateOne,
	ActionDeleteMany,
	ActionUpdateMany,
	ActionUpsertOne,
	ActionAggregate,
	ActionAggregateRaw,
	ActionGroupBy,
}

// Base returns the action without its "OrThrow" suffix.
func (a Action) Base() Action {
	return Action(strings.TrimSuffix(string(a), orThrowSuffix))
}

// OrThrow reports whether the action carries the "OrThrow" suffix.
func (a Action) OrThrow() bool {
	return a != a.Base()
}

// Valid reports whether the base action is a known action.
func (a Action) Valid() bool {
	_, ok := queryActions[a.Base()]
	if ok {
		return true
	}
	_, ok = mutationActions[a.Base()]
	return ok
}

// Raw reports whether the action is one of the raw document-database actions.
func (a Action) Raw() bool {
	b := a.Base()
	return b == ActionFindRaw || b == ActionAggregateRaw
}

// String implements fmt.Stringer.
func (a Action) String() string { return string(a) }

// ProcedureKind is the kind of the tRPC procedure an action is exposed as.
type ProcedureKind uint8

const (
	_ ProcedureKind = iota
	// Query procedures are read-only lookups.
	Query
	// Mutation procedures write.
	Mutation
)

// String returns the tRPC procedure builder method for the kind.
func (k ProcedureKind) String() string {
	switch k {
	case Query:
		return "query"
	case Mutation:
		return "mutation"
	default:
		return "invalid"
	}
}

var (
	queryActions = map[Action]struct{}{
		ActionFindUnique:   {},
		ActionFindFirst:    {},
		ActionFindMany:     {},
		ActionFindRaw:      {},
		ActionAggregate:    {},
		ActionAggregateRaw: {},
		ActionGroupBy:      {},
	}
	mutationActions = map[Action]struct{}{
		ActionCreateOne:  {},
		ActionCreateMany: {},
		ActionDeleteOne:  {},
		ActionUpdateOne:  {},
		ActionDeleteMany: {},
		ActionUpdateMany: {},
		ActionUpsertOne:  {},
	}
	// groupBy rejects unknown arguments, so only these are forwarded.
	groupByFields = []string{"where", "orderBy", "by", "having", "take", "skip"}
)

// InputTemplate describes how the raw procedure input is shaped before it
// is passed to the data-access call. A template without fields forwards
// the input as is.
type InputTemplate struct {
	Fields []string
}

// Identity reports whether the input is forwarded unchanged.
func (t InputTemplate) Identity() bool { return len(t.Fields) == 0 }

// Validator references the input validator generated for an entity action.
type Validator struct {
	// Name of the exported validator, e.g. "UserFindUniqueSchema".
	Name string
	// Import is the module specifier, relative to the routers directory.
	Import string
}

// Classification is the result of classifying an action.
type Classification struct {
	Action Action
	Base   Action
	Kind   ProcedureKind
	Input  InputTemplate
}

// Classify maps an action to its procedure kind and input template.
// The kind depends on the action alone.
func Classify(a Action) (Classification, error) {
	c := Classification{Action: a, Base: a.Base()}
	if _, ok := queryActions[c.Base]; ok {
		c.Kind = Query
	} else if _, ok := mutationActions[c.Base]; ok {
		c.Kind = Mutation
	} else {
		return Classification{}, &OperationError{Action: string(a)}
	}
	if c.Base == ActionGroupBy {
		c.Input = InputTemplate{Fields: groupByFields}
	}
	return c, nil
}

// Validator returns the validator reference of the classified action for
// the given model. Raw actions live in the "objects" namespace of the
// validator generator output.
func (c Classification) Validator(model string) Validator {
	switch c.Base {
	case ActionFindRaw, ActionAggregateRaw:
		suffix := capitalize(string(c.Base))
		return Validator{
			Name:   model + suffix + "ObjectSchema",
			Import: "../schemas/objects/" + model + suffix + ".schema",
		}
	case ActionUpsertOne:
		return Validator{
			Name:   model + "UpsertSchema",
			Import: "../schemas/" + string(c.Base) + model + ".schema",
		}
	default:
		return Validator{
			Name:   model + capitalize(string(c.Base)) + "Schema",
			Import: "../schemas/" + string(c.Base) + model + ".schema",
		}
	}
}

// Verb returns the data-access method called for the action, e.g.
// "create" for "createOne" and "findUniqueOrThrow" for itself.
func (c Classification) Verb() string {
	verb := strings.TrimSuffix(string(c.Base), "One")
	if c.Action.OrThrow() {
		verb += orThrowSuffix
	}
	return verb
}

// capitalize upper-cases the first letter and leaves the rest untouched.
func capitalize(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}
