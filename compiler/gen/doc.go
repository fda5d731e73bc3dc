// Package gen generates tRPC routers from a data-model document.
//
// Every entity of the document gets a router artifact with one procedure
// per selected operation. A helpers artifact holds the tRPC instance and
// the middleware chain, and an aggregator artifact composes the entity
// routers into the application router.
//
// # Pipeline
//
//	load.Document
//	      ↓
//	hidden entities (@@Gen.model(hide: true))
//	      ↓
//	operation selection (generateModelActions, provider)
//	      ↓
//	procedure synthesis (Classify + templates)
//	      ↓
//	ArtifactSet → Writer
//
// # Error Handling
//
// The package uses structured error types:
//
//   - ConfigError: invalid configuration values
//   - AnnotationError: malformed documentation annotations
//   - OperationError: operations outside the known vocabulary
//   - EntityError: failures that drop a single entity router
//   - GenerationError: template, path and write failures
//
// Entity failures do not stop a run. Generate returns the artifacts of
// the other entities together with the joined errors:
//
//	set, err := g.Generate(ctx, doc)
//	if errors.Is(err, gen.ErrMissingProvider) {
//	    // the document has raw operations but no provider
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithTarget("./generated"),
//	    gen.WithSchemaPath("./prisma/schema.prisma"),
//	    gen.WithMiddleware(gen.ExternalMiddleware("../src/middleware")),
//	    gen.WithModelActions(gen.ActionFindMany, gen.ActionCreateOne),
//	)
//
// or from key/value pairs, as they appear in a generator block:
//
//	cfg, err := gen.ParseConfig(gen.RawConfig{
//	    "withShield":           "false",
//	    "generateModelActions": "findMany,createOne",
//	})
//
// # Generated Output
//
//	{target}/
//	└── routers/
//	    ├── helpers/
//	    │   └── createRouter.ts  // tRPC instance, middleware, base procedures
//	    ├── {Model}.router.ts    // one per generated entity
//	    └── index.ts             // appRouter
package gen
