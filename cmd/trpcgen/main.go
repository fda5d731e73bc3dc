// trpcgen generates tRPC routers from a data-model document.
//
// Usage:
//
//	trpcgen [flags]
//
// Options are read from the config file, the TRPCGEN_* environment
// variables and the flags, in this order of increasing precedence.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/syssam/trpcgen/compiler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "trpcgen: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fset := flag.NewFlagSet("trpcgen", flag.ContinueOnError)
	fset.SetOutput(stderr)
	var (
		configPath = fset.String("config", "trpcgen.yaml", "path to the config file")
		document   = fset.String("document", "", "path to the data-model document (json or yaml)")
		schema     = fset.String("schema", "", "schema file that module paths are relative to (default: the document)")
		output     = fset.String("output", "", "output directory")
		workers    = fset.Int("workers", 0, "number of parallel workers (default: GOMAXPROCS)")
		watch      = fset.Bool("watch", false, "regenerate when the document or the config file changes")
		dryRun     = fset.Bool("dry-run", false, "generate without writing files")
		logLevel   = fset.String("log-level", "", "log level")
		logFormat  = fset.String("log-format", "", "log format: text or json")
		logFile    = fset.String("log-file", "", "also log to this rotated file")
	)
	if err := fset.Parse(args); err != nil {
		return err
	}
	explicit := make(map[string]bool)
	fset.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	cfg, err := LoadConfig(*configPath, explicit["config"])
	if err != nil {
		return err
	}
	set := func(name string, apply func()) {
		if explicit[name] {
			apply()
		}
	}
	set("document", func() { cfg.Document = *document })
	set("schema", func() { cfg.Schema = *schema })
	set("output", func() { cfg.Output = *output })
	set("workers", func() { cfg.Workers = *workers })
	set("dry-run", func() { cfg.DryRun = *dryRun })
	set("log-level", func() { cfg.Log.Level = *logLevel })
	set("log-format", func() { cfg.Log.Format = *logFormat })
	set("log-file", func() { cfg.Log.File = *logFile })

	logger, closer, err := NewLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	if !*watch {
		return generate(ctx, cfg, logger)
	}
	reload := func() (*Config, error) {
		c, err := LoadConfig(*configPath, explicit["config"])
		if err != nil {
			return nil, err
		}
		c.Document, c.Schema, c.Output, c.Workers, c.DryRun = cfg.Document, cfg.Schema, cfg.Output, cfg.Workers, cfg.DryRun
		return c, nil
	}
	return Watch(ctx, logger, []string{cfg.Document, *configPath}, func() error {
		c, err := reload()
		if err != nil {
			return err
		}
		return generate(ctx, c, logger)
	})
}

// generate runs one generation.
func generate(ctx context.Context, cfg *Config, logger *logrus.Logger) error {
	genCfg, err := cfg.GenConfig()
	if err != nil {
		return err
	}
	log := logger.WithFields(logrus.Fields{
		"run":      uuid.NewString(),
		"document": cfg.Document,
	})
	opts := []compiler.Option{
		compiler.WithIntrospector(compiler.DocumentFile(cfg.Document)),
		compiler.WithLogger(log),
		compiler.WithWorkers(cfg.Workers),
	}
	if cfg.DryRun {
		opts = append(opts, compiler.WithDryRun())
	}
	set, err := compiler.Generate(ctx, genCfg, opts...)
	if set != nil {
		log.WithField("artifacts", set.Paths()).Debug("generation finished")
	}
	return err
}
