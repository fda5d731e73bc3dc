package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/trpcgen/compiler/gen"
)

const configFile = `document: models.yaml
output: out
workers: 3
log:
  level: debug
  format: json
generator:
  withMiddleware: ../src/middleware
  withShield: false
  generateModelActions: [findMany, createOne]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trpcgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), c)
	})

	t.Run("missing required file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), true)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("file", func(t *testing.T) {
		c, err := LoadConfig(writeConfig(t, configFile), true)
		require.NoError(t, err)

		assert.Equal(t, "models.yaml", c.Document)
		assert.Equal(t, "out", c.Output)
		assert.Equal(t, 3, c.Workers)
		assert.Equal(t, "debug", c.Log.Level)
		assert.Equal(t, "json", c.Log.Format)
		assert.Equal(t, 10, c.Log.MaxSize)
		assert.Equal(t, gen.RawConfig{
			gen.KeyWithMiddleware:       "../src/middleware",
			gen.KeyWithShield:           "false",
			gen.KeyGenerateModelActions: "findMany,createOne",
		}, c.Generator)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("TRPCGEN_OUTPUT", "env-out")
		t.Setenv("TRPCGEN_DRY_RUN", "true")
		t.Setenv("TRPCGEN_LOG_LEVEL", "warn")

		c, err := LoadConfig(writeConfig(t, configFile), true)
		require.NoError(t, err)
		assert.Equal(t, "env-out", c.Output)
		assert.True(t, c.DryRun)
		assert.Equal(t, "warn", c.Log.Level)
		assert.Equal(t, "models.yaml", c.Document)
	})

	t.Run("invalid environment", func(t *testing.T) {
		t.Setenv("TRPCGEN_WORKERS", "many")
		_, err := LoadConfig("", false)
		assert.Error(t, err)
	})

	t.Run("invalid file", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "generator: [withShield]\n"), true)
		assert.ErrorContains(t, err, "generator config must be a mapping")
	})
}

func TestGenConfig(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, configFile), true)
	require.NoError(t, err)

	cfg, err := c.GenConfig()
	require.NoError(t, err)
	assert.Equal(t, gen.ExternalMiddleware("../src/middleware"), cfg.Middleware)
	assert.False(t, cfg.Shield)
	assert.True(t, cfg.Zod)
	assert.Equal(t, []gen.Action{gen.ActionFindMany, gen.ActionCreateOne}, cfg.ModelActions)
	assert.Equal(t, "out", cfg.Target)
	assert.Equal(t, "models.yaml", cfg.SchemaPath)

	c.Schema = "prisma/schema.prisma"
	cfg, err = c.GenConfig()
	require.NoError(t, err)
	assert.Equal(t, "prisma/schema.prisma", cfg.SchemaPath)

	c.Generator[gen.KeyWithZod] = "yes"
	_, err = c.GenConfig()
	assert.True(t, gen.IsConfigError(err))
}
