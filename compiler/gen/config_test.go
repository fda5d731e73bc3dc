package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseConfig(t *testing.T) {
	t.Run("empty input gives the defaults", func(t *testing.T) {
		c, err := ParseConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), c)
	})

	t.Run("all keys", func(t *testing.T) {
		c, err := ParseConfig(RawConfig{
			KeyWithMiddleware:           "../../src/middleware",
			KeyWithShield:               "false",
			KeyWithZod:                  "false",
			KeyContextPath:              "../src/context",
			KeyTRPCOptionsPath:          "../src/trpcOptions",
			KeyShowModelNameInProcedure: "false",
			KeyGenerateModelActions:     " findUnique, createOne ,findUnique",
			"unknownKey":                "ignored",
		})
		require.NoError(t, err)

		assert.Equal(t, ExternalMiddleware("../../src/middleware"), c.Middleware)
		assert.False(t, c.Shield)
		assert.False(t, c.Zod)
		assert.Equal(t, "../src/context", c.ContextPath)
		assert.Equal(t, "../src/trpcOptions", c.TRPCOptionsPath)
		assert.False(t, c.ShowModelNameInProcedure)
		assert.Equal(t, []Action{ActionFindUnique, ActionCreateOne}, c.ModelActions)
	})

	t.Run("middleware values", func(t *testing.T) {
		for v, want := range map[string]MiddlewareSource{
			"true":          DefaultMiddleware(),
			"false":         NoMiddleware(),
			"./middleware":  ExternalMiddleware("./middleware"),
			"../../src/mw2": ExternalMiddleware("../../src/mw2"),
		} {
			c, err := ParseConfig(RawConfig{KeyWithMiddleware: v})
			require.NoError(t, err)
			assert.Equal(t, want, c.Middleware, v)
		}
	})

	t.Run("options override raw values", func(t *testing.T) {
		c, err := ParseConfig(RawConfig{KeyWithZod: "true"}, WithZod(false), WithTarget("out"))
		require.NoError(t, err)
		assert.False(t, c.Zod)
		assert.Equal(t, "out", c.Target)
	})

	t.Run("invalid values are all reported", func(t *testing.T) {
		_, err := ParseConfig(RawConfig{
			KeyWithShield:           "yes",
			KeyWithZod:              "1",
			KeyGenerateModelActions: "findUnique,findEverything",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "withShield")
		assert.Contains(t, err.Error(), "withZod")
		assert.Contains(t, err.Error(), "findEverything")
	})

	t.Run("empty action list", func(t *testing.T) {
		_, err := ParseConfig(RawConfig{KeyGenerateModelActions: ""})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestRawConfigYAML(t *testing.T) {
	t.Run("scalars and sequences", func(t *testing.T) {
		var raw RawConfig
		err := yaml.Unmarshal([]byte(`
withMiddleware: false
withZod: "true"
generateModelActions: [findMany, createOne]
`), &raw)
		require.NoError(t, err)
		assert.Equal(t, RawConfig{
			KeyWithMiddleware:       "false",
			KeyWithZod:              "true",
			KeyGenerateModelActions: "findMany,createOne",
		}, raw)

		c, err := ParseConfig(raw)
		require.NoError(t, err)
		assert.False(t, c.Middleware.Enabled())
		assert.Equal(t, []Action{ActionFindMany, ActionCreateOne}, c.ModelActions)
	})

	t.Run("rejects nested mappings", func(t *testing.T) {
		var raw RawConfig
		err := yaml.Unmarshal([]byte("withZod:\n  enabled: true\n"), &raw)
		assert.ErrorContains(t, err, "expect scalar or sequence")
	})

	t.Run("rejects non mappings", func(t *testing.T) {
		var raw RawConfig
		err := yaml.Unmarshal([]byte("- withZod\n"), &raw)
		assert.ErrorContains(t, err, "must be a mapping")
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		option string
	}{
		{"no actions", func(c *Config) { c.ModelActions = nil }, "generateModelActions"},
		{"unknown action", func(c *Config) { c.ModelActions = []Action{"findEverything"} }, "generateModelActions"},
		{"no context path", func(c *Config) { c.ContextPath = "" }, "contextPath"},
		{"external middleware without path", func(c *Config) { c.Middleware = MiddlewareSource{Mode: MiddlewareExternal} }, "withMiddleware"},
		{"no target", func(c *Config) { c.Target = "" }, "output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(c)
			err := c.Validate()

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.option, cfgErr.Option)
		})
	}
}

func TestActionEnabled(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Apply(WithModelActions(ActionFindUnique, "findFirstOrThrow")))

	assert.True(t, c.ActionEnabled(ActionFindUnique))
	assert.True(t, c.ActionEnabled("findUniqueOrThrow"))
	assert.True(t, c.ActionEnabled("findFirstOrThrow"))
	assert.False(t, c.ActionEnabled(ActionFindFirst))
	assert.False(t, c.ActionEnabled(ActionCreateOne))
}

func TestMiddlewareSource(t *testing.T) {
	assert.Equal(t, "false", NoMiddleware().String())
	assert.Equal(t, "true", DefaultMiddleware().String())
	assert.Equal(t, "./mw", ExternalMiddleware("./mw").String())
	assert.False(t, NoMiddleware().Enabled())
	assert.True(t, ExternalMiddleware("./mw").Enabled())
}
