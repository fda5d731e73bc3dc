package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithHeader(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		c := &Config{}
		err := WithHeader("// Custom header")(c)

		require.NoError(t, err)
		assert.Equal(t, "// Custom header", c.Header)
	})

	t.Run("empty header is allowed", func(t *testing.T) {
		c := &Config{Header: "existing"}
		err := WithHeader("")(c)

		require.NoError(t, err)
		assert.Equal(t, "", c.Header)
	})
}

func TestWithMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		source  MiddlewareSource
		wantErr bool
	}{
		{"none", NoMiddleware(), false},
		{"default", DefaultMiddleware(), false},
		{"external", ExternalMiddleware("../src/middleware"), false},
		{"external without path", MiddlewareSource{Mode: MiddlewareExternal}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithMiddleware(tt.source)(c)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.source, c.Middleware)
		})
	}
}

func TestWithToggles(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Apply(WithShield(false), WithZod(false), WithModelNameInProcedure(false)))

	assert.False(t, c.Shield)
	assert.False(t, c.Zod)
	assert.False(t, c.ShowModelNameInProcedure)
}

func TestWithPaths(t *testing.T) {
	t.Run("context path", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithContextPath("../src/context")(c))
		assert.Equal(t, "../src/context", c.ContextPath)
		assert.True(t, IsConfigError(WithContextPath("")(c)))
	})

	t.Run("trpc options path can be removed", func(t *testing.T) {
		c := &Config{TRPCOptionsPath: "../src/options"}
		require.NoError(t, WithTRPCOptionsPath("")(c))
		assert.Empty(t, c.TRPCOptionsPath)
	})

	t.Run("target", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithTarget("out")(c))
		assert.True(t, IsConfigError(WithTarget("")(c)))
	})

	t.Run("schema path", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithSchemaPath("prisma/schema.prisma")(c))
		assert.Equal(t, "prisma/schema.prisma", c.SchemaPath)
		assert.True(t, IsConfigError(WithSchemaPath("")(c)))
	})
}

func TestWithModelActions(t *testing.T) {
	t.Run("copies the actions", func(t *testing.T) {
		actions := []Action{ActionFindMany, ActionCreateOne}
		c := &Config{}
		require.NoError(t, WithModelActions(actions...)(c))

		actions[0] = ActionDeleteOne
		assert.Equal(t, []Action{ActionFindMany, ActionCreateOne}, c.ModelActions)
	})

	t.Run("empty list", func(t *testing.T) {
		err := WithModelActions()(&Config{})
		assert.True(t, IsConfigError(err))
	})

	t.Run("unknown action", func(t *testing.T) {
		err := WithModelActions(ActionFindMany, "findEverything")(&Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "findEverything")
	})

	t.Run("OrThrow variants are accepted", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithModelActions("findUniqueOrThrow")(c))
	})
}

func TestApply(t *testing.T) {
	t.Run("stops at the first error", func(t *testing.T) {
		c := DefaultConfig()
		err := c.Apply(WithContextPath(""), WithShield(false))

		require.Error(t, err)
		assert.True(t, c.Shield)
	})

	t.Run("ApplyAll collects errors", func(t *testing.T) {
		c := DefaultConfig()
		err := c.ApplyAll(WithContextPath(""), WithShield(false), WithTarget(""))

		require.Error(t, err)
		assert.False(t, c.Shield)
		var joined interface{ Unwrap() []error }
		require.True(t, errors.As(err, &joined))
		assert.Len(t, joined.Unwrap(), 2)
	})
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, DefaultMiddleware(), c.Middleware)
		assert.True(t, c.Shield)
		assert.True(t, c.Zod)
		assert.Equal(t, DefaultContextPath, c.ContextPath)
		assert.True(t, c.ShowModelNameInProcedure)
		assert.Equal(t, AllActions, c.ModelActions)
		assert.Equal(t, DefaultHeader, c.Header)
	})

	t.Run("invalid option", func(t *testing.T) {
		_, err := NewConfig(WithTarget(""))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("MustNewConfig panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNewConfig(WithModelActions()) })
		assert.NotPanics(t, func() { MustNewConfig(WithZod(false)) })
	})
}
