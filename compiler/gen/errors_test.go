package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("withShield", "yes", `expect "true" or "false"`)

		assert.Contains(t, err.Error(), "trpcgen: config error")
		assert.Contains(t, err.Error(), "withShield")
		assert.Contains(t, err.Error(), "yes")
		assert.Contains(t, err.Error(), `expect "true" or "false"`)
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("contextPath", nil, "cannot be empty")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is matches ErrInvalidConfig", func(t *testing.T) {
		err := NewConfigError("contextPath", nil, "")
		assert.True(t, errors.Is(err, ErrInvalidConfig))
		assert.False(t, errors.Is(err, ErrGenerationFailed))
	})

	t.Run("IsConfigError helper", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", NewConfigError("output", nil, "test"))
		assert.True(t, IsConfigError(err))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestAnnotationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("bad literal")
		err := &AnnotationError{Entity: "User", Pos: 14, Message: "invalid number", Cause: cause}

		assert.Contains(t, err.Error(), "trpcgen: annotation error")
		assert.Contains(t, err.Error(), "on entity User")
		assert.Contains(t, err.Error(), "at offset 14")
		assert.Contains(t, err.Error(), "invalid number")
		assert.Contains(t, err.Error(), "bad literal")
	})

	t.Run("Error message without entity", func(t *testing.T) {
		err := &AnnotationError{Pos: 3, Message: "expected ')'"}
		assert.NotContains(t, err.Error(), "on entity")
	})

	t.Run("Unwrap and Is", func(t *testing.T) {
		cause := errors.New("root cause")
		err := &AnnotationError{Cause: cause}

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrInvalidAnnotation))
		assert.True(t, IsAnnotationError(err))
	})
}

func TestOperationError(t *testing.T) {
	t.Run("Error message with entity", func(t *testing.T) {
		err := &OperationError{Entity: "User", Action: "findEverything"}
		assert.Equal(t, `trpcgen: unknown operation "findEverything" on entity User`, err.Error())
	})

	t.Run("Error message without entity", func(t *testing.T) {
		err := &OperationError{Action: "findEverything"}
		assert.Equal(t, `trpcgen: unknown operation "findEverything"`, err.Error())
	})

	t.Run("Is matches ErrUnknownOperation", func(t *testing.T) {
		err := &OperationError{Action: "x"}
		assert.True(t, errors.Is(err, ErrUnknownOperation))
		assert.True(t, IsOperationError(err))
		assert.False(t, IsOperationError(errors.New("other")))
	})
}

func TestEntityError(t *testing.T) {
	t.Run("Error message", func(t *testing.T) {
		err := NewEntityError("Book", "raw operation findRaw", ErrMissingProvider)

		assert.Contains(t, err.Error(), "trpcgen: entity Book")
		assert.Contains(t, err.Error(), "raw operation findRaw")
		assert.Contains(t, err.Error(), ErrMissingProvider.Error())
	})

	t.Run("Is reaches the cause", func(t *testing.T) {
		err := fmt.Errorf("run: %w", NewEntityError("Book", "", ErrMissingProvider))

		assert.True(t, errors.Is(err, ErrMissingProvider))
		assert.False(t, errors.Is(err, ErrGenerationFailed))
		assert.True(t, IsEntityError(err))
	})
}

func TestGenerationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewGenerationError("write", "routers/index.ts", "write file", cause)

		assert.Contains(t, err.Error(), "trpcgen: generation error")
		assert.Contains(t, err.Error(), "in phase write")
		assert.Contains(t, err.Error(), "(file: routers/index.ts)")
		assert.Contains(t, err.Error(), "write file")
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("Error message with phase only", func(t *testing.T) {
		err := &GenerationError{Phase: "template"}
		assert.Equal(t, "trpcgen: generation error in phase template", err.Error())
	})

	t.Run("Unwrap and Is", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewGenerationError("", "", "", cause)

		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrGenerationFailed))
		assert.True(t, IsGenerationError(err))
		assert.False(t, IsGenerationError(errors.New("other")))
	})
}
