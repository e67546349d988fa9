package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfThroughWrapping(t *testing.T) {
	err := fmt.Errorf("deleting hive: %w", NotFound("colmena", "abc"))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnavailable(err))
	assert.Equal(t, "colmena abc not found", errors.Unwrap(err).Error())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, IsNotFound(nil))
}

func TestExtensions(t *testing.T) {
	err := Invalid("cosecha", "humedad", "humedad must be between 0 and 100")

	ext := err.Extensions()
	assert.Equal(t, "INVALID_INPUT", ext["code"])
	assert.Equal(t, "cosecha", ext["entity"])
	assert.Equal(t, "humedad", ext["field"])
	assert.NotContains(t, ext, "id")
	assert.Equal(t, "humedad must be between 0 and 100", err.Error())
}

func TestCodeRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindInternal, KindNotFound, KindInvalidInput, KindUnauthorized, KindUnavailable} {
		assert.Equal(t, k, KindFromCode(k.String()))
	}
	assert.Equal(t, KindInternal, KindFromCode("SOMETHING_ELSE"))
}

func TestUnavailableWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("insumo", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "insumo store unavailable: connection refused", err.Error())
}
