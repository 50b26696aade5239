package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStoreClassification(t *testing.T) {
	assert.Equal(t, KindConflict, Store(gorm.ErrDuplicatedKey).Kind)
	assert.Equal(t, KindNotFound, Store(fmt.Errorf("wrap: %w", gorm.ErrRecordNotFound)).Kind)

	raw := errors.New("deadlock detected")
	e := Store(raw)
	assert.Equal(t, KindStore, e.Kind)
	assert.Equal(t, "deadlock detected", e.Message)
	assert.ErrorIs(t, e, raw)

	v := Validation("isim zorunlu")
	assert.Same(t, v, Store(v))
}

func TestRetryable(t *testing.T) {
	err := Retryable(gorm.ErrDuplicatedKey)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, KindConflict, KindOf(err))

	assert.False(t, IsRetryable(Retryable(errors.New("connection reset"))))
}

func TestToFiber(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{Validation("x"), fiber.StatusBadRequest},
		{NotFound("x"), fiber.StatusNotFound},
		{Conflict("x"), fiber.StatusConflict},
		{Forbidden("x"), fiber.StatusForbidden},
		{Store(errors.New("fk")), fiber.StatusUnprocessableEntity},
		{errors.New("panic-ish"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, ToFiber(tc.err).Code, tc.err.Error())
	}
	assert.Equal(t, UnexpectedMessage, ToFiber(errors.New("boom")).Message)
}
