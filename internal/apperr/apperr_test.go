package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("assign: %w", NotFound("ticket %d not found", 7))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestGatewayUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Gateway(cause, "list tickets")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrGateway)
	assert.Equal(t, http.StatusBadGateway, err.Kind.Status())
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFromStatus(t *testing.T) {
	assert.Equal(t, KindValidation, FromStatus(http.StatusBadRequest, "bad").Kind)
	assert.Equal(t, KindNotFound, FromStatus(http.StatusNotFound, "").Kind)
	assert.Equal(t, KindAuthorization, FromStatus(http.StatusForbidden, "").Kind)
	assert.Equal(t, KindAuthorization, FromStatus(http.StatusUnauthorized, "").Kind)
	assert.Equal(t, KindGateway, FromStatus(http.StatusInternalServerError, "").Kind)
	assert.Equal(t, "Not Found", FromStatus(http.StatusNotFound, "").Message)
}

func TestResponse(t *testing.T) {
	b := Forbidden("admin only").Response()
	assert.Equal(t, "FORBIDDEN", b.Error.Code)
	assert.Equal(t, "admin only", b.Error.Message)
}
