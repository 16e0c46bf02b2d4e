package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugtracker/internal/apperr"
	"bugtracker/internal/models"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("ticket id", " 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "x", "1.5", "9999999999999999999999"} {
		_, err := ParseID("ticket id", bad)
		assert.True(t, errors.Is(err, apperr.ErrValidation), "input %q", bad)
	}
}

func TestQueryInt(t *testing.T) {
	q := url.Values{"page": {"3"}, "size": {"abc"}}
	assert.Equal(t, 3, QueryInt(q, "page", 1))
	assert.Equal(t, 10, QueryInt(q, "size", 10))
	assert.Equal(t, 7, QueryInt(q, "missing", 7))
}

func TestJWTRoundTrip(t *testing.T) {
	tok, err := SignJWT("s3cret", 9, models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	c, err := ParseJWT("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, models.Actor{UserID: 9, Role: models.RoleAdmin}, c.Actor())

	_, err = ParseJWT("other", tok)
	assert.Error(t, err)

	a, err := ActorFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(9), a.UserID)

	_, err = ActorFromToken("not-a-token")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestExpiredJWT(t *testing.T) {
	tok, err := SignJWT("s3cret", 9, models.RoleUser, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT("s3cret", tok)
	assert.Error(t, err)
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, apperr.NotFound("ticket 3 not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"ticket 3 not found"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Fail(rec, errors.New("pq: secret detail"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestActorContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := ActorFrom(r.Context())
	assert.False(t, ok)

	ctx := WithActor(r.Context(), models.Actor{UserID: 2, Role: models.RoleUser})
	a, ok := ActorFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(2), a.UserID)
}
