package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sysuser/internal/apperror"
	"github.com/Skotchmaster/sysuser/internal/token"
)

func newTokens(t *testing.T, opts ...token.Option) *token.Service {
	t.Helper()
	s, err := token.New(token.Config{
		Secret:   []byte("middleware-test-secret"),
		Audience: "sysuser",
		Issuer:   "sysuser",
		Lifetime: time.Hour,
	}, opts...)
	require.NoError(t, err)
	return s
}

func issue(t *testing.T, s *token.Service) string {
	t.Helper()
	raw, err := s.Issue(token.Principal{ID: "u-1", Username: "alice1"})
	require.NoError(t, err)
	return raw
}

func run(mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users/user-info", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})(c)
	return rec, c, err
}

func TestRequire_AcceptsBothSchemes(t *testing.T) {
	t.Parallel()

	s := newTokens(t)
	raw := issue(t, s)

	for _, scheme := range []string{"Bear ", "Bearer "} {
		rec, c, err := run(Require(s), scheme+raw)
		require.NoError(t, err, scheme)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		p, ok := PrincipalFrom(c)
		require.True(t, ok)
		assert.Equal(t, "u-1", p.ID)
		assert.Equal(t, "alice1", ActorFrom(c))
	}
}

func TestRequire_Rejects(t *testing.T) {
	t.Parallel()

	s := newTokens(t)
	expired := newTokens(t, token.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))

	tests := []struct {
		name          string
		authorization string
	}{
		{name: "missing header"},
		{name: "unknown scheme", authorization: "Basic " + issue(t, s)},
		{name: "garbage", authorization: "Bearer not-a-token"},
		{name: "expired", authorization: "Bearer " + issue(t, expired)},
		{name: "tampered", authorization: "Bear " + issue(t, s) + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, c, err := run(Require(s), tt.authorization)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindAuthentication))
			assert.NotEqual(t, http.StatusNoContent, rec.Code)
			_, ok := PrincipalFrom(c)
			assert.False(t, ok)
		})
	}
}

func TestOptional(t *testing.T) {
	t.Parallel()

	s := newTokens(t)

	rec, c, err := run(Optional(s), "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, ActorFrom(c))

	rec, c, err = run(Optional(s), "Bearer "+issue(t, s))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "alice1", ActorFrom(c))

	_, _, err = run(Optional(s), "Bearer broken")
	assert.True(t, apperror.IsKind(err, apperror.KindAuthentication))
}

func TestReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "missing token", reason(nil))
	assert.Equal(t, "expired", reason(token.ErrExpired))
	assert.Equal(t, "signature invalid", reason(token.ErrSignatureInvalid))
	assert.Equal(t, "malformed token", reason(token.ErrMalformedToken))
}
