package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"updoot/internal/platform/correlation"
)

func authContext(srv *Server, headerValue string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/posts/1/vote", nil)
	if headerValue != "" {
		req.Header.Set(userIDHeader, headerValue)
	}
	rec := httptest.NewRecorder()
	return srv.echo.NewContext(req, rec), rec
}

func TestRequireAuth_SetsUserID(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	var gotUserID int64
	handler := srv.requireAuth(func(c echo.Context) error {
		gotUserID = c.Get("userID").(int64)
		return c.NoContent(http.StatusOK)
	})

	c, rec := authContext(srv, "42")
	require.NoError(t, handler(c))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, int64(42), gotUserID)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	handler := srv.requireAuth(func(c echo.Context) error {
		t.Fatal("handler must not be reached")
		return nil
	})

	c, rec := authContext(srv, "")
	_ = callHandler(handler, c)
	assert.Equal(t, 401, rec.Code)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	handler := srv.requireAuth(func(c echo.Context) error {
		t.Fatal("handler must not be reached")
		return nil
	})

	for _, raw := range []string{"abc", "-1", "0", "1.5"} {
		c, rec := authContext(srv, raw)
		_ = callHandler(handler, c)
		assert.Equal(t, 401, rec.Code, "header %q", raw)
	}
}

func TestCorrelationMiddleware_InjectsID(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	var gotID string
	handler := correlationMiddleware(func(c echo.Context) error {
		id, ok := correlation.ID(c.Request().Context())
		require.True(t, ok)
		gotID = id
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, handler(c))
	assert.Len(t, gotID, 8)
}

func TestErrorHandlingMiddleware_EchoErrorsPassThrough(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	handler := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "teapot")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	err := callHandler(handler, c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTeapot, httpErr.Code)
}
