package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lifeforge/forge/internal"
	"github.com/lifeforge/forge/middlewares"
)

// runCORS sends a request with the given origin through the middleware
// and reports the recorded response plus whether the inner handler ran.
func runCORS(t *testing.T, mw internal.Middleware, method, origin string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", "POST")
	}
	rec := httptest.NewRecorder()

	called := false
	handler := mw(func(c internal.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(newTestContext(rec, req)))
	return rec, called
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("default config allows any origin", func(t *testing.T) {
		t.Parallel()

		rec, _ := runCORS(t, middlewares.CORS(), http.MethodGet, "http://example.com")
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("non-CORS request gets no headers", func(t *testing.T) {
		t.Parallel()

		rec, called := runCORS(t, middlewares.CORS(), http.MethodGet, "")
		require.True(t, called)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("static origin list", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithAllowOrigins("http://allowed.com", "http://also-allowed.com"),
		)

		t.Run("listed origin is echoed", func(t *testing.T) {
			t.Parallel()

			rec, _ := runCORS(t, mw, http.MethodGet, "http://allowed.com")
			require.Equal(t, "http://allowed.com", rec.Header().Get("Access-Control-Allow-Origin"))
		})

		t.Run("unlisted origin gets no headers", func(t *testing.T) {
			t.Parallel()

			rec, called := runCORS(t, mw, http.MethodGet, "http://blocked.com")
			require.True(t, called)
			require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	})

	t.Run("origin func replaces static list", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithAllowOrigins("http://static.com"),
			middlewares.WithAllowOriginFunc(func(origin string) bool {
				return origin == "http://dynamic.com"
			}),
		)

		t.Run("func decides allow", func(t *testing.T) {
			t.Parallel()

			rec, _ := runCORS(t, mw, http.MethodGet, "http://dynamic.com")
			require.Equal(t, "http://dynamic.com", rec.Header().Get("Access-Control-Allow-Origin"))
		})

		t.Run("static list is ignored", func(t *testing.T) {
			t.Parallel()

			rec, _ := runCORS(t, mw, http.MethodGet, "http://static.com")
			require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	})

	t.Run("origin func rejecting everything", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithAllowOriginFunc(func(string) bool { return false }),
		)

		rec, _ := runCORS(t, mw, http.MethodGet, "http://any.com")
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits with 204", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithAllowMethods("GET", "POST", "PUT"),
			middlewares.WithAllowHeaders("Content-Type", "X-Custom-Header"),
			middlewares.WithMaxAge(time.Hour),
		)

		rec, called := runCORS(t, mw, http.MethodOptions, "http://example.com")
		require.False(t, called)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "GET, POST, PUT", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "Content-Type, X-Custom-Header", rec.Header().Get("Access-Control-Allow-Headers"))
		require.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(middlewares.WithAllowCredentials())

		rec, _ := runCORS(t, mw, http.MethodGet, "http://example.com")
		require.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("expose headers", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithExposeHeaders("X-Custom-Response", "X-Request-Id"),
		)

		rec, _ := runCORS(t, mw, http.MethodGet, "http://example.com")
		require.Equal(t, "X-Custom-Response, X-Request-Id", rec.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("Vary includes Origin on simple requests", func(t *testing.T) {
		t.Parallel()

		rec, _ := runCORS(t, middlewares.CORS(), http.MethodGet, "http://example.com")
		require.Contains(t, rec.Header().Values("Vary"), "Origin")
	})

	t.Run("Vary includes preflight request headers", func(t *testing.T) {
		t.Parallel()

		rec, _ := runCORS(t, middlewares.CORS(), http.MethodOptions, "http://example.com")

		vary := rec.Header().Values("Vary")
		require.Contains(t, vary, "Origin")
		require.Contains(t, vary, "Access-Control-Request-Method")
		require.Contains(t, vary, "Access-Control-Request-Headers")
	})

	t.Run("all options together", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithAllowOrigins("http://app.example.com"),
			middlewares.WithAllowMethods("GET", "POST"),
			middlewares.WithAllowHeaders("Content-Type", "Authorization"),
			middlewares.WithExposeHeaders("X-Request-Id"),
			middlewares.WithAllowCredentials(),
			middlewares.WithMaxAge(30*time.Minute),
		)

		rec, _ := runCORS(t, mw, http.MethodOptions, "http://app.example.com")
		require.Equal(t, "http://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		require.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
		require.Equal(t, "X-Request-Id", rec.Header().Get("Access-Control-Expose-Headers"))
		require.Equal(t, "1800", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("actual request reaches the handler", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://example.com")
		rec := httptest.NewRecorder()

		handler := middlewares.CORS()(func(c internal.Context) error {
			return c.String(http.StatusOK, "response")
		})

		require.NoError(t, handler(newTestContext(rec, req)))
		require.Equal(t, "response", rec.Body.String())
	})

	t.Run("non-wildcard list never sends asterisk", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.CORS(
			middlewares.WithAllowOrigins("http://app1.example.com", "http://app2.example.com"),
		)

		rec, _ := runCORS(t, mw, http.MethodGet, "http://app1.example.com")
		require.Equal(t, "http://app1.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
