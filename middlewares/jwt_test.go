package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lifeforge/forge/internal"
	"github.com/lifeforge/forge/middlewares"
	"github.com/lifeforge/forge/pkg/jwt"
)

const jwtTestSecret = "test-secret-at-least-32-bytes-long!!"

func newJWTService(t *testing.T, opts ...jwt.Option) *jwt.Service {
	t.Helper()
	svc, err := jwt.New(jwtTestSecret, opts...)
	require.NoError(t, err)
	return svc
}

func TestJWT(t *testing.T) {
	t.Parallel()

	t.Run("valid token passes and stores claims", func(t *testing.T) {
		t.Parallel()

		svc := newJWTService(t)
		token, err := svc.Generate("user-1")
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		c := newTestContext(httptest.NewRecorder(), r)

		mw := middlewares.JWT(svc)
		var claims *jwt.Claims
		handler := mw(func(c internal.Context) error {
			claims = middlewares.GetJWTClaims(c)
			return nil
		})

		require.NoError(t, handler(c))
		require.NotNil(t, claims)
		require.Equal(t, "user-1", claims.UserID)
	})

	t.Run("missing token returns 401", func(t *testing.T) {
		t.Parallel()

		svc := newJWTService(t)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		c := newTestContext(httptest.NewRecorder(), r)

		mw := middlewares.JWT(svc)
		handler := mw(func(c internal.Context) error {
			t.Fatal("handler should not be called")
			return nil
		})

		err := handler(c)
		require.Error(t, err)

		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("malformed token returns 401", func(t *testing.T) {
		t.Parallel()

		svc := newJWTService(t)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer not-a-token")
		c := newTestContext(httptest.NewRecorder(), r)

		mw := middlewares.JWT(svc)
		handler := mw(func(c internal.Context) error {
			t.Fatal("handler should not be called")
			return nil
		})

		err := handler(c)
		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
		require.Equal(t, "invalid token", httpErr.Message)
	})

	t.Run("expired token returns 401 with expired message", func(t *testing.T) {
		t.Parallel()

		svc := newJWTService(t, jwt.WithTTL(-time.Minute))
		token, err := svc.Generate("user-1")
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		c := newTestContext(httptest.NewRecorder(), r)

		mw := middlewares.JWT(svc)
		handler := mw(func(c internal.Context) error {
			t.Fatal("handler should not be called")
			return nil
		})

		err = handler(c)
		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
		require.Equal(t, "token expired", httpErr.Message)
	})

	t.Run("wrong signature returns 401", func(t *testing.T) {
		t.Parallel()

		signer, err := jwt.New("another-secret-that-is-32-bytes!!!!!")
		require.NoError(t, err)
		token, err := signer.Generate("user-1")
		require.NoError(t, err)

		svc := newJWTService(t)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		c := newTestContext(httptest.NewRecorder(), r)

		mw := middlewares.JWT(svc)
		handler := mw(func(c internal.Context) error {
			t.Fatal("handler should not be called")
			return nil
		})

		err = handler(c)
		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("custom extractor reads query parameter", func(t *testing.T) {
		t.Parallel()

		svc := newJWTService(t)
		token, err := svc.Generate("user-7")
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/?token="+token, nil)
		c := newTestContext(httptest.NewRecorder(), r)

		ext := internal.NewExtractor(internal.FromQuery("token"))
		mw := middlewares.JWT(svc, middlewares.WithJWTExtractor(ext))

		var claims *jwt.Claims
		handler := mw(func(c internal.Context) error {
			claims = middlewares.GetJWTClaims(c)
			return nil
		})

		require.NoError(t, handler(c))
		require.NotNil(t, claims)
		require.Equal(t, "user-7", claims.UserID)
	})
}

func TestGetJWTClaims(t *testing.T) {
	t.Parallel()

	t.Run("returns nil without middleware", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		c := newTestContext(httptest.NewRecorder(), r)
		require.Nil(t, middlewares.GetJWTClaims(c))
	})
}
