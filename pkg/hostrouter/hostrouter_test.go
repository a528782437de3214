package hostrouter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifeforge/forge/pkg/hostrouter"
)

// textHandler writes body as the whole response.
func textHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})
}

// serveHost routes a request with the given Host header and returns the recorder.
func serveHost(router http.Handler, host string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = host
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouterExactHost(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(hostrouter.Routes{
		"example.com": textHandler("example"),
		"other.com":   textHandler("other"),
	}, http.NotFoundHandler())

	cases := map[string]struct {
		host     string
		wantBody string
		wantCode int
	}{
		"exact match":       {host: "example.com", wantBody: "example", wantCode: 200},
		"exact match other": {host: "other.com", wantBody: "other", wantCode: 200},
		"case insensitive":  {host: "Example.COM", wantBody: "example", wantCode: 200},
		"with port":         {host: "example.com:8080", wantBody: "example", wantCode: 200},
		"no match":          {host: "unknown.com", wantBody: "404 page not found\n", wantCode: 404},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serveHost(router, tc.host)
			require.Equal(t, tc.wantCode, rec.Code)
			require.Equal(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestRouterWildcardHost(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(hostrouter.Routes{
		"*.example.com":        textHandler("wildcard"),
		"specific.example.com": textHandler("specific"),
	}, http.NotFoundHandler())

	cases := map[string]struct {
		host     string
		wantBody string
		wantCode int
	}{
		"exact beats wildcard":      {host: "specific.example.com", wantBody: "specific", wantCode: 200},
		"wildcard foo":              {host: "foo.example.com", wantBody: "wildcard", wantCode: 200},
		"wildcard bar":              {host: "bar.example.com", wantBody: "wildcard", wantCode: 200},
		"wildcard case insensitive": {host: "FOO.Example.COM", wantBody: "wildcard", wantCode: 200},
		"root domain not covered":   {host: "example.com", wantBody: "404 page not found\n", wantCode: 404},
		"other domain not covered":  {host: "other.com", wantBody: "404 page not found\n", wantCode: 404},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serveHost(router, tc.host)
			require.Equal(t, tc.wantCode, rec.Code)
			require.Equal(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestRouterFallback(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(hostrouter.Routes{
		"api.example.com": textHandler("api"),
	}, textHandler("default"))

	cases := map[string]struct {
		host     string
		wantBody string
	}{
		"mapped host":    {host: "api.example.com", wantBody: "api"},
		"sibling host":   {host: "www.example.com", wantBody: "default"},
		"unrelated host": {host: "unknown.com", wantBody: "default"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serveHost(router, tc.host)
			require.Equal(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestRouterEmptyRoutes(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(hostrouter.Routes{}, textHandler("fallback"))
	rec := serveHost(router, "example.com")
	require.Equal(t, "fallback", rec.Body.String())
}

func TestRouterIPv6Host(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(hostrouter.Routes{
		"[::1]": textHandler("ipv6"),
	}, http.NotFoundHandler())

	// Bracketed IPv6 hosts keep their brackets after the port strip.
	rec := serveHost(router, "[::1]")
	require.Equal(t, "ipv6", rec.Body.String())
}
