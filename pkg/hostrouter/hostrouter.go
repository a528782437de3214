package hostrouter

import (
	"net/http"
	"strings"
)

// Routes maps host patterns to handlers. A pattern is either an exact
// host ("api.example.com") or a wildcard over subdomains
// ("*.example.com").
type Routes map[string]http.Handler

// Router dispatches requests on the Host header. Exact patterns win
// over wildcards; unmatched hosts go to the fallback handler.
type Router struct {
	exact    map[string]http.Handler
	wildcard map[string]http.Handler // keyed by base domain, "*." stripped
	fallback http.Handler
}

// New builds a host router. Patterns are trimmed and lowercased;
// empty patterns are ignored.
func New(routes Routes, fallback http.Handler) *Router {
	r := &Router{
		exact:    make(map[string]http.Handler, len(routes)),
		wildcard: make(map[string]http.Handler),
		fallback: fallback,
	}
	for pattern, handler := range routes {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "":
		case strings.HasPrefix(pattern, "*."):
			r.wildcard[pattern[2:]] = handler
		default:
			r.exact[pattern] = handler
		}
	}
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	host := normalizeHost(req.Host)

	if h, ok := r.exact[host]; ok {
		h.ServeHTTP(w, req)
		return
	}
	if _, domain, ok := strings.Cut(host, "."); ok {
		if h, ok := r.wildcard[domain]; ok {
			h.ServeHTTP(w, req)
			return
		}
	}
	r.fallback.ServeHTTP(w, req)
}

// normalizeHost lowercases the host and strips a trailing port while
// keeping bracketed IPv6 literals intact.
func normalizeHost(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	return strings.ToLower(host)
}
