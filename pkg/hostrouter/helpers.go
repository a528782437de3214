package hostrouter

import (
	"net/http"
	"strings"
)

// GetDomain returns the request's host, lowercased and without the
// port. Bracketed IPv6 literals keep their brackets.
func GetDomain(r *http.Request) string {
	return normalizeHost(r.Host)
}

// GetSubdomain returns the subdomain portion of the request host
// relative to baseDomain: "bar.foo.example.com" against "example.com"
// yields "bar.foo". The result is empty when the host equals the base
// domain or belongs to a different one.
func GetSubdomain(r *http.Request, baseDomain string) string {
	host := normalizeHost(r.Host)
	base := strings.ToLower(baseDomain)
	if host == base {
		return ""
	}
	sub, ok := strings.CutSuffix(host, "."+base)
	if !ok {
		return ""
	}
	return sub
}
