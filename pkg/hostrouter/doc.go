// Package hostrouter routes HTTP requests by the Host header so one
// process can serve several apps under different domains.
//
// Patterns are either exact ("api.example.com") or wildcard
// ("*.example.com", any subdomain). Exact beats wildcard; matching is
// case-insensitive and ignores the port, including on bracketed IPv6
// hosts. Requests matching no pattern fall through to the fallback
// handler.
//
//	router := hostrouter.New(hostrouter.Routes{
//	    "api.example.com": apiApp.Router(),
//	    "*.example.com":   tenantApp.Router(),
//	}, defaultApp.Router())
//	http.ListenAndServe(":8080", router)
//
// The runtime's Domain and Fallback options use this package under the
// hood.
package hostrouter
