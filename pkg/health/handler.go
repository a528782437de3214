package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LivenessHandler answers OK unconditionally. Liveness only asserts the
// process is up; dependencies belong in the readiness probe.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if acceptsJSON(r) {
			writeJSON(w, http.StatusOK, &Response{Status: StatusHealthy})
			return
		}
		writePlain(w, http.StatusOK, "OK")
	}
}

// ReadinessHandler runs the given checks on every request and answers
// 200 when all pass or 503 when any fail, in plain text or JSON by
// content negotiation.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	s := newSettings(opts...)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := evaluate(r.Context(), checks, s)

		status, body := http.StatusOK, "OK"
		if resp.Status == StatusUnhealthy {
			status, body = http.StatusServiceUnavailable, "Service Unavailable"
		}

		if acceptsJSON(r) {
			writeJSON(w, status, resp)
			return
		}
		writePlain(w, status, body)
	}
}

// acceptsJSON honors both ?format=json, which is handy from a browser,
// and the Accept header.
func acceptsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writePlain(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
