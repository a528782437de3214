// Package health serves liveness and readiness probes over HTTP.
//
// [LivenessHandler] is the always-OK process probe. [ReadinessHandler]
// runs a named set of [Checks] in parallel under a shared timeout and
// reports whether the service should receive traffic. Both handlers are
// plain http.HandlerFunc values, so they mount on any router; forge
// wires them automatically through its WithHealthChecks option.
//
// Check functions use the func(context.Context) error shape exported by
// the db, redis, and job packages:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	    "jobs":     worker.Healthcheck(),
//	}, health.WithTimeout(3*time.Second), health.WithLogger(log)))
//
// # Response formats
//
// Responses are plain text ("OK" with 200, "Service Unavailable" with
// 503) to suit Kubernetes and Docker probes. Clients that send
// Accept: application/json, or append ?format=json, get a structured
// body instead:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "postgres": {"status": "healthy"},
//	    "redis": {"status": "unhealthy", "error": "connection refused"}
//	  }
//	}
//
// A typical Kubernetes pairing points livenessProbe at /health/live and
// readinessProbe at /health/ready; Docker's HEALTHCHECK can curl the
// readiness path the same way.
package health
