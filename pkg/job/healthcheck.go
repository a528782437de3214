package job

import (
	"context"
	"errors"
)

// ErrHealthcheckFailed marks a failed job manager probe.
var ErrHealthcheckFailed = errors.New("job: healthcheck failed")

var (
	errManagerNil        = errors.New("manager is nil")
	errManagerNotStarted = errors.New("manager not started")
)

func (m *Manager) running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Healthcheck builds a probe, compatible with health.CheckFunc, that
// confirms the manager is started and its pool answers pings. River
// rides the same pool, so a successful ping also covers its access to
// the job tables.
//
//	forge.WithHealthChecks(
//	    forge.WithReadinessCheck("jobs", job.Healthcheck(manager)),
//	)
func Healthcheck(m *Manager) func(ctx context.Context) error {
	if m == nil {
		return func(context.Context) error {
			return errors.Join(ErrHealthcheckFailed, errManagerNil)
		}
	}
	return func(ctx context.Context) error {
		if !m.running() {
			return errors.Join(ErrHealthcheckFailed, errManagerNotStarted)
		}
		if err := m.pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
