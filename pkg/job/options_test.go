package job

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopTask struct{}

func (t *noopTask) Name() string { return "noop" }

func (t *noopTask) Handle(ctx context.Context, p struct{}) error {
	return nil
}

type hourlyTask struct {
	schedule string
}

func (t *hourlyTask) Name() string     { return "hourly" }
func (t *hourlyTask) Schedule() string { return t.schedule }

func (t *hourlyTask) Handle(ctx context.Context) error {
	return nil
}

func TestWithTask(t *testing.T) {
	t.Parallel()

	cfg := newConfig()
	WithTask[struct{}, *noopTask](&noopTask{})(cfg)

	executor, ok := cfg.registry.get("noop")
	assert.True(t, ok)
	assert.NotNil(t, executor)
}

func TestWithScheduledTask(t *testing.T) {
	t.Parallel()

	cfg := newConfig()
	WithScheduledTask[*hourlyTask](&hourlyTask{schedule: "0 * * * *"})(cfg)

	require.Len(t, cfg.schedules, 1)
	assert.Equal(t, "hourly", cfg.schedules[0].name)
	assert.Equal(t, "0 * * * *", cfg.schedules[0].schedule)
	assert.NotNil(t, cfg.schedules[0].handler)
}

func TestWithQueue(t *testing.T) {
	t.Parallel()

	t.Run("registers worker count", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithQueue("email", 10)(cfg)

		assert.Equal(t, 10, cfg.queues["email"])
	})

	t.Run("rejects non-positive worker counts", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithQueue("email", 0)(cfg)
		WithQueue("reports", -5)(cfg)

		assert.Empty(t, cfg.queues)
	})
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	t.Run("sets logger", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		log := slog.New(slog.NewTextHandler(os.Stdout, nil))
		WithLogger(log)(cfg)

		assert.Same(t, log, cfg.logger)
	})

	t.Run("nil leaves the existing logger", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		cfg.logger = slog.Default()
		WithLogger(nil)(cfg)

		assert.Same(t, slog.Default(), cfg.logger)
	})
}

func TestWithMaxWorkers(t *testing.T) {
	t.Parallel()

	t.Run("sets count", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithMaxWorkers(50)(cfg)

		assert.Equal(t, 50, cfg.maxWorkers)
	})

	t.Run("rejects non-positive counts", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		cfg.maxWorkers = 100
		WithMaxWorkers(0)(cfg)
		WithMaxWorkers(-10)(cfg)

		assert.Equal(t, 100, cfg.maxWorkers)
	})
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := newConfig()

	assert.NotNil(t, cfg.registry)
	assert.NotNil(t, cfg.queues)
	assert.Empty(t, cfg.schedules)
	assert.Nil(t, cfg.logger)
	assert.Equal(t, 0, cfg.maxWorkers)
}
