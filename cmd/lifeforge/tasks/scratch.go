// Package tasks holds background tasks for the server binary.
package tasks

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ScratchSweep removes stale upload staging directories left behind by
// interrupted requests. Completed requests clean up after themselves;
// the sweep only catches crashes and client disconnects.
type ScratchSweep struct {
	dir    string
	maxAge time.Duration
	log    *slog.Logger
}

func NewScratchSweep(dir string, log *slog.Logger) *ScratchSweep {
	return &ScratchSweep{dir: dir, maxAge: time.Hour, log: log}
}

func (t *ScratchSweep) Name() string { return "scratch_sweep" }

// Schedule runs the sweep hourly.
func (t *ScratchSweep) Schedule() string { return "0 * * * *" }

func (t *ScratchSweep) Handle(ctx context.Context) error {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-t.maxAge)
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(t.dir, entry.Name())); err != nil {
			t.log.Warn("failed to remove stale scratch entry",
				slog.String("entry", entry.Name()),
				slog.Any("error", err),
			)
			continue
		}
		removed++
	}
	if removed > 0 {
		t.log.Info("swept scratch directory", slog.Int("removed", removed))
	}
	return nil
}
