package service

import (
	"context"
	"log/slog"
	"time"
)

// StartAutosaveWorker implements StudyService.StartAutosaveWorker.
// It blocks until the context is cancelled, so callers run it in its own
// goroutine.
func (s *studyServiceImpl) StartAutosaveWorker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Debug("autosave worker started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("autosave worker shutting down")
			return

		case <-ticker.C:
			// Flush skips the write when nothing changed and logs its own
			// failures; the worker keeps ticking either way.
			_ = s.Flush(ctx)
		}
	}
}
