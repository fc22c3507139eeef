package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"portfolio/internal/analytics"
	"portfolio/internal/storage"
)

// Pruner is implemented by recorders that can drop old events.
type Pruner interface {
	Prune(cutoff time.Time) (int, error)
}

// DailyReport returns a report function that logs the last 24 hours of chat
// runs and, when the recorder supports it, drops events older than
// retention. A zero retention keeps everything.
func DailyReport(rec storage.Recorder, retention time.Duration, now func() time.Time) func(ctx context.Context) error {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		events, err := rec.LoadEvents()
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		end := now().UTC()
		stats := analytics.AnalyzeWindow(events, end.Add(-24*time.Hour), end)
		log.Printf("📊 %s", stats.GenerateReportSummary())

		if p, ok := rec.(Pruner); ok && retention > 0 {
			removed, err := p.Prune(end.Add(-retention))
			if err != nil {
				return fmt.Errorf("prune events: %w", err)
			}
			if removed > 0 {
				log.Printf("🧹 Pruned %d chat events older than %s", removed, retention)
			}
		}
		return nil
	}
}
