package app

import (
	"context"
	"fmt"
	"time"

	"litemq/internal/broker"
	"litemq/pkg/logger"

	"github.com/adhocore/gronx"
)

// startStatsHeartbeat launches a cron-scheduled goroutine that logs
// per-queue depth on the configured schedule. Adapted from the teacher's
// retention sweep scheduler (internal/retention/retention.go), repurposed
// from data retention to a read-only depth heartbeat since LiteMQ has no
// TTL or retention feature to run. A blank cronExpr disables the
// heartbeat entirely.
func startStatsHeartbeat(ctx context.Context, b *broker.Broker, cronExpr string) error {
	if cronExpr == "" {
		logger.Info("stats_heartbeat_disabled")
		return nil
	}
	if !gronx.IsValid(cronExpr) {
		return fmt.Errorf("invalid stats_interval cron expression: %s", cronExpr)
	}
	logger.Info("stats_heartbeat_enabled", "cron", cronExpr)
	go runStatsScheduler(ctx, b, cronExpr)
	return nil
}

func runStatsScheduler(ctx context.Context, b *broker.Broker, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("stats_heartbeat_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("stats_heartbeat_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-time.After(wait):
			logStatsOnce(b)
		case <-ctx.Done():
			logger.Info("stats_heartbeat_stopping")
			return
		}
	}
}

func logStatsOnce(b *broker.Broker) {
	for _, name := range b.Names() {
		logger.Info("queue_stats", "queue", name, "length", b.Length(name))
	}
	if size := b.DataDirSize(); size > 0 {
		logger.Info("data_dir_stats", "bytes", size)
	}
}
