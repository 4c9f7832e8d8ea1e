package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/katsunarinishio0430-cmd/biolog-app/config"
	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

// refreshTimeout bounds one scheduled summary rebuild.
const refreshTimeout = 2 * time.Minute

type summaryRefresher interface {
	RefreshSummary(ctx context.Context) (tracker.Refresh, error)
}

// startScheduler runs svc.RefreshSummary on spec. An empty spec schedules
// nothing and returns a nil Cron.
func startScheduler(spec string, svc summaryRefresher, log *zap.SugaredLogger) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	c := cron.New(cron.WithParser(config.CronParser()))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		res, err := svc.RefreshSummary(ctx)
		if err != nil {
			log.Errorf("[cron] summary refresh failed: %v", err)
			return
		}
		log.Infof("[cron] summary refreshed: %d days", len(res.Rows))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule summary refresh: %w", err)
	}
	c.Start()
	log.Infof("[cron] summary refresh scheduled: %s", spec)
	return c, nil
}

// stopScheduler waits up to five seconds for a running refresh to finish.
func stopScheduler(c *cron.Cron, log *zap.SugaredLogger) {
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-time.After(5 * time.Second):
		log.Warnf("[cron] stop timeout waiting for running jobs")
	}
}
