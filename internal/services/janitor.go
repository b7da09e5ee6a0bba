package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskforge/backend/repository"
)

// JanitorConfig controls the activity journal retention sweep.
type JanitorConfig struct {
	Schedule  string
	Retention time.Duration
}

// Janitor prunes aged activity entries on a cron schedule.
type Janitor struct {
	activity repository.ActivityRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      JanitorConfig
}

func NewJanitor(activity repository.ActivityRepository, logger *zap.Logger, cfg JanitorConfig) *Janitor {
	if cfg.Schedule == "" {
		cfg.Schedule = "@hourly"
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{
		activity: activity,
		logger:   logger,
		cron:     cron.New(),
		cfg:      cfg,
	}
}

// Start schedules the sweep and runs one immediately so a long-stopped
// instance catches up on boot.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.cfg.Schedule, j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	go j.sweep()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop(ctx context.Context) {
	stopped := j.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
}

func (j *Janitor) sweep() {
	cutoff := time.Now().Add(-j.cfg.Retention)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pruned, err := j.activity.PruneOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("activity prune failed", zap.Error(err))
		return
	}
	if pruned > 0 {
		j.logger.Info("activity entries pruned", zap.Int("count", pruned), zap.Time("cutoff", cutoff))
	}
}
