// Package schedule repeats a run on a fixed interval until its context ends.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Task is one scheduled run.
type Task func(ctx context.Context) error

// Every runs task now and then every interval until ctx is cancelled. Runs
// never overlap; a run that overruns the interval delays the next one. Task
// errors are logged and do not stop the schedule.
func Every(ctx context.Context, interval time.Duration, name string, task Task, log *zap.Logger) error {
	if interval <= 0 {
		return errors.New("schedule: interval must be positive")
	}
	if log == nil {
		log = zap.NewNop()
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			start := time.Now()
			if err := task(ctx); err != nil {
				log.Error("schedule: run failed", zap.String("job", name), zap.Error(err))
				return
			}
			log.Info("schedule: run done", zap.String("job", name), zap.Duration("took", time.Since(start)))
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule: add job: %w", err)
	}

	log.Info("schedule: started", zap.String("job", name), zap.Duration("every", interval))
	sched.Start()

	<-ctx.Done()
	if err := sched.Shutdown(); err != nil {
		return fmt.Errorf("schedule: shutdown: %w", err)
	}
	log.Info("schedule: stopped", zap.String("job", name))
	return nil
}
