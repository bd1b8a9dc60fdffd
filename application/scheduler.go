package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"guildkeeper/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Job is a periodic background task
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// Scheduler runs each job on its own ticker once the gateway is ready
type Scheduler struct {
	ready <-chan struct{}
	jobs  []Job
}

// NewScheduler creates a scheduler. Jobs wait until ready is closed.
func NewScheduler(ready <-chan struct{}, jobs ...Job) *Scheduler {
	return &Scheduler{
		ready: ready,
		jobs:  jobs,
	}
}

// Start launches every job and returns a function that stops them and
// waits for in-flight runs to finish
func (s *Scheduler) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.loop(ctx, job, &wg)
		}(job)
	}

	return func() {
		cancel()
		wg.Wait()
	}
}

func (s *Scheduler) loop(ctx context.Context, job Job, wg *sync.WaitGroup) {
	select {
	case <-ctx.Done():
		return
	case <-s.ready:
	}

	log.WithFields(log.Fields{
		"job":      job.Name(),
		"interval": job.Interval(),
	}).Info("Scheduler job started")

	ticker := time.NewTicker(job.Interval())
	defer ticker.Stop()

	var running sync.Mutex
	fire := func() {
		if !running.TryLock() {
			log.WithField("job", job.Name()).Warn("Previous run still active, skipping tick")
			observability.GetMetrics().RecordTickSkipped(job.Name())
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer running.Unlock()
			runOnce(ctx, job)
		}()
	}

	fire()
	for {
		select {
		case <-ctx.Done():
			log.WithField("job", job.Name()).Info("Scheduler job shutting down")
			return
		case <-ticker.C:
			fire()
		}
	}
}

// runOnce executes a single tick bounded by the job interval
func runOnce(ctx context.Context, job Job) {
	tickCtx, cancel := context.WithTimeout(ctx, job.Interval())
	defer cancel()

	start := time.Now()
	err := runRecovered(func() error { return job.Run(tickCtx) })
	duration := time.Since(start)

	outcome := observability.OutcomeSuccess
	if err != nil {
		outcome = observability.OutcomeFailure
		log.WithFields(log.Fields{
			"job":      job.Name(),
			"duration": duration,
			"error":    err,
		}).Error("Scheduler job failed")
	} else {
		log.WithFields(log.Fields{
			"job":      job.Name(),
			"duration": duration,
		}).Debug("Scheduler job finished")
	}

	observability.GetMetrics().RecordJobRun(job.Name(), outcome, duration)
}

// runRecovered converts a panic into an error
func runRecovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// forEachGuild runs step for every guild, isolating failures and panics.
// It returns the number of guilds that failed.
func forEachGuild(ctx context.Context, job string, guildIDs []int64, step func(ctx context.Context, guildID int64) error) int {
	failed := 0
	for _, guildID := range guildIDs {
		if ctx.Err() != nil {
			return failed + 1
		}
		if err := runRecovered(func() error { return step(ctx, guildID) }); err != nil {
			log.WithFields(log.Fields{
				"job":      job,
				"guild_id": guildID,
				"error":    err,
			}).Error("Guild step failed")
			failed++
		}
	}
	return failed
}
