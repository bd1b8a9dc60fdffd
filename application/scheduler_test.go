package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
	starts   atomic.Int32
}

func (j *stubJob) Name() string            { return j.name }
func (j *stubJob) Interval() time.Duration { return j.interval }

func (j *stubJob) Run(ctx context.Context) error {
	j.starts.Add(1)
	return j.run(ctx)
}

func TestScheduler_WaitsForReady(t *testing.T) {
	ready := make(chan struct{})
	job := &stubJob{name: "test", interval: 5 * time.Millisecond, run: func(ctx context.Context) error { return nil }}

	stop := NewScheduler(ready, job).Start(context.Background())
	defer stop()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), job.starts.Load())

	close(ready)
	require.Eventually(t, func() bool { return job.starts.Load() > 0 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_SkipsOverlappingTicks(t *testing.T) {
	ready := make(chan struct{})
	close(ready)

	release := make(chan struct{})
	job := &stubJob{
		name:     "slow",
		interval: 5 * time.Millisecond,
		run: func(ctx context.Context) error {
			// Ignores the tick deadline to hold the run open
			<-release
			return nil
		},
	}

	stop := NewScheduler(ready, job).Start(context.Background())

	require.Eventually(t, func() bool { return job.starts.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), job.starts.Load())

	close(release)
	stop()
}

func TestScheduler_StopEndsLoops(t *testing.T) {
	ready := make(chan struct{})
	close(ready)

	job := &stubJob{name: "fast", interval: time.Millisecond, run: func(ctx context.Context) error { return errors.New("boom") }}
	stop := NewScheduler(ready, job).Start(context.Background())

	require.Eventually(t, func() bool { return job.starts.Load() > 2 }, time.Second, time.Millisecond)
	stop()

	after := job.starts.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, job.starts.Load())
}

func TestRunOnce_RecoversPanics(t *testing.T) {
	job := &stubJob{name: "panicky", interval: time.Second, run: func(ctx context.Context) error { panic("bad state") }}

	assert.NotPanics(t, func() { runOnce(context.Background(), job) })
	assert.Equal(t, int32(1), job.starts.Load())
}

func TestForEachGuild_IsolatesFailures(t *testing.T) {
	var visited []int64
	failed := forEachGuild(context.Background(), "test", []int64{1, 2, 3, 4}, func(ctx context.Context, guildID int64) error {
		visited = append(visited, guildID)
		switch guildID {
		case 2:
			panic("guild 2 exploded")
		case 3:
			return errors.New("guild 3 failed")
		}
		return nil
	})

	assert.Equal(t, 2, failed)
	assert.Equal(t, []int64{1, 2, 3, 4}, visited)
}

func TestForEachGuild_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	failed := forEachGuild(ctx, "test", []int64{1, 2}, func(ctx context.Context, guildID int64) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.Equal(t, 1, failed)
}
