package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsJobOnInterval(t *testing.T) {
	s := New()
	var runs atomic.Int32
	s.Register(Job{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	s := New()
	var runs atomic.Int32
	s.Register(Job{
		Name:     "tick",
		Interval: 5 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()

	time.Sleep(20 * time.Millisecond)
	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	require.LessOrEqual(t, runs.Load(), after+1)
}

func TestSchedulerListTracksFailure(t *testing.T) {
	s := New()
	s.Register(Job{
		Name:        "broken",
		Description: "always fails",
		Interval:    5 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			return errors.New("boom")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	require.Eventually(t, func() bool {
		items := s.List()
		return len(items) == 1 && items[0].Status == StatusReject && items[0].Message == "boom"
	}, time.Second, 5*time.Millisecond)

	item := s.List()[0]
	require.Equal(t, "broken", item.Name)
	require.Equal(t, "always fails", item.Description)
	require.NotNil(t, item.LastRunAt)
}
