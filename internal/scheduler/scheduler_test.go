package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsTask(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	var runs int32
	err := s.Every("tick", 10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&runs) == 0 {
		t.Fatalf("expected task to run at least once")
	}
}

func TestSchedulerSingleFlight(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	var inFlight int32
	var overlapped int32
	err := s.Every("slow", 5*time.Millisecond, func(ctx context.Context) error {
		if atomic.AddInt32(&inFlight, 1) > 1 {
			atomic.StoreInt32(&overlapped, 1)
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if atomic.LoadInt32(&overlapped) != 0 {
		t.Fatalf("ticks overlapped a running pass")
	}
}

func TestSchedulerSurvivesErrorsAndPanics(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	var runs int32
	err := s.Every("flaky", 10*time.Millisecond, func(ctx context.Context) error {
		n := atomic.AddInt32(&runs, 1)
		if n == 1 {
			panic("boom")
		}
		if n == 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&runs) < 3 {
		t.Fatalf("expected loop to survive panic and error, ran %d times", atomic.LoadInt32(&runs))
	}
}

func TestSchedulerRejectsBadIntervals(t *testing.T) {
	s := New(nil)
	defer s.Stop()
	if err := s.Every("bad", 0, func(ctx context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}

func TestSchedulerStopBlocksNewTasks(t *testing.T) {
	s := New(nil)
	s.Stop()
	if err := s.Every("late", time.Millisecond, func(ctx context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error after stop")
	}
}

func TestSchedulerStopWaitsForInFlight(t *testing.T) {
	s := New(nil)

	started := make(chan struct{})
	var finished int32
	_ = s.Every("long", 5*time.Millisecond, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(30 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
		return nil
	})

	<-started
	s.Stop()
	if atomic.LoadInt32(&finished) != 1 {
		t.Fatalf("Stop returned before the in-flight pass finished")
	}
}
