package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"task-manager/internal/repository"
	"task-manager/internal/service"
	"task-manager/internal/testutil"
)

type flakyPinger struct {
	fail  atomic.Bool
	calls atomic.Int32
}

func (p *flakyPinger) Ping(context.Context) error {
	p.calls.Add(1)
	if p.fail.Load() {
		return errors.New("unreachable")
	}
	return nil
}

func TestHealthMonitor(t *testing.T) {
	p := &flakyPinger{}
	h := service.NewHealthMonitor(p, time.Second)
	if h.Up() {
		t.Fatal("monitor should start down")
	}

	if err := h.Check(context.Background()); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !h.Up() || h.CheckedAt().IsZero() {
		t.Error("expected monitor up after successful probe")
	}

	p.fail.Store(true)
	if err := h.Check(context.Background()); err == nil {
		t.Fatal("expected probe error")
	}
	if h.Up() {
		t.Error("expected monitor down after failed probe")
	}
}

func TestHealthMonitorWithSQLite(t *testing.T) {
	h := service.NewHealthMonitor(repository.NewSQLPinger(testutil.NewDB(t)), 0)
	if err := h.Check(context.Background()); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !h.Up() {
		t.Error("expected sqlite store up")
	}
}

func TestSchedulerRunsHealthCheck(t *testing.T) {
	p := &flakyPinger{}
	h := service.NewHealthMonitor(p, time.Second)

	s := service.NewSchedulerService(time.UTC)
	if _, err := s.ScheduleHealthCheck(h, time.Second); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if s.Entries() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Entries())
	}
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for p.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if p.calls.Load() == 0 {
		t.Fatal("health check never ran")
	}
	if !h.Up() {
		t.Error("expected monitor up")
	}
}

func TestScheduleIntervalRejectsNonPositive(t *testing.T) {
	s := service.NewSchedulerService(time.UTC)
	if _, err := s.ScheduleInterval(0, func() {}); err == nil {
		t.Error("expected error for zero interval")
	}
}
