package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// HealthMonitor remembers the outcome of the latest store probe.
type HealthMonitor struct {
	pinger  Pinger
	timeout time.Duration

	mu        sync.RWMutex
	up        bool
	checkedAt time.Time
}

func NewHealthMonitor(pinger Pinger, timeout time.Duration) *HealthMonitor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthMonitor{pinger: pinger, timeout: timeout}
}

// Check pings the store and records the result.
func (h *HealthMonitor) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := h.pinger.Ping(ctx)

	h.mu.Lock()
	wasUp := h.up
	h.up = err == nil
	h.checkedAt = time.Now()
	h.mu.Unlock()

	switch {
	case err != nil:
		log.Printf("[warn] store health check failed: %v", err)
	case !wasUp:
		log.Println("[info] store reachable")
	}
	return err
}

// Up reports the last probe result; false before the first probe.
func (h *HealthMonitor) Up() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.up
}

func (h *HealthMonitor) CheckedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.checkedAt
}
