package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger probes the upstream source.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor periodically probes the upstream source and keeps the last result.
type Monitor struct {
	upstream Pinger

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(upstream Pinger, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		upstream: upstream,
		interval: interval,
		timeout:  5 * time.Second,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Upstream
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{LastCheck: time.Now()}
	if m.upstream != nil {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		start := time.Now()
		err := m.upstream.Ping(ctx)
		cancel()
		status.Latency = time.Since(start)
		status.Upstream = err == nil
		if err != nil {
			status.LastError = err.Error()
			m.logger.Warn("upstream probe failed", zap.Error(err))
		}
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}
