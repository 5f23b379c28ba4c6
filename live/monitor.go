package live

import (
	"context"
	"time"

	"github.com/pawelknorps/chord-lab-sub001/logging"
)

// Handler receives the overrides computed for the chord that was current
// when the poll ran
type Handler func(chartChord string, overrides Overrides)

// Monitor polls a shared pitch buffer on a fixed cadence and grounds the
// chart's current chord against it
type Monitor struct {
	grounder *Grounder
	buffer   *SyncBuffer
	current  func() string
	handler  Handler
	interval time.Duration
	logger   logging.Logger
}

// NewMonitor creates a monitor. current returns the chart chord sounding now.
func NewMonitor(grounder *Grounder, buffer *SyncBuffer, current func() string, handler Handler) *Monitor {
	interval := grounder.GetParameters().PollInterval
	if interval <= 0 {
		interval = DefaultParams().PollInterval
	}
	return &Monitor{
		grounder: grounder,
		buffer:   buffer,
		current:  current,
		handler:  handler,
		interval: interval,
		logger:   logging.WithFields(logging.Fields{"component": "monitor"}),
	}
}

// Poll grounds the current chord against a snapshot of the buffer once
func (m *Monitor) Poll() Overrides {
	chartChord := ""
	if m.current != nil {
		chartChord = m.current()
	}
	overrides := m.grounder.Overrides(chartChord, m.buffer.Snapshot())
	if m.handler != nil {
		m.handler(chartChord, overrides)
	}
	return overrides
}

// Run polls until the context is cancelled and returns the context error
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Debug("Monitor started", logging.Fields{"interval": m.interval.String()})
	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("Monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.Poll()
		}
	}
}
