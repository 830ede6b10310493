package notify

import (
	"log/slog"
	"sync/atomic"

	"analytica-hq/meridian/pkg/workflow"
)

// ChannelNotifier fans step events into a buffered channel. When the
// buffer is full the event is dropped and counted; a slow subscriber
// must never stall a run.
type ChannelNotifier struct {
	events  chan workflow.StepEvent
	dropped atomic.Int64
	logger  *slog.Logger
}

// NewChannelNotifier creates a notifier with the given buffer size.
func NewChannelNotifier(buffer int, logger *slog.Logger) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelNotifier{
		events: make(chan workflow.StepEvent, buffer),
		logger: logger.With("component", "notify"),
	}
}

// Events is the subscriber's end of the channel.
func (n *ChannelNotifier) Events() <-chan workflow.StepEvent {
	return n.events
}

// Dropped returns the number of events discarded because the buffer was
// full.
func (n *ChannelNotifier) Dropped() int64 {
	return n.dropped.Load()
}

// StepChanged delivers the event if the buffer has room, otherwise
// drops it.
func (n *ChannelNotifier) StepChanged(ev workflow.StepEvent) {
	select {
	case n.events <- ev:
	default:
		if n.dropped.Add(1)%100 == 1 {
			n.logger.Warn("step events dropped, subscriber is lagging",
				"dropped_total", n.dropped.Load(),
			)
		}
	}
}

// LogNotifier writes every step transition to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{
		logger: logger.With("component", "notify"),
	}
}

// StepChanged logs the transition.
func (n *LogNotifier) StepChanged(ev workflow.StepEvent) {
	n.logger.Info("run step changed",
		"run_id", ev.RunID,
		"case_id", ev.CaseID,
		"step", ev.Step,
		"step_name", ev.StepName,
		"status", ev.Status,
		"progress", ev.Progress,
		"error", ev.Error,
	)
}

// Multi fans one event out to several notifiers.
type Multi []workflow.Notifier

// StepChanged delivers the event to every notifier in order.
func (m Multi) StepChanged(ev workflow.StepEvent) {
	for _, n := range m {
		n.StepChanged(ev)
	}
}
