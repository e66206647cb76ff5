// Package notify delivers best-effort notifications about edit requests and
// job progress. Delivery failures are logged and never reach the caller.
package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Event names what a message is about.
type Event string

const (
	EventEditRequested Event = "edit.requested"
	EventEditApproved  Event = "edit.approved"
	EventEditRejected  Event = "edit.rejected"
	EventStageAdvanced Event = "job.stage_advanced"
	EventJobCompleted  Event = "job.completed"
)

// Message is a single notification.
type Message struct {
	Event      Event          `json:"event"`
	Recipient  string         `json:"recipient"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// Sender transmits a message over some channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher sends messages without ever failing the caller.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger
}

// NewDispatcher wraps sender. A nil sender logs messages instead.
func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if sender == nil {
		sender = NewLogSender(logger)
	}
	return &Dispatcher{sender: sender, logger: logger}
}

// Notify sends msg. Messages without a recipient are dropped.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	if strings.TrimSpace(msg.Recipient) == "" {
		d.logger.Debug("notification skipped: no recipient", "event", msg.Event, "entity_id", msg.EntityID)
		return
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Warn("notification failed",
			"event", msg.Event,
			"recipient", msg.Recipient,
			"entity_id", msg.EntityID,
			"error", err,
		)
	}
}

// LogSender writes messages to a logger. It is the default when no broker is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender backed by logger.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification",
		"event", msg.Event,
		"recipient", msg.Recipient,
		"subject", msg.Subject,
		"entity_type", msg.EntityType,
		"entity_id", msg.EntityID,
	)
	return nil
}
