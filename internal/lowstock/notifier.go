package lowstock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stock-inventory/internal/products"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultSendTimeout = 10 * time.Second

type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

type Reason string

const (
	ReasonNoLowStock       Reason = "no_low_stock"
	ReasonAlreadySentToday Reason = "already_sent_today"
	ReasonNotConfigured    Reason = "not_configured"
	ReasonTimeout          Reason = "timeout"
	ReasonSendFailure      Reason = "send_failure"
	ReasonGate             Reason = "gate_unavailable"
)

// Outcome is the result of one notification attempt. Err is set only when
// Status is StatusFailed.
type Outcome struct {
	Status Status
	Reason Reason
	Err    error
	Alert  *AlertContent
}

// Sender delivers a composed alert to a recipient.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, recipient string, params map[string]string) error
}

// GateStore persists the last day an alert went out for one slot.
type GateStore interface {
	Get(ctx context.Context) (Day, error)
	Set(ctx context.Context, day Day) error
}

type Options struct {
	SendTimeout time.Duration
	Location    *time.Location
	Now         func() time.Time
}

// Notifier runs the once-per-day low-stock alert policy. It holds no lock:
// callers sharing a gate slot must not overlap calls.
type Notifier struct {
	sender   Sender
	gate     GateStore
	timeout  time.Duration
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
	outcomes *prometheus.CounterVec
}

func NewNotifier(sender Sender, gate GateStore, opts Options, logger *slog.Logger, outcomes *prometheus.CounterVec) *Notifier {
	n := &Notifier{
		sender:   sender,
		gate:     gate,
		timeout:  opts.SendTimeout,
		loc:      opts.Location,
		now:      opts.Now,
		logger:   logger,
		outcomes: outcomes,
	}
	if n.timeout <= 0 {
		n.timeout = defaultSendTimeout
	}
	if n.loc == nil {
		n.loc = time.UTC
	}
	if n.now == nil {
		n.now = time.Now
	}
	return n
}

// Today is the current calendar day in the notifier's timezone.
func (n *Notifier) Today() Day {
	return DayOf(n.now(), n.loc)
}

// Location is the timezone used for day boundaries and alert timestamps.
func (n *Notifier) Location() *time.Location {
	return n.loc
}

// Configured reports whether the sender can deliver alerts.
func (n *Notifier) Configured() bool {
	return n.sender != nil && n.sender.Configured()
}

// Gate reads the current gate state.
func (n *Notifier) Gate(ctx context.Context) (Gate, error) {
	last, err := n.gate.Get(ctx)
	if err != nil {
		return Gate{}, fmt.Errorf("read notification gate: %w", err)
	}
	return Gate{LastNotified: last}, nil
}

// AttemptNotify sends an alert for the low-stock subset of items unless one
// already went out on today. The gate only moves on a successful send.
func (n *Notifier) AttemptNotify(ctx context.Context, items []products.Product, recipient string, today Day) Outcome {
	low := Evaluate(items)
	if len(low) == 0 {
		return n.record(Outcome{Status: StatusSkipped, Reason: ReasonNoLowStock})
	}

	gate, err := n.Gate(ctx)
	if err != nil {
		return n.record(Outcome{Status: StatusFailed, Reason: ReasonGate, Err: err})
	}
	if !ShouldNotify(gate, today) {
		return n.record(Outcome{Status: StatusSkipped, Reason: ReasonAlreadySentToday})
	}

	out := n.deliver(ctx, low, recipient)
	if out.Status == StatusSent {
		if err := n.gate.Set(ctx, today); err != nil {
			n.logger.Error("update notification gate failed",
				"day", today,
				"error", err,
			)
		}
	}
	return n.record(out)
}

// SendNow sends an alert for the low-stock subset of items regardless of the
// gate and leaves the gate untouched.
func (n *Notifier) SendNow(ctx context.Context, items []products.Product, recipient string) Outcome {
	low := Evaluate(items)
	if len(low) == 0 {
		return n.record(Outcome{Status: StatusSkipped, Reason: ReasonNoLowStock})
	}
	return n.record(n.deliver(ctx, low, recipient))
}

func (n *Notifier) deliver(ctx context.Context, low []products.Product, recipient string) Outcome {
	if !n.Configured() {
		return Outcome{Status: StatusFailed, Reason: ReasonNotConfigured, Err: ErrNotConfigured}
	}
	if recipient == "" {
		return Outcome{
			Status: StatusFailed,
			Reason: ReasonNotConfigured,
			Err:    fmt.Errorf("%w: no alert recipient", ErrNotConfigured),
		}
	}

	alert, err := ComposeAlert(low, n.now().In(n.loc))
	if err != nil {
		return Outcome{Status: StatusFailed, Reason: ReasonSendFailure, Err: err}
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.sender.Send(sendCtx, recipient, alert.TemplateParams(recipient)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			return Outcome{
				Status: StatusFailed,
				Reason: ReasonTimeout,
				Err:    fmt.Errorf("%w after %s", ErrTimeout, n.timeout),
				Alert:  &alert,
			}
		}
		return Outcome{
			Status: StatusFailed,
			Reason: ReasonSendFailure,
			Err:    fmt.Errorf("%w: %w", ErrSendFailure, err),
			Alert:  &alert,
		}
	}

	return Outcome{Status: StatusSent, Alert: &alert}
}

func (n *Notifier) record(out Outcome) Outcome {
	if n.outcomes != nil {
		n.outcomes.WithLabelValues(string(out.Status), string(out.Reason)).Inc()
	}

	switch out.Status {
	case StatusSent:
		n.logger.Info("low-stock alert sent", "items", out.Alert.ItemCount)
	case StatusSkipped:
		n.logger.Debug("low-stock alert skipped", "reason", out.Reason)
	case StatusFailed:
		n.logger.Error("low-stock alert failed", "reason", out.Reason, "error", out.Err)
	}
	return out
}
