package resources

import (
	"context"
	"log/slog"

	"github.com/habmon/habmon/internal/models"
)

// Notifier receives resource snapshots after they change.
type Notifier interface {
	OnResourceChanged(ctx context.Context, card models.ResourceCard) error
	OnResourceCritical(ctx context.Context, card models.ResourceCard) error
}

// BatchNotifier is implemented by notifiers that also want each decay
// batch as a whole.
type BatchNotifier interface {
	OnBatch(ctx context.Context, cards []models.ResourceCard) error
}

// DeleteNotifier is implemented by notifiers that track deletions.
type DeleteNotifier interface {
	OnResourceDeleted(ctx context.Context, code string) error
}

// NopNotifier discards every notification.
type NopNotifier struct{}

// OnResourceChanged does nothing.
func (NopNotifier) OnResourceChanged(context.Context, models.ResourceCard) error { return nil }

// OnResourceCritical does nothing.
func (NopNotifier) OnResourceCritical(context.Context, models.ResourceCard) error { return nil }

// Dispatcher fans changed cards out to notifiers. Notifier errors are
// logged and never returned.
type Dispatcher struct {
	notifiers []Notifier
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher over notifiers.
func NewDispatcher(logger *slog.Logger, notifiers ...Notifier) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{notifiers: notifiers, logger: logger}
}

// Add registers another notifier. Not safe for use during Publish.
func (d *Dispatcher) Add(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Publish reports every card as changed and every critical card as critical.
func (d *Dispatcher) Publish(ctx context.Context, cards ...models.ResourceCard) {
	for _, card := range cards {
		for _, n := range d.notifiers {
			if err := n.OnResourceChanged(ctx, card); err != nil {
				d.logger.Warn("resource change notification failed", "code", card.Code, "error", err)
			}
			if !card.IsCritical {
				continue
			}
			if err := n.OnResourceCritical(ctx, card); err != nil {
				d.logger.Warn("critical notification failed", "code", card.Code, "error", err)
			}
		}
	}
}

// PublishBatch publishes cards individually and then as one batch to
// notifiers implementing BatchNotifier.
func (d *Dispatcher) PublishBatch(ctx context.Context, cards []models.ResourceCard) {
	d.Publish(ctx, cards...)
	if len(cards) == 0 {
		return
	}
	for _, n := range d.notifiers {
		bn, ok := n.(BatchNotifier)
		if !ok {
			continue
		}
		if err := bn.OnBatch(ctx, cards); err != nil {
			d.logger.Warn("batch notification failed", "count", len(cards), "error", err)
		}
	}
}

// PublishDeleted reports a deleted resource to notifiers implementing
// DeleteNotifier.
func (d *Dispatcher) PublishDeleted(ctx context.Context, code string) {
	for _, n := range d.notifiers {
		dn, ok := n.(DeleteNotifier)
		if !ok {
			continue
		}
		if err := dn.OnResourceDeleted(ctx, code); err != nil {
			d.logger.Warn("delete notification failed", "code", code, "error", err)
		}
	}
}
