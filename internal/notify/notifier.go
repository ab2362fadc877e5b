// Package notify turns pipeline lifecycle signals into user-visible
// notifications. Notifiers are fire-and-forget: they never return errors to
// the pipeline.
package notify

import (
	"context"
	"fmt"
	"sync"

	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/models"
)

// Notifier receives lifecycle signals.
type Notifier interface {
	Notify(ctx context.Context, s models.Signal)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, s models.Signal)

func (f NotifierFunc) Notify(ctx context.Context, s models.Signal) { f(ctx, s) }

// Multi fans a signal out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, s models.Signal) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, s)
		}
	}
}

// Async dispatches to next on its own goroutine so slow channels (SNS, SES)
// never hold up the pipeline. Wait blocks until queued dispatches finish.
type Async struct {
	next Notifier
	log  logger.Logger
	wg   sync.WaitGroup
}

func NewAsync(next Notifier, log logger.Logger) *Async {
	return &Async{next: next, log: logger.ForComponent(log, "notify-async")}
}

func (a *Async) Notify(ctx context.Context, s models.Signal) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.log.Error("notifier panicked", map[string]interface{}{
					"kind":  string(s.Kind),
					"panic": fmt.Sprint(r),
				})
			}
		}()
		a.next.Notify(context.WithoutCancel(ctx), s)
	}()
}

func (a *Async) Wait() { a.wg.Wait() }

// Message renders the short human text for a signal, mirroring the toast
// wording of the page script.
func Message(s models.Signal) string {
	switch s.Kind {
	case models.SignalProcessingStarted:
		return "Processing quotation..."
	case models.SignalProcessingCleared:
		return ""
	case models.SignalDelivered:
		return fmt.Sprintf("Data sent successfully for %s", nameOrNA(s.Name))
	case models.SignalDuplicate:
		return fmt.Sprintf("Quotation already recorded for %s", nameOrNA(s.Name))
	default:
		return s.Text
	}
}

// Title renders a notification title.
func Title(app string, s models.Signal) string {
	switch s.Kind {
	case models.SignalWarning:
		return app + " Warning"
	case models.SignalError:
		return app + " Error"
	default:
		return app
	}
}

func nameOrNA(name string) string {
	if name == "" {
		return "N/A"
	}
	return name
}
