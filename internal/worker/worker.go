// Package worker reacts to reservation events and sweeps stale wizard drafts.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ddj82/roomi/internal/debounce"
	"github.com/ddj82/roomi/internal/kafka"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Invalidator interface {
	InvalidateReservations(ctx context.Context, hostID string) error
}

type Notifier interface {
	Send(ctx context.Context, event kafka.ReservationEvent) error
}

type DraftSweeper interface {
	DeleteExpiredDrafts(ctx context.Context) (int64, error)
}

type MessageSource interface {
	Consume(ctx context.Context, handler func(context.Context, kafkaGo.Message) error) error
}

type Worker struct {
	cache      Invalidator
	notifier   Notifier
	drafts     DraftSweeper
	debouncer  *debounce.Group
	sweepEvery time.Duration
	log        *zap.Logger
}

func New(cache Invalidator, notifier Notifier, drafts DraftSweeper, invalidateDelay, sweepEvery time.Duration, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		cache:      cache,
		notifier:   notifier,
		drafts:     drafts,
		debouncer:  debounce.New(invalidateDelay),
		sweepEvery: sweepEvery,
		log:        log,
	}
}

// Run consumes events until ctx is done, sweeping drafts on every tick.
func (w *Worker) Run(ctx context.Context, source MessageSource) error {
	defer w.debouncer.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- source.Consume(ctx, w.HandleMessage)
	}()

	ticker := time.NewTicker(w.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// HandleMessage never fails the consumer: a broken or undeliverable event is
// logged and skipped.
func (w *Worker) HandleMessage(ctx context.Context, msg kafkaGo.Message) error {
	event, err := kafka.DecodeReservationEvent(msg)
	if err != nil {
		w.log.Warn("decode reservation event", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}

	if event.HostID != "" {
		hostID := event.HostID
		invalidateCtx := context.WithoutCancel(ctx)
		w.debouncer.Trigger(hostID, func() {
			if err := w.cache.InvalidateReservations(invalidateCtx, hostID); err != nil {
				w.log.Warn("invalidate reservations cache", zap.String("host_id", hostID), zap.Error(err))
			}
		})
	}

	if err := w.notifier.Send(ctx, event); err != nil {
		w.log.Error("send guest notification", zap.String("type", event.Type), zap.Int64("reservation_id", event.ReservationID), zap.Error(err))
	}
	return nil
}

func (w *Worker) sweep(ctx context.Context) {
	n, err := w.drafts.DeleteExpiredDrafts(ctx)
	if err != nil {
		w.log.Error("sweep expired drafts", zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("expired drafts removed", zap.Int64("count", n))
	}
}
