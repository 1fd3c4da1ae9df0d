package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
	redisinfra "github.com/DanieleGelsomino/djscovery-sub000/internal/infrastructure/redis"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/logger"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/metrics"
)

// mailerLockKey は複数インスタンスでの二重送信を防ぐ分散ロックのキー
const mailerLockKey = "booking-mailer"

// ConfirmationSender は確認メールを送信するインターフェース
type ConfirmationSender interface {
	SendBookingConfirmation(ctx context.Context, b *booking.Booking, e *event.Event) error
}

// BookingMailer は確認メール未送信の予約を処理するワーカー
// 送信成功した予約は pending から sent に遷移する
type BookingMailer struct {
	bookingRepo booking.Repository
	eventRepo   event.Repository
	sender      ConfirmationSender
	lockManager *redisinfra.LockManager
	interval    time.Duration
	batchSize   int
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewBookingMailer は新しいBookingMailerを作成する
func NewBookingMailer(
	br booking.Repository,
	er event.Repository,
	sender ConfirmationSender,
	lm *redisinfra.LockManager,
	interval time.Duration,
	batchSize int,
) *BookingMailer {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &BookingMailer{
		bookingRepo: br,
		eventRepo:   er,
		sender:      sender,
		lockManager: lm,
		interval:    interval,
		batchSize:   batchSize,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start はワーカーを開始する
func (w *BookingMailer) Start(ctx context.Context) {
	logger.Info("確認メールワーカー開始",
		zap.Duration("interval", w.interval),
		zap.Int("batch_size", w.batchSize),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("確認メールワーカー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("確認メールワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.dispatch(ctx)
		}
	}
}

// Stop はワーカーを停止する
func (w *BookingMailer) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// dispatch は未送信の予約に確認メールを送信する
func (w *BookingMailer) dispatch(ctx context.Context) {
	log := logger.Get()

	// 他インスタンスが処理中なら何もしない
	if w.lockManager != nil {
		lock, err := w.lockManager.AcquireLock(ctx, mailerLockKey, w.interval)
		if err != nil {
			if !errors.Is(err, redisinfra.ErrLockNotAcquired) {
				log.Error("メールワーカーのロック取得失敗", zap.Error(err))
			}
			return
		}
		defer lock.Release(ctx)
	}

	pending, err := w.bookingRepo.ListPendingMail(ctx, w.batchSize)
	if err != nil {
		log.Error("未送信予約の取得失敗", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		log.Debug("未送信予約なし")
		return
	}

	for _, b := range pending {
		if err := w.send(ctx, b); err != nil {
			log.Error("確認メール送信失敗",
				zap.String("booking_id", b.ID),
				zap.Error(err),
			)
			w.countMail("failed")
			continue
		}
		w.countMail("sent")
	}
}

func (w *BookingMailer) send(ctx context.Context, b *booking.Booking) error {
	ev, err := w.eventRepo.GetByID(ctx, b.EventID)
	if err != nil {
		return err
	}
	if err := w.sender.SendBookingConfirmation(ctx, b, ev); err != nil {
		return err
	}

	b.MarkSent()
	if err := w.bookingRepo.UpdateStatus(ctx, b); err != nil {
		return err
	}

	logger.Info("確認メール送信",
		zap.String("booking_id", b.ID),
		zap.String("email", b.Email),
	)
	return nil
}

func (w *BookingMailer) countMail(status string) {
	if m := metrics.Get(); m != nil {
		m.ConfirmationMailsTotal.WithLabelValues(status).Inc()
	}
}
