package application

import (
	"context"
	"errors"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/transaction"
	redisinfra "github.com/DanieleGelsomino/djscovery-sub000/internal/infrastructure/redis"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/metrics"
)

// BookingService は予約枠確保プロトコルを実装する
type BookingService struct {
	runner      transaction.Runner
	bookingRepo booking.Repository
	eventRepo   event.Repository
	cache       *redisinfra.AvailabilityCache
}

// NewBookingService は新しいBookingServiceを作成する
func NewBookingService(runner transaction.Runner, br booking.Repository, er event.Repository, cache *redisinfra.AvailabilityCache) *BookingService {
	return &BookingService{runner: runner, bookingRepo: br, eventRepo: er, cache: cache}
}

// CreateBookingInput は予約作成の入力を表す
type CreateBookingInput struct {
	EventID  string
	Quantity int
	Name     string
	Surname  string
	Email    string
	Phone    string
}

// CreateBookingResult は予約作成の結果を表す
type CreateBookingResult struct {
	Booking       *booking.Booking
	BookingsCount int
	SoldOut       bool
}

// CreateBooking は予約枠を確保し予約を永続化する
// 事前条件チェック・予約作成・カウンター更新は同一ストアトランザクション内で
// 実行され、全て成功するか全て失敗するかのどちらかになる
// イベント単位の並行予約はストアの競合リトライにより直列化される
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	b := booking.NewBooking(input.EventID, input.Name, input.Surname, input.Email, input.Phone, input.Quantity)
	if err := b.Validate(); err != nil {
		s.countBooking(err)
		return nil, err
	}

	var result CreateBookingResult
	err := s.runner.RunInTx(ctx, func(tx transaction.Tx) error {
		ev, err := s.eventRepo.GetByIDTx(ctx, tx, input.EventID)
		if err != nil {
			return err
		}

		// 業務エラーはトランザクションを中断し、部分的な書き込みを残さない
		if err := ev.RegisterBooking(b.Quantity); err != nil {
			return err
		}

		if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
			return err
		}
		if err := s.eventRepo.UpdateCounters(ctx, tx, ev); err != nil {
			return err
		}

		result = CreateBookingResult{
			Booking:       b,
			BookingsCount: ev.BookingsCount,
			SoldOut:       ev.SoldOut,
		}
		return nil
	})
	if err != nil {
		s.countBooking(err)
		return nil, err
	}

	// コミット後にキャッシュを無効化（失敗しても予約自体は成立している）
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, input.EventID)
	}
	s.countBooking(nil)

	return &result, nil
}

// GetBooking はIDから予約を取得する
func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// GetEventBookings はイベントの予約一覧を取得する
func (s *BookingService) GetEventBookings(ctx context.Context, eventID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookingRepo.GetByEventID(ctx, eventID, limit, offset)
}

// countBooking は予約試行の結果をメトリクスに記録する
func (s *BookingService) countBooking(err error) {
	m := metrics.Get()
	if m == nil {
		return
	}

	status := "success"
	switch {
	case err == nil:
	case isBusinessError(err):
		status = businessErrorLabel(err)
	default:
		status = "error"
	}
	m.BookingsTotal.WithLabelValues(status).Inc()
}

func isBusinessError(err error) bool {
	return businessErrorLabel(err) != ""
}

func businessErrorLabel(err error) string {
	switch {
	case errors.Is(err, event.ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, event.ErrEventNotPublished):
		return "event_not_published"
	case errors.Is(err, event.ErrSoldOut):
		return "sold_out"
	case errors.Is(err, event.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, booking.ErrInvalidQuantity):
		return "invalid_quantity"
	default:
		return ""
	}
}
