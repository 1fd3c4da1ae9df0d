package application

import (
	"context"
	"errors"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/transaction"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/metrics"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/qrtoken"
)

// TokenVerifier はチェックイントークンの検証を行うインターフェース
type TokenVerifier interface {
	Verify(token string) (*qrtoken.Claims, error)
}

// CheckinService はチェックインカウンタープロトコルを実装する
// この操作は冪等ではない: 同じトークンでの呼び出しごとにカウンターが進む
// （グループの分割チェックインをサポートするための意図的な設計）
// 同一操作の二重送信の抑止はUI側の責務
type CheckinService struct {
	runner      transaction.Runner
	bookingRepo booking.Repository
	verifier    TokenVerifier
}

// NewCheckinService は新しいCheckinServiceを作成する
func NewCheckinService(runner transaction.Runner, br booking.Repository, verifier TokenVerifier) *CheckinService {
	return &CheckinService{runner: runner, bookingRepo: br, verifier: verifier}
}

// CheckinResult はチェックイン操作の結果を表す
type CheckinResult struct {
	BookingID      string
	CheckedInCount int
	Remaining      int
	State          booking.CheckInState
}

// CheckIn はトークンを検証しチェックイン済み枚数を n 増やす
// n == 0 の場合は1枚、n < 0 の場合は残り全員をチェックインする
// カウンターの検証と更新は同一ストアトランザクション内で行われるため、
// 同一QRの同時スキャンでも CheckedInCount が Quantity を超えることはない
func (s *CheckinService) CheckIn(ctx context.Context, token string, n int) (*CheckinResult, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		s.countCheckin("checkin", err)
		return nil, err
	}

	if n == 0 {
		n = 1
	}

	var result CheckinResult
	err = s.runner.RunInTx(ctx, func(tx transaction.Tx) error {
		b, err := s.bookingRepo.GetByIDTx(ctx, tx, claims.BookingID)
		if err != nil {
			return err
		}
		if b.ID != claims.BookingID || b.EventID != claims.EventID {
			return booking.ErrTokenMismatch
		}

		count := n
		if count < 0 {
			// 残り全員をチェックイン
			count = b.Remaining()
		}
		if err := b.CheckIn(count); err != nil {
			return err
		}

		if err := s.bookingRepo.UpdateCheckIn(ctx, tx, b); err != nil {
			return err
		}

		result = CheckinResult{
			BookingID:      b.ID,
			CheckedInCount: b.CheckedInCount,
			Remaining:      b.Remaining(),
			State:          b.State(),
		}
		return nil
	})
	if err != nil {
		s.countCheckin("checkin", err)
		return nil, err
	}

	s.countCheckin("checkin", nil)
	return &result, nil
}

// Undo は直前のチェックインを取り消しカウンターを n 減らす（下限は0）
// チェックインと同じ理由でトランザクション必須:
// 並行する undo/チェックインの競合で範囲外のカウンターを作らない
func (s *CheckinService) Undo(ctx context.Context, token string, n int) (*CheckinResult, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		s.countCheckin("undo", err)
		return nil, err
	}

	if n <= 0 {
		n = 1
	}

	var result CheckinResult
	err = s.runner.RunInTx(ctx, func(tx transaction.Tx) error {
		b, err := s.bookingRepo.GetByIDTx(ctx, tx, claims.BookingID)
		if err != nil {
			return err
		}
		if b.ID != claims.BookingID || b.EventID != claims.EventID {
			return booking.ErrTokenMismatch
		}

		if err := b.UndoCheckIn(n); err != nil {
			return err
		}

		if err := s.bookingRepo.UpdateCheckIn(ctx, tx, b); err != nil {
			return err
		}

		result = CheckinResult{
			BookingID:      b.ID,
			CheckedInCount: b.CheckedInCount,
			Remaining:      b.Remaining(),
			State:          b.State(),
		}
		return nil
	})
	if err != nil {
		s.countCheckin("undo", err)
		return nil, err
	}

	s.countCheckin("undo", nil)
	return &result, nil
}

// countCheckin はチェックイン操作の結果をメトリクスに記録する
func (s *CheckinService) countCheckin(operation string, err error) {
	m := metrics.Get()
	if m == nil {
		return
	}

	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrTokenMismatch),
		errors.Is(err, booking.ErrExceedsQuantity),
		errors.Is(err, booking.ErrAlreadyFullyCheckedIn),
		errors.Is(err, booking.ErrNothingToUndo),
		errors.Is(err, qrtoken.ErrInvalidToken),
		errors.Is(err, qrtoken.ErrTokenExpired):
		status = "rejected"
	default:
		status = "error"
	}
	m.CheckinsTotal.WithLabelValues(operation, status).Inc()
}
