package booking

import (
	"context"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByIDTx はトランザクション内でIDから予約を取得する
	GetByIDTx(ctx context.Context, tx transaction.Tx, id string) (*Booking, error)

	// GetByEventID はイベントの予約一覧を取得する
	GetByEventID(ctx context.Context, eventID string, limit, offset int) ([]*Booking, error)

	// UpdateCheckIn はトランザクション内でチェックインカウンターを更新する（楽観的ロック）
	// CheckedInCount を書き込めるのはチェックインプロトコルのみ
	UpdateCheckIn(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// ListPendingMail は確認メール未送信の予約を取得する
	ListPendingMail(ctx context.Context, limit int) ([]*Booking, error)

	// UpdateStatus は予約のメール送信状態を更新する
	UpdateStatus(ctx context.Context, booking *Booking) error
}
