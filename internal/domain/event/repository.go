package event

import (
	"context"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByIDTx はトランザクション内でIDからイベントを取得する
	GetByIDTx(ctx context.Context, tx transaction.Tx, id string) (*Event, error)

	// List はイベント一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Event, error)

	// ListPublished は公開中のイベント一覧を取得する
	ListPublished(ctx context.Context, limit, offset int) ([]*Event, error)

	// Update はイベントを更新する（楽観的ロック）
	Update(ctx context.Context, event *Event) error

	// UpdateCounters はトランザクション内でカウンターを更新する（楽観的ロック）
	// BookingsCount と SoldOut を書き込めるのは予約プロトコルのみ
	UpdateCounters(ctx context.Context, tx transaction.Tx, event *Event) error

	// Delete はイベントを削除する
	Delete(ctx context.Context, id string) error
}
