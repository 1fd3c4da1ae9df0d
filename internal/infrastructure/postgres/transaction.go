package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/transaction"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/metrics"
)

// リトライ上限と初期バックオフ
// 上限到達時は transaction.ErrConflict として呼び出し側に報告される
const (
	maxTxAttempts  = 5
	initialBackoff = 10 * time.Millisecond
)

// TxWrapper は sqlx.Tx を transaction.Tx インターフェースでラップする
type TxWrapper struct {
	*sqlx.Tx
}

// Commit はトランザクションをコミットする
func (t *TxWrapper) Commit() error {
	return t.Tx.Commit()
}

// Rollback はトランザクションをロールバックする
func (t *TxWrapper) Rollback() error {
	return t.Tx.Rollback()
}

// TxManager は sqlx.DB を使用したトランザクションマネージャー
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager は新しい TxManager を作成する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin は新しいトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &TxWrapper{Tx: tx}, nil
}

// RunInTx は fn をトランザクション内で実行する
// 楽観的ロック競合と直列化失敗は新しいトランザクションで透過的に
// リトライする。業務エラーはリトライせずそのまま返す
func (m *TxManager) RunInTx(ctx context.Context, fn func(tx transaction.Tx) error) error {
	backoff := initialBackoff

	for attempt := 1; ; attempt++ {
		err := m.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isConflict(err) {
			return err
		}
		if attempt >= maxTxAttempts {
			return transaction.ErrConflict
		}

		if m := metrics.Get(); m != nil {
			m.TxRetriesTotal.Inc()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (m *TxManager) runOnce(ctx context.Context, fn func(tx transaction.Tx) error) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	wrapper := &TxWrapper{Tx: tx}

	if err := fn(wrapper); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// isConflict はリトライ可能な競合エラーかを判定する
func isConflict(err error) bool {
	if errors.Is(err, event.ErrOptimisticLockConflict) ||
		errors.Is(err, booking.ErrOptimisticLockConflict) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 40001: serialization_failure, 40P01: deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// リポジトリ実装で使用する
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok {
		return wrapper.Tx
	}
	return nil
}

// インターフェースを満たしているか確認
var (
	_ transaction.Manager = (*TxManager)(nil)
	_ transaction.Runner  = (*TxManager)(nil)
)
