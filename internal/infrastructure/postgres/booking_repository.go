package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/transaction"
)

// bookingRow はDBの行を表す構造体
type bookingRow struct {
	ID             string    `db:"id"`
	EventID        string    `db:"event_id"`
	Name           string    `db:"name"`
	Surname        *string   `db:"surname"`
	Email          string    `db:"email"`
	Phone          *string   `db:"phone"`
	Quantity       int       `db:"quantity"`
	CheckedInCount int       `db:"checked_in_count"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	Version        int       `db:"version"`
}

// toEntity はbookingRowをBookingエンティティに変換する
func (r *bookingRow) toEntity() *booking.Booking {
	var surname, phone string
	if r.Surname != nil {
		surname = *r.Surname
	}
	if r.Phone != nil {
		phone = *r.Phone
	}
	return &booking.Booking{
		ID:             r.ID,
		EventID:        r.EventID,
		Name:           r.Name,
		Surname:        surname,
		Email:          r.Email,
		Phone:          phone,
		Quantity:       r.Quantity,
		CheckedInCount: r.CheckedInCount,
		Status:         booking.Status(r.Status),
		CreatedAt:      r.CreatedAt,
		Version:        r.Version,
	}
}

const bookingColumns = `id, event_id, name, surname, email, phone, quantity, checked_in_count, status, created_at, version`

// BookingRepository は予約リポジトリのPostgreSQL実装
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository はBookingRepositoryを作成する
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create は新しい予約を作成する（トランザクション必須）
// イベントカウンターの更新と同一トランザクションで実行すること
func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}

	query := `
		INSERT INTO bookings (event_id, name, surname, email, phone, quantity, checked_in_count, status, created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var surname, phone *string
	if b.Surname != "" {
		surname = &b.Surname
	}
	if b.Phone != "" {
		phone = &b.Phone
	}

	err := sqlxTx.QueryRowContext(ctx, query,
		b.EventID, b.Name, surname, b.Email, phone,
		b.Quantity, b.CheckedInCount, string(b.Status), b.CreatedAt, b.Version,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("予約作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから予約を取得する
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var row bookingRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDTx はトランザクション内でIDから予約を取得する
func (r *BookingRepository) GetByIDTx(ctx context.Context, tx transaction.Tx, id string) (*booking.Booking, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("無効なトランザクションです")
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var row bookingRow
	err := sqlxTx.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByEventID はイベントの予約一覧を取得する
func (r *BookingRepository) GetByEventID(ctx context.Context, eventID string, limit, offset int) ([]*booking.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var rows []bookingRow
	err := r.db.SelectContext(ctx, &rows, query, eventID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗しました: %w", err)
	}

	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

// UpdateCheckIn はトランザクション内でチェックインカウンターを更新する（楽観的ロック）
func (r *BookingRepository) UpdateCheckIn(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}

	query := `
		UPDATE bookings
		SET checked_in_count = $1, version = version + 1
		WHERE id = $2 AND version = $3
	`

	result, err := sqlxTx.ExecContext(ctx, query, b.CheckedInCount, b.ID, b.Version)
	if err != nil {
		return fmt.Errorf("チェックイン更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return booking.ErrOptimisticLockConflict
	}

	b.Version++
	return nil
}

// ListPendingMail は確認メール未送信の予約を取得する
func (r *BookingRepository) ListPendingMail(ctx context.Context, limit int) ([]*booking.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`

	var rows []bookingRow
	err := r.db.SelectContext(ctx, &rows, query, limit)
	if err != nil {
		return nil, fmt.Errorf("未送信予約の取得に失敗しました: %w", err)
	}

	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

// UpdateStatus は予約のメール送信状態を更新する
func (r *BookingRepository) UpdateStatus(ctx context.Context, b *booking.Booking) error {
	query := `UPDATE bookings SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, string(b.Status), b.ID)
	if err != nil {
		return fmt.Errorf("予約状態の更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ booking.Repository = (*BookingRepository)(nil)
