package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/transaction"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	Description   *string   `db:"description"`
	Location      *string   `db:"location"`
	StartAt       time.Time `db:"start_at"`
	Status        string    `db:"status"`
	Capacity      int       `db:"capacity"`
	BookingsCount int       `db:"bookings_count"`
	SoldOut       bool      `db:"sold_out"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	Version       int       `db:"version"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	var desc, location string
	if r.Description != nil {
		desc = *r.Description
	}
	if r.Location != nil {
		location = *r.Location
	}
	return &event.Event{
		ID:            r.ID,
		Title:         r.Title,
		Description:   desc,
		Location:      location,
		StartAt:       r.StartAt,
		Status:        event.Status(r.Status),
		Capacity:      r.Capacity,
		BookingsCount: r.BookingsCount,
		SoldOut:       r.SoldOut,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Version:       r.Version,
	}
}

const eventColumns = `id, title, description, location, start_at, status, capacity, bookings_count, sold_out, created_at, updated_at, version`

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (title, description, location, start_at, status, capacity, bookings_count, sold_out, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var desc, location *string
	if e.Description != "" {
		desc = &e.Description
	}
	if e.Location != "" {
		location = &e.Location
	}

	err := r.db.QueryRowContext(ctx, query,
		e.Title, desc, location, e.StartAt, string(e.Status), e.Capacity,
		e.BookingsCount, e.SoldOut, e.CreatedAt, e.UpdatedAt, e.Version,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDTx はトランザクション内でIDからイベントを取得する
func (r *EventRepository) GetByIDTx(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("無効なトランザクションです")
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := sqlxTx.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はイベント一覧を取得する
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY start_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.selectEvents(ctx, query, limit, offset)
}

// ListPublished は公開中のイベント一覧を取得する
func (r *EventRepository) ListPublished(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = 'published'
		ORDER BY start_at ASC
		LIMIT $1 OFFSET $2
	`
	return r.selectEvents(ctx, query, limit, offset)
}

func (r *EventRepository) selectEvents(ctx context.Context, query string, args ...interface{}) ([]*event.Event, error) {
	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// Update はイベントを更新する（楽観的ロック）
// カウンター（bookings_count, sold_out）はここでは更新しない
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, start_at = $4,
		    status = $5, capacity = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND version = $9
	`

	var desc, location *string
	if e.Description != "" {
		desc = &e.Description
	}
	if e.Location != "" {
		location = &e.Location
	}

	result, err := r.db.ExecContext(ctx, query,
		e.Title, desc, location, e.StartAt, string(e.Status), e.Capacity, time.Now(), e.ID, e.Version,
	)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrOptimisticLockConflict
	}

	e.Version++
	return nil
}

// UpdateCounters はトランザクション内でカウンターを更新する（楽観的ロック）
// 更新が0行の場合は競合としてストア層がリトライする
func (r *EventRepository) UpdateCounters(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}

	query := `
		UPDATE events
		SET bookings_count = $1, sold_out = $2, updated_at = $3, version = version + 1
		WHERE id = $4 AND version = $5
	`

	result, err := sqlxTx.ExecContext(ctx, query,
		e.BookingsCount, e.SoldOut, time.Now(), e.ID, e.Version,
	)
	if err != nil {
		return fmt.Errorf("カウンター更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrOptimisticLockConflict
	}

	e.Version++
	return nil
}

// Delete はイベントを削除する
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("イベント削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
