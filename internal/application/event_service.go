package application

import (
	"context"
	"fmt"
	"time"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
	redisinfra "github.com/DanieleGelsomino/djscovery-sub000/internal/infrastructure/redis"
)

// EventService はイベントの管理操作と公開一覧を提供する
// BookingsCount / SoldOut を書き換えるのは予約プロトコルのみで、
// このサービスは定員やステータスなどの管理項目だけを更新する
type EventService struct {
	eventRepo event.Repository
	cache     *redisinfra.AvailabilityCache
}

// NewEventService は新しいEventServiceを作成する
func NewEventService(eventRepo event.Repository, cache *redisinfra.AvailabilityCache) *EventService {
	return &EventService{eventRepo: eventRepo, cache: cache}
}

// CreateEventInput はイベント作成の入力を表す
type CreateEventInput struct {
	Title       string
	Description string
	Location    string
	StartAt     time.Time
	Capacity    int
	Published   bool
}

// CreateEvent は新しいイベントを作成する（下書きまたは公開）
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	status := event.StatusDraft
	if input.Published {
		status = event.StatusPublished
	}

	e := event.NewEvent(input.Title, input.Description, input.Location, input.StartAt, input.Capacity, status)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return e, nil
}

// GetEvent はIDからイベントを取得する
func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 一覧・詳細の読み取りではキャッシュ済みスナップショットを補充する
	if s.cache != nil {
		_ = s.cache.Set(ctx, e.ID, redisinfra.Availability{
			BookingsCount: e.BookingsCount,
			SoldOut:       e.SoldOut,
		})
	}
	return e, nil
}

// ListEvents は全イベント一覧を取得する（管理用）
func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	limit, offset = clampPage(limit, offset)
	return s.eventRepo.List(ctx, limit, offset)
}

// ListPublishedEvents は公開中のイベント一覧を取得する
func (s *EventService) ListPublishedEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	limit, offset = clampPage(limit, offset)
	events, err := s.eventRepo.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	// キャッシュに新しい空き状況があれば上書きする（一覧の鮮度向上）
	if s.cache != nil {
		for _, e := range events {
			if a, err := s.cache.Get(ctx, e.ID); err == nil {
				e.BookingsCount = a.BookingsCount
				e.SoldOut = a.SoldOut
			}
		}
	}
	return events, nil
}

// UpdateEventInput はイベント更新の入力を表す
type UpdateEventInput struct {
	ID          string
	Title       string
	Description string
	Location    string
	StartAt     time.Time
	Capacity    int
}

// UpdateEvent はイベントの管理項目を更新する
func (s *EventService) UpdateEvent(ctx context.Context, input UpdateEventInput) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	e.Title = input.Title
	e.Description = input.Description
	e.Location = input.Location
	e.StartAt = input.StartAt
	e.Capacity = input.Capacity
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// PublishEvent はイベントを公開する
func (s *EventService) PublishEvent(ctx context.Context, id string) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.Publish(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ArchiveEvent はイベントをアーカイブする
func (s *EventService) ArchiveEvent(ctx context.Context, id string) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Archive()
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, e.ID)
	}
	return e, nil
}

// DeleteEvent はイベントを削除する
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, id)
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
