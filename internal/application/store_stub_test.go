package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/transaction"
)

// memStore はテスト用のインメモリ版トランザクショナルストア
// PostgreSQL実装と同じ楽観的ロック方式（バージョン比較 + リトライ）を
// 再現し、DBなしで並行シナリオを検証できるようにする
type memStore struct {
	mu       sync.RWMutex
	events   map[string]*event.Event
	bookings map[string]*booking.Booking
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		events:   make(map[string]*event.Event),
		bookings: make(map[string]*booking.Booking),
	}
}

func (s *memStore) genID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func copyEvent(e *event.Event) *event.Event {
	c := *e
	return &c
}

func copyBooking(b *booking.Booking) *booking.Booking {
	c := *b
	return &c
}

// memTx はコミットまで書き込みをバッファするトランザクション
// コミット時にバージョンを比較し、競合していれば楽観的ロックエラーを返す
type memTx struct {
	store          *memStore
	createBookings []*booking.Booking
	eventUpdates   []*event.Event
	checkinUpdates []*booking.Booking
	committed      bool
}

func (t *memTx) Commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// バージョン検証（全て通ってから適用する）
	for _, e := range t.eventUpdates {
		current, ok := s.events[e.ID]
		if !ok || current.Version != e.Version {
			return event.ErrOptimisticLockConflict
		}
	}
	for _, b := range t.checkinUpdates {
		current, ok := s.bookings[b.ID]
		if !ok || current.Version != b.Version {
			return booking.ErrOptimisticLockConflict
		}
	}

	for _, e := range t.eventUpdates {
		applied := copyEvent(e)
		applied.Version++
		s.events[e.ID] = applied
	}
	for _, b := range t.checkinUpdates {
		applied := copyBooking(b)
		applied.Version++
		s.bookings[b.ID] = applied
	}
	for _, b := range t.createBookings {
		if b.ID == "" {
			b.ID = s.genID("booking")
		}
		s.bookings[b.ID] = copyBooking(b)
	}

	t.committed = true
	return nil
}

func (t *memTx) Rollback() error {
	t.createBookings = nil
	t.eventUpdates = nil
	t.checkinUpdates = nil
	return nil
}

// memRunner は競合時にリトライする transaction.Runner 実装
type memRunner struct {
	store *memStore
}

// テストではバックオフなしで多めにリトライする
const memMaxAttempts = 100

func (r *memRunner) Begin(ctx context.Context) (transaction.Tx, error) {
	return &memTx{store: r.store}, nil
}

func (r *memRunner) RunInTx(ctx context.Context, fn func(tx transaction.Tx) error) error {
	for attempt := 0; attempt < memMaxAttempts; attempt++ {
		tx := &memTx{store: r.store}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		err := tx.Commit()
		if err == nil {
			return nil
		}
		if err != event.ErrOptimisticLockConflict && err != booking.ErrOptimisticLockConflict {
			return err
		}
	}
	return transaction.ErrConflict
}

func unwrapMemTx(tx transaction.Tx) *memTx {
	if t, ok := tx.(*memTx); ok {
		return t
	}
	return nil
}

// memEventRepository は event.Repository のインメモリ実装
type memEventRepository struct {
	store *memStore
}

func (r *memEventRepository) Create(ctx context.Context, e *event.Event) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = s.genID("event")
	}
	s.events[e.ID] = copyEvent(e)
	return nil
}

func (r *memEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return copyEvent(e), nil
}

func (r *memEventRepository) GetByIDTx(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *memEventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]*event.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, copyEvent(e))
	}
	return events, nil
}

func (r *memEventRepository) ListPublished(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]*event.Event, 0)
	for _, e := range s.events {
		if e.IsPublished() {
			events = append(events, copyEvent(e))
		}
	}
	return events, nil
}

func (r *memEventRepository) Update(ctx context.Context, e *event.Event) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.events[e.ID]
	if !ok {
		return event.ErrEventNotFound
	}
	if current.Version != e.Version {
		return event.ErrOptimisticLockConflict
	}
	applied := copyEvent(e)
	applied.Version++
	s.events[e.ID] = applied
	e.Version++
	return nil
}

func (r *memEventRepository) UpdateCounters(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	t := unwrapMemTx(tx)
	if t == nil {
		return fmt.Errorf("無効なトランザクションです")
	}
	t.eventUpdates = append(t.eventUpdates, copyEvent(e))
	return nil
}

func (r *memEventRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return event.ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

// memBookingRepository は booking.Repository のインメモリ実装
type memBookingRepository struct {
	store *memStore
}

func (r *memBookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	t := unwrapMemTx(tx)
	if t == nil {
		return fmt.Errorf("無効なトランザクションです")
	}
	t.createBookings = append(t.createBookings, b)
	return nil
}

func (r *memBookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

func (r *memBookingRepository) GetByIDTx(ctx context.Context, tx transaction.Tx, id string) (*booking.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *memBookingRepository) GetByEventID(ctx context.Context, eventID string, limit, offset int) ([]*booking.Booking, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	bookings := make([]*booking.Booking, 0)
	for _, b := range s.bookings {
		if b.EventID == eventID {
			bookings = append(bookings, copyBooking(b))
		}
	}
	return bookings, nil
}

func (r *memBookingRepository) UpdateCheckIn(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	t := unwrapMemTx(tx)
	if t == nil {
		return fmt.Errorf("無効なトランザクションです")
	}
	t.checkinUpdates = append(t.checkinUpdates, copyBooking(b))
	return nil
}

func (r *memBookingRepository) ListPendingMail(ctx context.Context, limit int) ([]*booking.Booking, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	bookings := make([]*booking.Booking, 0)
	for _, b := range s.bookings {
		if b.Status == booking.StatusPending {
			bookings = append(bookings, copyBooking(b))
			if len(bookings) >= limit {
				break
			}
		}
	}
	return bookings, nil
}

func (r *memBookingRepository) UpdateStatus(ctx context.Context, b *booking.Booking) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.bookings[b.ID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	current.Status = b.Status
	return nil
}

// bookingCount はストア内の予約ドキュメント数を返す（検証用）
func (s *memStore) bookingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookings)
}

// quantitySum はイベントの予約枚数合計を返す（検証用）
func (s *memStore) quantitySum(eventID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := 0
	for _, b := range s.bookings {
		if b.EventID == eventID {
			sum += b.Quantity
		}
	}
	return sum
}

// setupMemEnv はインメモリストアとサービス一式を作成する
func setupMemEnv() (*memStore, *BookingService, *EventService) {
	store := newMemStore()
	runner := &memRunner{store: store}
	eventRepo := &memEventRepository{store: store}
	bookingRepo := &memBookingRepository{store: store}

	eventService := NewEventService(eventRepo, nil)
	bookingService := NewBookingService(runner, bookingRepo, eventRepo, nil)
	return store, bookingService, eventService
}

// インターフェースを満たしているか確認
var (
	_ transaction.Runner  = (*memRunner)(nil)
	_ event.Repository    = (*memEventRepository)(nil)
	_ booking.Repository  = (*memBookingRepository)(nil)
	_ transaction.Manager = (*memRunner)(nil)
)
