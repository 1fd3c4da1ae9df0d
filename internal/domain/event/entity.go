package event

import "time"

// Status はイベントの公開状態を表す
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Event はイベントエンティティを表す
type Event struct {
	ID            string
	Title         string
	Description   string
	Location      string
	StartAt       time.Time
	Status        Status
	Capacity      int // 0 は無制限
	BookingsCount int
	SoldOut       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int // 楽観的ロック用
}

// NewEvent は新しいイベントを作成する
func NewEvent(title, description, location string, startAt time.Time, capacity int, status Status) *Event {
	now := time.Now()
	return &Event{
		Title:       title,
		Description: description,
		Location:    location,
		StartAt:     startAt,
		Status:      status,
		Capacity:    capacity,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}
}

// IsPublished はイベントが公開中かを返す
func (e *Event) IsPublished() bool {
	return e.Status == StatusPublished
}

// IsUnlimited は定員が無制限かを返す
func (e *Event) IsUnlimited() bool {
	return e.Capacity <= 0
}

// Remaining は残り枠数を返す（無制限の場合は -1）
func (e *Event) Remaining() int {
	if e.IsUnlimited() {
		return -1
	}
	r := e.Capacity - e.BookingsCount
	if r < 0 {
		return 0
	}
	return r
}

// RegisterBooking は予約枠を確保しカウンターを更新する
// 事前条件チェックと更新はストアトランザクション内で呼び出すこと
func (e *Event) RegisterBooking(quantity int) error {
	if !e.IsPublished() {
		return ErrEventNotPublished
	}
	if e.SoldOut {
		return ErrSoldOut
	}
	if !e.IsUnlimited() && e.BookingsCount+quantity > e.Capacity {
		return ErrCapacityExceeded
	}

	e.BookingsCount += quantity
	// 一度 true になった SoldOut は false に戻さない
	e.SoldOut = e.SoldOut || (!e.IsUnlimited() && e.BookingsCount >= e.Capacity)
	e.UpdatedAt = time.Now()
	return nil
}

// Publish はイベントを公開状態にする
func (e *Event) Publish() error {
	if e.Status == StatusArchived {
		return ErrEventArchived
	}
	e.Status = StatusPublished
	e.UpdatedAt = time.Now()
	return nil
}

// Archive はイベントをアーカイブ状態にする
func (e *Event) Archive() {
	e.Status = StatusArchived
	e.UpdatedAt = time.Now()
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrTitleRequired
	}
	if e.Capacity < 0 {
		return ErrInvalidCapacity
	}
	switch e.Status {
	case StatusDraft, StatusPublished, StatusArchived:
	default:
		return ErrInvalidStatus
	}
	return nil
}
