package booking

import "time"

// Status は予約の確認メール送信状態を表す（業務ロジックには影響しない）
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
)

// CheckInState は予約のチェックイン状態を表す
type CheckInState string

const (
	StateNotCheckedIn       CheckInState = "not_checked_in"
	StatePartiallyCheckedIn CheckInState = "partially_checked_in"
	StateFullyCheckedIn     CheckInState = "fully_checked_in"
)

// MaxQuantityPerRequest は1予約あたりの枚数上限
const MaxQuantityPerRequest = 10

// Booking は予約エンティティを表す
type Booking struct {
	ID             string
	EventID        string
	Name           string
	Surname        string
	Email          string
	Phone          string
	Quantity       int
	CheckedInCount int
	Status         Status
	CreatedAt      time.Time
	Version        int // 楽観的ロック用
}

// NewBooking は新しい予約を作成する
func NewBooking(eventID, name, surname, email, phone string, quantity int) *Booking {
	return &Booking{
		EventID:        eventID,
		Name:           name,
		Surname:        surname,
		Email:          email,
		Phone:          phone,
		Quantity:       quantity,
		CheckedInCount: 0,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
		Version:        0,
	}
}

// CheckIn はチェックイン済み枚数を n 増やす
// 不変条件: 0 <= CheckedInCount <= Quantity
// ストアトランザクション内で呼び出すこと
func (b *Booking) CheckIn(n int) error {
	if b.CheckedInCount >= b.Quantity {
		return ErrAlreadyFullyCheckedIn
	}
	if n <= 0 {
		return ErrInvalidCheckInCount
	}
	if b.CheckedInCount+n > b.Quantity {
		return ErrExceedsQuantity
	}
	b.CheckedInCount += n
	return nil
}

// UndoCheckIn はチェックイン済み枚数を n 減らす（下限は0）
func (b *Booking) UndoCheckIn(n int) error {
	if n <= 0 {
		return ErrInvalidCheckInCount
	}
	if b.CheckedInCount == 0 {
		return ErrNothingToUndo
	}
	b.CheckedInCount -= n
	if b.CheckedInCount < 0 {
		b.CheckedInCount = 0
	}
	return nil
}

// Remaining は未チェックインの枚数を返す
func (b *Booking) Remaining() int {
	return b.Quantity - b.CheckedInCount
}

// State は現在のチェックイン状態を返す
func (b *Booking) State() CheckInState {
	switch {
	case b.CheckedInCount == 0:
		return StateNotCheckedIn
	case b.CheckedInCount < b.Quantity:
		return StatePartiallyCheckedIn
	default:
		return StateFullyCheckedIn
	}
}

// MarkSent は確認メール送信済みにする
func (b *Booking) MarkSent() {
	b.Status = StatusSent
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.EventID == "" {
		return ErrEventIDRequired
	}
	if b.Quantity < 1 || b.Quantity > MaxQuantityPerRequest {
		return ErrInvalidQuantity
	}
	if b.CheckedInCount < 0 || b.CheckedInCount > b.Quantity {
		return ErrInvalidCheckInCount
	}
	return nil
}
