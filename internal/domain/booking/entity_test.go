package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(quantity int) *Booking {
	return NewBooking("event-1", "Mario", "Rossi", "mario@example.com", "", quantity)
}

func TestNewBooking(t *testing.T) {
	b := newTestBooking(3)

	assert.Equal(t, 3, b.Quantity)
	assert.Equal(t, 0, b.CheckedInCount)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, StateNotCheckedIn, b.State())
}

func TestBooking_CheckIn(t *testing.T) {
	t.Run("部分チェックイン", func(t *testing.T) {
		b := newTestBooking(3)

		require.NoError(t, b.CheckIn(2))
		assert.Equal(t, 2, b.CheckedInCount)
		assert.Equal(t, 1, b.Remaining())
		assert.Equal(t, StatePartiallyCheckedIn, b.State())
	})

	t.Run("全員チェックイン", func(t *testing.T) {
		b := newTestBooking(2)

		require.NoError(t, b.CheckIn(2))
		assert.Equal(t, 0, b.Remaining())
		assert.Equal(t, StateFullyCheckedIn, b.State())
	})

	t.Run("予約枚数を超えるチェックインは拒否される", func(t *testing.T) {
		b := newTestBooking(3)
		require.NoError(t, b.CheckIn(2))

		err := b.CheckIn(2)
		assert.ErrorIs(t, err, ErrExceedsQuantity)
		assert.Equal(t, 2, b.CheckedInCount)
	})

	t.Run("チェックイン済みの予約は専用エラーになる", func(t *testing.T) {
		b := newTestBooking(1)
		require.NoError(t, b.CheckIn(1))

		err := b.CheckIn(1)
		assert.ErrorIs(t, err, ErrAlreadyFullyCheckedIn)
		assert.Equal(t, 1, b.CheckedInCount)
	})

	t.Run("0枚以下のチェックインは拒否される", func(t *testing.T) {
		b := newTestBooking(3)
		assert.ErrorIs(t, b.CheckIn(0), ErrInvalidCheckInCount)
		assert.ErrorIs(t, b.CheckIn(-1), ErrInvalidCheckInCount)
	})
}

// チェックイン列のシナリオ: quantity=3 の予約に対する一連の操作
func TestBooking_CheckIn_Sequence(t *testing.T) {
	b := newTestBooking(3)

	// n=2 → 成功、残り1
	require.NoError(t, b.CheckIn(2))
	assert.Equal(t, 2, b.CheckedInCount)
	assert.Equal(t, 1, b.Remaining())

	// n=2 → 2+2=4>3 で拒否
	assert.ErrorIs(t, b.CheckIn(2), ErrExceedsQuantity)
	assert.Equal(t, 2, b.CheckedInCount)

	// n=1 → 成功、残り0
	require.NoError(t, b.CheckIn(1))
	assert.Equal(t, 3, b.CheckedInCount)
	assert.Equal(t, 0, b.Remaining())

	// n=1 → チェックイン済み
	assert.ErrorIs(t, b.CheckIn(1), ErrAlreadyFullyCheckedIn)

	// undo n=1 → 成功
	require.NoError(t, b.UndoCheckIn(1))
	assert.Equal(t, 2, b.CheckedInCount)
}

func TestBooking_UndoCheckIn(t *testing.T) {
	t.Run("チェックインを取り消せる", func(t *testing.T) {
		b := newTestBooking(3)
		require.NoError(t, b.CheckIn(2))

		require.NoError(t, b.UndoCheckIn(1))
		assert.Equal(t, 1, b.CheckedInCount)
	})

	t.Run("カウンターは0未満にならない", func(t *testing.T) {
		b := newTestBooking(3)
		require.NoError(t, b.CheckIn(1))

		require.NoError(t, b.UndoCheckIn(5))
		assert.Equal(t, 0, b.CheckedInCount)
	})

	t.Run("チェックインがない場合は取り消せない", func(t *testing.T) {
		b := newTestBooking(3)
		assert.ErrorIs(t, b.UndoCheckIn(1), ErrNothingToUndo)
	})
}

// チェックインと取り消しの保存則: n 枚チェックイン直後に n 枚取り消すと元に戻る
func TestBooking_CheckInUndo_Conservation(t *testing.T) {
	b := newTestBooking(5)
	require.NoError(t, b.CheckIn(2))
	before := b.CheckedInCount

	require.NoError(t, b.CheckIn(3))
	require.NoError(t, b.UndoCheckIn(3))
	assert.Equal(t, before, b.CheckedInCount)
}

func TestBooking_State(t *testing.T) {
	b := newTestBooking(2)
	assert.Equal(t, StateNotCheckedIn, b.State())

	require.NoError(t, b.CheckIn(1))
	assert.Equal(t, StatePartiallyCheckedIn, b.State())

	require.NoError(t, b.CheckIn(1))
	assert.Equal(t, StateFullyCheckedIn, b.State())

	require.NoError(t, b.UndoCheckIn(2))
	assert.Equal(t, StateNotCheckedIn, b.State())
}

func TestBooking_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Booking)
		wantErr error
	}{
		{"正常", func(b *Booking) {}, nil},
		{"イベントID必須", func(b *Booking) { b.EventID = "" }, ErrEventIDRequired},
		{"枚数0は不正", func(b *Booking) { b.Quantity = 0 }, ErrInvalidQuantity},
		{"枚数負は不正", func(b *Booking) { b.Quantity = -1 }, ErrInvalidQuantity},
		{"上限超過は不正", func(b *Booking) { b.Quantity = MaxQuantityPerRequest + 1 }, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBooking(2)
			tt.mutate(b)
			err := b.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBooking_MarkSent(t *testing.T) {
	b := newTestBooking(1)
	b.MarkSent()
	assert.Equal(t, StatusSent, b.Status)
}
