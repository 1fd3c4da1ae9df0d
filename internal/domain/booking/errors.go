package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound        = errors.New("予約が見つかりません")
	ErrEventIDRequired        = errors.New("イベントIDは必須です")
	ErrInvalidQuantity        = errors.New("枚数は1以上10以下である必要があります")
	ErrInvalidCheckInCount    = errors.New("チェックイン枚数は1以上である必要があります")
	ErrExceedsQuantity        = errors.New("予約枚数を超えてチェックインすることはできません")
	ErrAlreadyFullyCheckedIn  = errors.New("予約は既に全員チェックイン済みです")
	ErrNothingToUndo          = errors.New("取り消せるチェックインがありません")
	ErrTokenMismatch          = errors.New("トークンと予約が一致しません")
	ErrOptimisticLockConflict = errors.New("楽観的ロックの競合が発生しました")
)
