package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound          = errors.New("イベントが見つかりません")
	ErrEventNotPublished      = errors.New("イベントは公開されていません")
	ErrEventArchived          = errors.New("イベントはアーカイブされています")
	ErrSoldOut                = errors.New("イベントは売り切れです")
	ErrCapacityExceeded       = errors.New("残り枠数を超える予約はできません")
	ErrTitleRequired          = errors.New("イベント名は必須です")
	ErrInvalidCapacity        = errors.New("定員は0以上である必要があります")
	ErrInvalidStatus          = errors.New("不正なイベントステータスです")
	ErrOptimisticLockConflict = errors.New("楽観的ロックの競合が発生しました")
)
