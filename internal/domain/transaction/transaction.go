package transaction

import (
	"context"
	"errors"
)

// ErrConflict はリトライ上限まで競合が解消しなかったことを表す
// 呼び出し側には業務エラーではなく内部エラーとして報告される
var ErrConflict = errors.New("トランザクションの競合がリトライ上限まで解消しませんでした")

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
}

// Manager はトランザクションを管理するインターフェース
type Manager interface {
	// Begin は新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)
}

// Runner はリトライ付きトランザクション実行のインターフェース
// 同一ドキュメントに対する複数フィールドの read-modify-write は
// 必ず1つの fn の中で行うこと（呼び出しをまたぐ分離保証はない）
type Runner interface {
	// RunInTx は fn をトランザクション内で実行する
	// fn がエラーを返した場合はロールバックし、競合エラーの場合は
	// 新しいトランザクションで透過的にリトライする（上限あり）
	// 上限到達時は ErrConflict を返す
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}
