package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

// 所有者確認と操作をアトミックに行うLuaスクリプト
var (
	releaseScript = redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0
	`)
	extendScript = redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("PEXPIRE", KEYS[1], ARGV[2])
		end
		return 0
	`)
)

// DistributedLock は Redis 上の分散ロックのハンドル
// 予約・チェックインの排他制御には使用しない（そちらはストアトランザクションが担う）
// 複数インスタンス構成でメール送信ワーカーが重複実行されるのを防ぐために使う
type DistributedLock struct {
	client *redis.Client
	key    string
	owner  string
}

// LockManager は分散ロックの取得を管理する
type LockManager struct {
	client *redis.Client
}

func NewLockManager(client *redis.Client) *LockManager {
	return &LockManager{client: client}
}

// AcquireLock はロックを取得する
// 他の所有者が保持している間は ErrLockNotAcquired を返す
func (m *LockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	lockKey := "lock:" + key
	owner := uuid.NewString()

	ok, err := m.client.SetNX(ctx, lockKey, owner, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗しました: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}
	return &DistributedLock{client: m.client, key: lockKey, owner: owner}, nil
}

// AcquireLockWithRetry はロックが解放されるまで一定間隔で取得を試みる
func (m *LockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (*DistributedLock, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lock, err := m.AcquireLock(ctx, key, ttl)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, lastErr
}

// Release はロックを解放する
// 所有者でなくなっていた場合（TTL失効後に他者が取得）は ErrLockNotOwned
func (l *DistributedLock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.owner).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗しました: %w", err)
	}
	if n == 0 {
		return ErrLockNotOwned
	}
	return nil
}

// Extend はロックの有効期限を延長する
func (l *DistributedLock) Extend(ctx context.Context, ttl time.Duration) error {
	n, err := extendScript.Run(ctx, l.client, []string{l.key}, l.owner, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("ロック延長に失敗しました: %w", err)
	}
	if n == 0 {
		return ErrLockNotOwned
	}
	return nil
}
