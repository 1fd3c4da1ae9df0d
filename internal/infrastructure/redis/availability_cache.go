package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// Availability はイベントの空き状況のスナップショットを表す
// 正は常にDB側のカウンターであり、キャッシュは一覧表示用の読み取り専用コピー
type Availability struct {
	BookingsCount int  `json:"bookings_count"`
	SoldOut       bool `json:"sold_out"`
}

// AvailabilityCache はイベント空き状況のキャッシュを管理する
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

// Get はイベントの空き状況をキャッシュから取得する
func (c *AvailabilityCache) Get(ctx context.Context, eventID string) (*Availability, error) {
	val, err := c.client.Get(ctx, c.key(eventID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var a Availability
	if err := json.Unmarshal(val, &a); err != nil {
		return nil, fmt.Errorf("キャッシュのデコードに失敗: %w", err)
	}
	return &a, nil
}

// Set はイベントの空き状況をキャッシュに保存する
func (c *AvailabilityCache) Set(ctx context.Context, eventID string, a Availability) error {
	val, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("キャッシュのエンコードに失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.key(eventID), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベントのキャッシュを無効化する
// 予約確定後に呼び出され、次回読み取りでDBから再取得される
func (c *AvailabilityCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, c.key(eventID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) key(eventID string) string {
	return fmt.Sprintf("events:availability:%s", eventID)
}
