package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/krisztak/kidevent/internal/pkg/metrics"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

// 所有者確認と削除をアトミックに行う
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// DistributedLock は Redis を使用した分散ロック
type DistributedLock struct {
	client *redis.Client
	key    string
	value  string
}

// LockManager は分散ロックを管理する
type LockManager struct {
	client *redis.Client
}

func NewLockManager(client *redis.Client) *LockManager {
	return &LockManager{client: client}
}

// AcquireLock はロックを取得する
// 既に他の所有者がいる場合は待たずに ErrLockNotAcquired を返す
func (m *LockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	lockValue := uuid.New().String()

	ok, err := m.client.SetNX(ctx, lockKey, lockValue, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	return &DistributedLock{
		client: m.client,
		key:    lockKey,
		value:  lockValue,
	}, nil
}

// Release はロックを解放する
// TTL切れ等で他の所有者に移っている場合は ErrLockNotOwned を返す
func (l *DistributedLock) Release(ctx context.Context) error {
	result, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.value).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}

// RegistrationLocker は（イベント, 申込者）単位で処理中の申込を排他する
type RegistrationLocker struct {
	locks *LockManager
	ttl   time.Duration
}

// NewRegistrationLocker はRegistrationLockerを作成する
func NewRegistrationLocker(client *redis.Client, ttl time.Duration) *RegistrationLocker {
	return &RegistrationLocker{locks: NewLockManager(client), ttl: ttl}
}

// RegistrationLockKey はロックキーを返す
// registrantKey は子どもの申込なら子どもID、本人の申込なら保護者ID
func RegistrationLockKey(eventID, registrantKey string) string {
	return fmt.Sprintf("registration:%s:%s", eventID, registrantKey)
}

// Lock はロックを取得し、解放関数を返す
func (l *RegistrationLocker) Lock(ctx context.Context, eventID, registrantKey string) (func(context.Context) error, error) {
	start := time.Now()
	lock, err := l.locks.AcquireLock(ctx, RegistrationLockKey(eventID, registrantKey), l.ttl)
	metrics.ObserveLock("acquire", err == nil, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		start := time.Now()
		err := lock.Release(ctx)
		metrics.ObserveLock("release", err == nil, time.Since(start).Seconds())
		return err
	}, nil
}
