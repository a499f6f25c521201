package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// LockName は整合ジョブの分散ロックのキー。
const LockName = "pianoclass:reconcile"

// ErrLockHeld は他のレプリカがロックを保持しているためジョブを実行できないことを示す。
var ErrLockHeld = errors.New("整合ジョブのロックは他のプロセスが保持しています")

// Locker はジョブの多重実行を防ぐロック。
// 取得できた場合は解放関数を返す。
type Locker interface {
	TryLock(ctx context.Context) (unlock func(context.Context) error, err error)
}

// RedisLocker はredsyncによるRedis分散ロック。
type RedisLocker struct {
	rs  *redsync.Redsync
	ttl time.Duration
}

// NewRedisLocker はRedisクライアントからRedisLockerを生成する。
// ttlはジョブが異常終了した場合にロックが自動解放されるまでの時間。
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		rs:  redsync.New(goredis.NewPool(client)),
		ttl: ttl,
	}
}

// TryLock はロックを1回だけ試行する。
// 他のプロセスが保持している場合はErrLockHeldをラップして返し、Redisとの通信失敗はそのまま返す。
func (l *RedisLocker) TryLock(ctx context.Context) (func(context.Context) error, error) {
	mutex := l.rs.NewMutex(LockName,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(1),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, classifyLockError(err)
	}
	return func(ctx context.Context) error {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			return fmt.Errorf("整合ジョブのロック解放に失敗: %w", err)
		}
		return nil
	}, nil
}

// classifyLockError はredsyncのロック取得エラーを分類する。
// 保持されていることを示すエラーのみErrLockHeldとして扱う。
func classifyLockError(err error) error {
	var taken *redsync.ErrTaken
	if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
		return fmt.Errorf("%w: %v", ErrLockHeld, err)
	}
	return fmt.Errorf("整合ジョブのロック取得に失敗: %w", err)
}
