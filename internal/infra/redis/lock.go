package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"
)

// Locker SET NX EX based lock
type Locker struct {
	client radix.Client
	ttl    time.Duration
}

func NewLocker(client radix.Client, ttl time.Duration) *Locker {
	if ttl < time.Second {
		ttl = time.Second
	}
	return &Locker{client: client, ttl: ttl}
}

// Acquire takes key for the lock ttl. The returned release only deletes the
// key while it still holds this caller's token.
func (l *Locker) Acquire(_ context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	var reply string
	mn := radix.MaybeNil{Rcv: &reply}
	if err := l.client.Do(radix.FlatCmd(&mn, "SET", key, token, "NX", "EX", int(l.ttl/time.Second))); err != nil {
		return nil, false, err
	}
	if mn.Nil || reply != "OK" {
		return nil, false, nil
	}
	release := func() {
		var cur string
		if err := l.client.Do(radix.Cmd(&cur, "GET", key)); err != nil {
			zap.L().Warn("lock release failed", zap.String("key", key), zap.Error(err))
			return
		}
		if cur != token {
			return
		}
		if err := l.client.Do(radix.Cmd(nil, "DEL", key)); err != nil {
			zap.L().Warn("lock release failed", zap.String("key", key), zap.Error(err))
		}
	}
	return release, true, nil
}
