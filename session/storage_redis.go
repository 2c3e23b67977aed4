package session

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// sessionKey mirrors the key the mobile clients use in their local
// key-value storage.
const sessionKey = "session"

// RedisStorage persists the session in Redis under a single key. Useful
// when several processes on the same host should share one login, e.g.
// scripted tooling next to the CLI.
type RedisStorage struct {
	rdb redis.UniversalClient
	key string
}

// NewRedisStorage returns a RedisStorage backed by the given client.
func NewRedisStorage(rdb redis.UniversalClient) *RedisStorage {
	return &RedisStorage{rdb: rdb, key: sessionKey}
}

func (r *RedisStorage) Load(ctx context.Context) (Session, bool, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, errors.Wrap(err, "[RedisStorage.Load] get session key")
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, false, errors.Wrap(err, "[RedisStorage.Load] decode session")
	}
	return s, true, nil
}

func (r *RedisStorage) Save(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "[RedisStorage.Save] encode session")
	}
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return errors.Wrap(err, "[RedisStorage.Save] set session key")
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return errors.Wrap(err, "[RedisStorage.Delete] del session key")
	}
	return nil
}

var _ Storage = (*RedisStorage)(nil)
