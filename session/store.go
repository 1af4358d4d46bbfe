package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the backing store cannot be reached.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionCorrupt is returned by [Store.Load] when the stored user record
// is not valid JSON. The entries are left in place; the caller decides
// whether to clear them.
var ErrSessionCorrupt = errors.New("stored session corrupt")

// Entry names under the store's key prefix. These match the key names used
// by the portal's durable storage convention and must not change without a
// migration.
const (
	entryUser         = "user"
	entryToken        = "token"
	entryRefreshToken = "refreshToken"
)

// Store persists a [Session] as three independent entries in Redis.
//
// Save is pipelined but not atomic: a crash between entry writes can leave
// a partial session behind. Load surfaces a corrupt user entry as
// [ErrSessionCorrupt] instead of swallowing it.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix namespaces the three session entries.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) key(entry string) string {
	return s.prefix + ":" + entry
}

// Load reads the persisted session. Missing entries yield their zero
// values; a session with no stored entries loads as empty. A user entry
// that fails to decode returns [ErrSessionCorrupt].
func (s *Store) Load(ctx context.Context) (Session, error) {
	vals, err := s.redis.MGet(ctx,
		s.key(entryUser),
		s.key(entryToken),
		s.key(entryRefreshToken),
	).Result()
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var sess Session
	if raw, ok := vals[0].(string); ok && raw != "" {
		var user User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return Session{}, fmt.Errorf("%w: user entry: %v", ErrSessionCorrupt, err)
		}
		sess.User = &user
	}
	if raw, ok := vals[1].(string); ok {
		sess.AccessToken = raw
	}
	if raw, ok := vals[2].(string); ok {
		sess.RefreshToken = raw
	}

	return sess, nil
}

// Save writes the session as three entries in one pipeline. Entries whose
// value is empty are deleted so that a later Load round-trips to the same
// session. No atomicity is guaranteed across the three writes.
func (s *Store) Save(ctx context.Context, sess Session) error {
	var userJSON []byte
	if sess.User != nil {
		data, err := json.Marshal(sess.User)
		if err != nil {
			return err
		}
		userJSON = data
	}

	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		if userJSON != nil {
			pipe.Set(ctx, s.key(entryUser), userJSON, 0)
		} else {
			pipe.Del(ctx, s.key(entryUser))
		}
		if sess.AccessToken != "" {
			pipe.Set(ctx, s.key(entryToken), sess.AccessToken, 0)
		} else {
			pipe.Del(ctx, s.key(entryToken))
		}
		if sess.RefreshToken != "" {
			pipe.Set(ctx, s.key(entryRefreshToken), sess.RefreshToken, 0)
		} else {
			pipe.Del(ctx, s.key(entryRefreshToken))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Clear removes all three session entries. Clearing an already-empty store
// is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	err := s.redis.Del(ctx,
		s.key(entryUser),
		s.key(entryToken),
		s.key(entryRefreshToken),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}
