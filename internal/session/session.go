package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session is the redis-persisted login session payload.
type Session struct {
	UserID    string `json:"uid"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Store keeps login sessions in redis, plus a per-user set of session IDs so
// deleting a user revokes every session they hold.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func sessKey(id string) string     { return fmt.Sprintf("fleet:sess:%s", id) }
func userSetKey(uid string) string { return fmt.Sprintf("fleet:user_sessions:%s", uid) }

// Create persists a new session under the given ID.
func (s *Store) Create(ctx context.Context, id string, sess Session) error {
	now := time.Now()
	sess.IssuedAt = now.Unix()
	sess.ExpiresAt = now.Add(s.ttl).Unix()
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, sessKey(id), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(sess.UserID), id)
	pipe.Expire(ctx, userSetKey(sess.UserID), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Get loads a session by ID.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	b, err := s.rdb.Get(ctx, sessKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Delete drops one session.
func (s *Store) Delete(ctx context.Context, id string) error {
	sess, _ := s.Get(ctx, id)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, sessKey(id))
	if sess != nil {
		pipe.SRem(ctx, userSetKey(sess.UserID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForUser drops every session the user holds.
func (s *Store) RevokeAllForUser(ctx context.Context, userID string) error {
	ids, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, sessKey(sid))
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
