package acl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisTimeout bounds each Redis round trip.
const redisTimeout = 5 * time.Second

// RedisStore keeps each access list in a hash of user ID to role name.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore stores access lists under prefix, normally the prefix of the
// document store.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(docID string) string {
	return r.prefix + "acl:" + docID
}

func (r *RedisStore) Grant(docID, userID string, role Role) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.client.HSet(ctx, r.key(docID), userID, role.String()).Err(); err != nil {
		return fmt.Errorf("grant: %w", err)
	}

	return nil
}

func (r *RedisStore) Revoke(docID, userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	n, err := r.client.HDel(ctx, r.key(docID), userID).Result()
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}

	if n == 0 {
		return ErrPermissionNotFound
	}

	return nil
}

func (r *RedisStore) RevokeAll(docID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.client.Del(ctx, r.key(docID)).Err(); err != nil {
		return fmt.Errorf("revoke all: %w", err)
	}

	return nil
}

func (r *RedisStore) GetRole(docID, userID string) (Role, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	name, err := r.client.HGet(ctx, r.key(docID), userID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrPermissionNotFound
	}

	if err != nil {
		return 0, fmt.Errorf("get role: %w", err)
	}

	return ParseRole(name)
}

func (r *RedisStore) ListPermissions(docID string) ([]Permission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	entries, err := r.client.HGetAll(ctx, r.key(docID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	perms := make([]Permission, 0, len(entries))

	for userID, name := range entries {
		role, err := ParseRole(name)
		if err != nil {
			return nil, err
		}

		perms = append(perms, Permission{DocID: docID, UserID: userID, Role: role})
	}

	sortByUser(perms)

	return perms, nil
}

var _ Store = (*RedisStore)(nil)
