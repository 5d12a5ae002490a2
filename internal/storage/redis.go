package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisStore.
const DefaultRedisPrefix = "pdfcraft:"

// RedisStore keeps each document in a hash and the document IDs in a set.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOptions configure RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return NewRedisStore(client, opts.Prefix), nil
}

// NewRedisStore wraps an existing client. An empty prefix selects DefaultRedisPrefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	return &RedisStore{client: client, prefix: prefix}
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Client returns the underlying connection.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

// Prefix returns the key prefix shared by every key the store writes.
func (r *RedisStore) Prefix() string {
	return r.prefix
}

func (r *RedisStore) indexKey() string {
	return r.prefix + "docs"
}

func (r *RedisStore) docKey(docID string) string {
	return r.prefix + "doc:" + docID
}

// CreateDocument registers the ID and writes an empty hash.
func (r *RedisStore) CreateDocument(ctx context.Context, docID string) error {
	added, err := r.client.SAdd(ctx, r.indexKey(), docID).Result()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	if added == 0 {
		return ErrDocumentExists
	}

	now := strconv.FormatInt(time.Now().UnixNano(), 10)

	if err := r.client.HSet(ctx, r.docKey(docID), "created_at", now, "updated_at", now).Err(); err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// DocumentExists checks the ID set.
func (r *RedisStore) DocumentExists(ctx context.Context, docID string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.indexKey(), docID).Result()
	if err != nil {
		return false, fmt.Errorf("document exists: %w", err)
	}

	return ok, nil
}

// SaveSnapshot overwrites the document hash.
func (r *RedisStore) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	exists, err := r.DocumentExists(ctx, snap.DocID)
	if err != nil {
		return err
	}

	if !exists {
		return ErrDocumentNotFound
	}

	snap = stamp(snap)

	err = r.client.HSet(ctx, r.docKey(snap.DocID), map[string]any{
		"title":      snap.Title,
		"content":    snap.Content,
		"revision":   snap.Revision,
		"updated_at": strconv.FormatInt(snap.CreatedAt.UnixNano(), 10),
		"snapshot":   "1",
	}).Err()
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads the document hash.
func (r *RedisStore) LoadSnapshot(ctx context.Context, docID string) (Snapshot, error) {
	fields, err := r.client.HGetAll(ctx, r.docKey(docID)).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	if len(fields) == 0 {
		return Snapshot{}, ErrDocumentNotFound
	}

	if fields["snapshot"] != "1" {
		return Snapshot{}, ErrSnapshotNotFound
	}

	revision, _ := strconv.Atoi(fields["revision"])

	return Snapshot{
		DocID:     docID,
		Title:     fields["title"],
		Content:   fields["content"],
		Revision:  revision,
		CreatedAt: unixNano(fields["updated_at"]),
	}, nil
}

// ListDocuments reads every registered hash.
func (r *RedisStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	cmds := make([]*redis.SliceCmd, len(ids))

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HMGet(ctx, r.docKey(id), "title", "revision", "updated_at")
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	result := make([]DocumentInfo, 0, len(ids))

	for i, id := range ids {
		vals := cmds[i].Val()
		info := DocumentInfo{DocID: id}

		if len(vals) == 3 {
			info.Title = str(vals[0])
			info.Revision, _ = strconv.Atoi(str(vals[1]))
			info.UpdatedAt = unixNano(str(vals[2]))
		}

		result = append(result, info)
	}

	sortInfos(result)

	return result, nil
}

// DeleteDocument drops the hash and the ID.
func (r *RedisStore) DeleteDocument(ctx context.Context, docID string) error {
	removed, err := r.client.SRem(ctx, r.indexKey(), docID).Result()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if removed == 0 {
		return ErrDocumentNotFound
	}

	if err := r.client.Del(ctx, r.docKey(docID)).Err(); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	return nil
}

func str(v any) string {
	s, _ := v.(string)

	return s
}

func unixNano(s string) time.Time {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}

	return time.Unix(0, n)
}

var _ Store = (*RedisStore)(nil)
