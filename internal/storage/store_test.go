package storage_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/pdfcraft/internal/storage"
	"github.com/stretchr/testify/require"
)

type storeFactory func(t *testing.T) storage.Store

func backends(t *testing.T) map[string]storeFactory {
	t.Helper()

	factories := map[string]storeFactory{
		"memory": func(*testing.T) storage.Store { return storage.NewMemoryStore() },
		"sqlite": func(t *testing.T) storage.Store {
			t.Helper()

			s, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "docs.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })

			return s
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		factories["redis"] = func(t *testing.T) storage.Store {
			t.Helper()

			client := redis.NewClient(&redis.Options{Addr: addr})
			t.Cleanup(func() { _ = client.Close() })

			prefix := "pdfcraft-test:" + uuid.NewString() + ":"

			return storage.NewRedisStore(client, prefix)
		}
	}

	return factories
}

func forEachBackend(t *testing.T, fn func(t *testing.T, store storage.Store)) {
	t.Helper()

	for name, factory := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fn(t, factory(t))
		})
	}
}

func TestStore_CreateDocument(t *testing.T) {
	t.Parallel()

	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		require.NoError(t, store.CreateDocument(ctx, "doc1"))

		exists, err := store.DocumentExists(ctx, "doc1")
		require.NoError(t, err)

		if !exists {
			t.Error("expected document to exist after creation")
		}
	})
}

func TestStore_CreateDocument_AlreadyExists(t *testing.T) {
	t.Parallel()

	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		require.NoError(t, store.CreateDocument(ctx, "doc1"))

		err := store.CreateDocument(ctx, "doc1")
		if !errors.Is(err, storage.ErrDocumentExists) {
			t.Errorf("expected ErrDocumentExists, got %v", err)
		}
	})
}

func TestStore_DocumentExists_NotFound(t *testing.T) {
	t.Parallel()

	forEachBackend(t, func(t *testing.T, store storage.Store) {
		exists, err := store.DocumentExists(context.Background(), "nonexistent")
		require.NoError(t, err)

		if exists {
			t.Error("expected document to not exist")
		}
	})
}

func TestStore_SaveAndLoadSnapshot(t *testing.T) {
	t.Parallel()

	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()
		require.NoError(t, store.CreateDocument(ctx, "doc1"))

		err := store.SaveSnapshot(ctx, storage.Snapshot{
			DocID:    "doc1",
			Title:    "Report",
			Content:  "<p>hello world</p>",
			Revision: 10,
		})
		require.NoError(t, err)

		snapshot, err := store.LoadSnapshot(ctx, "doc1")
		require.NoError(t, err)

		if snapshot.DocID != "doc1" {
			t.Errorf("expected docID doc1, got %s", snapshot.DocID)
		}

		if snapshot.Title != "Report" {
			t.Errorf("expected title Report, got %s", snapshot.Title)
		}

		if snapshot.Revision != 10 {
			t.Errorf("expected revision 10, got %d", snapshot.Revision)
		}

		if snapshot.Content != "<p>hello world</p>" {
			t.Errorf("unexpected content %q", snapshot.Content)
		}

		if snapshot.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})
}

func TestStore_SaveSnapshot_Overwrites(t *testing.T) {
	t.Parallel()

	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()
		require.NoError(t, store.CreateDocument(ctx, "doc1"))

		require.NoError(t, store.SaveSnapshot(ctx, storage.Snapshot{DocID: "doc1", Content: "a", Revision: 1}))
		require.NoError(t, store.SaveSnapshot(ctx, storage.Snapshot{DocID: "doc1", Content: "b", Revision: 2}))

		snapshot, err := store.LoadSnapshot(ctx, "doc1")
		require.NoError(t, err)
		require.Equal(t, "b", snapshot.Content)
		require.Equal(t, 2, snapshot.Revision)
	})
}

func TestStore_SaveSnapshot_DocumentNotFound(t *testing.T) {
	t.Parallel()

	forEachBackend(t, func(t *testing.T, store storage.Store) {
		err := store.SaveSnapshot(context.Background(), storage.Snapshot{DocID: "nonexistent", Content: "x"})
		if !errors.Is(err, storage.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound, got %v", err)
		}
	})
}

func TestStore_LoadSnapshot_Errors(t *testing.T) {
	t.Parallel()

	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		_, err := store.LoadSnapshot(ctx, "nonexistent")
		require.ErrorIs(t, err, storage.ErrDocumentNotFound)

		require.NoError(t, store.CreateDocument(ctx, "doc1"))

		_, err = store.LoadSnapshot(ctx, "doc1")
		require.ErrorIs(t, err, storage.ErrSnapshotNotFound)
	})
}

func TestStore_ListDocuments(t *testing.T) {
	t.Parallel()

	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		docs, err := store.ListDocuments(ctx)
		require.NoError(t, err)
		require.Empty(t, docs)

		require.NoError(t, store.CreateDocument(ctx, "old"))
		require.NoError(t, store.CreateDocument(ctx, "new"))

		now := time.Now()
		require.NoError(t, store.SaveSnapshot(ctx, storage.Snapshot{DocID: "old", Title: "Old", CreatedAt: now.Add(-time.Hour)}))
		require.NoError(t, store.SaveSnapshot(ctx, storage.Snapshot{DocID: "new", Title: "New", Revision: 3, CreatedAt: now}))

		docs, err = store.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)

		require.Equal(t, "new", docs[0].DocID)
		require.Equal(t, "New", docs[0].Title)
		require.Equal(t, 3, docs[0].Revision)
		require.Equal(t, "old", docs[1].DocID)
	})
}

func TestStore_DeleteDocument(t *testing.T) {
	t.Parallel()

	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()
		require.NoError(t, store.CreateDocument(ctx, "doc1"))
		require.NoError(t, store.SaveSnapshot(ctx, storage.Snapshot{DocID: "doc1", Content: "x"}))

		require.NoError(t, store.DeleteDocument(ctx, "doc1"))

		exists, err := store.DocumentExists(ctx, "doc1")
		require.NoError(t, err)
		require.False(t, exists)

		_, err = store.LoadSnapshot(ctx, "doc1")
		require.ErrorIs(t, err, storage.ErrDocumentNotFound)

		require.ErrorIs(t, store.DeleteDocument(ctx, "doc1"), storage.ErrDocumentNotFound)
	})
}

func TestStore_ConcurrentSaves(t *testing.T) {
	t.Parallel()

	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()
		require.NoError(t, store.CreateDocument(ctx, "doc1"))

		var wg sync.WaitGroup

		for i := range 20 {
			wg.Add(1)

			go func(n int) {
				defer wg.Done()

				_ = store.SaveSnapshot(ctx, storage.Snapshot{DocID: "doc1", Content: fmt.Sprintf("v%d", n), Revision: n})
			}(i)
		}

		wg.Wait()

		snapshot, err := store.LoadSnapshot(ctx, "doc1")
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("v%d", snapshot.Revision), snapshot.Content)
	})
}

func TestOpenSQLite_InMemory(t *testing.T) {
	t.Parallel()

	store, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)

	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.CreateDocument(ctx, "doc1"))

	exists, err := store.DocumentExists(ctx, "doc1")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestOpenRedis_EmptyAddress(t *testing.T) {
	t.Parallel()

	_, err := storage.OpenRedis(context.Background(), storage.RedisOptions{})
	require.Error(t, err)
}
