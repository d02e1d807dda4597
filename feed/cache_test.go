package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amonks/pv/internal/kv"
	"github.com/amonks/pv/task"
)

type stubFetcher struct {
	tasks task.List
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context) (task.List, error) {
	s.calls++
	return s.tasks, s.err
}

func snapshot() task.List {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return task.List{
		{ID: 10, Text: "Renew the passport", CreatedAt: at, UpdatedAt: at},
		{ID: 11, Text: "Pick up dry cleaning", Done: true, CreatedAt: at, UpdatedAt: at},
	}
}

func TestCacheLoadEmpty(t *testing.T) {
	tasks, err := NewCache(kv.NewMemory()).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty list, got %#v", tasks)
	}
}

func TestCacheRefreshReplacesSnapshot(t *testing.T) {
	cache := NewCache(kv.NewMemory())
	if _, err := cache.Replace(task.List{{ID: 1, Text: "stale entry text"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	fetcher := &stubFetcher{tasks: snapshot()}
	changed, err := cache.Refresh(context.Background(), fetcher)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !changed {
		t.Fatal("expected snapshot to change")
	}

	tasks, err := cache.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != 10 || tasks[1].ID != 11 {
		t.Fatalf("unexpected snapshot %+v", tasks)
	}

	changed, err = cache.Refresh(context.Background(), fetcher)
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if changed {
		t.Fatal("expected identical snapshot to report no change")
	}
}

func TestCacheRefreshFailureKeepsSnapshot(t *testing.T) {
	cache := NewCache(kv.NewMemory())
	if _, err := cache.Replace(snapshot()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for _, fetchErr := range []error{ErrNotArray, ErrStatus, context.DeadlineExceeded} {
		changed, err := cache.Refresh(context.Background(), &stubFetcher{err: fetchErr})
		if !errors.Is(err, fetchErr) {
			t.Fatalf("expected %v, got %v", fetchErr, err)
		}
		if changed {
			t.Fatal("failed refresh reported a change")
		}

		tasks, err := cache.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(tasks) != 2 || tasks[0].Text != "Renew the passport" {
			t.Fatalf("snapshot changed after %v: %+v", fetchErr, tasks)
		}
	}
}

func TestCacheNonArrayResponseLeavesCacheUnchanged(t *testing.T) {
	server := serve(t, 200, `{"message": "not a list"}`)
	cache := NewCache(kv.NewMemory())
	if _, err := cache.Replace(snapshot()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := cache.Refresh(context.Background(), NewClient(Options{URL: server.URL}))
	if !errors.Is(err, ErrNotArray) {
		t.Fatalf("expected ErrNotArray, got %v", err)
	}

	tasks, err := cache.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected cached snapshot, got %+v", tasks)
	}
}

func TestCacheLoadUnparsableIsEmpty(t *testing.T) {
	mem := kv.NewMemory()
	if err := mem.Set(CacheKey, []byte(`"broken"`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tasks, err := NewCache(mem).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty, got %+v", tasks)
	}
}
