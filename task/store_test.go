package task

import (
	"testing"
	"time"

	"github.com/amonks/pv/internal/kv"
)

func TestStoreLoadMissingIsEmpty(t *testing.T) {
	store := NewStore(kv.NewMemory(), "alice")

	tasks, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty list, got %#v", tasks)
	}
}

func TestStoreLoadUnparsableIsEmpty(t *testing.T) {
	mem := kv.NewMemory()
	if err := mem.Set(Key("alice"), []byte(`{"not": "a list"}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tasks, err := NewStore(mem, "alice").Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty list, got %+v", tasks)
	}
}

func TestStoreSaveThenLoad(t *testing.T) {
	mem := kv.NewMemory()
	store := NewStore(mem, "alice")
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	var list List
	created := list.New("Buy groceries today", now)
	list = list.Prepend(created)
	if err := store.Save(list); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 task, got %d", len(loaded))
	}
	got := loaded[0]
	if got.ID != created.ID || got.Text != created.Text || got.Done {
		t.Fatalf("expected %+v, got %+v", created, got)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps changed: %+v", got)
	}
}

func TestStoreIsolatesUsers(t *testing.T) {
	mem := kv.NewMemory()
	alice := NewStore(mem, "alice")
	bob := NewStore(mem, "bob")

	if err := alice.Save(List{{ID: 1, Text: "Alice's only task"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	tasks, err := bob.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected bob to see no tasks, got %+v", tasks)
	}
	if bob.Username() != "bob" {
		t.Fatalf("unexpected username %q", bob.Username())
	}
}

func TestStoreSaveNilWritesEmptyArray(t *testing.T) {
	mem := kv.NewMemory()
	if err := NewStore(mem, "alice").Save(nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, ok, err := mem.Get(Key("alice"))
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected [], got %s", data)
	}
}
