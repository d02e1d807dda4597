package kv

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"
)

func TestFileStore_LoadEmpty(t *testing.T) {
	store := NewFileStore(t.TempDir())

	entries, err := store.load()
	if err != nil {
		t.Fatalf("failed to load empty store: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestFileStore_CorruptFileReadsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	if err := os.WriteFile(store.storePath(), []byte(`{"pv_users": [1`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	value, ok, err := store.Get("pv_users")
	if err != nil {
		t.Fatalf("expected corrupt store to read as empty, got %v", err)
	}
	if ok || value != nil {
		t.Fatalf("expected missing key, got %q", value)
	}
}

func TestFileStore_CorruptFileBackedUpOnWrite(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	corrupt := []byte("{not json")
	if err := os.WriteFile(store.storePath(), corrupt, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := store.Set("pv_auth", []byte(`{"username":"admin"}`)); err != nil {
		t.Fatalf("set over corrupt store: %v", err)
	}

	var session struct {
		Username string `json:"username"`
	}
	ok, err := GetJSON(store, "pv_auth", &session)
	if err != nil || !ok || session.Username != "admin" {
		t.Fatalf("expected fresh value, got %+v ok=%v err=%v", session, ok, err)
	}
	backup, err := os.ReadFile(store.corruptPath())
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != string(corrupt) {
		t.Fatalf("expected backup to hold the corrupt document, got %q", backup)
	}
}

func TestFileStore_SaveNoChange(t *testing.T) {
	store := NewFileStore(t.TempDir())

	if err := store.Set("pv_auth", []byte(`{"username":"admin"}`)); err != nil {
		t.Fatalf("failed to save initial value: %v", err)
	}

	oldTime := time.Unix(1, 0)
	if err := os.Chtimes(store.storePath(), oldTime, oldTime); err != nil {
		t.Fatalf("failed to set mod time: %v", err)
	}

	if err := store.Set("pv_auth", []byte(`{"username":"admin"}`)); err != nil {
		t.Fatalf("failed to save identical value: %v", err)
	}

	info, err := os.Stat(store.storePath())
	if err != nil {
		t.Fatalf("failed to stat store file: %v", err)
	}
	if !info.ModTime().Equal(oldTime) {
		t.Errorf("expected mod time to stay %v, got %v", oldTime, info.ModTime())
	}
}

func TestFileStore_ConcurrentSets(t *testing.T) {
	store := NewFileStore(t.TempDir())

	var wg sync.WaitGroup
	numGoroutines := 10
	setsPerGoroutine := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < setsPerGoroutine; j++ {
				key := fmt.Sprintf("pv_todos:user-%d", worker)
				if err := store.Set(key, []byte(fmt.Sprintf(`[{"id":%d}]`, j))); err != nil {
					t.Errorf("concurrent set failed: %v", err)
				}
			}
		}(i)
	}

	wg.Wait()

	entries, err := store.load()
	if err != nil {
		t.Fatalf("failed to load final store: %v", err)
	}
	if len(entries) != numGoroutines {
		t.Fatalf("expected %d keys, got %d", numGoroutines, len(entries))
	}
}
