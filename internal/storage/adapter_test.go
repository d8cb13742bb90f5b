package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestAdapterRoundTrip(t *testing.T) {
	adapter, err := New(NewMemoryBackend(), 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := adapter.Put(ctx, KeySettingsCache, record{Name: "prefs", Count: 2}); err != nil {
		t.Fatal(err)
	}

	var got record
	ok, err := adapter.Get(ctx, KeySettingsCache, &got)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected value to be present")
	}
	if got.Name != "prefs" || got.Count != 2 {
		t.Errorf("unexpected value: %+v", got)
	}

	ok, err = adapter.Get(ctx, "missing", &got)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected missing key to report absent")
	}
}

func TestAdapterQuotaEvictionOrder(t *testing.T) {
	backend := NewMemoryBackend()
	adapter, err := New(backend, 400)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	pad := strings.Repeat("x", 100)
	if err := adapter.Put(ctx, KeyHistoryLog, pad); err != nil {
		t.Fatal(err)
	}
	if err := adapter.Put(ctx, KeySettingsCache, pad); err != nil {
		t.Fatal(err)
	}
	if err := adapter.Put(ctx, KeySessionBlob, pad); err != nil {
		t.Fatal(err)
	}

	// Needs ~200 bytes; evicting history alone frees enough.
	if err := adapter.Put(ctx, KeySessionCore, strings.Repeat("y", 190)); err != nil {
		t.Fatalf("expected quota recovery to succeed, got %v", err)
	}

	if _, err := backend.Read(KeyHistoryLog); !errors.Is(err, ErrKeyNotFound) {
		t.Error("expected history.log to be evicted first")
	}
	if _, err := backend.Read(KeySettingsCache); err != nil {
		t.Error("expected settings.cache to survive")
	}
	if _, err := backend.Read(KeySessionBlob); err != nil {
		t.Error("expected session.blob to survive")
	}
}

func TestAdapterQuotaExceeded(t *testing.T) {
	backend := NewMemoryBackend()
	adapter, err := New(backend, 100)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := adapter.Put(ctx, KeySessionCore, "small"); err != nil {
		t.Fatal(err)
	}

	// Too big even with every evictable key gone.
	err = adapter.Put(ctx, KeySessionBlob, strings.Repeat("z", 500))
	var quotaErr *QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}

	// The failed write must not have landed or clobbered anything.
	if _, readErr := backend.Read(KeySessionBlob); !errors.Is(readErr, ErrKeyNotFound) {
		t.Error("failed put must not leave a partial value")
	}
	var core string
	if ok, _ := adapter.Get(ctx, KeySessionCore, &core); !ok || core != "small" {
		t.Error("existing value must survive a failed put")
	}
}

func TestAdapterCorruptValueTreatedAsAbsent(t *testing.T) {
	backend := NewMemoryBackend()
	adapter, err := New(backend, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := backend.Write(KeySessionCore, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	var dest map[string]any
	ok, err := adapter.Get(ctx, KeySessionCore, &dest)
	if err != nil {
		t.Fatalf("corrupt value must not be a fatal error, got %v", err)
	}
	if ok {
		t.Error("corrupt value must report absent")
	}
	if _, readErr := backend.Read(KeySessionCore); !errors.Is(readErr, ErrKeyNotFound) {
		t.Error("corrupt value must be removed")
	}
}

func TestAdapterBlobEvictionLeavesCore(t *testing.T) {
	backend := NewMemoryBackend()
	adapter, err := New(backend, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := adapter.Put(ctx, KeySessionCore, "core"); err != nil {
		t.Fatal(err)
	}
	if err := adapter.Put(ctx, KeySessionBlob, "blobdata"); err != nil {
		t.Fatal(err)
	}
	if err := adapter.Remove(ctx, KeySessionBlob); err != nil {
		t.Fatal(err)
	}

	var core string
	if ok, _ := adapter.Get(ctx, KeySessionCore, &core); !ok {
		t.Error("removing the blob must not invalidate the session record")
	}
	var blob string
	if ok, _ := adapter.Get(ctx, KeySessionBlob, &blob); ok {
		t.Error("expected blob to be gone")
	}
}

func TestAdapterBackendFailureRetriesOnce(t *testing.T) {
	backend := NewMemoryBackend()
	adapter, err := New(backend, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	backend.FailWith(errors.New("disk full"))
	err = adapter.Put(ctx, KeySessionCore, "value")
	if err == nil {
		t.Fatal("expected error when backend keeps failing")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected wrapped backend error, got %v", err)
	}
}

func TestAdapterUsageSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	adapter, err := New(backend, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := adapter.Put(ctx, KeyHistoryLog, "entries"); err != nil {
		t.Fatal(err)
	}
	used := adapter.Usage()
	if used == 0 {
		t.Fatal("expected non-zero usage")
	}

	backend2, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	adapter2, err := New(backend2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if adapter2.Usage() != used {
		t.Errorf("expected usage %d after reopen, got %d", used, adapter2.Usage())
	}
}
