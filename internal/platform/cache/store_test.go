package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_LoadsOnceUnderContention(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "english-2024-1-3", nil
	}

	const workers = 24
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "batch:english:id:english-2024-1-3", loader)
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
				return
			}
			if v != "english-2024-1-3" {
				t.Errorf("unexpected value: %v", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ServesCachedValue(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := store.GetOrLoad(context.Background(), "batch:english:query:2024||", loader); err != nil {
			t.Fatalf("GetOrLoad %d: %v", i, err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
}

func TestStore_ExpiredEntryIsReloaded(t *testing.T) {
	t.Parallel()

	store := NewStore(10 * time.Millisecond)
	ctx := context.Background()

	store.Set(ctx, "batch:english:scan", "stale")
	if _, ok := store.Get(ctx, "batch:english:scan"); !ok {
		t.Fatal("expected fresh entry to be readable")
	}

	time.Sleep(25 * time.Millisecond)
	if _, ok := store.Get(ctx, "batch:english:scan"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestStore_DeletePrefixDropsOnlyMatchingKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "batch:english:id:a", 1)
	store.Set(ctx, "batch:english:scan", 2)
	store.Set(ctx, "batch:spanish:id:b", 3)

	store.DeletePrefix(ctx, "batch:english:")

	if _, ok := store.Get(ctx, "batch:english:id:a"); ok {
		t.Fatal("expected english id entry gone")
	}
	if _, ok := store.Get(ctx, "batch:english:scan"); ok {
		t.Fatal("expected english scan entry gone")
	}
	if v, ok := store.Get(ctx, "batch:spanish:id:b"); !ok || v != 3 {
		t.Fatal("expected spanish entry untouched")
	}
}
