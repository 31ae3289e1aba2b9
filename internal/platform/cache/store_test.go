package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_LoadsOnceUnderConcurrency(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var loads atomic.Int32

	loader := func(context.Context) (any, error) {
		loads.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "eight-candidates", nil
	}

	const callers = 24
	gate := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)

	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			<-gate
			v, err := store.GetOrLoad(context.Background(), "preview:metro-youth-2026:10U", loader)
			if err != nil {
				t.Errorf("GetOrLoad error: %v", err)
				return
			}
			if got, _ := v.(string); got != "eight-candidates" {
				t.Errorf("GetOrLoad = %v, want eight-candidates", v)
			}
		}()
	}

	close(gate)
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ServesCachedValue(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var loads atomic.Int32

	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return 6, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := store.GetOrLoad(context.Background(), "preview:10U", loader); err != nil {
			t.Fatalf("GetOrLoad %d error: %v", i, err)
		}
	}

	if got := loads.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
}

func TestStore_Get_ExpiresEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Nanosecond)
	store.Set(context.Background(), "k", "v")
	time.Sleep(time.Millisecond)

	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatal("expected expired entry to be dropped")
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	store.Set(context.Background(), "k", "v")

	v, ok := store.Get(context.Background(), "k")
	if !ok || v != "v" {
		t.Fatalf("Get = %v, %t, want v, true", v, ok)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	store.Set(ctx, "preview:metro-youth-2026:10U", 8)
	store.Set(ctx, "preview:metro-youth-2026:12U", 8)
	store.Set(ctx, "run:abc", 1)

	store.DeletePrefix(ctx, "preview:metro-youth-2026:")

	if _, ok := store.Get(ctx, "preview:metro-youth-2026:10U"); ok {
		t.Fatal("expected 10U preview entry to be deleted")
	}
	if _, ok := store.Get(ctx, "preview:metro-youth-2026:12U"); ok {
		t.Fatal("expected 12U preview entry to be deleted")
	}
	if _, ok := store.Get(ctx, "run:abc"); !ok {
		t.Fatal("expected unrelated entry to survive")
	}
}
