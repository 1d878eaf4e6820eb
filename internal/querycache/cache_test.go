package querycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/agora/internal/logger"
)

type item struct {
	Name string `json:"name"`
}

func counter(n *int, v any) LoadFunc {
	return func(context.Context) (any, error) {
		*n++
		return v, nil
	}
}

func TestKeys(t *testing.T) {
	if got := PageKey(2, 10); got != "discussions:page:2:size:10" {
		t.Errorf("PageKey() = %q", got)
	}
	if got := DiscussionKey("d1"); got != "discussion:d1" {
		t.Errorf("DiscussionKey() = %q", got)
	}
}

func TestGetOrLoadCachesResult(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(), time.Minute, nil, logger.Nop())
	loads := 0

	for i := 0; i < 3; i++ {
		var got item
		if err := c.GetOrLoad(ctx, "k", &got, counter(&loads, item{Name: "first"})); err != nil {
			t.Fatalf("GetOrLoad() error = %v", err)
		}
		if got.Name != "first" {
			t.Errorf("GetOrLoad() = %+v", got)
		}
	}
	if loads != 1 {
		t.Errorf("loader called %d times, want 1", loads)
	}
}

func TestGetOrLoadPropagatesLoaderError(t *testing.T) {
	backend := NewMemoryBackend()
	c := New(backend, time.Minute, nil, logger.Nop())
	boom := errors.New("boom")

	var got item
	err := c.GetOrLoad(context.Background(), "k", &got, func(context.Context) (any, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("GetOrLoad() error = %v, want %v", err, boom)
	}
	if backend.Len() != 0 {
		t.Error("failed loads must not be cached")
	}
}

func TestInvalidateAndFlush(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(), time.Minute, nil, logger.Nop())
	loads := 0
	var got item

	_ = c.GetOrLoad(ctx, "a", &got, counter(&loads, item{Name: "a"}))
	c.Invalidate(ctx, "a")
	_ = c.GetOrLoad(ctx, "a", &got, counter(&loads, item{Name: "a"}))
	if loads != 2 {
		t.Errorf("loads after Invalidate = %d, want 2", loads)
	}

	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	_ = c.GetOrLoad(ctx, "a", &got, counter(&loads, item{Name: "a"}))
	if loads != 3 {
		t.Errorf("loads after Flush = %d, want 3", loads)
	}
}

func TestPrefetch(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(), time.Minute, nil, logger.Nop())
	loads := 0

	if err := c.Prefetch(ctx, "d", counter(&loads, item{Name: "d"})); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}
	if err := c.Prefetch(ctx, "d", counter(&loads, item{Name: "d"})); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}

	var got item
	_ = c.GetOrLoad(ctx, "d", &got, counter(&loads, item{Name: "other"}))
	if loads != 1 || got.Name != "d" {
		t.Errorf("loads = %d, got = %+v; want 1 prefetched load", loads, got)
	}
}

func TestMemoryBackendExpiry(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	b := NewMemoryBackend()
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_ = b.SetCache(ctx, "k", []byte("v"), time.Minute)
	if _, ok, _ := b.GetCache(ctx, "k"); !ok {
		t.Fatal("entry should be live before its TTL")
	}

	now = now.Add(time.Minute)
	if _, ok, _ := b.GetCache(ctx, "k"); ok {
		t.Error("entry should expire at its TTL")
	}
}

type failingBackend struct{ *MemoryBackend }

func (failingBackend) GetCache(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func TestBackendErrorsFallBackToLoader(t *testing.T) {
	c := New(failingBackend{NewMemoryBackend()}, time.Minute, nil, logger.Nop())
	loads := 0

	var got item
	if err := c.GetOrLoad(context.Background(), "k", &got, counter(&loads, item{Name: "x"})); err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if loads != 1 || got.Name != "x" {
		t.Errorf("loads = %d, got = %+v", loads, got)
	}
}
