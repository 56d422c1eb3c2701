package store

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStoreRoundTripAndClear(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.SaveRefreshToken(ctx, "rt-1")
	user := []byte(`{"id":"u-1"}`)
	_ = s.SaveUser(ctx, user)
	user[0] = 'X'

	got, _ := s.LoadUser(ctx)
	if string(got) != `{"id":"u-1"}` {
		t.Fatalf("store must copy user bytes, got %q", got)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if token, _ := s.LoadRefreshToken(ctx); token != "" {
		t.Fatalf("expected cleared refresh token, got %q", token)
	}
	if got, _ := s.LoadUser(ctx); got != nil {
		t.Fatalf("expected cleared user, got %q", got)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SaveRefreshToken(ctx, "rt")
			_, _ = s.LoadRefreshToken(ctx)
			_ = s.Clear(ctx)
		}()
	}
	wg.Wait()
}

var (
	_ TokenStore = (*MemoryStore)(nil)
	_ TokenStore = (*RedisStore)(nil)
)
