package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// newTestRedis connects to the server named by STVARI_TEST_REDIS and skips the
// test when none is configured or reachable. Keys are namespaced per test.
func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("STVARI_TEST_REDIS")
	if addr == "" {
		t.Skip("STVARI_TEST_REDIS not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r, err := NewRedis(ctx, addr, os.Getenv("STVARI_TEST_REDIS_PASSWORD"), 0)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	r.prefix = "stvari-test:" + t.Name() + ":"

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := r.client.Keys(ctx, r.prefix+"*").Result()
		if len(keys) > 0 {
			r.client.Del(ctx, keys...)
		}
		r.Close()
	})
	return r
}

func TestRedisGetSet(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	var out panel
	ok, err := r.Get(ctx, "missing", &out)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := panel{Total: 4, Values: []string{"wool", "linen"}}
	if err := r.Set(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ok, err = r.Get(ctx, "k", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.Total != 4 || len(out.Values) != 2 || out.Values[1] != "linen" {
		t.Errorf("unexpected value %+v", out)
	}

	ttl, err := r.client.TTL(ctx, r.prefix+"k").Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected ttl within a minute, got %v", ttl)
	}
}

func TestRedisDecodeError(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	r.Set(ctx, "k", "a string", time.Minute)
	var out panel
	if _, err := r.Get(ctx, "k", &out); err == nil {
		t.Error("expected decode error")
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedis(ctx, "127.0.0.1:1", "", 0); err == nil {
		t.Error("expected connection error")
	}
}
