package revocation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return rdb
}

func TestRedis_RevokeSweepLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()
	exps := newFakeExpiries()
	exps.set("tok", now.Add(5*time.Minute))

	r := NewRedis(newTestRedis(t), exps.lookup)
	r.Now = func() time.Time { return now }

	if err := r.Revoke(ctx, "tok"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := r.IsRevoked(ctx, "tok")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v err=%v", revoked, err)
	}
	if revoked, _ := r.IsRevoked(ctx, "other"); revoked {
		t.Fatalf("expected unknown token not revoked")
	}

	if removed, _ := r.Sweep(ctx); removed != 0 {
		t.Fatalf("expected nothing swept before expiry, got %d", removed)
	}

	now = now.Add(5 * time.Minute)
	removed, err := r.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 swept at expiry, got %d", removed)
	}
	if n, _ := r.Size(ctx); n != 0 {
		t.Fatalf("expected empty registry, got %d", n)
	}
}

func TestRedis_StoresHashesOnly(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	r := NewRedis(rdb, newFakeExpiries().lookup)

	_ = r.Revoke(ctx, "raw-credential")
	members, err := rdb.ZRange(ctx, defaultRedisKey, 0, -1).Result()
	if err != nil {
		t.Fatalf("zrange: %v", err)
	}
	if len(members) != 1 || members[0] != hashToken("raw-credential") {
		t.Fatalf("unexpected members: %v", members)
	}
}

func TestRedis_ThresholdTriggersSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()
	exps := newFakeExpiries()

	r := NewRedis(newTestRedis(t), exps.lookup)
	r.Now = func() time.Time { return now }

	for i := 0; i <= Threshold; i++ {
		tok := fmt.Sprintf("t%d", i)
		if i%2 == 0 {
			exps.set(tok, now.Add(-time.Minute))
		} else {
			exps.set(tok, now.Add(time.Hour))
		}
		if err := r.Revoke(ctx, tok); err != nil {
			t.Fatalf("revoke %d: %v", i, err)
		}
	}

	n, err := r.Size(ctx)
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if n != 500 {
		t.Fatalf("expected 500 live entries after threshold sweep, got %d", n)
	}
}
