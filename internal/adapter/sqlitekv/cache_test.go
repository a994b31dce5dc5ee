package sqlitekv_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/codelore/codelore/internal/adapter/sqlitekv"
	"github.com/codelore/codelore/internal/port/cache"
)

func open(t *testing.T) *sqlitekv.Cache {
	t.Helper()
	c, err := sqlitekv.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSQLiteKV_SetAndGet(t *testing.T) {
	c := open(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	val, found, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected hit after Set")
	}
	if string(val) != "v" {
		t.Fatalf("expected v, got %s", val)
	}
}

func TestSQLiteKV_Miss(t *testing.T) {
	c := open(t)

	_, found, err := c.Get(context.Background(), "absent")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected miss")
	}
}

func TestSQLiteKV_Overwrite(t *testing.T) {
	c := open(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v1"), time.Minute)
	_ = c.Set(ctx, "k", []byte("v2"), time.Minute)

	val, _, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(val) != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestSQLiteKV_Delete(t *testing.T) {
	c := open(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	_, found, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected miss after Delete")
	}

	// Deleting an absent key is not an error.
	if err := c.Delete(ctx, "never-there"); err != nil {
		t.Fatal(err)
	}
}

func TestSQLiteKV_ZeroTTLIsExpired(t *testing.T) {
	c := open(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	_, found, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("zero TTL must behave as absent")
	}
}

func TestSQLiteKV_NoExpiryNeverExpires(t *testing.T) {
	c := open(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), cache.NoExpiry); err != nil {
		t.Fatal(err)
	}
	_, found, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("NoExpiry entry must survive")
	}
}

func TestSQLiteKV_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")
	ctx := context.Background()

	c, err := sqlitekv.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("durable"), cache.NoExpiry); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c2, err := sqlitekv.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c2.Close() }()

	val, found, err := c2.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected value to survive a reopen")
	}
	if string(val) != "durable" {
		t.Fatalf("expected durable, got %s", val)
	}
}
