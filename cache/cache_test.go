package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	value := []byte("records")
	if err := m.Set(ctx, "k", value, 0); err != nil {
		t.Fatal(err)
	}
	value[0] = 'X'

	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != "records" {
		t.Errorf("stored value must be a copy: got %q", got)
	}
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(59 * time.Second)
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatal("entry expired early")
	}
	now = now.Add(time.Second)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("entry did not expire")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry not evicted: len=%d", m.Len())
	}
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, "a", []byte("1"), 0)
	_ = m.Set(ctx, "b", []byte("2"), time.Hour)

	if err := m.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 {
		t.Errorf("Clear left %d entries", m.Len())
	}
}

func TestConnect_ParsesURL(t *testing.T) {
	c, err := Connect("redis://localhost:6379/2")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()
	if c.Options().DB != 2 || c.Options().Addr != "localhost:6379" {
		t.Errorf("unexpected options: db=%d addr=%s", c.Options().DB, c.Options().Addr)
	}

	if _, err := Connect("redis://localhost:6379/notanumber"); err == nil {
		t.Error("expected parse error")
	}
}

var _ Cache = (*Memory)(nil)
var _ Cache = (*Redis)(nil)
