package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing: err = %v, want ErrNotFound", err)
	}

	if err := st.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := st.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	val, err := st.Get(ctx, "k")
	if err != nil || val != "v2" {
		t.Errorf("Get = (%q, %v), want (v2, nil)", val, err)
	}
}

func TestMemoryStoreSetNX(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	won, err := st.SetNX(ctx, "guard", "1")
	if err != nil || !won {
		t.Fatalf("first SetNX = (%v, %v), want (true, nil)", won, err)
	}
	won, err = st.SetNX(ctx, "guard", "2")
	if err != nil || won {
		t.Fatalf("second SetNX = (%v, %v), want (false, nil)", won, err)
	}
	val, _ := st.Get(ctx, "guard")
	if val != "1" {
		t.Errorf("losing SetNX overwrote value: %q", val)
	}
}

func TestMemoryStoreListAppend(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	vals, err := st.List(ctx, "empty")
	if err != nil || len(vals) != 0 {
		t.Errorf("List empty = (%v, %v), want ([], nil)", vals, err)
	}

	for _, v := range []string{"a", "b", "c"} {
		if err := st.Append(ctx, "l", v); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	vals, err = st.List(ctx, "l")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(vals) != 3 || vals[0] != "a" || vals[2] != "c" {
		t.Errorf("List = %v, want [a b c]", vals)
	}
}

func TestMemoryStoreIndex(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	st.IndexAdd(ctx, "idx", "m1", 10)
	st.IndexAdd(ctx, "idx", "m2", 20)
	st.IndexAdd(ctx, "idx", "m3", 30)
	// Re-adding replaces the score.
	st.IndexAdd(ctx, "idx", "m3", 15)

	members, err := st.IndexExpired(ctx, "idx", 15)
	if err != nil {
		t.Fatalf("IndexExpired: %v", err)
	}
	if len(members) != 2 || members[0] != "m1" || members[1] != "m3" {
		t.Errorf("IndexExpired = %v, want [m1 m3]", members)
	}

	if err := st.IndexRemove(ctx, "idx", "m1"); err != nil {
		t.Fatalf("IndexRemove: %v", err)
	}
	members, _ = st.IndexExpired(ctx, "idx", 100)
	if len(members) != 2 {
		t.Errorf("after remove IndexExpired = %v, want 2 members", members)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	st.Set(ctx, "a", "1")
	st.Append(ctx, "b", "x")
	if err := st.Delete(ctx, "a", "b", "never-existed"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted key still present")
	}
	vals, _ := st.List(ctx, "b")
	if len(vals) != 0 {
		t.Errorf("deleted list still has %v", vals)
	}
}
