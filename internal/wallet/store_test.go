// internal/wallet/store_test.go

package wallet

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStoreCreateAndGet(t *testing.T) {
	s := NewStore(quietLogger(), time.Second)
	a, err := s.Create("alice", dec("100"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("alice")
	if err != nil {
		t.Fatal(err)
	}
	if got != a || got.ID() != "alice" || got.CreatedAt().IsZero() {
		t.Fatalf("Get returned %+v", got)
	}
	wantBalance(t, got, "100")

	if _, err := s.Get("nobody"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestStoreCreateValidation(t *testing.T) {
	s := NewStore(quietLogger(), time.Second)
	if _, err := s.Create("alice", dec("-0.01")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
	if _, err := s.Create("alice", dec("0")); err != nil {
		t.Fatalf("zero opening balance should be allowed: %v", err)
	}
	if _, err := s.Create("alice", dec("5")); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("want ErrDuplicateAccount, got %v", err)
	}
	wantBalance(t, mustGet(t, s, "alice"), "0")
}

func TestStoreSnapshotInsertionOrder(t *testing.T) {
	s := NewStore(quietLogger(), time.Second)
	ids := []string{"zed", "amy", "mike", "bob"}
	for _, id := range ids {
		if _, err := s.Create(id, dec("1")); err != nil {
			t.Fatal(err)
		}
	}
	snap := s.Snapshot()
	if len(snap) != len(ids) || s.Len() != len(ids) {
		t.Fatalf("snapshot len=%d want=%d", len(snap), len(ids))
	}
	for i, a := range snap {
		if a.ID() != ids[i] {
			t.Fatalf("snapshot[%d]=%s want=%s", i, a.ID(), ids[i])
		}
	}
}

func TestStoreConcurrentCreateSameID(t *testing.T) {
	s := NewStore(quietLogger(), time.Second)

	const workers = 50
	var wins, dups atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := s.Create("shared", dec(fmt.Sprint(i)))
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrDuplicateAccount):
				dups.Add(1)
			default:
				t.Errorf("unexpected err: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins.Load() != 1 || dups.Load() != workers-1 {
		t.Fatalf("wins=%d dups=%d", wins.Load(), dups.Load())
	}
}

func mustGet(t *testing.T, s *Store, id string) *Account {
	t.Helper()
	a, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get(%s) err=%v", id, err)
	}
	return a
}
