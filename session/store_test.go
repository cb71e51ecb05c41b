package session

import (
	"fmt"
	"sync"
	"testing"

	"shopbot.GO/catalog"
)

func TestStore_GetCreatesOnce(t *testing.T) {
	st := NewStore(nil)
	a := st.Get(42, "alice")
	b := st.Get(42, "")
	if a != b {
		t.Fatal("same user got two sessions")
	}
	if a.Cart == nil {
		t.Fatal("session created without a cart")
	}
	if b.Username() != "alice" {
		t.Errorf("username = %q, blank update must not erase it", b.Username())
	}
	if other := st.Get(7, "bob"); other == a {
		t.Fatal("different users share a session")
	}
}

func TestStore_GetConcurrentSameUser(t *testing.T) {
	st := NewStore(nil)

	// updates for one user are dispatched on separate goroutines; the
	// username refresh must stay safe under that
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := st.Get(42, fmt.Sprintf("handle%d", i))
			_ = s.Username()
			_ = s.City()
		}(i)
	}
	wg.Wait()

	s := st.Get(42, "")
	if s.Username() == "" {
		t.Error("username lost after concurrent updates")
	}
}

func TestTryAcquire_NonBlocking(t *testing.T) {
	s := NewStore(nil).Get(1, "")
	if !s.TryAcquire() {
		t.Fatal("first acquire refused")
	}
	if s.TryAcquire() {
		t.Fatal("second acquire succeeded while held")
	}
	s.Release()
	if !s.TryAcquire() {
		t.Fatal("acquire refused after release")
	}
	s.Release()
}

func TestPending_Displace(t *testing.T) {
	s := NewStore(nil).Get(1, "")
	if s.Pending().Kind != PendingNone {
		t.Fatalf("fresh session pending = %v", s.Pending())
	}

	key := catalog.CategoryItemKey("snacks", 0)
	s.SetPending(Pending{Kind: PendingReservation, Key: key})
	s.SetPending(Pending{Kind: PendingCity})
	if got := s.Pending(); got.Kind != PendingCity {
		t.Errorf("pending = %v, want city mode to displace reservation", got)
	}

	s.ClearPending()
	if s.Pending().Kind != PendingNone {
		t.Error("pending survived ClearPending")
	}
}

func TestSetCity_WithoutRedis(t *testing.T) {
	st := NewStore(nil)
	s := st.Get(1, "")
	st.SetCity(s, "Київ")
	if s.City() != "Київ" {
		t.Errorf("city = %q", s.City())
	}
}
