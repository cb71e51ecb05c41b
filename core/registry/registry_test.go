package registry

import "testing"

func TestSetGet(t *testing.T) {
	r := &Registry{
		values: make(map[string]interface{}),
		locked: make(map[string]bool),
	}
	if _, ok := r.GetGlobal("missing"); ok {
		t.Error("missing key reported present")
	}
	r.SetGlobal("k", 42)
	v, ok := r.GetGlobal("k")
	if !ok || v.(int) != 42 {
		t.Errorf("got %v, %v", v, ok)
	}
}

func TestLock(t *testing.T) {
	r := &Registry{
		values: make(map[string]interface{}),
		locked: make(map[string]bool),
	}
	r.SetGlobal("k", 1)
	r.Lock("k")
	if !r.IsLocked("k") {
		t.Fatal("key not locked")
	}

	defer func() {
		if recover() == nil {
			t.Error("set on locked key did not panic")
		}
	}()
	r.SetGlobal("k", 2)
}

func TestUnlockForTesting(t *testing.T) {
	r := &Registry{
		values: make(map[string]interface{}),
		locked: make(map[string]bool),
	}
	r.Lock("k")
	r.UnlockForTesting("k")
	if r.IsLocked("k") {
		t.Fatal("key still locked")
	}
	r.SetGlobal("k", 1)
}
