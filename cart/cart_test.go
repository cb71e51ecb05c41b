package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAddAndTotal(t *testing.T) {
	c := New()
	c.Add("Bar", decimal.RequireFromString("10.00"))
	line := c.Add("Chips", decimal.RequireFromString("5.50"))
	if line.Name != "Chips" {
		t.Errorf("returned line = %+v", line)
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
	if got := c.Total().StringFixed(2); got != "15.50" {
		t.Errorf("total = %s, want 15.50", got)
	}
}

func TestTotal_RoundsOnceAtDisplay(t *testing.T) {
	// two half-cent prices must round as a sum, not per line
	c := New()
	c.Add("A", decimal.RequireFromString("1.005"))
	c.Add("B", decimal.RequireFromString("1.005"))
	if got := c.Total().StringFixed(2); got != "2.01" {
		t.Errorf("total = %s, want 2.01", got)
	}
}

func TestRemoveLast(t *testing.T) {
	c := New()
	c.Add("A", decimal.NewFromInt(1))
	c.Add("B", decimal.NewFromInt(2))

	line, err := c.RemoveLast()
	if err != nil {
		t.Fatalf("RemoveLast: %v", err)
	}
	if line.Name != "B" {
		t.Errorf("removed %q, want B", line.Name)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}

	if _, err := c.RemoveLast(); err != nil {
		t.Fatalf("RemoveLast: %v", err)
	}
	if _, err := c.RemoveLast(); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Add("A", decimal.NewFromInt(3))
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len = %d after clear", c.Len())
	}
	if !c.Total().IsZero() {
		t.Errorf("total = %s after clear", c.Total())
	}
}

func TestLines_Copy(t *testing.T) {
	c := New()
	c.Add("A", decimal.NewFromInt(1))
	lines := c.Lines()
	lines[0].Name = "mutated"
	if c.Lines()[0].Name != "A" {
		t.Error("Lines must return a copy")
	}
}
