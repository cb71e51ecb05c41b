package stock

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	stockRepo "shopbot.GO/model/repository/stock"
)

func overlayTestRepo(t *testing.T) *stockRepo.StockRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo, err := stockRepo.NewStockRepository(db)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return repo
}

func TestGet_DefaultsAvailable(t *testing.T) {
	o := Open(nil)
	e := o.Get("ci:snacks:0")
	if !e.Available || e.ETA != nil {
		t.Errorf("default entry = %+v, want available without ETA", e)
	}
}

func TestSet_ToggleClearsETA(t *testing.T) {
	o := Open(nil)
	eta := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	o.Set("ci:snacks:0", false, &eta)
	e := o.Get("ci:snacks:0")
	if e.Available {
		t.Error("still available after Set(false)")
	}
	if e.ETA == nil || !e.ETA.Equal(eta) {
		t.Errorf("eta = %v, want %v", e.ETA, eta)
	}

	o.Set("ci:snacks:0", true, &eta)
	e = o.Get("ci:snacks:0")
	if !e.Available {
		t.Error("not available after Set(true)")
	}
	if e.ETA != nil {
		t.Errorf("eta = %v after toggling back, want nil", e.ETA)
	}
}

func TestFlushIfDirty_NoRepoNoDirty(t *testing.T) {
	o := Open(nil)
	if err := o.FlushIfDirty(); err != nil {
		t.Fatalf("flush on empty overlay: %v", err)
	}
	o.Set("ci:snacks:0", false, nil)
	if err := o.FlushIfDirty(); err != nil {
		t.Fatalf("flush without repo: %v", err)
	}
}

func TestFlush_PersistsAcrossReopen(t *testing.T) {
	repo := overlayTestRepo(t)
	eta := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	o := Open(repo)
	o.Set("ci:snacks:0", false, &eta)
	o.Set("bi:liquids:chaser:1", false, nil)
	if err := o.FlushIfDirty(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reopened := Open(repo)
	e := reopened.Get("ci:snacks:0")
	if e.Available {
		t.Error("ci:snacks:0 available after reopen")
	}
	if e.ETA == nil || e.ETA.Format("2006-01-02") != "2026-01-20" {
		t.Errorf("eta = %v, want 2026-01-20", e.ETA)
	}
	if reopened.Get("bi:liquids:chaser:1").Available {
		t.Error("bi:liquids:chaser:1 available after reopen")
	}
	// untouched keys stay at the default
	if !reopened.Get("ci:snacks:1").Available {
		t.Error("untouched key not available")
	}
}

func TestFlush_UpsertsChangedRows(t *testing.T) {
	repo := overlayTestRepo(t)

	o := Open(repo)
	o.Set("ci:snacks:0", false, nil)
	if err := o.FlushIfDirty(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	o.Set("ci:snacks:0", true, nil)
	if err := o.FlushIfDirty(); err != nil {
		t.Fatalf("second flush: %v", err)
	}

	rows, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("row count = %d, want 1", len(rows))
	}
	if !rows[0].Available {
		t.Error("row not flipped back to available")
	}
}

func TestSnapshot_Copies(t *testing.T) {
	o := Open(nil)
	o.Set("ci:snacks:0", false, nil)
	snap := o.Snapshot()
	snap["ci:snacks:0"] = Entry{Available: true}
	if o.Get("ci:snacks:0").Available {
		t.Error("snapshot mutation leaked into overlay")
	}
}
