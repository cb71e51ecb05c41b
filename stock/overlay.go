package stock

import (
	"log"
	"sync"
	"time"

	"gorm.io/datatypes"

	stockEntity "shopbot.GO/model/entity/stock"
	stockRepo "shopbot.GO/model/repository/stock"
)

// Entry is the availability state for one leaf. The zero value is the
// default for absent keys: available, no ETA.
type Entry struct {
	Available bool
	ETA       *time.Time
}

// Overlay is the single source of truth for leaf availability, layered over
// the catalog tree and keyed by address tokens. Reads are frequent (every
// menu render); writes come only from admins, so one mutex around the whole
// mutate-then-flush region is enough.
type Overlay struct {
	mu      sync.Mutex
	entries map[string]Entry
	dirty   map[string]bool
	repo    *stockRepo.StockRepository
}

// Open loads the persisted overlay. A missing or unreadable store means
// "all available": logged, never fatal.
func Open(repo *stockRepo.StockRepository) *Overlay {
	o := &Overlay{
		entries: make(map[string]Entry),
		dirty:   make(map[string]bool),
		repo:    repo,
	}
	if repo == nil {
		return o
	}
	rows, err := repo.LoadAll()
	if err != nil {
		log.Printf("stock: overlay load failed, starting all-available: %v", err)
		return o
	}
	for _, row := range rows {
		e := Entry{Available: row.Available}
		if row.ETA != nil {
			t := time.Time(*row.ETA)
			e.ETA = &t
		}
		o.entries[row.AddressKey] = e
	}
	log.Printf("stock: overlay loaded, %d entries", len(rows))
	return o
}

// Get returns the entry for key, defaulting to available when absent.
func (o *Overlay) Get(key string) Entry {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.entries[key]; ok {
		return e
	}
	return Entry{Available: true}
}

// Set overwrites the entry for key. Toggling back to available clears the
// ETA rather than deleting the row. Idempotent.
func (o *Overlay) Set(key string, available bool, eta *time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e := Entry{Available: available}
	if !available && eta != nil {
		t := *eta
		e.ETA = &t
	}
	o.entries[key] = e
	o.dirty[key] = true
}

// FlushIfDirty persists changed entries. No-op on read-only traffic.
func (o *Overlay) FlushIfDirty() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.dirty) == 0 || o.repo == nil {
		return nil
	}
	rows := make([]stockEntity.StockEntry, 0, len(o.dirty))
	for key := range o.dirty {
		e := o.entries[key]
		row := stockEntity.StockEntry{AddressKey: key, Available: e.Available}
		if e.ETA != nil {
			d := datatypes.Date(*e.ETA)
			row.ETA = &d
		}
		rows = append(rows, row)
	}
	if err := o.repo.UpsertAll(rows); err != nil {
		return err
	}
	o.dirty = make(map[string]bool)
	return nil
}

// Close flushes any pending writes.
func (o *Overlay) Close() error {
	return o.FlushIfDirty()
}

// Snapshot returns a copy of all recorded entries (ops API, reports).
func (o *Overlay) Snapshot() map[string]Entry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]Entry, len(o.entries))
	for k, e := range o.entries {
		out[k] = e
	}
	return out
}
