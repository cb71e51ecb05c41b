package jobs

import (
	"log"
	"time"

	"shopbot.GO/catalog"
	"shopbot.GO/stock"
)

// OverlayFlush persists pending overlay writes. Cheap no-op when nothing
// changed since the last run.
func OverlayFlush(overlay *stock.Overlay) func(...string) {
	return func(...string) {
		if err := overlay.FlushIfDirty(); err != nil {
			log.Printf("cron: overlay flush: %v", err)
		}
	}
}

// StockReport logs the out-of-stock picture: total unavailable leaves and
// any whose recorded ETA has already passed. It never flips availability;
// only admins write the overlay.
func StockReport(tree *catalog.Tree, overlay *stock.Overlay) func(...string) {
	return func(...string) {
		today := time.Now().Truncate(24 * time.Hour)
		unavailable, stale := 0, 0
		tree.Leaves(func(k catalog.Key, leaf catalog.Leaf) {
			entry := overlay.Get(k.Token())
			if entry.Available {
				return
			}
			unavailable++
			if entry.ETA != nil && entry.ETA.Before(today) {
				stale++
				log.Printf("cron: stock report: %s (%s) ETA %s has passed", leaf.Name, k.Token(), entry.ETA.Format("2006-01-02"))
			}
		})
		log.Printf("cron: stock report: %d leaves unavailable, %d with passed ETA", unavailable, stale)
	}
}
