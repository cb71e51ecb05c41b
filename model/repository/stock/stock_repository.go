package stock

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	stockEntity "shopbot.GO/model/entity/stock"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) (*StockRepository, error) {
	if err := db.AutoMigrate(&stockEntity.StockEntry{}); err != nil {
		return nil, err
	}
	return &StockRepository{db: db}, nil
}

// LoadAll returns every persisted overlay row.
func (r *StockRepository) LoadAll() ([]stockEntity.StockEntry, error) {
	var rows []stockEntity.StockEntry
	err := r.db.Find(&rows).Error
	return rows, err
}

// UpsertAll writes the given rows in one transaction, replacing existing
// rows by address key. Readers never observe a partial batch.
func (r *StockRepository) UpsertAll(rows []stockEntity.StockEntry) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"available", "eta"}),
		}).Create(&rows).Error
	})
}

// Get returns one row by address key.
func (r *StockRepository) Get(key string) (*stockEntity.StockEntry, error) {
	var row stockEntity.StockEntry
	if err := r.db.Where("address_key = ?", key).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
