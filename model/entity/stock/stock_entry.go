package stock

import (
	"gorm.io/datatypes"
)

// StockEntry represents one persisted overlay row, keyed by the leaf's
// address token. Absence of a row means the leaf is available.
type StockEntry struct {
	AddressKey string          `gorm:"column:address_key;primaryKey;type:varchar(255)" json:"address_key"`
	Available  bool            `gorm:"column:available;not null;default:true" json:"available"`
	ETA        *datatypes.Date `gorm:"column:eta" json:"eta,omitempty"`
}

func (StockEntry) TableName() string {
	return "stock_overlay"
}
