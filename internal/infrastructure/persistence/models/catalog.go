package models

import (
	"github.com/tallysync/backend/internal/domain/catalog"
)

// StockItemModel is the persistence model for an imported stock item,
// keyed by item_code.
type StockItemModel struct {
	ID            uint64   `gorm:"primaryKey;autoIncrement"`
	ItemCode      string   `gorm:"type:varchar(100);not null;uniqueIndex:uq_stock_item_code"`
	StockItemName string   `gorm:"type:varchar(255);not null"`
	ParentGroup   string   `gorm:"type:varchar(100);not null;default:'General'"`
	UOM           *string  `gorm:"column:uom;type:varchar(50)"`
	GST           *string  `gorm:"column:gst;type:varchar(20)"`
	HSN           *string  `gorm:"column:hsn;type:varchar(20)"`
	Rate          *float64 `gorm:"type:decimal(14,4)"`
	TimestampModel
}

// TableName returns the table name for GORM
func (StockItemModel) TableName() string {
	return "stock_item"
}

// StockItemModelFromRecord maps an imported stock item to a new row
func StockItemModelFromRecord(i catalog.NormalizedStockItem) *StockItemModel {
	parent := i.ParentGroup
	if parent == "" {
		parent = catalog.DefaultParentGroup
	}
	return &StockItemModel{
		ItemCode:      i.NaturalKey(),
		StockItemName: i.StockItemName,
		ParentGroup:   parent,
		UOM:           i.UOM,
		GST:           i.GST,
		HSN:           i.HSN,
		Rate:          i.Rate,
	}
}

// ToRecord converts the row back to the import record shape
func (m *StockItemModel) ToRecord() catalog.NormalizedStockItem {
	code := m.ItemCode
	return catalog.NormalizedStockItem{
		ItemCode:      &code,
		StockItemName: m.StockItemName,
		ParentGroup:   m.ParentGroup,
		UOM:           m.UOM,
		GST:           m.GST,
		HSN:           m.HSN,
		Rate:          m.Rate,
	}
}
