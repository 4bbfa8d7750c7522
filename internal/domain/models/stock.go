package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem is one product line in the category-partitioned inventory.
// JSON field names match the persisted storage layout.
type StockItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     Category        `json:"category"`
	BuyingPrice  decimal.Decimal `json:"buyingPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// UnitLabel returns the stored unit, falling back to the category default for
// records persisted before units were stored.
func (s StockItem) UnitLabel() string {
	if s.Unit != "" {
		return s.Unit
	}
	return s.Category.Unit()
}

// Value returns the stock value of the line at buying price.
func (s StockItem) Value() decimal.Decimal {
	return s.BuyingPrice.Mul(s.Quantity)
}

// StockSummary aggregates a category view for the dashboard strip.
type StockSummary struct {
	ProductCount  int             `json:"productCount"`
	StockValue    decimal.Decimal `json:"stockValue"`
	LowStockCount int             `json:"lowStockCount"`
}
