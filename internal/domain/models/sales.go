package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used as the ledger's natural key.
// Month-prefix filtering relies on its lexicographic ordering.
const DateLayout = "2006-01-02"

// SaleLineItem is one sold line within a daily sales record. Price and total
// are commit-time snapshots and are never recomputed from current stock.
type SaleLineItem struct {
	Name         string          `json:"name"`
	Category     Category        `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
	CustomerName string          `json:"customerName,omitempty"`
	DuePayment   decimal.Decimal `json:"duePayment"`
}

// UnitLabel returns the unit of the line's category.
func (li SaleLineItem) UnitLabel() string {
	return li.Category.Unit()
}

// SalesRecord aggregates all line items sold on one calendar date. The ledger
// holds at most one record per date.
type SalesRecord struct {
	ID         string          `json:"id"`
	Date       string          `json:"date"`
	Items      []SaleLineItem  `json:"items"`
	DailyTotal decimal.Decimal `json:"dailyTotal"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// DueTotal sums the due payments across the record's line items.
func (r SalesRecord) DueTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.DuePayment)
	}
	return total
}

// ValidateDate checks that a date string is a well-formed calendar date.
func ValidateDate(date string) error {
	if date == "" {
		return fmt.Errorf("date must not be empty")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}
	return nil
}
