package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCategory(t *testing.T) {
	for _, code := range []string{"raw", "furniture"} {
		if _, err := ParseCategory(code); err != nil {
			t.Errorf("ParseCategory(%q): %v", code, err)
		}
	}

	for _, code := range []string{"", "Raw", "tools"} {
		if _, err := ParseCategory(code); err == nil {
			t.Errorf("ParseCategory(%q) accepted an unknown code", code)
		}
	}
}

func TestCategoryUnits(t *testing.T) {
	if got := CategoryRaw.Unit(); got != "KG" {
		t.Errorf("raw unit = %q, want KG", got)
	}
	if got := CategoryFurniture.Unit(); got != "Pieces" {
		t.Errorf("furniture unit = %q, want Pieces", got)
	}
	if got := CategoryFurniture.Label(); got != "Furniture Materials" {
		t.Errorf("furniture label = %q", got)
	}
	// Stale persisted codes still render with a fallback spec.
	if got := Category("legacy").Unit(); got != "Pieces" {
		t.Errorf("fallback unit = %q, want Pieces", got)
	}
}

func TestValidateDate(t *testing.T) {
	if err := ValidateDate("2026-03-15"); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}

	for _, date := range []string{"", "15-03-2026", "2026-13-01", "2026-02-30", "yesterday"} {
		if err := ValidateDate(date); err == nil {
			t.Errorf("ValidateDate(%q) accepted a bad date", date)
		}
	}
}

func TestStockItemUnitLabelFallback(t *testing.T) {
	withUnit := StockItem{Category: CategoryRaw, Unit: "Tons"}
	if got := withUnit.UnitLabel(); got != "Tons" {
		t.Errorf("stored unit ignored: %q", got)
	}

	withoutUnit := StockItem{Category: CategoryRaw}
	if got := withoutUnit.UnitLabel(); got != "KG" {
		t.Errorf("fallback unit = %q, want KG", got)
	}
}

func TestStockItemValue(t *testing.T) {
	item := StockItem{
		BuyingPrice: decimal.RequireFromString("30"),
		Quantity:    decimal.RequireFromString("10"),
	}
	if !item.Value().Equal(decimal.RequireFromString("300")) {
		t.Errorf("value = %s, want 300", item.Value())
	}
}

func TestSalesRecordDueTotal(t *testing.T) {
	record := SalesRecord{Items: []SaleLineItem{
		{DuePayment: decimal.RequireFromString("20")},
		{DuePayment: decimal.Zero},
		{DuePayment: decimal.RequireFromString("15.50")},
	}}
	if !record.DueTotal().Equal(decimal.RequireFromString("35.50")) {
		t.Errorf("due total = %s, want 35.50", record.DueTotal())
	}
}
