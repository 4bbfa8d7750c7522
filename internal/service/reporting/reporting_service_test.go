package reporting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/tarekpos/internal/domain/models"
	"github.com/mamadbah2/tarekpos/internal/repository/kv"
	ledgersvc "github.com/mamadbah2/tarekpos/internal/service/ledger"
)

type fakeSheetRepo struct {
	writes map[string][][]interface{}
	err    error
}

func (f *fakeSheetRepo) Overwrite(_ context.Context, sheetRange string, values [][]interface{}) error {
	if f.err != nil {
		return f.err
	}
	if f.writes == nil {
		f.writes = make(map[string][][]interface{})
	}
	f.writes[sheetRange] = values
	return nil
}

func seededLedger(t *testing.T, records ...models.SalesRecord) *ledgersvc.Ledger {
	t.Helper()

	l := ledgersvc.NewLedger(kv.NewMemoryStore(), nil)
	for _, r := range records {
		if err := l.Commit(context.Background(), r, false); err != nil {
			t.Fatalf("seed record %s: %v", r.Date, err)
		}
	}
	return l
}

func dayRecord(id, date string, items ...models.SaleLineItem) models.SalesRecord {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return models.SalesRecord{
		ID:         id,
		Date:       date,
		Items:      items,
		DailyTotal: total,
		CreatedAt:  time.Date(2026, time.March, 15, 18, 0, 0, 0, time.UTC),
	}
}

func soldItem(name string, category models.Category, price, qty, due, customer string) models.SaleLineItem {
	p := decimal.RequireFromString(price)
	q := decimal.RequireFromString(qty)
	return models.SaleLineItem{
		Name:         name,
		Category:     category,
		Price:        p,
		Quantity:     q,
		Total:        p.Mul(q),
		CustomerName: customer,
		DuePayment:   decimal.RequireFromString(due),
	}
}

func TestExportDisabledWithoutRepository(t *testing.T) {
	svc := NewService(nil, seededLedger(t), nil)

	if err := svc.Export(context.Background(), ExportFilter{}); !errors.Is(err, ErrExportDisabled) {
		t.Errorf("err = %v, want ErrExportDisabled", err)
	}
}

func TestExportNoData(t *testing.T) {
	repo := &fakeSheetRepo{}
	svc := NewService(repo, seededLedger(t), nil)

	if err := svc.Export(context.Background(), ExportFilter{}); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
	if len(repo.writes) != 0 {
		t.Errorf("sheets written on empty export: %v", repo.writes)
	}
}

func TestExportWritesBothSheetsOldestFirst(t *testing.T) {
	l := seededLedger(t,
		dayRecord("a", "2026-03-12", soldItem("Oak Plank", models.CategoryRaw, "50", "3", "0", "Rahim")),
		dayRecord("b", "2026-03-10", soldItem("Teak Table", models.CategoryFurniture, "280", "1", "80", "Karim")),
	)
	repo := &fakeSheetRepo{}
	svc := NewService(repo, l, nil)
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 15, 20, 0, 0, 0, time.UTC)
	}

	if err := svc.Export(context.Background(), ExportFilter{}); err != nil {
		t.Fatalf("export: %v", err)
	}

	detail, ok := repo.writes[detailSheetRange]
	if !ok {
		t.Fatal("detail sheet not written")
	}
	if _, ok := repo.writes[summarySheetRange]; !ok {
		t.Fatal("summary sheet not written")
	}

	// Rows 0-3 are the header block; the first data row must be the oldest day.
	firstData := detail[4]
	if firstData[0] != "March 10, 2026" {
		t.Errorf("first data row date = %v, want March 10, 2026", firstData[0])
	}
}

func TestExportFilters(t *testing.T) {
	l := seededLedger(t,
		dayRecord("a", "2026-02-28", soldItem("Oak Plank", models.CategoryRaw, "50", "2", "0", "Rahim")),
		dayRecord("b", "2026-03-10", soldItem("Oak Plank", models.CategoryRaw, "50", "3", "0", "Rahim")),
	)

	t.Run("date filter misses", func(t *testing.T) {
		svc := NewService(&fakeSheetRepo{}, l, nil)
		if err := svc.Export(context.Background(), ExportFilter{Date: "2026-03-11"}); !errors.Is(err, ErrNoData) {
			t.Errorf("err = %v, want ErrNoData", err)
		}
	})

	t.Run("month filter", func(t *testing.T) {
		repo := &fakeSheetRepo{}
		svc := NewService(repo, l, nil)
		if err := svc.Export(context.Background(), ExportFilter{MonthPrefix: "2026-03"}); err != nil {
			t.Fatalf("export: %v", err)
		}

		var found bool
		for _, row := range repo.writes[detailSheetRange] {
			for _, cell := range row {
				if cell == "February 28, 2026" {
					found = true
				}
			}
		}
		if found {
			t.Error("February record leaked into a March export")
		}
	})
}

func TestExportRepositoryFailure(t *testing.T) {
	l := seededLedger(t, dayRecord("a", "2026-03-10", soldItem("Oak Plank", models.CategoryRaw, "50", "3", "0", "Rahim")))
	repo := &fakeSheetRepo{err: fmt.Errorf("quota exceeded")}
	svc := NewService(repo, l, nil)

	if err := svc.Export(context.Background(), ExportFilter{}); err == nil {
		t.Fatal("expected the repository failure to surface")
	}
}

func TestBuildDetailRows(t *testing.T) {
	records := []models.SalesRecord{
		dayRecord("a", "2026-03-10",
			soldItem("Oak Plank", models.CategoryRaw, "50", "3", "0", "Rahim"),
			soldItem("Glue", models.CategoryRaw, "8", "2", "6", ""),
		),
		dayRecord("b", "2026-03-12",
			soldItem("Teak Table", models.CategoryFurniture, "280", "1", "80", "Karim"),
		),
	}
	generatedAt := time.Date(2026, time.March, 15, 20, 30, 0, 0, time.UTC)

	rows := BuildDetailRows(records, generatedAt)

	if rows[0][0] != "TAREK ENTERPRISE - SALES REPORT" {
		t.Errorf("title row = %v", rows[0])
	}
	if rows[1][0] != "Generated on: March 15, 2026 20:30" {
		t.Errorf("generated row = %v", rows[1])
	}

	// First line of the first day carries date and daily total.
	first := rows[4]
	if first[0] != "March 10, 2026" || first[9] != "$166.00" {
		t.Errorf("first line = %v", first)
	}
	// Second line of the same day leaves both blank and falls back to N/A.
	second := rows[5]
	if second[0] != "" || second[9] != "" {
		t.Errorf("continuation line carries day cells: %v", second)
	}
	if second[3] != "N/A" {
		t.Errorf("missing customer = %v, want N/A", second[3])
	}

	// A blank spacer separates days.
	if len(rows[6]) != 0 {
		t.Errorf("expected a blank row between days, got %v", rows[6])
	}
	if rows[7][0] != "March 12, 2026" {
		t.Errorf("second day line = %v", rows[7])
	}

	// Closing summary block: 166 + 280 gross, 6 + 80 due.
	tail := rows[len(rows)-4:]
	checks := map[int][2]interface{}{
		0: {"Total Records:", 2},
		1: {"Total Sales Amount:", "$446.00"},
		2: {"Total Due Payments:", "$86.00"},
		3: {"Net Amount Received:", "$360.00"},
	}
	for i, want := range checks {
		if tail[i][0] != want[0] || tail[i][1] != want[1] {
			t.Errorf("summary row %d = %v, want %v", i, tail[i], want)
		}
	}
}

func TestBuildSummaryRows(t *testing.T) {
	records := []models.SalesRecord{
		dayRecord("a", "2026-03-10",
			soldItem("Oak Plank", models.CategoryRaw, "50", "3", "0", "Rahim"),
			soldItem("Teak Table", models.CategoryFurniture, "280", "1", "80", "Karim"),
		),
		dayRecord("b", "2026-03-12",
			soldItem("Oak Plank", models.CategoryRaw, "50", "2", "0", "Rahim"),
		),
	}
	generatedAt := time.Date(2026, time.March, 15, 20, 30, 0, 0, time.UTC)

	rows := BuildSummaryRows(records, generatedAt)

	// Header block, then one row per day: date, item count, per-category
	// quantities, money columns.
	day1 := rows[4]
	if day1[0] != "March 10, 2026" || day1[1] != 2 {
		t.Errorf("day row = %v", day1)
	}
	if day1[2] != "3 KG" || day1[3] != "1 Pieces" {
		t.Errorf("category quantities = %v, %v", day1[2], day1[3])
	}
	if day1[4] != "$430.00" || day1[5] != "$80.00" || day1[6] != "$350.00" {
		t.Errorf("money columns = %v", day1[4:])
	}

	var totals []interface{}
	for _, row := range rows {
		if len(row) > 0 && row[0] == "TOTALS" {
			totals = row
		}
	}
	if totals == nil {
		t.Fatal("TOTALS row missing")
	}
	if totals[1] != 3 || totals[2] != "5 KG" || totals[3] != "1 Pieces" || totals[4] != "$530.00" {
		t.Errorf("totals row = %v", totals)
	}
}

func TestBuildSummaryRowsBucketsStaleCategories(t *testing.T) {
	records := []models.SalesRecord{
		dayRecord("a", "2026-03-10",
			soldItem("Oak Plank", models.CategoryRaw, "50", "3", "0", "Rahim"),
			soldItem("Old Cabinet", models.Category("legacy"), "120", "2", "0", "Karim"),
		),
	}

	rows := BuildSummaryRows(records, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))

	day := rows[4]
	if day[1] != 2 {
		t.Errorf("items sold = %v, want 2", day[1])
	}
	// The stale code lands in the furniture column, not nowhere.
	if day[2] != "3 KG" || day[3] != "2 Pieces" {
		t.Errorf("category columns = %v, %v, want 3 KG and 2 Pieces", day[2], day[3])
	}

	var totals []interface{}
	for _, row := range rows {
		if len(row) > 0 && row[0] == "TOTALS" {
			totals = row
		}
	}
	if totals == nil {
		t.Fatal("TOTALS row missing")
	}
	if totals[3] != "2 Pieces" {
		t.Errorf("furniture total = %v, want 2 Pieces", totals[3])
	}
}

func TestCustomerAnalysisSortedByTotalDescending(t *testing.T) {
	records := []models.SalesRecord{
		dayRecord("a", "2026-03-10",
			soldItem("Oak Plank", models.CategoryRaw, "50", "2", "0", "Rahim"),
			soldItem("Teak Table", models.CategoryFurniture, "280", "1", "80", "Karim"),
		),
		dayRecord("b", "2026-03-12",
			soldItem("Oak Plank", models.CategoryRaw, "50", "1", "0", "Rahim"),
		),
	}

	rows := BuildSummaryRows(records, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))

	var start int
	for i, row := range rows {
		if len(row) > 0 && row[0] == "CUSTOMER ANALYSIS" {
			start = i + 2
		}
	}
	if start == 0 {
		t.Fatal("CUSTOMER ANALYSIS block missing")
	}

	if rows[start][0] != "Karim" || rows[start][1] != "$280.00" || rows[start][2] != "$80.00" {
		t.Errorf("top customer = %v, want Karim at $280", rows[start])
	}
	if rows[start+1][0] != "Rahim" || rows[start+1][1] != "$150.00" {
		t.Errorf("second customer = %v, want Rahim at $150", rows[start+1])
	}
}
