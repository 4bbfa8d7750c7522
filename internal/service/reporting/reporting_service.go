package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/tarekpos/internal/domain/models"
	repo "github.com/mamadbah2/tarekpos/internal/repository/sheets"
)

const (
	detailSheetRange  = "Sales Details!A:J"
	summarySheetRange = "Summary & Analysis!A:G"

	displayDateLayout = "January 2, 2006"
)

// ErrNoData indicates the export filter matched no sales records.
var ErrNoData = errors.New("no sales data to export")

// ErrExportDisabled indicates no spreadsheet backend is configured.
var ErrExportDisabled = errors.New("spreadsheet export is not configured")

// LedgerSource is the ledger surface the projector reads snapshots from.
type LedgerSource interface {
	List(ctx context.Context) ([]models.SalesRecord, error)
	FilterByDate(ctx context.Context, date string) ([]models.SalesRecord, error)
	FilterByMonthPrefix(ctx context.Context, prefix string) ([]models.SalesRecord, error)
}

// ExportFilter narrows an export to an exact date or a calendar month.
// An empty filter exports every record.
type ExportFilter struct {
	Date        string
	MonthPrefix string
}

// Service projects ledger snapshots into tabular spreadsheet exports.
type Service struct {
	repo   repo.Repository
	ledger LedgerSource
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a reporting projector. A nil repository disables Export.
func NewService(repository repo.Repository, ledgerSource LedgerSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, ledger: ledgerSource, logger: logger, now: time.Now}
}

// Export writes the detail and summary sheets for the filtered records,
// replacing any previous export.
func (s *Service) Export(ctx context.Context, filter ExportFilter) error {
	if s.repo == nil {
		return ErrExportDisabled
	}

	records, err := s.collect(ctx, filter)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrNoData
	}

	// Oldest first for readability; the ledger hands records out newest first.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})

	generatedAt := s.now()
	if err := s.repo.Overwrite(ctx, detailSheetRange, BuildDetailRows(records, generatedAt)); err != nil {
		return fmt.Errorf("export sales details: %w", err)
	}
	if err := s.repo.Overwrite(ctx, summarySheetRange, BuildSummaryRows(records, generatedAt)); err != nil {
		return fmt.Errorf("export summary: %w", err)
	}

	s.logger.Info("report exported",
		zap.Int("records", len(records)),
		zap.String("date_filter", filter.Date),
		zap.String("month_filter", filter.MonthPrefix))

	return nil
}

// BuildDetailRows renders the detail sheet: a header block, one row per line
// item with the date and daily total shown only on the first row of each day,
// a blank row between days, and a closing summary block.
func BuildDetailRows(records []models.SalesRecord, generatedAt time.Time) [][]interface{} {
	rows := [][]interface{}{
		{"TAREK ENTERPRISE - SALES REPORT"},
		{"Generated on: " + generatedAt.Format(displayDateLayout+" 15:04")},
		{},
		{"Date", "Item Name", "Category", "Customer Name", "Price per Unit", "Quantity", "Unit", "Item Total", "Due Payment", "Daily Total"},
	}

	grandTotal := decimal.Zero
	totalDue := decimal.Zero

	for recordIndex, record := range records {
		if recordIndex > 0 {
			rows = append(rows, []interface{}{})
		}

		for itemIndex, item := range record.Items {
			dateCell := ""
			dailyTotalCell := ""
			if itemIndex == 0 {
				dateCell = formatDisplayDate(record.Date)
				dailyTotalCell = money(record.DailyTotal)
				grandTotal = grandTotal.Add(record.DailyTotal)
			}

			customer := item.CustomerName
			if customer == "" {
				customer = "N/A"
			}

			rows = append(rows, []interface{}{
				dateCell,
				item.Name,
				item.Category.Label(),
				customer,
				money(item.Price),
				item.Quantity.String(),
				item.UnitLabel(),
				money(item.Total),
				money(item.DuePayment),
				dailyTotalCell,
			})

			totalDue = totalDue.Add(item.DuePayment)
		}
	}

	rows = append(rows,
		[]interface{}{},
		[]interface{}{"SUMMARY"},
		[]interface{}{"Total Records:", len(records)},
		[]interface{}{"Total Sales Amount:", money(grandTotal)},
		[]interface{}{"Total Due Payments:", money(totalDue)},
		[]interface{}{"Net Amount Received:", money(grandTotal.Sub(totalDue))},
	)

	return rows
}

// BuildSummaryRows renders the per-day summary sheet with a totals row and
// the customer analysis block, customers sorted descending by total
// purchases.
func BuildSummaryRows(records []models.SalesRecord, generatedAt time.Time) [][]interface{} {
	categories := models.Categories()

	header := []interface{}{"Date", "Total Items Sold"}
	for _, spec := range categories {
		header = append(header, fmt.Sprintf("%s (%s)", spec.Label, spec.Unit))
	}
	header = append(header, "Daily Sales", "Due Payments", "Net Received")

	rows := [][]interface{}{
		{"TAREK ENTERPRISE - DAILY SUMMARY"},
		{"Generated on: " + generatedAt.Format(displayDateLayout)},
		{},
		header,
	}

	totalSales := decimal.Zero
	totalDue := decimal.Zero
	totalItems := 0
	categoryTotals := make(map[models.Category]decimal.Decimal, len(categories))

	for _, record := range records {
		dailyDue := record.DueTotal()
		dailyCategory := make(map[models.Category]decimal.Decimal, len(categories))
		for _, item := range record.Items {
			bucket := summaryBucket(item.Category)
			dailyCategory[bucket] = dailyCategory[bucket].Add(item.Quantity)
		}

		row := []interface{}{formatDisplayDate(record.Date), len(record.Items)}
		for _, spec := range categories {
			qty := dailyCategory[spec.Code]
			row = append(row, fmt.Sprintf("%s %s", qty.String(), spec.Unit))
			categoryTotals[spec.Code] = categoryTotals[spec.Code].Add(qty)
		}
		row = append(row, money(record.DailyTotal), money(dailyDue), money(record.DailyTotal.Sub(dailyDue)))
		rows = append(rows, row)

		totalSales = totalSales.Add(record.DailyTotal)
		totalDue = totalDue.Add(dailyDue)
		totalItems += len(record.Items)
	}

	totalsRow := []interface{}{"TOTALS", totalItems}
	for _, spec := range categories {
		totalsRow = append(totalsRow, fmt.Sprintf("%s %s", categoryTotals[spec.Code].String(), spec.Unit))
	}
	totalsRow = append(totalsRow, money(totalSales), money(totalDue), money(totalSales.Sub(totalDue)))

	rows = append(rows, []interface{}{}, totalsRow)

	rows = append(rows,
		[]interface{}{},
		[]interface{}{"CUSTOMER ANALYSIS"},
		[]interface{}{"Customer Name", "Total Purchases", "Total Due"},
	)
	for _, customer := range aggregateCustomers(records) {
		rows = append(rows, []interface{}{customer.Name, money(customer.Total), money(customer.Due)})
	}

	return rows
}

// CustomerTotals is one customer's aggregated purchases across the export.
type CustomerTotals struct {
	Name  string
	Total decimal.Decimal
	Due   decimal.Decimal
}

func aggregateCustomers(records []models.SalesRecord) []CustomerTotals {
	byName := make(map[string]*CustomerTotals)
	for _, record := range records {
		for _, item := range record.Items {
			name := item.CustomerName
			if name == "" {
				name = "Unknown"
			}
			entry, ok := byName[name]
			if !ok {
				entry = &CustomerTotals{Name: name, Total: decimal.Zero, Due: decimal.Zero}
				byName[name] = entry
			}
			entry.Total = entry.Total.Add(item.Total)
			entry.Due = entry.Due.Add(item.DuePayment)
		}
	}

	customers := make([]CustomerTotals, 0, len(byName))
	for _, entry := range byName {
		customers = append(customers, *entry)
	}
	sort.Slice(customers, func(i, j int) bool {
		if !customers[i].Total.Equal(customers[j].Total) {
			return customers[i].Total.GreaterThan(customers[j].Total)
		}
		return customers[i].Name < customers[j].Name
	})
	return customers
}

// summaryBucket maps a line item's category onto a summary column. Items
// persisted with a stale category code count toward the furniture column so
// the exported quantities still sum.
func summaryBucket(category models.Category) models.Category {
	if _, err := models.ParseCategory(string(category)); err != nil {
		return models.CategoryFurniture
	}
	return category
}

func (s *Service) collect(ctx context.Context, filter ExportFilter) ([]models.SalesRecord, error) {
	switch {
	case filter.Date != "":
		return s.ledger.FilterByDate(ctx, filter.Date)
	case filter.MonthPrefix != "":
		return s.ledger.FilterByMonthPrefix(ctx, filter.MonthPrefix)
	default:
		return s.ledger.List(ctx)
	}
}

func formatDisplayDate(date string) string {
	parsed, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return parsed.Format(displayDateLayout)
}

func money(value decimal.Decimal) string {
	return "$" + value.StringFixed(2)
}
