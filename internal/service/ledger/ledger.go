package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/tarekpos/internal/domain/models"
	"github.com/mamadbah2/tarekpos/internal/repository/kv"
)

// storageKey matches the legacy persisted layout: the whole ledger lives
// under a single key.
const storageKey = "tarekSalesData"

// DuplicateDateError signals that a record already exists for the submitted
// date. It carries the existing record so the caller can present the
// replace-or-abort decision.
type DuplicateDateError struct {
	Existing models.SalesRecord
}

func (e *DuplicateDateError) Error() string {
	return fmt.Sprintf("a sales record for %s already exists", e.Existing.Date)
}

// Ledger is the append/replace-only journal of daily sales records.
type Ledger struct {
	store  kv.Store
	logger *zap.Logger
}

// NewLedger wires a sales ledger over the given key/value backend.
func NewLedger(store kv.Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, logger: logger}
}

// FindByDate returns the record for an exact date, or nil.
func (l *Ledger) FindByDate(ctx context.Context, date string) (*models.SalesRecord, error) {
	records, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].Date == date {
			record := records[i]
			return &record, nil
		}
	}
	return nil, nil
}

// Commit appends the record, or replaces the existing record for its date
// when replace is set. A duplicate date without replace fails with
// DuplicateDateError and leaves the ledger unchanged. The record is never
// merged into an existing one. The ledger is re-sorted descending by date on
// every commit.
func (l *Ledger) Commit(ctx context.Context, record models.SalesRecord, replace bool) error {
	records, err := l.load(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].Date != record.Date {
			continue
		}
		if !replace {
			return &DuplicateDateError{Existing: records[i]}
		}
		records[i] = record
		replaced = true
		break
	}

	if !replaced {
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})

	if err := l.save(ctx, records); err != nil {
		return err
	}

	l.logger.Info("sales record committed",
		zap.String("date", record.Date),
		zap.Int("items", len(record.Items)),
		zap.String("daily_total", record.DailyTotal.String()),
		zap.Bool("replaced", replaced))

	return nil
}

// List returns all records, descending by date.
func (l *Ledger) List(ctx context.Context) ([]models.SalesRecord, error) {
	return l.load(ctx)
}

// FilterByDate returns records matching an exact date.
func (l *Ledger) FilterByDate(ctx context.Context, date string) ([]models.SalesRecord, error) {
	return l.filter(ctx, func(r models.SalesRecord) bool {
		return r.Date == date
	})
}

// FilterByMonthPrefix returns records whose date starts with the given
// YYYY-MM prefix.
func (l *Ledger) FilterByMonthPrefix(ctx context.Context, prefix string) ([]models.SalesRecord, error) {
	return l.filter(ctx, func(r models.SalesRecord) bool {
		return strings.HasPrefix(r.Date, prefix)
	})
}

// Totals aggregates a record view for display: record count and gross amount.
func Totals(records []models.SalesRecord) (int, decimal.Decimal) {
	gross := decimal.Zero
	for _, record := range records {
		gross = gross.Add(record.DailyTotal)
	}
	return len(records), gross
}

func (l *Ledger) filter(ctx context.Context, keep func(models.SalesRecord) bool) ([]models.SalesRecord, error) {
	records, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.SalesRecord, 0, len(records))
	for _, record := range records {
		if keep(record) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

func (l *Ledger) load(ctx context.Context) ([]models.SalesRecord, error) {
	raw, err := l.store.Get(ctx, storageKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return []models.SalesRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sales ledger: %w", err)
	}

	var records []models.SalesRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode sales ledger: %w", err)
	}
	return records, nil
}

func (l *Ledger) save(ctx context.Context, records []models.SalesRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode sales ledger: %w", err)
	}

	if err := l.store.Put(ctx, storageKey, raw); err != nil {
		return fmt.Errorf("persist sales ledger: %w", err)
	}
	return nil
}
