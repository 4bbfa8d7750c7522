package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/tarekpos/internal/domain/models"
	"github.com/mamadbah2/tarekpos/internal/service/ledger"
)

// ErrEmptyBatch indicates a submission contained no usable line items after
// blank rows were dropped.
var ErrEmptyBatch = errors.New("no line items to record")

// ValidationError indicates a malformed or partially filled line item. The
// whole batch is rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ProductNotFoundError indicates a line item references a product absent from
// stock.
type ProductNotFoundError struct {
	Name     string
	Category models.Category
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q not found in stock", e.Name)
}

// InsufficientStockError indicates a line item requests more than is
// available.
type InsufficientStockError struct {
	Name      string
	Available decimal.Decimal
	Requested decimal.Decimal
	Unit      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %s %s, requested %s %s",
		e.Name, e.Available.String(), e.Unit, e.Requested.String(), e.Unit)
}

// StockStore is the inventory surface the coordinator validates against and
// decrements.
type StockStore interface {
	FindByName(ctx context.Context, category models.Category, name string) (*models.StockItem, error)
	AdjustQuantity(ctx context.Context, category models.Category, name string, delta decimal.Decimal) error
}

// SalesLedger is the journal the coordinator commits to.
type SalesLedger interface {
	FindByDate(ctx context.Context, date string) (*models.SalesRecord, error)
	Commit(ctx context.Context, record models.SalesRecord, replace bool) error
}

// LineItemInput is one proposed row of a sale submission.
type LineItemInput struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	CustomerName string          `json:"customerName"`
	DuePayment   decimal.Decimal `json:"duePayment"`
}

func (in LineItemInput) blank() bool {
	return strings.TrimSpace(in.Name) == "" &&
		strings.TrimSpace(in.CustomerName) == "" &&
		in.Price.IsZero() &&
		in.Quantity.IsZero()
}

// SaleInput is one proposed sale batch.
type SaleInput struct {
	Date  string          `json:"date"`
	Items []LineItemInput `json:"items"`
	// ReplaceExisting is the confirmation capability for overwriting the
	// record of a date that already has one.
	ReplaceExisting bool `json:"replaceExisting"`
}

// Coordinator turns a proposed batch of line items into a consistent stock
// decrement plus a ledger commit.
type Coordinator struct {
	stock  StockStore
	ledger SalesLedger
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewCoordinator wires a sale transaction coordinator.
func NewCoordinator(stock StockStore, salesLedger SalesLedger, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		stock:  stock,
		ledger: salesLedger,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Execute validates the batch against stock, resolves the duplicate-date
// decision, applies quantity decrements and commits the sales record. Every
// failure is typed and leaves both stores untouched: the duplicate-date check
// runs before any stock mutation, so declining the replace decision has no
// side effect.
func (c *Coordinator) Execute(ctx context.Context, input SaleInput) (*models.SalesRecord, error) {
	if err := models.ValidateDate(input.Date); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	items, err := c.validateBatch(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}

	existing, err := c.ledger.FindByDate(ctx, input.Date)
	if err != nil {
		return nil, err
	}
	if existing != nil && !input.ReplaceExisting {
		return nil, &ledger.DuplicateDateError{Existing: *existing}
	}

	// Decrements cannot fail validation at this point; sufficiency was
	// confirmed above. The applies are sequential, not transactional.
	for _, item := range items {
		if err := c.stock.AdjustQuantity(ctx, item.Category, item.Name, item.Quantity.Neg()); err != nil {
			return nil, fmt.Errorf("decrement stock for %q: %w", item.Name, err)
		}
	}

	dailyTotal := decimal.Zero
	for _, item := range items {
		dailyTotal = dailyTotal.Add(item.Total)
	}

	record := models.SalesRecord{
		ID:         c.newID(),
		Date:       input.Date,
		Items:      items,
		DailyTotal: dailyTotal,
		CreatedAt:  c.now().UTC(),
	}

	if err := c.ledger.Commit(ctx, record, existing != nil); err != nil {
		return nil, err
	}

	c.logger.Info("sale executed",
		zap.String("date", record.Date),
		zap.Int("items", len(record.Items)),
		zap.String("daily_total", record.DailyTotal.String()),
		zap.Bool("replaced", existing != nil))

	return &record, nil
}

// validateBatch triages the proposed rows. Fully blank rows are dropped,
// partially filled rows fail the batch, and every surviving row must resolve
// against stock with sufficient quantity. The first failing row aborts the
// batch wholesale.
func (c *Coordinator) validateBatch(ctx context.Context, inputs []LineItemInput) ([]models.SaleLineItem, error) {
	items := make([]models.SaleLineItem, 0, len(inputs))

	for _, in := range inputs {
		if in.blank() {
			continue
		}

		name := strings.TrimSpace(in.Name)
		customer := strings.TrimSpace(in.CustomerName)
		if name == "" || customer == "" || !in.Price.IsPositive() || !in.Quantity.IsPositive() {
			return nil, &ValidationError{Reason: "fill in all item details or remove empty rows"}
		}
		if in.DuePayment.IsNegative() {
			return nil, &ValidationError{Reason: "due payment must not be negative"}
		}

		category, err := models.ParseCategory(in.Category)
		if err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}

		// Sale-time resolution is an exact name match; restock matching is
		// case-insensitive.
		stockItem, err := c.stock.FindByName(ctx, category, name)
		if err != nil {
			return nil, err
		}
		if stockItem == nil {
			return nil, &ProductNotFoundError{Name: name, Category: category}
		}
		if stockItem.Quantity.LessThan(in.Quantity) {
			return nil, &InsufficientStockError{
				Name:      name,
				Available: stockItem.Quantity,
				Requested: in.Quantity,
				Unit:      stockItem.UnitLabel(),
			}
		}

		items = append(items, models.SaleLineItem{
			Name:         name,
			Category:     category,
			Price:        in.Price,
			Quantity:     in.Quantity,
			Total:        in.Price.Mul(in.Quantity),
			CustomerName: customer,
			DuePayment:   in.DuePayment,
		})
	}

	return items, nil
}
