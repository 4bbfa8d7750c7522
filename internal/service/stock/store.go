package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/tarekpos/internal/domain/models"
	"github.com/mamadbah2/tarekpos/internal/repository/kv"
)

// storageKeyPrefix matches the legacy persisted layout: one key per category.
const storageKeyPrefix = "tarekStockData_"

// ErrInvalidInput indicates a restock or edit payload failed validation.
var ErrInvalidInput = errors.New("invalid stock input")

// ErrItemNotFound indicates no stock item matches the requested identifier.
var ErrItemNotFound = errors.New("stock item not found")

// ConflictError is returned by Restock when an item with the same name
// (case-insensitive) already exists and merging was not confirmed. The caller
// surfaces the existing item and asks for an explicit merge decision.
type ConflictError struct {
	Existing models.StockItem
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("product %q already exists in category %s", e.Existing.Name, e.Existing.Category)
}

// RestockInput carries one stock addition.
type RestockInput struct {
	Category     models.Category
	Name         string
	BuyingPrice  decimal.Decimal
	SellingPrice decimal.Decimal
	Quantity     decimal.Decimal
	// ConfirmMerge is the confirmation capability for adding onto an
	// existing product instead of creating a duplicate.
	ConfirmMerge bool
}

// RestockResult reports what a restock did.
type RestockResult struct {
	Item   models.StockItem
	Merged bool
	// Warning is set when selling price does not exceed buying price. The
	// restock still goes through.
	Warning string
}

// Store is the category-partitioned authoritative inventory.
type Store struct {
	store             kv.Store
	logger            *zap.Logger
	lowStockThreshold int
	now               func() time.Time
}

// NewStore wires a stock store over the given key/value backend.
func NewStore(store kv.Store, lowStockThreshold int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		store:             store,
		logger:            logger,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// FindByName resolves an item by exact, case-sensitive name match. It returns
// nil when no item matches. Restock deliberately uses a case-insensitive
// comparison instead.
func (s *Store) FindByName(ctx context.Context, category models.Category, name string) (*models.StockItem, error) {
	items, err := s.load(ctx, category)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Name == name {
			item := items[i]
			return &item, nil
		}
	}
	return nil, nil
}

// List returns the category's items in insertion order.
func (s *Store) List(ctx context.Context, category models.Category) ([]models.StockItem, error) {
	return s.load(ctx, category)
}

// Search filters the category's items by case-insensitive name substring.
func (s *Store) Search(ctx context.Context, category models.Category, term string) ([]models.StockItem, error) {
	items, err := s.load(ctx, category)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	matched := make([]models.StockItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// Available returns sellable items (quantity > 0) across all categories, in
// category registry order.
func (s *Store) Available(ctx context.Context) ([]models.StockItem, error) {
	var available []models.StockItem
	for _, spec := range models.Categories() {
		items, err := s.load(ctx, spec.Code)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.Quantity.IsPositive() {
				available = append(available, item)
			}
		}
	}
	return available, nil
}

// Restock adds quantity for a product name. The name is trimmed before
// matching. A case-insensitive match merges into the existing item (quantity
// summed, both prices overwritten) and requires ConfirmMerge; otherwise a new
// item is created.
func (s *Store) Restock(ctx context.Context, input RestockInput) (*RestockResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name must not be empty", ErrInvalidInput)
	}
	if !input.BuyingPrice.IsPositive() || !input.SellingPrice.IsPositive() {
		return nil, fmt.Errorf("%w: prices must be positive", ErrInvalidInput)
	}
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	items, err := s.load(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	result := &RestockResult{}
	if input.SellingPrice.LessThanOrEqual(input.BuyingPrice) {
		result.Warning = "selling price is not higher than buying price"
	}

	now := s.now().UTC()
	merged := false
	for i := range items {
		if !strings.EqualFold(items[i].Name, name) {
			continue
		}
		if !input.ConfirmMerge {
			return nil, &ConflictError{Existing: items[i]}
		}

		items[i].Quantity = items[i].Quantity.Add(input.Quantity)
		items[i].BuyingPrice = input.BuyingPrice
		items[i].SellingPrice = input.SellingPrice
		items[i].UpdatedAt = now

		result.Item = items[i]
		result.Merged = true
		merged = true
		break
	}

	if !merged {
		item := models.StockItem{
			ID:           uuid.NewString(),
			Name:         name,
			Category:     input.Category,
			BuyingPrice:  input.BuyingPrice,
			SellingPrice: input.SellingPrice,
			Quantity:     input.Quantity,
			Unit:         input.Category.Unit(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		items = append(items, item)
		result.Item = item
	}

	if err := s.save(ctx, input.Category, items); err != nil {
		return nil, err
	}

	s.logger.Info("stock restocked",
		zap.String("category", string(input.Category)),
		zap.String("name", result.Item.Name),
		zap.Bool("merged", result.Merged),
		zap.String("quantity", result.Item.Quantity.String()))

	return result, nil
}

// AdjustQuantity applies delta (negative for sales) to an item matched by
// exact name. The caller pre-validates sufficiency; no clamping happens here.
// A missing item is a silent no-op.
func (s *Store) AdjustQuantity(ctx context.Context, category models.Category, name string, delta decimal.Decimal) error {
	items, err := s.load(ctx, category)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].Name == name {
			items[i].Quantity = items[i].Quantity.Add(delta)
			items[i].UpdatedAt = s.now().UTC()
			break
		}
	}

	return s.save(ctx, category, items)
}

// EditInput carries a manual override of an item's quantity and prices.
type EditInput struct {
	Quantity     decimal.Decimal
	BuyingPrice  decimal.Decimal
	SellingPrice decimal.Decimal
}

// Edit overwrites an item's quantity and prices by identifier.
func (s *Store) Edit(ctx context.Context, category models.Category, id string, input EditInput) (*models.StockItem, error) {
	if input.Quantity.IsNegative() {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	if !input.BuyingPrice.IsPositive() || !input.SellingPrice.IsPositive() {
		return nil, fmt.Errorf("%w: prices must be positive", ErrInvalidInput)
	}

	items, err := s.load(ctx, category)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ID != id {
			continue
		}

		items[i].Quantity = input.Quantity
		items[i].BuyingPrice = input.BuyingPrice
		items[i].SellingPrice = input.SellingPrice
		items[i].UpdatedAt = s.now().UTC()

		if err := s.save(ctx, category, items); err != nil {
			return nil, err
		}

		item := items[i]
		return &item, nil
	}

	return nil, ErrItemNotFound
}

// Remove deletes an item by identifier. Removing an unknown id is not an
// error; the collection is rewritten either way.
func (s *Store) Remove(ctx context.Context, category models.Category, id string) error {
	items, err := s.load(ctx, category)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}

	return s.save(ctx, category, kept)
}

// Summary aggregates the category for the dashboard strip.
func (s *Store) Summary(ctx context.Context, category models.Category) (*models.StockSummary, error) {
	items, err := s.load(ctx, category)
	if err != nil {
		return nil, err
	}

	summary := &models.StockSummary{ProductCount: len(items), StockValue: decimal.Zero}
	threshold := decimal.NewFromInt(int64(s.lowStockThreshold))
	for _, item := range items {
		summary.StockValue = summary.StockValue.Add(item.Value())
		if item.Quantity.LessThanOrEqual(threshold) {
			summary.LowStockCount++
		}
	}
	return summary, nil
}

// LowStock returns items at or below the low-stock threshold across all
// categories.
func (s *Store) LowStock(ctx context.Context) ([]models.StockItem, error) {
	threshold := decimal.NewFromInt(int64(s.lowStockThreshold))

	var low []models.StockItem
	for _, spec := range models.Categories() {
		items, err := s.load(ctx, spec.Code)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.Quantity.LessThanOrEqual(threshold) {
				low = append(low, item)
			}
		}
	}
	return low, nil
}

func storageKey(category models.Category) string {
	return storageKeyPrefix + string(category)
}

func (s *Store) load(ctx context.Context, category models.Category) ([]models.StockItem, error) {
	raw, err := s.store.Get(ctx, storageKey(category))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return []models.StockItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load stock %s: %w", category, err)
	}

	var items []models.StockItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode stock %s: %w", category, err)
	}
	return items, nil
}

func (s *Store) save(ctx context.Context, category models.Category, items []models.StockItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode stock %s: %w", category, err)
	}

	if err := s.store.Put(ctx, storageKey(category), raw); err != nil {
		return fmt.Errorf("persist stock %s: %w", category, err)
	}
	return nil
}
