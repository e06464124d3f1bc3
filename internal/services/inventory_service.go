package services

import (
	"context"
	"log"
	"time"

	"gudangmitra/internal/caching"
	"gudangmitra/internal/common"
	"gudangmitra/internal/models"
	"gudangmitra/internal/repositories"

	"github.com/google/uuid"
)

const itemCacheTTL = 5 * time.Minute

// InventoryService owns the stock ledger. Every mutation of available or
// reserved stock goes through here so the non-negative invariant holds in one
// place.
type InventoryService interface {
	AddItem(ctx context.Context, item *models.Item) (*models.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, limit, offset int) ([]*models.Item, error)
	SearchItems(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error)

	// AdjustStock applies signed deltas to available and reserved stock.
	// Results are clamped at zero; any discarded remainder is logged.
	AdjustStock(ctx context.Context, id uuid.UUID, availableDelta, reservedDelta int) (*models.Item, error)
	Reserve(ctx context.Context, id uuid.UUID, quantity int) (*models.Item, error)
	ReleaseReservation(ctx context.Context, id uuid.UUID, quantity int) (*models.Item, error)
	ConsumeReservation(ctx context.Context, id uuid.UUID, quantity int) (*models.Item, error)
	GetLowStockItems(ctx context.Context) ([]*models.Item, error)
}

type inventoryService struct {
	itemRepo repositories.ItemRepository
	cache    caching.CacheService
}

func NewInventoryService(itemRepo repositories.ItemRepository, cache caching.CacheService) InventoryService {
	return &inventoryService{itemRepo: itemRepo, cache: cache}
}

func (s *inventoryService) AddItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item.Name == "" {
		return nil, common.NewValidationError("name", "item name is required")
	}
	if item.TotalStock < 0 {
		return nil, common.NewValidationError("totalStock", "stock cannot be negative")
	}
	// Ledger columns left out of the draft stay at zero; totalStock is an
	// independent, informational figure and never seeds them.
	if item.AvailableStock < 0 {
		return nil, common.NewValidationError("availableStock", "stock cannot be negative")
	}
	if item.ReservedStock < 0 {
		return nil, common.NewValidationError("reservedStock", "stock cannot be negative")
	}
	if item.Category == "" {
		item.Category = models.DefaultCategory
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	log.Printf("item created: %s (%s), total stock %d", item.Name, item.ID, item.TotalStock)
	return s.itemRepo.GetByID(ctx, item.ID)
}

func (s *inventoryService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetItem(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetItem(ctx, item, itemCacheTTL); err != nil {
			log.Printf("WARN: failed to cache item %s: %v", id, err)
		}
	}
	return item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item.Name == "" {
		return nil, common.NewValidationError("name", "item name is required")
	}
	if item.TotalStock < 0 {
		return nil, common.NewValidationError("totalStock", "stock cannot be negative")
	}
	if item.Category == "" {
		item.Category = models.DefaultCategory
	}

	existing, err := s.itemRepo.GetByID(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	// totalStock edits do not touch the ledger columns. The caller may leave
	// available + reserved out of sync with total; we only warn about it.
	item.AvailableStock = existing.AvailableStock
	item.ReservedStock = existing.ReservedStock
	if item.AvailableStock+item.ReservedStock > item.TotalStock {
		log.Printf("WARN: item %s ledger (%d available + %d reserved) exceeds new total stock %d",
			item.ID, item.AvailableStock, item.ReservedStock, item.TotalStock)
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, item.ID)
	return s.itemRepo.GetByID(ctx, item.ID)
}

func (s *inventoryService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *inventoryService) ListItems(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.itemRepo.List(ctx, limit, offset)
}

func (s *inventoryService) SearchItems(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	if filter == nil {
		filter = &models.ItemSearchFilter{}
	}
	return s.itemRepo.Search(ctx, filter)
}

func (s *inventoryService) AdjustStock(ctx context.Context, id uuid.UUID, availableDelta, reservedDelta int) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newAvailable := item.AvailableStock + availableDelta
	newReserved := item.ReservedStock + reservedDelta
	if newAvailable < 0 {
		log.Printf("WARN: item %s available stock clamped to 0, discarded remainder %d", id, -newAvailable)
		newAvailable = 0
	}
	if newReserved < 0 {
		log.Printf("WARN: item %s reserved stock clamped to 0, discarded remainder %d", id, -newReserved)
		newReserved = 0
	}

	if err := s.itemRepo.UpdateStock(ctx, id, newAvailable, newReserved); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	item.AvailableStock = newAvailable
	item.ReservedStock = newReserved
	return item, nil
}

// Reserve moves quantity units from available to reserved. It refuses the move
// outright when stock is short rather than partially reserving.
func (s *inventoryService) Reserve(ctx context.Context, id uuid.UUID, quantity int) (*models.Item, error) {
	if quantity <= 0 {
		return nil, common.NewValidationError("quantity", "quantity must be positive")
	}
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.AvailableStock < quantity {
		return nil, common.NewConflictError("insufficient stock for " + item.Name)
	}
	return s.AdjustStock(ctx, id, -quantity, quantity)
}

// ReleaseReservation returns quantity reserved units back to available.
func (s *inventoryService) ReleaseReservation(ctx context.Context, id uuid.UUID, quantity int) (*models.Item, error) {
	if quantity <= 0 {
		return nil, common.NewValidationError("quantity", "quantity must be positive")
	}
	return s.AdjustStock(ctx, id, quantity, -quantity)
}

// ConsumeReservation removes quantity reserved units permanently, e.g. when a
// request is fulfilled and stock leaves the warehouse.
func (s *inventoryService) ConsumeReservation(ctx context.Context, id uuid.UUID, quantity int) (*models.Item, error) {
	if quantity <= 0 {
		return nil, common.NewValidationError("quantity", "quantity must be positive")
	}
	return s.AdjustStock(ctx, id, 0, -quantity)
}

func (s *inventoryService) GetLowStockItems(ctx context.Context) ([]*models.Item, error) {
	return s.itemRepo.ListLowStock(ctx)
}

func (s *inventoryService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteItem(ctx, id); err != nil {
		log.Printf("WARN: failed to invalidate cached item %s: %v", id, err)
	}
}
