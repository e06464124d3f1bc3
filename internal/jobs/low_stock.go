package jobs

import (
	"context"
	"log"

	"gudangmitra/internal/models"
	"gudangmitra/internal/repositories"
)

// LowStockAlertService periodically surfaces items that have fallen to or
// below their threshold so warehouse staff can restock before requests start
// bouncing.
type LowStockAlertService struct {
	itemRepo repositories.ItemRepository
}

func NewLowStockAlertService(itemRepo repositories.ItemRepository) *LowStockAlertService {
	return &LowStockAlertService{itemRepo: itemRepo}
}

func (a *LowStockAlertService) CheckLowStock(ctx context.Context) ([]*models.Item, error) {
	items, err := a.itemRepo.ListLowStock(ctx)
	if err != nil {
		log.Printf("Failed to list low stock items: %v", err)
		return nil, err
	}
	return items, nil
}

func (a *LowStockAlertService) LogLowStockAlerts(items []*models.Item) {
	if len(items) == 0 {
		return
	}

	log.Printf("Low stock alerts (%d items):", len(items))
	for _, item := range items {
		log.Printf("- '%s' (%s) has %d available (threshold: %d)",
			item.Name, item.Category, item.AvailableStock, item.LowStockThreshold)
	}
}

// ScheduledLowStockCheck is the entry point the background scheduler invokes.
func (a *LowStockAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	items, err := a.CheckLowStock(ctx)
	if err != nil {
		return err
	}
	a.LogLowStockAlerts(items)
	return nil
}
