package repositories

import (
	"context"
	"errors"
	"fmt"

	"gudangmitra/internal/common"
	"gudangmitra/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, name, description, category, total_stock, available_stock, reserved_stock, low_stock_threshold, created_at, updated_at`

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	UpdateStock(ctx context.Context, id uuid.UUID, available, reserved int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Item, error)
	ListLowStock(ctx context.Context) ([]*models.Item, error)
	Search(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error)
	ReassignCategory(ctx context.Context, from, to string) error
}

type itemRepo struct {
	db Database
}

func NewItemRepo(db Database) ItemRepository {
	return &itemRepo{db: db}
}

func scanItem(row pgx.Row) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Category,
		&item.TotalStock, &item.AvailableStock, &item.ReservedStock,
		&item.LowStockThreshold, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, name, description, category, total_stock, available_stock, reserved_stock, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.Name, item.Description, item.Category,
		item.TotalStock, item.AvailableStock, item.ReservedStock, item.LowStockThreshold)
	return err
}

func (r *itemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("item", id.String())
		}
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, description = $2, category = $3, total_stock = $4,
		    available_stock = $5, reserved_stock = $6, low_stock_threshold = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := r.db.Exec(ctx, query, item.Name, item.Description, item.Category,
		item.TotalStock, item.AvailableStock, item.ReservedStock, item.LowStockThreshold, item.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("item", item.ID.String())
	}
	return nil
}

func (r *itemRepo) UpdateStock(ctx context.Context, id uuid.UUID, available, reserved int) error {
	query := `
		UPDATE items
		SET available_stock = $1, reserved_stock = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, available, reserved, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("item", id.String())
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM items WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("item", id.String())
	}
	return nil
}

func (r *itemRepo) List(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListLowStock returns every item at or below its threshold, most severe
// (largest shortfall) first.
func (r *itemRepo) ListLowStock(ctx context.Context) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE available_stock <= low_stock_threshold
		ORDER BY (low_stock_threshold - available_stock) DESC, name ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *itemRepo) Search(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	args := []interface{}{}
	argN := 0

	if filter.Query != "" {
		argN++
		queryBase += fmt.Sprintf(` AND (name ILIKE $%d OR description ILIKE $%d)`, argN, argN)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.Category != nil {
		argN++
		queryBase += fmt.Sprintf(` AND category = $%d`, argN)
		args = append(args, *filter.Category)
	}
	if filter.LowStock {
		queryBase += ` AND available_stock <= low_stock_threshold`
	}

	sortField := "updated_at"
	switch filter.SortBy {
	case "name":
		sortField = "name"
	case "available_stock":
		sortField = "available_stock"
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	argN++
	queryBase += fmt.Sprintf(` LIMIT $%d`, argN)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		argN++
		queryBase += fmt.Sprintf(` OFFSET $%d`, argN)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ReassignCategory moves every item labeled `from` to the label `to`. Used by
// category deletion.
func (r *itemRepo) ReassignCategory(ctx context.Context, from, to string) error {
	query := `UPDATE items SET category = $1, updated_at = NOW() WHERE category = $2`
	_, err := r.db.Exec(ctx, query, to, from)
	return err
}

func collectItems(rows pgx.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Category,
			&item.TotalStock, &item.AvailableStock, &item.ReservedStock,
			&item.LowStockThreshold, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
