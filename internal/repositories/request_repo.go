package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gudangmitra/internal/common"
	"gudangmitra/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `id, project_name, requester_id, requester_name, requester_email, reason, priority, due_date, status, pickup_location, pickup_time, pickup_delivered, created_at, updated_at`

type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
	Update(ctx context.Context, request *models.Request) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.RequestSearchFilter) ([]*models.Request, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]*models.Request, error)
}

type requestRepo struct {
	db Database
}

func NewRequestRepo(db Database) RequestRepository {
	return &requestRepo{db: db}
}

// Create inserts the request and its lines in one transaction so a request
// never exists without items.
func (r *requestRepo) Create(ctx context.Context, request *models.Request) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO requests (id, project_name, requester_id, requester_name, requester_email, reason, priority, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.Exec(ctx, query, request.ID, request.ProjectName,
		request.Requester.ID, request.Requester.Name, request.Requester.Email,
		request.Reason, request.Priority, request.DueDate, request.Status,
		request.CreatedAt, request.UpdatedAt)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO request_items (request_id, item_id, item_name, quantity)
		VALUES ($1, $2, $3, $4)
	`
	for _, line := range request.Items {
		if _, err := tx.Exec(ctx, itemQuery, request.ID, line.ItemID, line.ItemName, line.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *requestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	request, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("request", id.String())
		}
		return nil, err
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	request.Items = items
	return request, nil
}

func (r *requestRepo) Update(ctx context.Context, request *models.Request) error {
	var location *string
	var pickupTime *time.Time
	delivered := false
	if request.PickupDetails != nil {
		location = &request.PickupDetails.Location
		pickupTime = request.PickupDetails.Time
		delivered = request.PickupDetails.Delivered
	}

	query := `
		UPDATE requests
		SET project_name = $1, reason = $2, priority = $3, due_date = $4, status = $5,
		    pickup_location = $6, pickup_time = $7, pickup_delivered = $8, updated_at = $9
		WHERE id = $10
	`
	tag, err := r.db.Exec(ctx, query, request.ProjectName, request.Reason, request.Priority,
		request.DueDate, request.Status, location, pickupTime, delivered, request.UpdatedAt, request.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("request", request.ID.String())
	}
	return nil
}

func (r *requestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM request_items WHERE request_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("request", id.String())
	}
	return tx.Commit(ctx)
}

func (r *requestRepo) List(ctx context.Context, filter *models.RequestSearchFilter) ([]*models.Request, error) {
	if filter == nil {
		filter = &models.RequestSearchFilter{}
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + requestColumns + ` FROM requests WHERE 1=1`
	args := []interface{}{}
	argN := 0

	if filter.Status != nil {
		argN++
		queryBase += fmt.Sprintf(` AND status = $%d`, argN)
		args = append(args, *filter.Status)
	}
	if filter.RequesterID != nil {
		argN++
		queryBase += fmt.Sprintf(` AND requester_id = $%d`, argN)
		args = append(args, *filter.RequesterID)
	}
	if filter.Priority != nil {
		argN++
		queryBase += fmt.Sprintf(` AND priority = $%d`, argN)
		args = append(args, *filter.Priority)
	}

	queryBase += ` ORDER BY created_at ASC`
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

	requests, err := collectRequests(rows)
	if err != nil {
		return nil, err
	}
	for _, request := range requests {
		items, err := r.listItems(ctx, request.ID)
		if err != nil {
			return nil, err
		}
		request.Items = items
	}
	return requests, nil
}

// ListByRequester preserves the source collection's relative order
// (created_at ascending, same as List). Limit and offset page through the
// requester's full history; a non-positive limit falls back to List's default.
func (r *requestRepo) ListByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]*models.Request, error) {
	return r.List(ctx, &models.RequestSearchFilter{RequesterID: &requesterID, Limit: limit, Offset: offset})
}

func (r *requestRepo) listItems(ctx context.Context, requestID uuid.UUID) ([]models.RequestItem, error) {
	query := `
		SELECT item_id, item_name, quantity
		FROM request_items
		WHERE request_id = $1
		ORDER BY item_name ASC
	`
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.RequestItem
	for rows.Next() {
		var line models.RequestItem
		if err := rows.Scan(&line.ItemID, &line.ItemName, &line.Quantity); err != nil {
			return nil, err
		}
		items = append(items, line)
	}
	return items, rows.Err()
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	request := &models.Request{}
	var location *string
	var pd models.PickupDetails
	err := row.Scan(&request.ID, &request.ProjectName,
		&request.Requester.ID, &request.Requester.Name, &request.Requester.Email,
		&request.Reason, &request.Priority, &request.DueDate, &request.Status,
		&location, &pd.Time, &pd.Delivered, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if location != nil {
		pd.Location = *location
		request.PickupDetails = &pd
	}
	return request, nil
}

func collectRequests(rows pgx.Rows) ([]*models.Request, error) {
	var requests []*models.Request
	for rows.Next() {
		request := &models.Request{}
		var location *string
		var pd models.PickupDetails
		if err := rows.Scan(&request.ID, &request.ProjectName,
			&request.Requester.ID, &request.Requester.Name, &request.Requester.Email,
			&request.Reason, &request.Priority, &request.DueDate, &request.Status,
			&location, &pd.Time, &pd.Delivered, &request.CreatedAt, &request.UpdatedAt); err != nil {
			return nil, err
		}
		if location != nil {
			pd.Location = *location
			request.PickupDetails = &pd
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}
