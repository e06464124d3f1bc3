package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gudangmitra/internal/caching"
	"gudangmitra/internal/common"
	"gudangmitra/internal/models"
	"gudangmitra/internal/repositories"

	"github.com/google/uuid"
)

const requestCacheTTL = 2 * time.Minute

// allowedTransitions is the full request state machine. A transition absent
// from this table is rejected with a TransitionError, no exceptions.
var allowedTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.StatusPending:    {models.StatusApproved, models.StatusDenied, models.StatusOutOfStock},
	models.StatusApproved:   {models.StatusFulfilled, models.StatusDenied, models.StatusOutOfStock},
	models.StatusOutOfStock: {models.StatusApproved, models.StatusDenied},
	models.StatusDenied:     {},
	models.StatusFulfilled:  {},
}

type SubmitRequestInput struct {
	ProjectName string
	RequesterID uuid.UUID
	Items       []models.RequestItem
	Reason      string
	Priority    string
	DueDate     *time.Time
}

type StatusUpdateInput struct {
	RequestID      uuid.UUID
	NewStatus      models.RequestStatus
	ActorID        uuid.UUID
	ActorRole      string
	PickupLocation string
	PickupTime     *time.Time
}

type RequestService interface {
	Submit(ctx context.Context, input *SubmitRequestInput) (*models.Request, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.Request, error)
	ListRequests(ctx context.Context, filter *models.RequestSearchFilter) ([]*models.Request, error)
	GetUserRequests(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]*models.Request, error)
	UpdateStatus(ctx context.Context, input *StatusUpdateInput) (*models.Request, error)
	MarkDelivered(ctx context.Context, requestID uuid.UUID, actorRole string) (*models.Request, error)
	DeleteRequest(ctx context.Context, requestID, actorID uuid.UUID, actorRole string) error
}

type requestService struct {
	requestRepo repositories.RequestRepository
	userRepo    repositories.UserRepository
	inventory   InventoryService
	cache       caching.CacheService
}

func NewRequestService(requestRepo repositories.RequestRepository, userRepo repositories.UserRepository,
	inventory InventoryService, cache caching.CacheService) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		inventory:   inventory,
		cache:       cache,
	}
}

// Submit creates a new pending request. Requester identity and item names are
// snapshotted at submit time so later user or item edits do not rewrite
// request history.
func (s *requestService) Submit(ctx context.Context, input *SubmitRequestInput) (*models.Request, error) {
	if input.ProjectName == "" {
		return nil, common.NewValidationError("projectName", "project name is required")
	}
	if len(input.Items) == 0 {
		return nil, common.NewValidationError("items", "a request needs at least one item")
	}
	if input.Reason == "" {
		return nil, common.NewValidationError("reason", "a reason is required")
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(input.Priority) {
		return nil, common.NewValidationError("priority", "priority must be low, medium or high")
	}

	requester, err := s.userRepo.GetByID(ctx, input.RequesterID)
	if err != nil {
		return nil, err
	}

	lines := make([]models.RequestItem, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, common.NewValidationError("items", "item quantities must be positive")
		}
		item, err := s.inventory.GetItem(ctx, line.ItemID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.RequestItem{
			ItemID:   item.ID,
			ItemName: item.Name,
			Quantity: line.Quantity,
		})
	}

	now := time.Now()
	request := &models.Request{
		ID:          uuid.New(),
		ProjectName: input.ProjectName,
		Requester: models.Requester{
			ID:    requester.ID,
			Name:  requester.Name,
			Email: requester.Email,
		},
		Items:     lines,
		Reason:    input.Reason,
		Priority:  input.Priority,
		DueDate:   input.DueDate,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}
	log.Printf("request %s submitted by %s (%d items)", request.ID, requester.Email, len(lines))
	return request, nil
}

func (s *requestService) GetRequest(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetRequest(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetRequest(ctx, request, requestCacheTTL); err != nil {
			log.Printf("WARN: failed to cache request %s: %v", id, err)
		}
	}
	return request, nil
}

func (s *requestService) ListRequests(ctx context.Context, filter *models.RequestSearchFilter) ([]*models.Request, error) {
	return s.requestRepo.List(ctx, filter)
}

func (s *requestService) GetUserRequests(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]*models.Request, error) {
	return s.requestRepo.ListByRequester(ctx, requesterID, limit, offset)
}

// UpdateStatus drives the request through its lifecycle. Only admins and
// managers may change status; the transition table decides which moves are
// legal, and approved/denied/fulfilled carry their stock side effects here.
func (s *requestService) UpdateStatus(ctx context.Context, input *StatusUpdateInput) (*models.Request, error) {
	if !models.ValidStatus(input.NewStatus) {
		return nil, common.NewValidationError("status", "unknown status "+string(input.NewStatus))
	}
	if !models.RoleAtLeast(input.ActorRole, models.RoleAdmin) {
		return nil, common.NewAuthorizationError("update request status")
	}

	request, err := s.requestRepo.GetByID(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(request.Status, input.NewStatus) {
		return nil, common.NewTransitionError(string(request.Status), string(input.NewStatus),
			"transition not permitted")
	}

	previous := request.Status
	switch input.NewStatus {
	case models.StatusApproved:
		if err := s.reserveAll(ctx, request); err != nil {
			return nil, err
		}
	case models.StatusDenied, models.StatusOutOfStock:
		// Leaving the approved state hands the reservation back.
		if previous == models.StatusApproved {
			if err := s.releaseAll(ctx, request); err != nil {
				return nil, err
			}
		}
	case models.StatusFulfilled:
		if input.PickupLocation == "" {
			return nil, common.NewValidationError("pickupLocation", "fulfillment requires a pickup location")
		}
		if err := s.consumeAll(ctx, request); err != nil {
			return nil, err
		}
		request.PickupDetails = &models.PickupDetails{
			Location: input.PickupLocation,
			Time:     input.PickupTime,
		}
	}

	request.Status = input.NewStatus
	request.UpdatedAt = time.Now()
	if err := s.requestRepo.Update(ctx, request); err != nil {
		// The transition did not persist. Undo its stock side effect so the
		// ledger matches the stored request and a retry starts clean instead
		// of reserving or releasing twice.
		switch {
		case input.NewStatus == models.StatusApproved:
			s.releaseLines(ctx, request.ID, request.Items)
		case previous == models.StatusApproved &&
			(input.NewStatus == models.StatusDenied || input.NewStatus == models.StatusOutOfStock):
			s.reserveLines(ctx, request.ID, request.Items)
		case input.NewStatus == models.StatusFulfilled:
			s.restoreLines(ctx, request.ID, request.Items)
		}
		return nil, err
	}
	s.invalidate(ctx, request.ID)
	log.Printf("request %s moved to %s by %s", request.ID, input.NewStatus, input.ActorID)
	return request, nil
}

// MarkDelivered flags a fulfilled request as picked up. It is not a status
// transition; fulfilled stays terminal.
func (s *requestService) MarkDelivered(ctx context.Context, requestID uuid.UUID, actorRole string) (*models.Request, error) {
	if !models.RoleAtLeast(actorRole, models.RoleAdmin) {
		return nil, common.NewAuthorizationError("mark request delivered")
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.StatusFulfilled {
		return nil, common.NewTransitionError(string(request.Status), string(models.StatusFulfilled),
			"only fulfilled requests can be marked delivered")
	}
	if request.PickupDetails == nil {
		return nil, common.NewConflictError("request has no pickup details")
	}

	request.PickupDetails.Delivered = true
	request.UpdatedAt = time.Now()
	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}
	s.invalidate(ctx, request.ID)
	return request, nil
}

// DeleteRequest lets a requester withdraw their own pending request; admins
// and managers may delete any request. Deleting an approved request releases
// its reservation first.
func (s *requestService) DeleteRequest(ctx context.Context, requestID, actorID uuid.UUID, actorRole string) error {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if !models.RoleAtLeast(actorRole, models.RoleAdmin) {
		if request.Requester.ID != actorID {
			return common.NewAuthorizationError("delete another user's request")
		}
		if request.Status != models.StatusPending {
			return common.NewConflictError("only pending requests can be withdrawn")
		}
	}

	if request.Status == models.StatusApproved {
		if err := s.releaseAll(ctx, request); err != nil {
			return err
		}
	}

	if err := s.requestRepo.Delete(ctx, requestID); err != nil {
		// The request still exists, so its reservation must stand.
		if request.Status == models.StatusApproved {
			s.reserveLines(ctx, request.ID, request.Items)
		}
		return err
	}
	s.invalidate(ctx, requestID)
	return nil
}

func transitionAllowed(from, to models.RequestStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// reserveAll validates every line against current availability before touching
// any stock, so a short line never leaves a half-reserved request behind. A
// mid-sequence failure rolls back the lines already reserved.
func (s *requestService) reserveAll(ctx context.Context, request *models.Request) error {
	for _, line := range request.Items {
		item, err := s.inventory.GetItem(ctx, line.ItemID)
		if err != nil {
			return err
		}
		if item.AvailableStock < line.Quantity {
			return common.NewConflictError("insufficient stock for " + line.ItemName)
		}
	}
	for i, line := range request.Items {
		if _, err := s.inventory.Reserve(ctx, line.ItemID, line.Quantity); err != nil {
			s.releaseLines(ctx, request.ID, request.Items[:i])
			return err
		}
	}
	return nil
}

// releaseAll hands every line's reservation back to available stock. A
// mid-sequence failure re-reserves the lines already released and surfaces the
// error, so a request is never left half-released with its caller unaware.
func (s *requestService) releaseAll(ctx context.Context, request *models.Request) error {
	for i, line := range request.Items {
		if _, err := s.inventory.ReleaseReservation(ctx, line.ItemID, line.Quantity); err != nil {
			s.reserveLines(ctx, request.ID, request.Items[:i])
			return fmt.Errorf("failed to release %d x %s for request %s: %w",
				line.Quantity, line.ItemName, request.ID, err)
		}
	}
	return nil
}

func (s *requestService) consumeAll(ctx context.Context, request *models.Request) error {
	for i, line := range request.Items {
		if _, err := s.inventory.ConsumeReservation(ctx, line.ItemID, line.Quantity); err != nil {
			s.restoreLines(ctx, request.ID, request.Items[:i])
			return fmt.Errorf("failed to consume %d x %s for request %s: %w",
				line.Quantity, line.ItemName, request.ID, err)
		}
	}
	return nil
}

// The line-level rollbacks below are best effort. Nothing further can be done
// here when the undo itself fails, so they log and move on.

func (s *requestService) releaseLines(ctx context.Context, requestID uuid.UUID, lines []models.RequestItem) {
	for _, line := range lines {
		if _, err := s.inventory.ReleaseReservation(ctx, line.ItemID, line.Quantity); err != nil {
			log.Printf("WARN: failed to roll back reservation of %d x %s for request %s: %v",
				line.Quantity, line.ItemName, requestID, err)
		}
	}
}

func (s *requestService) reserveLines(ctx context.Context, requestID uuid.UUID, lines []models.RequestItem) {
	for _, line := range lines {
		if _, err := s.inventory.Reserve(ctx, line.ItemID, line.Quantity); err != nil {
			log.Printf("WARN: failed to restore reservation of %d x %s for request %s: %v",
				line.Quantity, line.ItemName, requestID, err)
		}
	}
}

// restoreLines puts consumed quantities back into reserved stock.
func (s *requestService) restoreLines(ctx context.Context, requestID uuid.UUID, lines []models.RequestItem) {
	for _, line := range lines {
		if _, err := s.inventory.AdjustStock(ctx, line.ItemID, 0, line.Quantity); err != nil {
			log.Printf("WARN: failed to restore consumed stock of %d x %s for request %s: %v",
				line.Quantity, line.ItemName, requestID, err)
		}
	}
}

func (s *requestService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteRequest(ctx, id); err != nil {
		log.Printf("WARN: failed to invalidate cached request %s: %v", id, err)
	}
}
