package services

import (
	"context"
	"errors"
	"testing"

	"gudangmitra/internal/common"
	"gudangmitra/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RequestServiceTestSuite struct {
	suite.Suite
	mockRequestRepo *MockRequestRepository
	mockUserRepo    *MockUserRepository
	mockItemRepo    *MockItemRepository
	service         RequestService
	requesterID     uuid.UUID
	managerID       uuid.UUID
	itemID          uuid.UUID
	requestID       uuid.UUID
}

func (suite *RequestServiceTestSuite) SetupTest() {
	suite.mockRequestRepo = &MockRequestRepository{}
	suite.mockUserRepo = &MockUserRepository{}
	suite.mockItemRepo = &MockItemRepository{}

	inventory := NewInventoryService(suite.mockItemRepo, nil)
	suite.service = NewRequestService(suite.mockRequestRepo, suite.mockUserRepo, inventory, nil)

	suite.requesterID = uuid.New()
	suite.managerID = uuid.New()
	suite.itemID = uuid.New()
	suite.requestID = uuid.New()
}

func (suite *RequestServiceTestSuite) TearDownTest() {
	suite.mockRequestRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockItemRepo.AssertExpectations(suite.T())
}

func TestRequestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RequestServiceTestSuite))
}

func (suite *RequestServiceTestSuite) storedItem(available, reserved int) *models.Item {
	return &models.Item{
		ID:             suite.itemID,
		Name:           "Cordless Drill",
		Category:       "Tools",
		TotalStock:     available + reserved,
		AvailableStock: available,
		ReservedStock:  reserved,
	}
}

func (suite *RequestServiceTestSuite) storedRequest(status models.RequestStatus, quantity int) *models.Request {
	return &models.Request{
		ID:          suite.requestID,
		ProjectName: "Workshop Refit",
		Requester: models.Requester{
			ID:    suite.requesterID,
			Name:  "Budi Santoso",
			Email: "budi@gudangmitra.id",
		},
		Items: []models.RequestItem{
			{ItemID: suite.itemID, ItemName: "Cordless Drill", Quantity: quantity},
		},
		Priority: models.PriorityMedium,
		Status:   status,
	}
}

func (suite *RequestServiceTestSuite) TestSubmit_SnapshotsRequesterAndItemNames() {
	requester := &models.User{
		ID:    suite.requesterID,
		Name:  "Budi Santoso",
		Email: "budi@gudangmitra.id",
		Role:  models.RoleRequester,
	}

	suite.mockUserRepo.On("GetByID", mock.Anything, suite.requesterID).Return(requester, nil).Once()
	suite.mockItemRepo.On("GetByID", mock.Anything, suite.itemID).Return(suite.storedItem(15, 5), nil).Once()
	suite.mockRequestRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Request")).Return(nil).Once()

	request, err := suite.service.Submit(context.Background(), &SubmitRequestInput{
		ProjectName: "Workshop Refit",
		RequesterID: suite.requesterID,
		Items:       []models.RequestItem{{ItemID: suite.itemID, Quantity: 2}},
		Reason:      "replacement tools",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusPending, request.Status)
	assert.Equal(suite.T(), models.PriorityMedium, request.Priority)
	assert.Equal(suite.T(), "Budi Santoso", request.Requester.Name)
	assert.Equal(suite.T(), "Cordless Drill", request.Items[0].ItemName)
}

func (suite *RequestServiceTestSuite) TestSubmit_RequiresItems() {
	_, err := suite.service.Submit(context.Background(), &SubmitRequestInput{
		ProjectName: "Workshop Refit",
		RequesterID: suite.requesterID,
	})

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *RequestServiceTestSuite) TestSubmit_RejectsNonPositiveQuantity() {
	requester := &models.User{ID: suite.requesterID, Name: "Budi", Email: "budi@gudangmitra.id"}
	suite.mockUserRepo.On("GetByID", mock.Anything, suite.requesterID).Return(requester, nil).Once()

	_, err := suite.service.Submit(context.Background(), &SubmitRequestInput{
		ProjectName: "Workshop Refit",
		RequesterID: suite.requesterID,
		Items:       []models.RequestItem{{ItemID: suite.itemID, Quantity: 0}},
		Reason:      "replacement tools",
	})

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *RequestServiceTestSuite) TestSubmit_RequiresReason() {
	_, err := suite.service.Submit(context.Background(), &SubmitRequestInput{
		ProjectName: "Workshop Refit",
		RequesterID: suite.requesterID,
		Items:       []models.RequestItem{{ItemID: suite.itemID, Quantity: 2}},
	})

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_RequesterRoleForbidden() {
	_, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID: suite.requestID,
		NewStatus: models.StatusApproved,
		ActorID:   suite.requesterID,
		ActorRole: models.RoleRequester,
	})

	assert.Error(suite.T(), err)
	var authErr *common.AuthorizationError
	assert.ErrorAs(suite.T(), err, &authErr)
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_PendingCannotSkipToFulfilled() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusPending, 2), nil).Once()

	_, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID: suite.requestID,
		NewStatus: models.StatusFulfilled,
		ActorID:   suite.managerID,
		ActorRole: models.RoleManager,
	})

	assert.Error(suite.T(), err)
	var transErr *common.TransitionError
	assert.ErrorAs(suite.T(), err, &transErr)
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_ApproveReservesStock() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusPending, 2), nil).Once()
	suite.mockItemRepo.On("GetByID", mock.Anything, suite.itemID).Return(suite.storedItem(15, 5), nil)
	suite.mockItemRepo.On("UpdateStock", mock.Anything, suite.itemID, 13, 7).Return(nil).Once()
	suite.mockRequestRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Request")).Return(nil).Once()

	request, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID: suite.requestID,
		NewStatus: models.StatusApproved,
		ActorID:   suite.managerID,
		ActorRole: models.RoleManager,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusApproved, request.Status)
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_ApproveShortStockLeavesLedgerUntouched() {
	secondItemID := uuid.New()
	request := suite.storedRequest(models.StatusPending, 2)
	request.Items = append(request.Items, models.RequestItem{
		ItemID: secondItemID, ItemName: "Angle Grinder", Quantity: 5,
	})

	shortItem := &models.Item{ID: secondItemID, Name: "Angle Grinder", AvailableStock: 1}

	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).Return(request, nil).Once()
	suite.mockItemRepo.On("GetByID", mock.Anything, suite.itemID).Return(suite.storedItem(15, 5), nil).Once()
	suite.mockItemRepo.On("GetByID", mock.Anything, secondItemID).Return(shortItem, nil).Once()

	_, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID: suite.requestID,
		NewStatus: models.StatusApproved,
		ActorID:   suite.managerID,
		ActorRole: models.RoleManager,
	})

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "insufficient stock")
	suite.mockItemRepo.AssertNotCalled(suite.T(), "UpdateStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRequestRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_DenyAfterApproveReleasesReservation() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusApproved, 2), nil).Once()
	suite.mockItemRepo.On("GetByID", mock.Anything, suite.itemID).Return(suite.storedItem(13, 7), nil)
	suite.mockItemRepo.On("UpdateStock", mock.Anything, suite.itemID, 15, 5).Return(nil).Once()
	suite.mockRequestRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Request")).Return(nil).Once()

	request, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID: suite.requestID,
		NewStatus: models.StatusDenied,
		ActorID:   suite.managerID,
		ActorRole: models.RoleAdmin,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusDenied, request.Status)
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_DenyPendingTouchesNoStock() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusPending, 2), nil).Once()
	suite.mockRequestRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Request")).Return(nil).Once()

	request, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID: suite.requestID,
		NewStatus: models.StatusDenied,
		ActorID:   suite.managerID,
		ActorRole: models.RoleAdmin,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusDenied, request.Status)
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_FulfillRequiresPickupLocation() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusApproved, 2), nil).Once()

	_, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID: suite.requestID,
		NewStatus: models.StatusFulfilled,
		ActorID:   suite.managerID,
		ActorRole: models.RoleManager,
	})

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_FulfillConsumesReservation() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusApproved, 2), nil).Once()
	suite.mockItemRepo.On("GetByID", mock.Anything, suite.itemID).Return(suite.storedItem(13, 7), nil)
	suite.mockItemRepo.On("UpdateStock", mock.Anything, suite.itemID, 13, 5).Return(nil).Once()
	suite.mockRequestRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Request")).Return(nil).Once()

	request, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID:      suite.requestID,
		NewStatus:      models.StatusFulfilled,
		ActorID:        suite.managerID,
		ActorRole:      models.RoleManager,
		PickupLocation: "Warehouse B",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusFulfilled, request.Status)
	assert.NotNil(suite.T(), request.PickupDetails)
	assert.Equal(suite.T(), "Warehouse B", request.PickupDetails.Location)
	assert.False(suite.T(), request.PickupDetails.Delivered)
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_FulfilledIsTerminal() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusFulfilled, 2), nil).Once()

	_, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID: suite.requestID,
		NewStatus: models.StatusDenied,
		ActorID:   suite.managerID,
		ActorRole: models.RoleManager,
	})

	assert.Error(suite.T(), err)
	var transErr *common.TransitionError
	assert.ErrorAs(suite.T(), err, &transErr)
}

func (suite *RequestServiceTestSuite) TestMarkDelivered_OnlyFulfilledRequests() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusPending, 2), nil).Once()

	_, err := suite.service.MarkDelivered(context.Background(), suite.requestID, models.RoleAdmin)

	assert.Error(suite.T(), err)
	var transErr *common.TransitionError
	assert.ErrorAs(suite.T(), err, &transErr)
}

func (suite *RequestServiceTestSuite) TestMarkDelivered_SetsFlag() {
	request := suite.storedRequest(models.StatusFulfilled, 2)
	request.PickupDetails = &models.PickupDetails{Location: "Warehouse B"}

	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).Return(request, nil).Once()
	suite.mockRequestRepo.On("Update", mock.Anything, request).Return(nil).Once()

	updated, err := suite.service.MarkDelivered(context.Background(), suite.requestID, models.RoleAdmin)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), updated.PickupDetails.Delivered)
}

func (suite *RequestServiceTestSuite) TestDeleteRequest_RequesterWithdrawsOwnPending() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusPending, 2), nil).Once()
	suite.mockRequestRepo.On("Delete", mock.Anything, suite.requestID).Return(nil).Once()

	err := suite.service.DeleteRequest(context.Background(), suite.requestID, suite.requesterID, models.RoleRequester)

	assert.NoError(suite.T(), err)
}

func (suite *RequestServiceTestSuite) TestDeleteRequest_RequesterCannotDeleteOthers() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusPending, 2), nil).Once()

	err := suite.service.DeleteRequest(context.Background(), suite.requestID, uuid.New(), models.RoleRequester)

	assert.Error(suite.T(), err)
	var authErr *common.AuthorizationError
	assert.ErrorAs(suite.T(), err, &authErr)
}

func (suite *RequestServiceTestSuite) TestDeleteRequest_AdminDeletingApprovedReleasesStock() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusApproved, 2), nil).Once()
	suite.mockItemRepo.On("GetByID", mock.Anything, suite.itemID).Return(suite.storedItem(13, 7), nil)
	suite.mockItemRepo.On("UpdateStock", mock.Anything, suite.itemID, 15, 5).Return(nil).Once()
	suite.mockRequestRepo.On("Delete", mock.Anything, suite.requestID).Return(nil).Once()

	err := suite.service.DeleteRequest(context.Background(), suite.requestID, suite.managerID, models.RoleAdmin)

	assert.NoError(suite.T(), err)
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_ApprovePersistFailureReleasesReservation() {
	item := suite.storedItem(15, 5)
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusPending, 2), nil).Once()
	suite.mockItemRepo.On("GetByID", mock.Anything, suite.itemID).Return(item, nil)
	suite.mockItemRepo.On("UpdateStock", mock.Anything, suite.itemID, 13, 7).Return(nil).Once()
	suite.mockRequestRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Request")).
		Return(errors.New("connection reset")).Once()
	suite.mockItemRepo.On("UpdateStock", mock.Anything, suite.itemID, 15, 5).Return(nil).Once()

	_, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID: suite.requestID,
		NewStatus: models.StatusApproved,
		ActorID:   suite.managerID,
		ActorRole: models.RoleManager,
	})

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "connection reset")
	assert.Equal(suite.T(), 15, item.AvailableStock)
	assert.Equal(suite.T(), 5, item.ReservedStock)
}

func (suite *RequestServiceTestSuite) TestUpdateStatus_DenyReleaseFailureSurfaces() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusApproved, 2), nil).Once()
	suite.mockItemRepo.On("GetByID", mock.Anything, suite.itemID).Return(suite.storedItem(13, 7), nil)
	suite.mockItemRepo.On("UpdateStock", mock.Anything, suite.itemID, 15, 5).
		Return(errors.New("connection reset")).Once()

	_, err := suite.service.UpdateStatus(context.Background(), &StatusUpdateInput{
		RequestID: suite.requestID,
		NewStatus: models.StatusDenied,
		ActorID:   suite.managerID,
		ActorRole: models.RoleAdmin,
	})

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "connection reset")
	suite.mockRequestRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *RequestServiceTestSuite) TestDeleteRequest_ReleaseFailureKeepsRequest() {
	suite.mockRequestRepo.On("GetByID", mock.Anything, suite.requestID).
		Return(suite.storedRequest(models.StatusApproved, 2), nil).Once()
	suite.mockItemRepo.On("GetByID", mock.Anything, suite.itemID).Return(suite.storedItem(13, 7), nil)
	suite.mockItemRepo.On("UpdateStock", mock.Anything, suite.itemID, 15, 5).
		Return(errors.New("connection reset")).Once()

	err := suite.service.DeleteRequest(context.Background(), suite.requestID, suite.managerID, models.RoleAdmin)

	assert.Error(suite.T(), err)
	suite.mockRequestRepo.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}
