package repositories

import (
	"context"
	"testing"
	"time"

	"gudangmitra/internal/common"
	"gudangmitra/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RequestRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      RequestRepository
	requestID uuid.UUID
	itemID    uuid.UUID
	context   context.Context
}

func (suite *RequestRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewRequestRepo(mock)
	suite.requestID = uuid.New()
	suite.itemID = uuid.New()
	suite.context = context.Background()
}

func (suite *RequestRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestRequestRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RequestRepoTestSuite))
}

func (suite *RequestRepoTestSuite) sampleRequest() *models.Request {
	now := time.Now()
	return &models.Request{
		ID:          suite.requestID,
		ProjectName: "Workshop Refit",
		Requester: models.Requester{
			ID:    uuid.New(),
			Name:  "Budi Santoso",
			Email: "budi@gudangmitra.id",
		},
		Items: []models.RequestItem{
			{ItemID: suite.itemID, ItemName: "Cordless Drill", Quantity: 2},
		},
		Reason:    "replacement tools",
		Priority:  models.PriorityMedium,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (suite *RequestRepoTestSuite) TestCreate_InsertsHeaderAndLinesInOneTx() {
	request := suite.sampleRequest()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO requests`).
		WithArgs(request.ID, request.ProjectName,
			request.Requester.ID, request.Requester.Name, request.Requester.Email,
			request.Reason, request.Priority, request.DueDate, request.Status,
			request.CreatedAt, request.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO request_items`).
		WithArgs(request.ID, suite.itemID, "Cordless Drill", 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.context, request)

	assert.NoError(suite.T(), err)
}

func (suite *RequestRepoTestSuite) TestCreate_LineFailureRollsBack() {
	request := suite.sampleRequest()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO requests`).
		WithArgs(request.ID, request.ProjectName,
			request.Requester.ID, request.Requester.Name, request.Requester.Email,
			request.Reason, request.Priority, request.DueDate, request.Status,
			request.CreatedAt, request.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO request_items`).
		WithArgs(request.ID, suite.itemID, "Cordless Drill", 2).
		WillReturnError(pgx.ErrTxClosed)
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.context, request)

	assert.Error(suite.T(), err)
}

func (suite *RequestRepoTestSuite) TestGetByID_ReconstructsPickupDetails() {
	now := time.Now()
	location := "Warehouse B"
	requesterID := uuid.New()

	suite.mock.ExpectQuery(`SELECT (.+) FROM requests WHERE id = \$1`).
		WithArgs(suite.requestID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "project_name", "requester_id", "requester_name", "requester_email",
			"reason", "priority", "due_date", "status",
			"pickup_location", "pickup_time", "pickup_delivered", "created_at", "updated_at",
		}).AddRow(suite.requestID, "Workshop Refit", requesterID, "Budi Santoso", "budi@gudangmitra.id",
			"replacement tools", models.PriorityMedium, (*time.Time)(nil), models.StatusFulfilled,
			&location, (*time.Time)(nil), true, now, now))
	suite.mock.ExpectQuery(`SELECT item_id, item_name, quantity`).
		WithArgs(suite.requestID).
		WillReturnRows(pgxmock.NewRows([]string{"item_id", "item_name", "quantity"}).
			AddRow(suite.itemID, "Cordless Drill", 2))

	request, err := suite.repo.GetByID(suite.context, suite.requestID)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), request.PickupDetails)
	assert.Equal(suite.T(), "Warehouse B", request.PickupDetails.Location)
	assert.True(suite.T(), request.PickupDetails.Delivered)
	assert.Len(suite.T(), request.Items, 1)
}

func (suite *RequestRepoTestSuite) TestListByRequester_PagesThroughHistory() {
	now := time.Now()
	requesterID := uuid.New()

	suite.mock.ExpectQuery(`SELECT (.+) FROM requests WHERE 1=1 AND requester_id = \$1 ORDER BY created_at ASC LIMIT \$2 OFFSET \$3`).
		WithArgs(requesterID, 20, 40).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "project_name", "requester_id", "requester_name", "requester_email",
			"reason", "priority", "due_date", "status",
			"pickup_location", "pickup_time", "pickup_delivered", "created_at", "updated_at",
		}).AddRow(suite.requestID, "Workshop Refit", requesterID, "Budi Santoso", "budi@gudangmitra.id",
			"replacement tools", models.PriorityMedium, (*time.Time)(nil), models.StatusPending,
			(*string)(nil), (*time.Time)(nil), false, now, now))
	suite.mock.ExpectQuery(`SELECT item_id, item_name, quantity`).
		WithArgs(suite.requestID).
		WillReturnRows(pgxmock.NewRows([]string{"item_id", "item_name", "quantity"}).
			AddRow(suite.itemID, "Cordless Drill", 2))

	requests, err := suite.repo.ListByRequester(suite.context, requesterID, 20, 40)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), requests, 1)
	assert.Equal(suite.T(), requesterID, requests[0].Requester.ID)
}

func (suite *RequestRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM requests WHERE id = \$1`).
		WithArgs(suite.requestID).
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.GetByID(suite.context, suite.requestID)

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}
