package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gudangmitra/internal/common"
	"gudangmitra/internal/models"
	"gudangmitra/internal/services"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
)

// RequestHandlers handles HTTP requests for item requests
type RequestHandlers struct {
	requestService services.RequestService
}

func NewRequestHandlers(requestService services.RequestService) *RequestHandlers {
	return &RequestHandlers{requestService: requestService}
}

// SubmitRequest handles POST /requests
func (h *RequestHandlers) SubmitRequest(c echo.Context) error {
	ctx := c.Request().Context()
	requesterID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.RespondFail(c, http.StatusUnauthorized, "missing authentication")
	}

	var req struct {
		ProjectName string `json:"projectName"`
		Items       []struct {
			ItemID   string `json:"itemId"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		Reason   string     `json:"reason"`
		Priority string     `json:"priority"`
		DueDate  *time.Time `json:"dueDate"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	lines := make([]models.RequestItem, 0, len(req.Items))
	for _, line := range req.Items {
		itemID, err := uuid.Parse(line.ItemID)
		if err != nil {
			return common.RespondFail(c, http.StatusBadRequest, "invalid item ID "+line.ItemID)
		}
		lines = append(lines, models.RequestItem{ItemID: itemID, Quantity: line.Quantity})
	}

	request, err := h.requestService.Submit(ctx, &services.SubmitRequestInput{
		ProjectName: req.ProjectName,
		RequesterID: requesterID,
		Items:       lines,
		Reason:      req.Reason,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondCreated(c, request)
}

// GetRequest handles GET /requests/:id
func (h *RequestHandlers) GetRequest(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request ID")
	}

	request, err := h.requestService.GetRequest(ctx, id)
	if err != nil {
		return common.RespondError(c, err)
	}

	// Requesters can only see their own requests.
	actorID, _ := common.GetUserIDFromContext(ctx)
	actorRole, _ := common.GetRoleFromContext(ctx)
	if !models.RoleAtLeast(actorRole, models.RoleAdmin) && request.Requester.ID != actorID {
		return common.RespondFail(c, http.StatusForbidden, "insufficient permissions")
	}
	return common.RespondOK(c, request)
}

// ListRequests handles GET /requests with optional status/priority filters
func (h *RequestHandlers) ListRequests(c echo.Context) error {
	filter := &models.RequestSearchFilter{}
	if status := c.QueryParam("status"); status != "" {
		rs := models.RequestStatus(status)
		if !models.ValidStatus(rs) {
			return common.RespondFail(c, http.StatusBadRequest, "unknown status "+status)
		}
		filter.Status = &rs
	}
	if priority := c.QueryParam("priority"); priority != "" {
		filter.Priority = &priority
	}
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filter.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	requests, err := h.requestService.ListRequests(c.Request().Context(), filter)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, requests)
}

// ListMyRequests handles GET /requests/mine
func (h *RequestHandlers) ListMyRequests(c echo.Context) error {
	ctx := c.Request().Context()
	requesterID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.RespondFail(c, http.StatusUnauthorized, "missing authentication")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	requests, err := h.requestService.GetUserRequests(ctx, requesterID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, requests)
}

// UpdateStatus handles PATCH /requests/:id/status
func (h *RequestHandlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request ID")
	}

	var req struct {
		Status         string     `json:"status"`
		PickupLocation string     `json:"pickupLocation"`
		PickupTime     *time.Time `json:"pickupTime"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	actorID, _ := common.GetUserIDFromContext(ctx)
	actorRole, _ := common.GetRoleFromContext(ctx)

	request, err := h.requestService.UpdateStatus(ctx, &services.StatusUpdateInput{
		RequestID:      id,
		NewStatus:      models.RequestStatus(req.Status),
		ActorID:        actorID,
		ActorRole:      actorRole,
		PickupLocation: req.PickupLocation,
		PickupTime:     req.PickupTime,
	})
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, request)
}

// MarkDelivered handles POST /requests/:id/delivered
func (h *RequestHandlers) MarkDelivered(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request ID")
	}

	actorRole, _ := common.GetRoleFromContext(ctx)
	request, err := h.requestService.MarkDelivered(ctx, id, actorRole)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, request)
}

// DeleteRequest handles DELETE /requests/:id
func (h *RequestHandlers) DeleteRequest(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request ID")
	}

	actorID, _ := common.GetUserIDFromContext(ctx)
	actorRole, _ := common.GetRoleFromContext(ctx)
	if err := h.requestService.DeleteRequest(ctx, id, actorID, actorRole); err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, map[string]string{"message": "request deleted"})
}

// ExportPDF handles GET /requests/:id/pdf
func (h *RequestHandlers) ExportPDF(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request ID")
	}

	request, err := h.requestService.GetRequest(ctx, id)
	if err != nil {
		return common.RespondError(c, err)
	}

	actorID, _ := common.GetUserIDFromContext(ctx)
	actorRole, _ := common.GetRoleFromContext(ctx)
	if !models.RoleAtLeast(actorRole, models.RoleAdmin) && request.Requester.ID != actorID {
		return common.RespondFail(c, http.StatusForbidden, "insufficient permissions")
	}

	pdfBytes, err := generateRequestPDF(request)
	if err != nil {
		return common.RespondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="request-%s.pdf"`, request.ID.String()))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

func generateRequestPDF(request *models.Request) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)

	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "GUDANG MITRA ITEM REQUEST")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Request ID: %s", request.ID.String()))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Project: %s", request.ProjectName))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", request.Status))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Priority: %s", request.Priority))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Submitted: %s", request.CreatedAt.Format("02-Jan-2006")))
	pdf.Ln(8)
	if request.DueDate != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Due: %s", request.DueDate.Format("02-Jan-2006")))
		pdf.Ln(8)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "REQUESTED BY:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, request.Requester.Name)
	pdf.Ln(6)
	pdf.Cell(0, 6, request.Requester.Email)
	pdf.Ln(10)

	if request.Reason != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 8, "REASON:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, request.Reason, "", "L", false)
		pdf.Ln(4)
	}

	// Item table
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "ITEMS:")
	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Quantity", "1", 0, "R", false, 0, "")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, line := range request.Items {
		pdf.CellFormat(120, 8, line.ItemName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, strconv.Itoa(line.Quantity), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}
	pdf.Ln(5)

	if request.PickupDetails != nil {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 8, "PICKUP:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Location: %s", request.PickupDetails.Location))
		pdf.Ln(6)
		if request.PickupDetails.Time != nil {
			pdf.Cell(0, 6, fmt.Sprintf("Time: %s", request.PickupDetails.Time.Format("02-Jan-2006 15:04")))
			pdf.Ln(6)
		}
		if request.PickupDetails.Delivered {
			pdf.Cell(0, 6, "Delivered: yes")
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
