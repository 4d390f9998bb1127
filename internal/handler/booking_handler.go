package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookingflow/internal/domain"
	"bookingflow/internal/middleware"
	"bookingflow/internal/port"
	"bookingflow/internal/service"
)

// BookingHandler handles upload, listing, and validation endpoints.
type BookingHandler struct {
	ingestService  service.IngestService
	bookingService service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(ingestService service.IngestService, bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{ingestService: ingestService, bookingService: bookingService}
}

// validateRequest is the body for POST /bookings/:id/validate.
type validateRequest struct {
	Action      string            `json:"action" binding:"required"`
	Corrections map[string]string `json:"corrections"`
	Notes       string            `json:"notes"`
}

// Submit handles POST /api/v1/bookings
// @Summary Upload a booking document
// @Description Upload a PDF booking document for asynchronous extraction
// @Tags bookings
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF to upload"
// @Success 202 {object} APIResponse "Job accepted"
// @Failure 400 {object} APIResponse "Missing, empty, or corrupt file"
// @Failure 413 {object} APIResponse "File too large"
// @Security BearerAuth
// @Router /bookings [post]
func (h *BookingHandler) Submit(c *gin.Context) {
	tenantID, userID, ok := extractAuthContext(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	job, err := h.ingestService.Submit(c.Request.Context(), service.SubmitInput{
		TenantID:      tenantID,
		UploadedBy:    userID,
		UploaderEmail: middleware.GetEmail(c),
		File:          file,
		Header:        header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, gin.H{
		"job_id":      job.ID,
		"document_id": job.DocumentID,
		"status":      job.Status,
		"poll_url":    "/api/v1/jobs/" + job.ID.String(),
	})
}

// List handles GET /api/v1/bookings
// @Summary List booking records
// @Description List booking records for the tenant with optional status filter and continuation token
// @Tags bookings
// @Produce json
// @Param status query string false "Filter by record status"
// @Param page_size query int false "Page size (max 100)" default(50)
// @Param continuation query string false "Continuation token from a previous page"
// @Success 200 {object} APIResponse "Records plus continuation token"
// @Failure 400 {object} APIResponse "Invalid status or continuation token"
// @Security BearerAuth
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	filter := port.BookingFilter{
		ContinuationToken: c.Query("continuation"),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.RecordStatus(statusStr)
		if !domain.ValidRecordStatuses[status] {
			RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "unknown record status: "+statusStr)
			return
		}
		filter.Status = &status
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	filter.PageSize = pageSize

	records, next, err := h.bookingService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"records":      records,
		"continuation": next,
	})
}

// GetByID handles GET /api/v1/bookings/:id
// @Summary Get a booking record
// @Description Get one booking record, including a presigned URL for its source page
// @Tags bookings
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} APIResponse "Booking record"
// @Failure 404 {object} APIResponse "Record not found"
// @Security BearerAuth
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c *gin.Context) {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid record ID")
		return
	}

	rec, err := h.bookingService.GetByID(c.Request.Context(), tenantID, recordID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rec)
}

// ListByDocument handles GET /api/v1/documents/:id/bookings
// @Summary List booking records for a document
// @Description List all booking records extracted from one document, ordered by page
// @Tags bookings
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} APIResponse "Booking records in page order"
// @Security BearerAuth
// @Router /documents/{id}/bookings [get]
func (h *BookingHandler) ListByDocument(c *gin.Context) {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	records, err := h.bookingService.ListByDocument(c.Request.Context(), tenantID, documentID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, records)
}

// Validate handles POST /api/v1/bookings/:id/validate
// @Summary Review a booking record
// @Description Approve, correct, or reject a pending booking record
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param body body validateRequest true "Reviewer action"
// @Success 200 {object} APIResponse "Updated record"
// @Failure 400 {object} APIResponse "Invalid action or correction field"
// @Failure 404 {object} APIResponse "Record not found"
// @Failure 409 {object} APIResponse "Record already reviewed"
// @Security BearerAuth
// @Router /bookings/{id}/validate [post]
func (h *BookingHandler) Validate(c *gin.Context) {
	tenantID, userID, ok := extractAuthContext(c)
	if !ok {
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid record ID")
		return
	}

	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "action is required")
		return
	}

	rec, err := h.bookingService.Validate(c.Request.Context(), service.ValidateInput{
		TenantID:      tenantID,
		RecordID:      recordID,
		ReviewerID:    userID,
		ReviewerEmail: middleware.GetEmail(c),
		Action:        req.Action,
		Corrections:   req.Corrections,
		Notes:         req.Notes,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"record":     rec,
		"new_status": rec.Status,
	})
}

// Export handles GET /api/v1/bookings/export
// @Summary Export booking records
// @Description Download all of the tenant's booking records as an XLSX workbook
// @Tags bookings
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "XLSX workbook"
// @Security BearerAuth
// @Router /bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	data, err := h.bookingService.ExportXLSX(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
