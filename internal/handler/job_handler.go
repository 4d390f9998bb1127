package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookingflow/internal/middleware"
	"bookingflow/internal/service"
)

// JobHandler handles upload job status endpoints.
type JobHandler struct {
	bookingService service.BookingService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(bookingService service.BookingService) *JobHandler {
	return &JobHandler{bookingService: bookingService}
}

// GetByID handles GET /api/v1/jobs/:id
// @Summary Get an upload job
// @Description Get the status, progress, and result summary of one upload job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} APIResponse "Upload job"
// @Failure 404 {object} APIResponse "Job not found"
// @Security BearerAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(c *gin.Context) {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return
	}

	job, err := h.bookingService.GetJob(c.Request.Context(), tenantID, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, job)
}

// List handles GET /api/v1/jobs
// @Summary List upload jobs
// @Description List the tenant's upload jobs with pagination
// @Tags jobs
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse "List of jobs"
// @Security BearerAuth
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	jobs, total, err := h.bookingService.ListJobs(c.Request.Context(), tenantID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, jobs, PagMeta{Total: total, Offset: offset, Limit: limit})
}
