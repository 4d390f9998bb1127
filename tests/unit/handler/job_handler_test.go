package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookingflow/internal/domain"
	"bookingflow/internal/handler"
	"bookingflow/mocks"
)

func TestJobHandler_GetByID_Success(t *testing.T) {
	mockBooking := new(mocks.MockBookingService)
	h := handler.NewJobHandler(mockBooking)

	tenantID := uuid.New()
	jobID := uuid.New()

	mockBooking.On("GetJob", mock.Anything, tenantID, jobID).Return(&domain.UploadJob{
		ID:       jobID,
		TenantID: tenantID,
		Status:   domain.JobStatusCompleted,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs/"+jobID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}
	setAuthContext(c, tenantID, uuid.New(), "member")

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestJobHandler_GetByID_WrongTenant(t *testing.T) {
	mockBooking := new(mocks.MockBookingService)
	h := handler.NewJobHandler(mockBooking)

	tenantID := uuid.New()
	jobID := uuid.New()

	// A job belonging to another tenant is indistinguishable from a missing one.
	mockBooking.On("GetJob", mock.Anything, tenantID, jobID).Return(nil, domain.ErrJobNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs/"+jobID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}
	setAuthContext(c, tenantID, uuid.New(), "member")

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobHandler_GetByID_InvalidID(t *testing.T) {
	mockBooking := new(mocks.MockBookingService)
	h := handler.NewJobHandler(mockBooking)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	setAuthContext(c, uuid.New(), uuid.New(), "member")

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockBooking.AssertNotCalled(t, "GetJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestJobHandler_List_Paginated(t *testing.T) {
	mockBooking := new(mocks.MockBookingService)
	h := handler.NewJobHandler(mockBooking)

	tenantID := uuid.New()
	jobs := []domain.UploadJob{
		{ID: uuid.New(), TenantID: tenantID, Status: domain.JobStatusCompleted},
		{ID: uuid.New(), TenantID: tenantID, Status: domain.JobStatusQueued},
	}

	mockBooking.On("ListJobs", mock.Anything, tenantID, 0, 20).Return(jobs, 2, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	setAuthContext(c, tenantID, uuid.New(), "member")

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Meta.Total)
}
