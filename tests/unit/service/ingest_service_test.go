package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookingflow/internal/config"
	"bookingflow/internal/domain"
	"bookingflow/internal/port"
	"bookingflow/internal/service"
	"bookingflow/mocks"
)

func testS3Config() config.S3Config {
	return config.S3Config{
		Region:        "us-east-1",
		Bucket:        "test-bucket",
		PresignExpiry: 3600,
	}
}

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		MaxFileSizeMB:   10,
		PageConcurrency: 2,
	}
}

type ingestFixture struct {
	jobRepo     *mocks.MockJobRepo
	bookingRepo *mocks.MockBookingRepo
	storage     *mocks.MockObjectStorage
	splitter    *mocks.MockPageSplitter
	analyzer    *mocks.MockPageAnalyzer
	email       *mocks.MockEmailSender
	svc         service.IngestService
}

func newIngestFixture() *ingestFixture {
	f := &ingestFixture{
		jobRepo:     new(mocks.MockJobRepo),
		bookingRepo: new(mocks.MockBookingRepo),
		storage:     new(mocks.MockObjectStorage),
		splitter:    new(mocks.MockPageSplitter),
		analyzer:    new(mocks.MockPageAnalyzer),
		email:       new(mocks.MockEmailSender),
	}
	s3cfg := testS3Config()
	ingestCfg := testIngestConfig()
	f.svc = service.NewIngestService(
		f.jobRepo, f.bookingRepo, f.storage, f.splitter, f.analyzer, f.email, &s3cfg, &ingestCfg)
	return f
}

// createMultipartFile creates a fake multipart file header and content for testing.
func createMultipartFile(filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/pdf")

	part, _ := writer.CreatePart(h)
	_, _ = part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content) + 1024))
	file, _ := form.File["file"][0].Open()
	return file, form.File["file"][0]
}

func pdfContent() []byte {
	return []byte("%PDF-1.4 test content standing in for a real booking document")
}

func analyzeOutput() *port.AnalyzeOutput {
	return &port.AnalyzeOutput{
		Fields: map[string]port.ExtractedField{
			"carrier_name": {Value: "Maersk", Confidence: 0.9},
			"vessel_name":  {Value: "Emma Maersk", Confidence: 0.85},
		},
		ModelID:              "claude-sonnet-4-20250514",
		ModelVersion:         "claude-sonnet-4-20250514",
		ProcessingDurationMs: 1200,
	}
}

func TestIngestService_Submit_Success(t *testing.T) {
	f := newIngestFixture()
	tenantID := uuid.New()
	userID := uuid.New()

	file, header := createMultipartFile("booking.pdf", pdfContent())
	defer file.Close()

	f.splitter.On("Validate", mock.Anything).Return(nil)
	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://test-bucket.s3.amazonaws.com/x"}, nil)
	f.jobRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.UploadJob")).Return(nil)

	job, err := f.svc.Submit(context.Background(), service.SubmitInput{
		TenantID:      tenantID,
		UploadedBy:    userID,
		UploaderEmail: "uploader@example.com",
		File:          file,
		Header:        header,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.JobStatusQueued, job.Status)
	assert.Equal(t, tenantID, job.TenantID)
	assert.Equal(t, "booking.pdf", job.OriginalName)
	assert.NotEqual(t, uuid.Nil, job.DocumentID)
	assert.Equal(t, "test-bucket", job.SourceBucket)
	assert.Contains(t, job.SourceKey, "/original/")

	f.jobRepo.AssertExpectations(t)
	f.storage.AssertExpectations(t)
}

func TestIngestService_Submit_RejectsInvalidPDF(t *testing.T) {
	f := newIngestFixture()

	file, header := createMultipartFile("notes.txt", []byte("plain text"))
	defer file.Close()

	f.splitter.On("Validate", mock.Anything).Return(domain.ErrNotPDF)

	_, err := f.svc.Submit(context.Background(), service.SubmitInput{
		TenantID:   uuid.New(),
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	// Rejected before any job row or stored object exists.
	assert.ErrorIs(t, err, domain.ErrNotPDF)
	f.jobRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestIngestService_Submit_RejectsOversizedFile(t *testing.T) {
	f := newIngestFixture()

	file, header := createMultipartFile("big.pdf", pdfContent())
	defer file.Close()
	header.Size = 11 * 1024 * 1024

	_, err := f.svc.Submit(context.Background(), service.SubmitInput{
		TenantID:   uuid.New(),
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	f.jobRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngestService_Submit_StorageFailure(t *testing.T) {
	f := newIngestFixture()

	file, header := createMultipartFile("booking.pdf", pdfContent())
	defer file.Close()

	f.splitter.On("Validate", mock.Anything).Return(nil)
	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, assert.AnError)

	_, err := f.svc.Submit(context.Background(), service.SubmitInput{
		TenantID:   uuid.New(),
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	f.jobRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func queuedJob() *domain.UploadJob {
	return &domain.UploadJob{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		UploadedBy:    uuid.New(),
		UploaderEmail: "uploader@example.com",
		OriginalName:  "booking.pdf",
		DocumentID:    uuid.New(),
		SourceBucket:  "test-bucket",
		SourceKey:     "tenants/t/jobs/j/original/booking.pdf",
		Status:        domain.JobStatusProcessing,
	}
}

func TestIngestService_ProcessJob_AllPagesSucceed(t *testing.T) {
	f := newIngestFixture()
	job := queuedJob()

	pages := [][]byte{[]byte("page-1"), []byte("page-2"), []byte("page-3")}
	f.storage.On("Download", mock.Anything, job.SourceBucket, job.SourceKey).Return(pdfContent(), nil)
	f.splitter.On("Split", mock.Anything).Return(pages, nil)
	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{}, nil)
	f.analyzer.On("Analyze", mock.Anything, mock.AnythingOfType("port.AnalyzeInput")).
		Return(analyzeOutput(), nil)
	f.jobRepo.On("UpdateProgress", mock.Anything, mock.AnythingOfType("*domain.UploadJob")).Return(nil)

	var createdMu sync.Mutex
	var created []*domain.BookingRecord
	f.bookingRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.BookingRecord")).
		Run(func(args mock.Arguments) {
			createdMu.Lock()
			defer createdMu.Unlock()
			created = append(created, args.Get(1).(*domain.BookingRecord))
		}).Return(nil)

	var summary domain.JobSummary
	f.jobRepo.On("Complete", mock.Anything, job.TenantID, job.ID, mock.AnythingOfType("json.RawMessage")).
		Run(func(args mock.Arguments) {
			_ = json.Unmarshal(args.Get(3).(json.RawMessage), &summary)
		}).Return(nil)
	f.email.On("SendJobCompleted", mock.Anything, job.UploaderEmail, mock.Anything, mock.Anything).Return(nil)

	f.svc.ProcessJob(context.Background(), job)

	assert.Len(t, created, 3)
	for _, rec := range created {
		assert.Equal(t, domain.RecordStatusPending, rec.Status)
		assert.Equal(t, job.DocumentID, rec.DocumentID)
		assert.Equal(t, 3, rec.PageCount)
		assert.InDelta(t, 0.875, rec.Confidence, 1e-9)
	}

	assert.Equal(t, 3, summary.PagesTotal)
	assert.Equal(t, 3, summary.PagesSucceeded)
	assert.Equal(t, 0, summary.PagesFailed)
	assert.Empty(t, summary.PageErrors)

	f.jobRepo.AssertExpectations(t)
	f.email.AssertExpectations(t)
}

func TestIngestService_ProcessJob_PageFailureIsIsolated(t *testing.T) {
	f := newIngestFixture()
	job := queuedJob()

	pages := [][]byte{[]byte("page-1"), []byte("page-2")}
	f.storage.On("Download", mock.Anything, job.SourceBucket, job.SourceKey).Return(pdfContent(), nil)
	f.splitter.On("Split", mock.Anything).Return(pages, nil)
	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{}, nil)
	f.jobRepo.On("UpdateProgress", mock.Anything, mock.AnythingOfType("*domain.UploadJob")).Return(nil)

	// Page 1 extracts; page 2 keeps failing.
	f.analyzer.On("Analyze", mock.Anything, mock.MatchedBy(func(in port.AnalyzeInput) bool {
		return string(in.PageBytes) == "page-1"
	})).Return(analyzeOutput(), nil)
	f.analyzer.On("Analyze", mock.Anything, mock.MatchedBy(func(in port.AnalyzeInput) bool {
		return string(in.PageBytes) == "page-2"
	})).Return(nil, assert.AnError)

	var createdMu sync.Mutex
	created := make(map[int]*domain.BookingRecord)
	f.bookingRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.BookingRecord")).
		Run(func(args mock.Arguments) {
			rec := args.Get(1).(*domain.BookingRecord)
			createdMu.Lock()
			defer createdMu.Unlock()
			created[rec.PageNumber] = rec
		}).Return(nil)

	var summary domain.JobSummary
	f.jobRepo.On("Complete", mock.Anything, job.TenantID, job.ID, mock.AnythingOfType("json.RawMessage")).
		Run(func(args mock.Arguments) {
			_ = json.Unmarshal(args.Get(3).(json.RawMessage), &summary)
		}).Return(nil)
	f.email.On("SendJobCompleted", mock.Anything, job.UploaderEmail, mock.Anything, mock.Anything).Return(nil)

	f.svc.ProcessJob(context.Background(), job)

	// Both pages got a record; the failed page is visible as an error record.
	assert.Len(t, created, 2)
	assert.Equal(t, domain.RecordStatusPending, created[1].Status)
	assert.Equal(t, domain.RecordStatusError, created[2].Status)
	assert.NotEmpty(t, created[2].ExtractionError)

	assert.Equal(t, 2, summary.PagesTotal)
	assert.Equal(t, 1, summary.PagesSucceeded)
	assert.Equal(t, 1, summary.PagesFailed)
	assert.Len(t, summary.PageErrors, 1)
	assert.Equal(t, 2, summary.PageErrors[0].Page)

	f.jobRepo.AssertExpectations(t)
}

func TestIngestService_ProcessJob_ProgressUpdatesUseSnapshots(t *testing.T) {
	f := newIngestFixture()
	job := queuedJob()

	pages := [][]byte{[]byte("page-1"), []byte("page-2"), []byte("page-3"), []byte("page-4")}
	f.storage.On("Download", mock.Anything, job.SourceBucket, job.SourceKey).Return(pdfContent(), nil)
	f.splitter.On("Split", mock.Anything).Return(pages, nil)
	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{}, nil)
	f.analyzer.On("Analyze", mock.Anything, mock.AnythingOfType("port.AnalyzeInput")).
		Return(analyzeOutput(), nil)
	f.bookingRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.BookingRecord")).Return(nil)

	// The repo reads counters and stamps a timestamp on whatever job it is
	// handed, exactly like the real implementation. It must only ever see a
	// private copy: page goroutines keep mutating the shared struct.
	var progressMu sync.Mutex
	seen := make(map[int]bool)
	f.jobRepo.On("UpdateProgress", mock.Anything, mock.AnythingOfType("*domain.UploadJob")).
		Run(func(args mock.Arguments) {
			snap := args.Get(1).(*domain.UploadJob)
			assert.NotSame(t, job, snap)
			snap.UpdatedAt = time.Now().UTC()
			progressMu.Lock()
			seen[snap.PagesDone] = true
			progressMu.Unlock()
		}).Return(nil)

	f.jobRepo.On("Complete", mock.Anything, job.TenantID, job.ID, mock.AnythingOfType("json.RawMessage")).Return(nil)
	f.email.On("SendJobCompleted", mock.Anything, job.UploaderEmail, mock.Anything, mock.Anything).Return(nil)

	f.svc.ProcessJob(context.Background(), job)

	assert.Equal(t, 4, job.PagesDone)
	assert.True(t, job.UpdatedAt.IsZero(), "repo stamped the shared job")
	for done := 1; done <= len(pages); done++ {
		assert.True(t, seen[done], "no progress update reported %d pages done", done)
	}
}

func TestIngestService_ProcessJob_SplitFailureFailsJob(t *testing.T) {
	f := newIngestFixture()
	job := queuedJob()

	f.storage.On("Download", mock.Anything, job.SourceBucket, job.SourceKey).Return(pdfContent(), nil)
	f.splitter.On("Split", mock.Anything).Return(nil, domain.ErrInvalidPDF)
	f.jobRepo.On("Fail", mock.Anything, job.TenantID, job.ID, mock.AnythingOfType("string")).Return(nil)
	f.email.On("SendJobFailed", mock.Anything, job.UploaderEmail, mock.Anything, mock.AnythingOfType("string")).Return(nil)

	f.svc.ProcessJob(context.Background(), job)

	f.jobRepo.AssertExpectations(t)
	f.email.AssertExpectations(t)
	f.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.jobRepo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestService_ProcessJob_DownloadFailureFailsJob(t *testing.T) {
	f := newIngestFixture()
	job := queuedJob()

	f.storage.On("Download", mock.Anything, job.SourceBucket, job.SourceKey).Return(nil, assert.AnError)
	f.jobRepo.On("Fail", mock.Anything, job.TenantID, job.ID, mock.AnythingOfType("string")).Return(nil)
	f.email.On("SendJobFailed", mock.Anything, job.UploaderEmail, mock.Anything, mock.AnythingOfType("string")).Return(nil)

	f.svc.ProcessJob(context.Background(), job)

	f.jobRepo.AssertExpectations(t)
	f.splitter.AssertNotCalled(t, "Split", mock.Anything)
}
