package domain

// JobStatus represents the lifecycle of an UploadJob. Transitions are
// monotonic: a completed or failed job never returns to queued or processing.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether the status permits no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// RecordStatus represents a BookingRecord's position in the validation
// workflow. Only pending records accept reviewer actions; validated,
// corrected, rejected, and error are terminal.
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusValidated RecordStatus = "validated"
	RecordStatusCorrected RecordStatus = "corrected"
	RecordStatusRejected  RecordStatus = "rejected"
	RecordStatusError     RecordStatus = "error"
)

// ValidRecordStatuses enumerates the statuses accepted by list filters.
var ValidRecordStatuses = map[RecordStatus]bool{
	RecordStatusPending:   true,
	RecordStatusValidated: true,
	RecordStatusCorrected: true,
	RecordStatusRejected:  true,
	RecordStatusError:     true,
}

// ValidationAction is the reviewer action recorded in a ValidationRecord.
type ValidationAction string

const (
	ActionApproved  ValidationAction = "approved"
	ActionCorrected ValidationAction = "corrected"
	ActionRejected  ValidationAction = "rejected"
)

// UserRole defines the role hierarchy within a tenant.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleReviewer UserRole = "reviewer"
	RoleMember   UserRole = "member"
)
