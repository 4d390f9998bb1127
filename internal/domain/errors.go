package domain

import "errors"

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrJobNotFound            = errors.New("upload job not found")
	ErrRecordNotFound         = errors.New("booking record not found")
	ErrJobAlreadyFinal        = errors.New("upload job already in a terminal state")
	ErrRecordNotPending       = errors.New("booking record is not pending validation")
	ErrEmptyFile              = errors.New("uploaded file is empty")
	ErrFileTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrNotPDF                 = errors.New("uploaded file is not a PDF")
	ErrInvalidPDF             = errors.New("PDF is corrupt or unparsable")
	ErrInvalidAction          = errors.New("invalid validation action")
	ErrUnknownCorrectionField = errors.New("correction addresses an unknown field")
	ErrInvalidContinuation    = errors.New("invalid continuation token")
	ErrUploadFailed           = errors.New("file upload to storage failed")
)
