package postgres

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bookingflow/internal/domain"
	"bookingflow/internal/port"
)

const defaultPageSize = 50

type bookingRepo struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// NewBookingRepo creates a new PostgreSQL-backed BookingRepository.
func NewBookingRepo(db *sqlx.DB) port.BookingRepository {
	return &bookingRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *bookingRepo) Create(ctx context.Context, rec *domain.BookingRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `INSERT INTO booking_records (
		id, tenant_id, document_id, page_number, page_count,
		source_bucket, source_key, uploaded_by, uploader_email,
		status, confidence, shipment, extraction, validation_history,
		extraction_error, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13, $14,
		$15, $16, $17
	)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.TenantID, rec.DocumentID, rec.PageNumber, rec.PageCount,
		rec.SourceBucket, rec.SourceKey, rec.UploadedBy, rec.UploaderEmail,
		rec.Status, rec.Confidence, rec.Shipment, rec.Extraction, rec.ValidationHistory,
		rec.ExtractionError, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("bookingRepo.Create: %w", err)
	}
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, tenantID, recordID uuid.UUID) (*domain.BookingRecord, error) {
	var rec domain.BookingRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM booking_records WHERE id = $1 AND tenant_id = $2", recordID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("bookingRepo.GetByID: %w", err)
	}
	return &rec, nil
}

// listCursor is the decoded form of a continuation token: the sort key of the
// last record in the previous page.
type listCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        uuid.UUID `json:"id"`
}

// EncodeContinuation builds an opaque continuation token from the keyset
// position of the last record on a page.
func EncodeContinuation(createdAt time.Time, id uuid.UUID) string {
	raw, _ := json.Marshal(listCursor{CreatedAt: createdAt, ID: id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeContinuation parses a continuation token back into its keyset
// position. Anything malformed, including a zero record id, yields
// ErrInvalidContinuation.
func DecodeContinuation(token string) (time.Time, uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, uuid.Nil, domain.ErrInvalidContinuation
	}
	var c listCursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == uuid.Nil {
		return time.Time{}, uuid.Nil, domain.ErrInvalidContinuation
	}
	return c.CreatedAt, c.ID, nil
}

func (r *bookingRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.BookingFilter) ([]domain.BookingRecord, string, error) {
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	q := r.sb.Select("*").
		From("booking_records").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(pageSize) + 1)

	if filter.Status != nil {
		q = q.Where(sq.Eq{"status": *filter.Status})
	}
	if filter.ContinuationToken != "" {
		createdAt, id, err := DecodeContinuation(filter.ContinuationToken)
		if err != nil {
			return nil, "", err
		}
		q = q.Where(sq.Expr("(created_at, id) < (?, ?)", createdAt, id))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("bookingRepo.List build: %w", err)
	}

	var records []domain.BookingRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, "", fmt.Errorf("bookingRepo.List: %w", err)
	}

	// One extra row was fetched to learn whether another page exists.
	next := ""
	if len(records) > pageSize {
		records = records[:pageSize]
		last := records[len(records)-1]
		next = EncodeContinuation(last.CreatedAt, last.ID)
	}
	return records, next, nil
}

func (r *bookingRepo) ListByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]domain.BookingRecord, error) {
	var records []domain.BookingRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM booking_records WHERE tenant_id = $1 AND document_id = $2
		 ORDER BY page_number ASC`,
		tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("bookingRepo.ListByDocument: %w", err)
	}
	return records, nil
}

func (r *bookingRepo) ListAllByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.BookingRecord, error) {
	var records []domain.BookingRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM booking_records WHERE tenant_id = $1
		 ORDER BY created_at DESC, id DESC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("bookingRepo.ListAllByTenant: %w", err)
	}
	return records, nil
}

// UpdateValidation writes a reviewer decision. The UPDATE is conditional on
// the row still being pending, so two concurrent reviewers cannot both land a
// terminal status; the loser gets ErrRecordNotPending.
func (r *bookingRepo) UpdateValidation(ctx context.Context, rec *domain.BookingRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE booking_records SET
			status = $1, confidence = $2, shipment = $3,
			extraction = $4, validation_history = $5, updated_at = $6
		 WHERE id = $7 AND tenant_id = $8 AND status = $9`,
		rec.Status, rec.Confidence, rec.Shipment,
		rec.Extraction, rec.ValidationHistory, rec.UpdatedAt,
		rec.ID, rec.TenantID, domain.RecordStatusPending)
	if err != nil {
		return fmt.Errorf("bookingRepo.UpdateValidation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	var status domain.RecordStatus
	err = r.db.GetContext(ctx, &status,
		"SELECT status FROM booking_records WHERE id = $1 AND tenant_id = $2", rec.ID, rec.TenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRecordNotFound
		}
		return fmt.Errorf("bookingRepo.UpdateValidation status check: %w", err)
	}
	return domain.ErrRecordNotPending
}
