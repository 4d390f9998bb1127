package export_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"bookingflow/internal/domain"
	"bookingflow/internal/export"
)

func sampleRecord() domain.BookingRecord {
	shipment, _ := json.Marshal(domain.Shipment{
		CarrierBookingReference: "MAEU12345",
		CarrierName:             "Maersk",
		VesselName:              "Emma Maersk",
		PortOfLoading:           "Rotterdam",
		PortOfDischarge:         "Shanghai",
		Containers: []domain.Container{
			{Number: "MSKU1234567", SizeType: "40HC"},
			{Number: "TGHU7654321", SizeType: "40HC"},
		},
	})
	return domain.BookingRecord{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		DocumentID:    uuid.New(),
		PageNumber:    1,
		Status:        domain.RecordStatusValidated,
		Confidence:    0.91,
		Shipment:      shipment,
		UploaderEmail: "uploader@example.com",
		CreatedAt:     time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 8, 2, 11, 0, 0, 0, time.UTC),
	}
}

func TestBookingWorkbook(t *testing.T) {
	data, err := export.BookingWorkbook([]domain.BookingRecord{sampleRecord()})
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	header := rows[0]
	assert.Equal(t, "Document ID", header[0])
	assert.Contains(t, header, "Booking Reference")
	assert.Contains(t, header, "Containers")

	row := rows[1]
	assert.Contains(t, row, "MAEU12345")
	assert.Contains(t, row, "Maersk")
	assert.Contains(t, row, "MSKU1234567, TGHU7654321")
	assert.Contains(t, row, "40HC")
	assert.Contains(t, row, "validated")
}

func TestBookingWorkbook_EmptyBatch(t *testing.T) {
	data, err := export.BookingWorkbook(nil)
	assert.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestBookingWorkbook_UnreadablePayloadStillExports(t *testing.T) {
	rec := sampleRecord()
	rec.Shipment = json.RawMessage("not json")

	data, err := export.BookingWorkbook([]domain.BookingRecord{rec})
	assert.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, rec.DocumentID.String(), rows[1][0])
}
