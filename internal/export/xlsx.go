package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"bookingflow/internal/domain"
)

const sheetName = "Bookings"

// columns defines the export header row.
var columns = []string{
	"Document ID",
	"Page",
	"Status",
	"Confidence",
	"Booking Reference",
	"Carrier",
	"Vessel",
	"Voyage",
	"Port of Loading",
	"Port of Discharge",
	"Place of Receipt",
	"Place of Delivery",
	"ETD",
	"ETA",
	"Shipper",
	"Shipper Address",
	"Consignee",
	"Consignee Address",
	"Containers",
	"Container Size/Type",
	"Inland Carrier",
	"Inland Delivery Address",
	"Inland Delivery Date",
	"Uploaded By",
	"Created At",
	"Updated At",
}

// BookingWorkbook renders a batch of booking records as an XLSX workbook.
// Records with an unreadable shipment payload still get a row with their
// identity columns filled.
func BookingWorkbook(records []domain.BookingRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i := range records {
		row := recordToRow(&records[i])
		cell := "A" + strconv.Itoa(i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func recordToRow(rec *domain.BookingRecord) []interface{} {
	var sh domain.Shipment
	_ = json.Unmarshal(rec.Shipment, &sh)

	containers := make([]string, 0, len(sh.Containers))
	sizeType := ""
	for _, c := range sh.Containers {
		if c.Number != "" {
			containers = append(containers, c.Number)
		}
		if sizeType == "" {
			sizeType = c.SizeType
		}
	}

	return []interface{}{
		rec.DocumentID.String(),
		rec.PageNumber,
		string(rec.Status),
		rec.Confidence,
		sh.CarrierBookingReference,
		sh.CarrierName,
		sh.VesselName,
		sh.VoyageNumber,
		sh.PortOfLoading,
		sh.PortOfDischarge,
		sh.PlaceOfReceipt,
		sh.PlaceOfDelivery,
		sh.ETD,
		sh.ETA,
		sh.Shipper.Name,
		sh.Shipper.Address,
		sh.Consignee.Name,
		sh.Consignee.Address,
		strings.Join(containers, ", "),
		sizeType,
		sh.Inland.Carrier,
		sh.Inland.DeliveryAddress,
		sh.Inland.DeliveryDate,
		rec.UploaderEmail,
		rec.CreatedAt.Format("2006-01-02 15:04:05"),
		rec.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
