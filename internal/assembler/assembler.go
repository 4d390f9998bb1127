package assembler

import (
	"fmt"
	"strings"

	"bookingflow/internal/domain"
	"bookingflow/internal/port"
)

// ConfidenceThreshold is the per-field confidence below which a field is
// flagged for reviewer attention.
const ConfidenceThreshold = 0.8

// fieldSpec binds a canonical shipment field to the raw labels that may carry
// it, in priority order: the first alias present in the raw field map wins.
type fieldSpec struct {
	name    string
	aliases []string
	set     func(*domain.Shipment, string)
}

// fieldSpecs is evaluated in order, so assembly output is fully determined by
// the raw field map. container_numbers must precede container_size_type.
var fieldSpecs = []fieldSpec{
	{
		name:    "carrier_booking_reference",
		aliases: []string{"carrier_booking_reference", "booking_number", "booking_reference", "booking_no"},
		set:     func(s *domain.Shipment, v string) { s.CarrierBookingReference = v },
	},
	{
		name:    "carrier_name",
		aliases: []string{"carrier_name", "carrier", "shipping_line"},
		set:     func(s *domain.Shipment, v string) { s.CarrierName = v },
	},
	{
		name:    "vessel_name",
		aliases: []string{"vessel_name", "vessel", "mother_vessel"},
		set:     func(s *domain.Shipment, v string) { s.VesselName = v },
	},
	{
		name:    "voyage_number",
		aliases: []string{"voyage_number", "voyage", "voyage_no"},
		set:     func(s *domain.Shipment, v string) { s.VoyageNumber = v },
	},
	{
		name:    "port_of_loading",
		aliases: []string{"port_of_loading", "pol", "origin_port", "load_port"},
		set:     func(s *domain.Shipment, v string) { s.PortOfLoading = v },
	},
	{
		name:    "port_of_discharge",
		aliases: []string{"port_of_discharge", "pod", "destination_port", "discharge_port"},
		set:     func(s *domain.Shipment, v string) { s.PortOfDischarge = v },
	},
	{
		name:    "place_of_receipt",
		aliases: []string{"place_of_receipt", "receipt_place"},
		set:     func(s *domain.Shipment, v string) { s.PlaceOfReceipt = v },
	},
	{
		name:    "place_of_delivery",
		aliases: []string{"place_of_delivery", "delivery_place", "final_destination"},
		set:     func(s *domain.Shipment, v string) { s.PlaceOfDelivery = v },
	},
	{
		name:    "etd",
		aliases: []string{"etd", "departure_date", "sailing_date"},
		set:     func(s *domain.Shipment, v string) { s.ETD = v },
	},
	{
		name:    "eta",
		aliases: []string{"eta", "arrival_date"},
		set:     func(s *domain.Shipment, v string) { s.ETA = v },
	},
	{
		name:    "shipper_name",
		aliases: []string{"shipper_name", "shipper"},
		set:     func(s *domain.Shipment, v string) { s.Shipper.Name = v },
	},
	{
		name:    "shipper_address",
		aliases: []string{"shipper_address"},
		set:     func(s *domain.Shipment, v string) { s.Shipper.Address = v },
	},
	{
		name:    "consignee_name",
		aliases: []string{"consignee_name", "consignee"},
		set:     func(s *domain.Shipment, v string) { s.Consignee.Name = v },
	},
	{
		name:    "consignee_address",
		aliases: []string{"consignee_address"},
		set:     func(s *domain.Shipment, v string) { s.Consignee.Address = v },
	},
	{
		name:    "container_numbers",
		aliases: []string{"container_numbers", "container_number", "containers"},
		set:     setContainerNumbers,
	},
	{
		name:    "container_size_type",
		aliases: []string{"container_size_type", "container_type", "equipment_type"},
		set:     setContainerSizeType,
	},
	{
		name:    "inland_carrier",
		aliases: []string{"inland_carrier", "trucker", "haulage_carrier"},
		set:     func(s *domain.Shipment, v string) { s.Inland.Carrier = v },
	},
	{
		name:    "inland_delivery_address",
		aliases: []string{"inland_delivery_address", "door_delivery_address"},
		set:     func(s *domain.Shipment, v string) { s.Inland.DeliveryAddress = v },
	},
	{
		name:    "inland_delivery_date",
		aliases: []string{"inland_delivery_date", "door_delivery_date"},
		set:     func(s *domain.Shipment, v string) { s.Inland.DeliveryDate = v },
	},
}

func setContainerNumbers(s *domain.Shipment, v string) {
	sizeType := ""
	if len(s.Containers) > 0 {
		sizeType = s.Containers[0].SizeType
	}
	s.Containers = s.Containers[:0]
	for _, num := range strings.Split(v, ",") {
		num = strings.TrimSpace(num)
		if num == "" {
			continue
		}
		s.Containers = append(s.Containers, domain.Container{Number: num, SizeType: sizeType})
	}
}

func setContainerSizeType(s *domain.Shipment, v string) {
	if len(s.Containers) == 0 {
		s.Containers = append(s.Containers, domain.Container{SizeType: v})
		return
	}
	for i := range s.Containers {
		s.Containers[i].SizeType = v
	}
}

// Result is the assembled shipment plus the confidence bookkeeping reviewers
// rely on.
type Result struct {
	Shipment            domain.Shipment
	Confidence          float64
	FieldConfidences    map[string]float64
	LowConfidenceFields []string
}

// Assemble maps a raw extracted field map into the shipment schema. Given the
// same raw map it always produces the same payload, field confidences, and
// low-confidence list.
func Assemble(fields map[string]port.ExtractedField) *Result {
	res := &Result{
		FieldConfidences: make(map[string]float64),
	}

	for _, spec := range fieldSpecs {
		for _, alias := range spec.aliases {
			raw, ok := fields[alias]
			if !ok {
				continue
			}
			spec.set(&res.Shipment, raw.Value)
			res.FieldConfidences[spec.name] = raw.Confidence
			if raw.Confidence < ConfidenceThreshold {
				res.LowConfidenceFields = append(res.LowConfidenceFields, spec.name)
			}
			break
		}
	}

	res.Confidence = MeanConfidence(fields)
	return res
}

// MeanConfidence is the aggregate record confidence: the mean of all returned
// per-field confidences, 0 when the capability returned no fields.
func MeanConfidence(fields map[string]port.ExtractedField) float64 {
	if len(fields) == 0 {
		return 0
	}
	var sum float64
	for _, f := range fields {
		sum += f.Confidence
	}
	return sum / float64(len(fields))
}

// ApplyCorrections merges reviewer-supplied corrections into a shipment
// payload by canonical field name; corrected fields win. An unknown field
// name yields domain.ErrUnknownCorrectionField.
func ApplyCorrections(s *domain.Shipment, corrections map[string]string) error {
	for name, value := range corrections {
		spec, ok := specByName(name)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownCorrectionField, name)
		}
		spec.set(s, value)
	}
	return nil
}

func specByName(name string) (fieldSpec, bool) {
	for _, spec := range fieldSpecs {
		if spec.name == name {
			return spec, true
		}
	}
	return fieldSpec{}, false
}

// CanonicalFields lists the field names accepted by ApplyCorrections, in
// assembly order.
func CanonicalFields() []string {
	names := make([]string, 0, len(fieldSpecs))
	for _, spec := range fieldSpecs {
		names = append(names, spec.name)
	}
	return names
}
