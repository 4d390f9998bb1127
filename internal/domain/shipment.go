package domain

// Shipment is the structured payload extracted from one booking page.
// Stored in BookingRecord.Shipment as JSONB.
type Shipment struct {
	CarrierBookingReference string      `json:"carrier_booking_reference,omitempty"`
	CarrierName             string      `json:"carrier_name,omitempty"`
	VesselName              string      `json:"vessel_name,omitempty"`
	VoyageNumber            string      `json:"voyage_number,omitempty"`
	PortOfLoading           string      `json:"port_of_loading,omitempty"`
	PortOfDischarge         string      `json:"port_of_discharge,omitempty"`
	PlaceOfReceipt          string      `json:"place_of_receipt,omitempty"`
	PlaceOfDelivery         string      `json:"place_of_delivery,omitempty"`
	ETD                     string      `json:"etd,omitempty"`
	ETA                     string      `json:"eta,omitempty"`
	Shipper                 Party       `json:"shipper"`
	Consignee               Party       `json:"consignee"`
	Containers              []Container `json:"containers,omitempty"`
	Inland                  InlandLeg   `json:"inland"`
}

// Party is a named party on a booking (shipper, consignee).
type Party struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// Container is a single container listed on a booking page.
type Container struct {
	Number   string `json:"number,omitempty"`
	SizeType string `json:"size_type,omitempty"`
}

// InlandLeg describes the inland delivery leg of a booking, if present.
type InlandLeg struct {
	Carrier         string `json:"carrier,omitempty"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
	DeliveryDate    string `json:"delivery_date,omitempty"`
}
