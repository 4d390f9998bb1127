package extractor

import "strings"

// fieldVocabulary is the set of labels the extraction capability is asked to
// use for anything it can read off a booking page. The assembler maps these
// (and common carrier variants) into the shipment schema.
var fieldVocabulary = []string{
	"booking_number",
	"carrier_booking_reference",
	"carrier_name",
	"vessel_name",
	"voyage_number",
	"port_of_loading",
	"port_of_discharge",
	"place_of_receipt",
	"place_of_delivery",
	"etd",
	"eta",
	"shipper_name",
	"shipper_address",
	"consignee_name",
	"consignee_address",
	"container_numbers",
	"container_size_type",
	"inland_carrier",
	"inland_delivery_address",
	"inland_delivery_date",
}

// BuildBookingPrompt returns the instruction text sent alongside a page.
// The capability reports raw labeled values with a confidence per field; it
// does not interpret or normalize them.
func BuildBookingPrompt() string {
	var b strings.Builder
	b.WriteString("You are extracting data from one page of an ocean freight booking document.\n")
	b.WriteString("Return ONLY a JSON object of this exact shape, with no prose around it:\n\n")
	b.WriteString(`{"fields": {"<label>": {"value": "<string>", "confidence": <0.0-1.0>}}}`)
	b.WriteString("\n\nUse these labels where the page contains the corresponding data:\n")
	for _, f := range fieldVocabulary {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString("\nOmit labels that are not present on the page. Do not guess values.\n")
	b.WriteString("container_numbers is a single comma-separated string when multiple containers appear.\n")
	b.WriteString("confidence reflects how certain you are the value was read correctly.\n")
	return b.String()
}
