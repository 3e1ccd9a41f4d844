// ABOUTME: Closed set of support intents with an explicit string mapping table.
// ABOUTME: Unrecognized strings never create a new intent; they map to Unknown.

package intent

import "fmt"

// Intent is the classified purpose of a support message.
type Intent int

const (
	Unknown                  Intent = iota // Safe default when nothing matches
	OrderStatus                            // Order tracking, delivery, ETA
	ProductSpecifications                  // Model features and specs
	SchedulingMaintenance                  // Installation and maintenance visits
	WarrantyAMCQueries                     // Warranty and AMC coverage
	ComplaintRegistration                  // Complaints and tickets
	PaymentInvoiceQueries                  // Invoices and payments
	SparePartsAccessories                  // Spare parts and accessories
	CertificationsCompliance               // Certificates, ISO, CE
	GeneralQueries                         // Everything else answerable from docs
)

// names is the single mapping between intents and their external string values.
var names = map[Intent]string{
	Unknown:                  "unknown",
	OrderStatus:              "order_status",
	ProductSpecifications:    "product_specifications",
	SchedulingMaintenance:    "scheduling_maintenance",
	WarrantyAMCQueries:       "warranty_amc_queries",
	ComplaintRegistration:    "complaint_registration",
	PaymentInvoiceQueries:    "payment_invoice_queries",
	SparePartsAccessories:    "spare_parts_accessories",
	CertificationsCompliance: "certifications_compliance",
	GeneralQueries:           "general_queries",
}

var byName = func() map[string]Intent {
	m := make(map[string]Intent, len(names))
	for i, n := range names {
		m[n] = i
	}
	return m
}()

// String returns the external string value of the intent.
func (i Intent) String() string {
	if n, ok := names[i]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", int(i))
}

// MarshalText encodes the intent as its external string value.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText decodes an external string value; unrecognized values become Unknown.
func (i *Intent) UnmarshalText(b []byte) error {
	*i = FromString(string(b))
	return nil
}

// Parse returns the intent whose external value equals s exactly.
func Parse(s string) (Intent, bool) {
	i, ok := byName[s]
	return i, ok
}

// FromString is Parse with Unknown substituted for unrecognized values.
func FromString(s string) Intent {
	if i, ok := byName[s]; ok {
		return i
	}
	return Unknown
}

// Known returns every intent except Unknown, in declaration order.
func Known() []Intent {
	out := make([]Intent, 0, len(names)-1)
	for i := OrderStatus; i <= GeneralQueries; i++ {
		out = append(out, i)
	}
	return out
}

// Classification holds the result of intent classification.
type Classification struct {
	Intent  Intent
	Source  string   // "model" or "heuristic"
	Signals []Signal // Contributing factors
}

// Signal represents a factor that contributed to classification.
type Signal struct {
	Name   string // e.g., "keyword_match", "llm_classification", "llm_error"
	Detail string // e.g., the matched keyword
}
