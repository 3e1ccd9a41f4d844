// ABOUTME: Tests for the intent string mapping table.
// ABOUTME: Round-trips every value and checks unrecognized strings map to unknown.

package intent

import (
	"encoding/json"
	"testing"
)

func TestIntentStringRoundTrip(t *testing.T) {
	t.Parallel()

	all := append(Known(), Unknown)
	for _, in := range all {
		got, ok := Parse(in.String())
		if !ok || got != in {
			t.Errorf("Parse(%q) = (%v, %v); want (%v, true)", in.String(), got, ok, in)
		}
	}
}

func TestParseIsExact(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"Order_Status", " order_status", "orders", ""} {
		if _, ok := Parse(s); ok {
			t.Errorf("Parse(%q) succeeded; want failure", s)
		}
		if got := FromString(s); got != Unknown {
			t.Errorf("FromString(%q) = %v; want unknown", s, got)
		}
	}
}

func TestKnownExcludesUnknown(t *testing.T) {
	t.Parallel()

	known := Known()
	if len(known) != 9 {
		t.Fatalf("len(Known()) = %d; want 9", len(known))
	}
	for _, in := range known {
		if in == Unknown {
			t.Error("Known() contains unknown")
		}
	}
}

func TestIntentJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(map[string]Intent{"intent": PaymentInvoiceQueries})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"intent":"payment_invoice_queries"}` {
		t.Errorf("json = %s", b)
	}

	var out struct{ Intent Intent }
	if err := json.Unmarshal([]byte(`{"Intent":"bogus"}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Intent != Unknown {
		t.Errorf("Intent = %v; want unknown", out.Intent)
	}
}

func TestIntentStringOutOfRange(t *testing.T) {
	t.Parallel()

	if got := Intent(99).String(); got != "unknown(99)" {
		t.Errorf("String() = %q; want %q", got, "unknown(99)")
	}
}
