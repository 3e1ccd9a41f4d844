// ABOUTME: Table-driven tests for the ordered keyword fallback classifier.
// ABOUTME: Covers every intent, rule order tie-breaks, and the unknown default.

package intent

import "testing"

func TestClassifyHeuristic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Intent
	}{
		{"order tracking", "Where is my delivery?", OrderStatus},
		{"order ship", "has it shipped", OrderStatus},
		{"specs", "What are the features of the X200 ultrasound", ProductSpecifications},
		{"scheduling", "Can I book maintenance for next week", SchedulingMaintenance},
		{"scheduling install", "need an installation visit", SchedulingMaintenance},
		{"warranty", "is my AMC active", WarrantyAMCQueries},
		{"complaint", "I have a problem with the monitor", ComplaintRegistration},
		{"invoice", "when is my bill due", PaymentInvoiceQueries},
		{"spares", "do you sell spare probes", SparePartsAccessories},
		{"accessories", "accessories for the ventilator", SparePartsAccessories},
		{"certifications", "is this ISO 13485 certified", CertificationsCompliance},
		{"general", "I need help", GeneralQueries},
		{"nothing", "hello there", Unknown},
		{"empty", "", Unknown},
		{"whitespace", "   ", Unknown},
		{"upper case folds", "TRACKING PLEASE", OrderStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ClassifyHeuristic(tt.input)
			if got.Intent != tt.want {
				t.Errorf("ClassifyHeuristic(%q).Intent = %v; want %v", tt.input, got.Intent, tt.want)
			}
			if got.Source != "heuristic" {
				t.Errorf("Source = %q; want heuristic", got.Source)
			}
		})
	}
}

func TestClassifyHeuristic_OrderIsTieBreak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Intent
	}{
		{"my order is under warranty", OrderStatus},
		{"warranty claim ticket", WarrantyAMCQueries},
		{"invoice for the spare part", PaymentInvoiceQueries},
		{"support ticket", ComplaintRegistration},
	}
	for _, tt := range tests {
		for range 3 {
			if got := ClassifyHeuristic(tt.input).Intent; got != tt.want {
				t.Errorf("ClassifyHeuristic(%q) = %v; want %v", tt.input, got, tt.want)
			}
		}
	}
}

func TestClassifyHeuristic_Signal(t *testing.T) {
	t.Parallel()

	got := ClassifyHeuristic("please send the invoice")
	if len(got.Signals) != 1 {
		t.Fatalf("len(Signals) = %d; want 1", len(got.Signals))
	}
	if got.Signals[0].Name != "keyword_match" || got.Signals[0].Detail != "invoice" {
		t.Errorf("Signal = %+v; want keyword_match/invoice", got.Signals[0])
	}
}

func TestHeuristicRulesCoverKnownIntents(t *testing.T) {
	t.Parallel()

	seen := make(map[Intent]bool)
	for _, r := range heuristicRules {
		if seen[r.intent] {
			t.Errorf("intent %v appears twice in the rule table", r.intent)
		}
		seen[r.intent] = true
	}
	for _, in := range Known() {
		if !seen[in] {
			t.Errorf("intent %v has no heuristic rule", in)
		}
	}
}
