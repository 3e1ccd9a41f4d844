// ABOUTME: Ordered keyword table for deterministic fallback classification.
// ABOUTME: Rules are checked top to bottom; the first rule with a substring hit wins.

package intent

import (
	"strings"

	"github.com/mauromedda/medsupport-go/internal/phrase"
)

// rule pairs an intent with the keywords that select it.
type rule struct {
	intent   Intent
	keywords []string
}

// heuristicRules is order-sensitive: a message mentioning both an order and a
// warranty is an order question because order_status is checked first.
// Keywords match as plain substrings, so "ce" also hits words like "price".
var heuristicRules = []rule{
	{OrderStatus, []string{"order", "delivery", "tracking", "ship"}},
	{ProductSpecifications, []string{"spec", "specification", "model", "feature"}},
	{SchedulingMaintenance, []string{"install", "schedule", "maintenance", "service"}},
	{WarrantyAMCQueries, []string{"warranty", "amc", "coverage"}},
	{ComplaintRegistration, []string{"complaint", "issue", "problem", "ticket"}},
	{PaymentInvoiceQueries, []string{"invoice", "payment", "bill", "paid"}},
	{SparePartsAccessories, []string{"spare", "part", "accessor"}},
	{CertificationsCompliance, []string{"certificate", "compliance", "iso", "ce"}},
	{GeneralQueries, []string{"help", "info", "question", "general", "support"}},
}

// ClassifyHeuristic classifies by the first matching rule, or Unknown.
func ClassifyHeuristic(input string) Classification {
	text := phrase.Normalize(input)
	if strings.TrimSpace(text) == "" {
		return Classification{Intent: Unknown, Source: "heuristic"}
	}

	for _, r := range heuristicRules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return Classification{
					Intent: r.intent,
					Source: "heuristic",
					Signals: []Signal{{
						Name:   "keyword_match",
						Detail: kw,
					}},
				}
			}
		}
	}

	return Classification{Intent: Unknown, Source: "heuristic"}
}
