// ABOUTME: Answer formatting helpers: dates, money amounts, grapheme-safe truncation
// ABOUTME: Truncation counts user-perceived characters so emoji and accents never split

package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

const dayLayout = "2006-01-02"

func formatDay(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// formatOptionalDay renders t, or "unknown" when nil.
func formatOptionalDay(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return formatDay(*t)
}

// formatAmount prints the shortest exact decimal: 100 -> "100", 4200.5 -> "4200.5".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func currencyOrUSD(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}

// truncateChars returns the first n grapheme clusters of s and whether anything was cut.
func truncateChars(s string, n int) (string, bool) {
	if n <= 0 {
		return "", s != ""
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	count := 0
	for g.Next() {
		if count == n {
			return b.String(), true
		}
		b.WriteString(g.Str())
		count++
	}
	return b.String(), false
}

// ellipsize truncates s to n characters and appends "..." when it was longer.
func ellipsize(s string, n int) string {
	out, cut := truncateChars(s, n)
	if cut {
		return out + "..."
	}
	return out
}

// preview truncates s to n characters without a marker.
func preview(s string, n int) string {
	out, _ := truncateChars(s, n)
	return out
}
