// ABOUTME: Pure phrase parsing for support messages: limits, tracking codes, statuses
// ABOUTME: Total functions; a missing pattern yields a zero value, never an error

package phrase

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultLimit is returned by ParseLimit when no number qualifies.
	DefaultLimit = 5
	// MaxLimit is the largest limit a user can ask for.
	MaxLimit = 50
)

var (
	trackingRe = regexp.MustCompile(`(?i)\b[A-Z]{2,5}-?\d{3,}-?\d*\b`)
	numRe      = regexp.MustCompile(`\b(\d+)\b`)
	dateISORe  = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

// Normalize folds compatibility forms (full-width digits, ligatures) and lower-cases
// the message. Every keyword test in this module runs against normalized text.
func Normalize(msg string) string {
	return strings.ToLower(norm.NFKC.String(msg))
}

// ParseLimit returns the first integer in msg whose value lies in [1, hardMax],
// scanning left to right. It returns def when no integer qualifies.
func ParseLimit(msg string, def, hardMax int) int {
	for _, m := range numRe.FindAllStringSubmatch(msg, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= 1 && n <= hardMax {
			return n
		}
	}
	return def
}

// ExtractTrackingCode returns the first tracking-code-shaped token in msg:
// 2 to 5 letters, an optional dash, at least 3 digits, then an optional dash and digits.
// Only the first match is reported.
func ExtractTrackingCode(msg string) (string, bool) {
	code := trackingRe.FindString(msg)
	return code, code != ""
}

// ExtractStatus returns the first status of allowed that appears in msg.
// The order of allowed is the tie-break when several status words appear.
func ExtractStatus(msg string, allowed []string) (string, bool) {
	lower := Normalize(msg)
	for _, st := range allowed {
		if strings.Contains(lower, st) {
			return st, true
		}
	}
	return "", false
}

// Signals is everything a domain builder needs from one message.
type Signals struct {
	Text         string     // normalized message
	Limit        int        // 1..MaxLimit
	Status       string     // empty when no status word matched
	TrackingCode string     // empty when none
	Range        *DateRange // nil when no range phrase matched
}

// Parse extracts all signals from msg against the statuses of one domain.
func Parse(msg string, statuses []string, now time.Time) Signals {
	s := Signals{
		Text:  Normalize(msg),
		Limit: ParseLimit(msg, DefaultLimit, MaxLimit),
	}
	s.Status, _ = ExtractStatus(msg, statuses)
	s.TrackingCode, _ = ExtractTrackingCode(msg)
	if r, ok := ParseDateRange(msg, now); ok {
		s.Range = &r
	}
	return s
}
