// ABOUTME: Intent-verb keyword sets (count, list, latest, sum, create) and predicates
// ABOUTME: Each domain composes its own precedence; nothing here ranks the verbs

package phrase

import "strings"

// Keyword sets shared by the domain builders. Domain-specific "latest" phrasings
// ("last order", "last invoice") live with the builder that owns them.
var (
	CountWords  = []string{"how many", "count", "number of"}
	ListWords   = []string{"list", "show"}
	LatestWords = []string{"latest", "recent", "last"}
	SumWords    = []string{"sum", "total", "amount due", "total due", "outstanding"}
	CreateWords = []string{"create", "log", "register"}
)

// ContainsAny reports whether text contains any of words as a substring.
// text is expected to be normalized already.
func ContainsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// WantsCount reports a count question ("how many", "count", "number of").
func WantsCount(text string) bool { return ContainsAny(text, CountWords) }

// WantsList reports a listing request ("list", "show").
func WantsList(text string) bool { return ContainsAny(text, ListWords) }

// WantsSum reports a money total request.
func WantsSum(text string) bool { return ContainsAny(text, SumWords) }

// WantsCreate reports a create/log/register verb.
func WantsCreate(text string) bool { return ContainsAny(text, CreateWords) }
