// ABOUTME: Resolves the configured openai.base_url to the versioned API root requests hang off
// ABOUTME: Accepts bare hosts, hosts ending in /v1 and gateways with their own path prefix

package httputil

import (
	"net/url"
	"regexp"
	"strings"
)

const defaultAPIVersion = "/v1"

var versionSegment = regexp.MustCompile(`/v\d+(beta|alpha)?\d*$`)

// APIRoot returns baseURL with exactly one trailing version segment, so that
// endpoint paths like "/chat/completions" can be appended directly.
//
//	https://api.openai.com        -> https://api.openai.com/v1
//	http://localhost:11434/v1/    -> http://localhost:11434/v1
//	https://gateway.local/openai  -> https://gateway.local/openai/v1
//
// A base that does not parse is returned trimmed and unversioned; the request
// will then fail with a clear URL error.
func APIRoot(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return ""
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}
	if versionSegment.MatchString(u.Path) {
		return baseURL
	}
	u.Path += defaultAPIVersion
	return u.String()
}
