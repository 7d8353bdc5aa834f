package auth

import (
	"net/http"
	"strings"
)

// ExtractAccessToken returns the bearer token of r, or "" when the request
// is anonymous. The scheme is matched case-insensitively.
func ExtractAccessToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
