package auth

import "strings"

const bearerScheme = "Bearer"

// ExtractBearer parses an Authorization header value of the form
// "Bearer <token>". Any other shape yields ok == false.
func ExtractBearer(header string) (token string, ok bool) {
	scheme, rest, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(rest)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
