package service

import (
	"strings"

	"github.com/bioren/user-directory/internal/core/domain"
)

const bearerPrefix = "Bearer "

// ParseBearer extracts the raw token from an Authorization header value of the
// form "Bearer <token>". The prefix is matched case-sensitively.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrMissingAuthorization
	}

	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "", domain.ErrMalformedAuthorization
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", domain.ErrMalformedAuthorization
	}
	return token, nil
}
