// Bearer JWT guard for the HTTP transport.
// Reads Authorization: Bearer <token> and validates an HS256 signature.
package mcpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// BearerAuth returns middleware that rejects requests lacking a valid HS256
// bearer token signed with secret. Only used on the HTTP transport; stdio
// trusts its parent process.
func BearerAuth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				writeUnauthorized(w, "missing or invalid Authorization header")
				return
			}
			if err := validateToken(tokenString, key); err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// validateToken parses and verifies an HS256 token against key.
func validateToken(tokenString string, key []byte) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject algorithm substitution: only HMAC is acceptable here.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return fmt.Errorf("failed to parse JWT: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid JWT signature")
	}
	return nil
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
// Returns empty string if the header is missing, wrong scheme, or empty.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	// Must start with "Bearer " (case-sensitive per RFC 7235)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// writeUnauthorized writes a 401 JSON response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
