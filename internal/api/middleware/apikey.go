package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"os"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/lotfolio/lotfolio/internal/api/response"
)

// timeTokenTTL bounds how long a generated time token stays valid.
const timeTokenTTL = 5 * time.Minute

// APIKeyMiddleware guards mutating endpoints. Callers must present the
// internal API key plus a short-lived fernet time token minted from it,
// so a leaked request cannot be replayed after the token expires.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("INTERNAL_API_KEY")
		if expected == "" {
			response.RespondError(w, http.StatusInternalServerError, "authentication not configured", "Authentication not loaded")
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		timeToken := r.Header.Get("X-Time-Token")
		if timeToken == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		if fernet.VerifyAndDecrypt([]byte(timeToken), timeTokenTTL, []*fernet.Key{deriveKey(expected)}) == nil {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateTimeToken mints a time token for the given API key. Exposed
// for clients and tests.
func GenerateTimeToken(apiKey string) string {
	token, err := fernet.EncryptAndSign(
		[]byte(time.Now().UTC().Format(time.RFC3339)),
		deriveKey(apiKey),
	)
	if err != nil {
		return ""
	}
	return string(token)
}

// deriveKey stretches the API key into a fernet key.
func deriveKey(apiKey string) *fernet.Key {
	var key fernet.Key
	sum := sha256.Sum256([]byte(apiKey))
	copy(key[:], sum[:])
	return &key
}
