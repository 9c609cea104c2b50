package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
)

const HeaderAPIKey = "X-API-Key"

type AuthService struct {
	apiKey string
	logger *slog.Logger
}

func NewAuthService(apiKey string, logger *slog.Logger) AuthService {
	return AuthService{
		apiKey: apiKey,
		logger: logger,
	}
}

// Enabled reports whether admin routes are served at all.
func (a AuthService) Enabled() bool {
	return a.apiKey != ""
}

// RequireAPIKey hides the route with 404 when no admin key is configured and
// answers 401 when the X-API-Key header does not match.
func (a AuthService) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			writeDetail(w, http.StatusNotFound, "Not Found")
			return
		}

		key := r.Header.Get(HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(key), []byte(a.apiKey)) != 1 {
			a.logger.Warn("rejected admin request", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeDetail(w, http.StatusUnauthorized, "invalid api key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateAPIKey returns 32 random bytes, hex encoded.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
