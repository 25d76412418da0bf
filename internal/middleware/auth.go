package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/calldesk/internal/ctxkeys"
	"github.com/templui/calldesk/internal/model"
)

const (
	msgNoToken      = "Access denied. No token provided."
	msgInvalidToken = "Invalid token."
)

// TokenVerifier turns a bearer token into the identity it was issued for.
type TokenVerifier interface {
	VerifyJWT(token string) (*model.Identity, error)
}

// RequireIdentity attaches the caller's identity to the request context or
// answers 401. When public is non-nil authentication is disabled and every
// request runs as that identity.
func RequireIdentity(verifier TokenVerifier, public *model.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public != nil {
				ctx := ctxkeys.WithIdentity(r.Context(), public)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, msgNoToken)
				return
			}

			identity, err := verifier.VerifyJWT(token)
			if err != nil {
				slog.Debug("rejected token", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			ctx := ctxkeys.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
