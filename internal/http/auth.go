package http

import (
	"context"
	"net/http"
	"strings"

	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/middleware/security"
)

// Headers set by the identity provider in front of the dashboard.
const (
	HeaderUserID        = "X-User-Id"
	HeaderUserFirstName = "X-User-First-Name"
	HeaderUserUsername  = "X-User-Username"
	HeaderUserRole      = "X-User-Role"
	HeaderAuthStatus    = "X-Auth-Status"
)

type identityKey struct{}

// IdentityFromRequest reads the forwarded identity headers. A request without
// a user ID is signed out; the provider may report "loading" explicitly while
// a session is being restored.
func IdentityFromRequest(r *http.Request) core.Identity {
	if strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderAuthStatus)), core.AuthLoading.String()) {
		return core.Identity{Status: core.AuthLoading}
	}
	userID := sanitizeInput(r.Header.Get(HeaderUserID))
	if userID == "" {
		return core.SignedOut()
	}
	return core.SignedIn(core.User{
		ID:        userID,
		FirstName: sanitizeInput(r.Header.Get(HeaderUserFirstName)),
		Username:  sanitizeInput(r.Header.Get(HeaderUserUsername)),
		Role:      core.Role(strings.ToLower(sanitizeInput(r.Header.Get(HeaderUserRole)))),
	})
}

func hasIdentityHeaders(r *http.Request) bool {
	for _, h := range []string{HeaderUserID, HeaderUserRole, HeaderAuthStatus} {
		if r.Header.Get(h) != "" {
			return true
		}
	}
	return false
}

// identityMiddleware resolves the caller identity once per request. Identity
// headers are only believed when the direct peer is a trusted proxy; anyone
// else is treated as signed out.
func identityMiddleware(detector *security.Detector, logger *log.Logger) func(http.Handler) http.Handler {
	logger = logger.WithComponent(log.ComponentSecurity)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := core.SignedOut()
			switch {
			case detector.IsTrustedSource(r):
				id = IdentityFromRequest(r)
			case hasIdentityHeaders(r):
				detector.RecordUntrustedIdentity()
				logger.WarnContext(r.Context(), "Ignoring identity headers from untrusted peer",
					log.FieldClientIP, detector.ExtractClientIP(r),
					log.FieldPath, r.URL.Path)
			}
			ctx := context.WithValue(r.Context(), identityKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityFrom returns the identity resolved by identityMiddleware.
func identityFrom(ctx context.Context) core.Identity {
	if id, ok := ctx.Value(identityKey{}).(core.Identity); ok {
		return id
	}
	return core.SignedOut()
}
