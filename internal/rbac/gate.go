package rbac

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wiratama/access-management/internal"
	"github.com/wiratama/access-management/internal/auth"
)

// TokenVerifier is the slice of the token codec the gate depends on.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// GrantResolver resolves fresh role and permission codes for a user.
type GrantResolver interface {
	GrantsOf(userID int64) (roleCodes, permissionCodes []string, err error)
}

// DenialRecorder receives every gate rejection for the audit trail.
// Implementations must not block the request path.
type DenialRecorder interface {
	RecordDenial(ctx context.Context, method, uri string, userID int64, code, message string)
}

// Gate is the per-request authorization orchestrator: it extracts the
// bearer token, verifies it, resolves fresh grants from storage and runs
// the decision engine. Claim-embedded permissions are never consulted.
type Gate struct {
	verifier TokenVerifier
	resolver GrantResolver
	audit    DenialRecorder
	logger   *slog.Logger
}

func NewGate(verifier TokenVerifier, resolver GrantResolver, audit DenialRecorder, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		verifier: verifier,
		resolver: resolver,
		audit:    audit,
		logger:   logger,
	}
}

// Guard returns middleware enforcing the given requirement. On success the
// caller identity is attached to the request context; every failure path
// rejects, persistence errors included — the gate fails closed.
func (g *Gate) Guard(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				g.reject(w, r, 0, internal.ErrTokenMissing)
				return
			}

			claims, err := g.verifier.Verify(token)
			if err != nil {
				if err == auth.ErrTokenExpired {
					g.reject(w, r, 0, internal.ErrTokenExpired)
				} else {
					g.reject(w, r, 0, internal.ErrTokenInvalid)
				}
				return
			}

			identity := &internal.Identity{
				UserID:   claims.UserID,
				Username: claims.Subject,
			}

			if !req.IsEmpty() {
				roleCodes, permissionCodes, err := g.resolver.GrantsOf(claims.UserID)
				if err != nil {
					g.logger.ErrorContext(r.Context(), "grant resolution failed",
						"user_id", claims.UserID, "error", err)
					g.reject(w, r, claims.UserID, internal.NewGrantLookupFailedError(err))
					return
				}

				verdict := Decide(req, roleCodes, permissionCodes)
				if !verdict.Allowed {
					g.logger.WarnContext(r.Context(), "access denied",
						"user_id", claims.UserID,
						"reason", verdict.Reason,
						"required_roles", req.Roles,
						"required_permissions", req.Permissions,
						"mode", req.Mode)
					g.reject(w, r, claims.UserID, verdictError(verdict))
					return
				}
			}

			ctx := internal.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verdictError(v Verdict) *internal.AppError {
	if v.Reason == ReasonMissingRole {
		return internal.ErrMissingRequiredRole
	}
	return internal.ErrMissingRequiredPermission
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, userID int64, appErr *internal.AppError) {
	if g.audit != nil {
		g.audit.RecordDenial(r.Context(), r.Method, r.URL.RequestURI(), userID, string(appErr.Code), appErr.Message)
	}

	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("failed to encode rejection response", "error", err)
	}
}

// bearerToken extracts the token from the Authorization header; empty when
// the header is absent or the Bearer prefix is malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return header[7:]
}
