package middleware

import (
	"net/http"
	"strings"

	"github.com/orderdesk/orderdesk-backend/api/responses"
	pkgauth "github.com/orderdesk/orderdesk-backend/pkg/auth"
	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
)

// Auth validates a bearer service token and seeds the request context with
// the caller's role and, for operators, their id.
func Auth(cfg config.AuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseServiceToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithActorRole(r.Context(), claims.Role)
			if claims.OperatorID != 0 {
				ctx = WithOperatorID(ctx, claims.OperatorID)
			}

			if logg != nil {
				fields := map[string]any{"actor_role": string(claims.Role)}
				if claims.OperatorID != 0 {
					fields["operator_id"] = claims.OperatorID
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOperator rejects requests whose token was not minted for the
// operator console.
func RequireOperator(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := ActorRoleFromContext(r.Context())
			if !ok || role != enums.ActorRoleOperator {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "operator access required"))
				return
			}
			if _, ok := OperatorIDFromContext(r.Context()); !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "operator identity missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
