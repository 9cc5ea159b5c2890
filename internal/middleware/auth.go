package middleware

import (
	"net/http"

	"fruitbox-be/internal/auth"
	"fruitbox-be/internal/logger"
	"fruitbox-be/internal/utils"

	"go.uber.org/zap"
)

// RequireAdmin rejects requests without a valid admin token and stores the
// admin's identity on the request context.
func RequireAdmin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(secret, tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("Rejected admin token", zap.Error(err))
				utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if claims.Role != auth.RoleAdmin {
				utils.WriteJSONError(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := utils.SetActorContext(r.Context(), claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
