package middleware

import (
	"net/http"

	"customkeeps/internal/auth"
	"customkeeps/internal/logger"
	"customkeeps/internal/utils"

	"go.uber.org/zap"
)

// Auth resolves the bearer token into the request context. Requests without
// a token pass through anonymous; a token that fails verification is
// rejected.
func Auth(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := issuer.Parse(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("token rejected",
					zap.String("layer", "middleware"),
					zap.Error(err),
				)
				utils.WriteJSONErrorCode(w, "invalid or expired token", utils.CodeUnauthorized, http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			ctx = logger.WithFields(ctx, zap.Uint("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			utils.WriteJSONErrorCode(w, "authentication required", utils.CodeUnauthorized, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !utils.IsAdmin(r.Context()) {
			utils.WriteJSONErrorCode(w, "admin only", utils.CodeForbidden, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
