package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashanks11/school-payment/database"
	"github.com/shashanks11/school-payment/models"
	"github.com/shashanks11/school-payment/utils"
)

// AuthMiddleware guards routes with a bearer token. The embedded user id is
// resolved to a live users row on every request; a token whose user vanished
// is as unauthorized as no token at all.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

		userID, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			msg := "Invalid token"
			if strings.Contains(err.Error(), "expired") {
				msg = "Token expired, please login again"
			}
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: msg})
			return
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the authenticated user id injected by AuthMiddleware.
func GetUserID(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(utils.UserIDKey).(uint)
	return id, ok
}
