package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/shashanks11/school-payment/database"
	"github.com/shashanks11/school-payment/middleware"
	"github.com/shashanks11/school-payment/models"
	"github.com/shashanks11/school-payment/utils"
)

func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// LogoutHandler revokes the presented token's jti. Revocation is best effort:
// without a configured Redis store the token simply ages out at expiry.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	authz := r.Header.Get("Authorization")
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

	jti, ttl := utils.TokenJTI(tokenStr)
	if jti != "" {
		if err := utils.RevokeJTI(jti, ttl); err != nil {
			log.Printf("[logout] token revocation skipped: %v", err)
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}
