package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/shashanks11/school-payment/utils"
)

// ValidateJSON decodes a JSON payload into dst and runs utils.ValidateStruct.
// On any failure it writes the error response itself and returns a non-nil
// error so the handler can simply return.
func ValidateJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return err
	}
	if err := utils.ValidateStruct(dst); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return err
	}
	return nil
}
