package orders

import (
	"log"
	"net/http"

	"github.com/shashanks11/school-payment/middleware"
	"github.com/shashanks11/school-payment/models"
	"github.com/shashanks11/school-payment/utils"

	"gorm.io/gorm"
)

type OrdersController struct {
	DB      *gorm.DB
	Gateway *utils.EdvironClient
}

func NewOrdersController(db *gorm.DB, gateway *utils.EdvironClient) *OrdersController {
	return &OrdersController{DB: db, Gateway: gateway}
}

type StudentInfo struct {
	Name  string `json:"name" validate:"required"`
	ID    string `json:"id" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type CreatePaymentRequest struct {
	SchoolID    string      `json:"school_id" validate:"required"`
	TrusteeID   string      `json:"trustee_id" validate:"required"`
	Amount      float64     `json:"amount" validate:"required"`
	StudentInfo StudentInfo `json:"student_info" validate:"required"`
	GatewayName string      `json:"gateway_name" validate:"required"`
	CallbackURL string      `json:"callback_url"`
}

// CreatePayment forwards a signed collect request to the gateway and, on
// success, persists the Order and its initial pending OrderStatus. There is
// no compensating rollback if the gateway call succeeds but persistence
// fails; reconciliation is a separate concern.
func (c *OrdersController) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	customOrderID := utils.GenerateOrderID()

	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = c.Gateway.FrontendURL + "/payment-callback"
	}

	result, raw, err := c.Gateway.CreateCollectRequest(r.Context(), req.SchoolID, req.Amount, callbackURL)
	if err != nil {
		log.Printf("[orders] payment creation error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	if result.CollectRequestID == "" {
		log.Printf("[orders] collect_request_id missing in gateway response: %s", string(raw))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "collect_request_id not received from payment API"})
		return
	}

	paymentURL := result.PaymentURL()
	if paymentURL == "" {
		log.Printf("[orders] payment URL not received in gateway response for %s", result.CollectRequestID)
	}

	order := models.Order{
		SchoolID:      req.SchoolID,
		TrusteeID:     req.TrusteeID,
		StudentName:   req.StudentInfo.Name,
		StudentID:     req.StudentInfo.ID,
		StudentEmail:  req.StudentInfo.Email,
		GatewayName:   req.GatewayName,
		CustomOrderID: customOrderID,
		CollectID:     result.CollectRequestID,
	}
	if err := c.DB.Create(&order).Error; err != nil {
		log.Printf("[orders] DB Create order error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create payment"})
		return
	}

	status := models.OrderStatus{
		CollectID:         result.CollectRequestID,
		OrderAmount:       req.Amount,
		TransactionAmount: req.Amount,
		Status:            "pending",
	}
	if err := c.DB.Create(&status).Error; err != nil {
		log.Printf("[orders] DB Create order status error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create payment"})
		return
	}

	log.Printf("[orders] order created with collect_id: %s", result.CollectRequestID)

	var paymentURLField interface{}
	if paymentURL != "" {
		paymentURLField = paymentURL
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Payment link generated successfully",
		Data: map[string]interface{}{
			"custom_order_id":    customOrderID,
			"collect_request_id": result.CollectRequestID,
			"payment_url":        paymentURLField,
			"order_id":           order.ID,
			"raw_response":       raw,
		},
	})
}
