package webhooks

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/shashanks11/school-payment/middleware"
	"github.com/shashanks11/school-payment/models"
	"github.com/shashanks11/school-payment/utils"

	"gorm.io/gorm"
)

type WebhooksController struct {
	DB *gorm.DB
}

func NewWebhooksController(db *gorm.DB) *WebhooksController {
	return &WebhooksController{DB: db}
}

// OrderInfo mirrors the gateway's webhook body, misspellings included:
// it really does send "payemnt_details" and "Payment_message".
type OrderInfo struct {
	OrderID           string  `json:"order_id"`
	OrderAmount       float64 `json:"order_amount"`
	TransactionAmount float64 `json:"transaction_amount"`
	Gateway           string  `json:"gateway"`
	BankReference     string  `json:"bank_reference"`
	Status            string  `json:"status"`
	PaymentMode       string  `json:"payment_mode"`
	PaymentDetails    string  `json:"payemnt_details"`
	PaymentMessage    string  `json:"Payment_message"`
	PaymentTime       string  `json:"payment_time"`
	ErrorMessage      string  `json:"error_message"`
}

type WebhookPayload struct {
	Status    int       `json:"status"`
	OrderInfo OrderInfo `json:"order_info"`
}

// HandleWebhook ingests a gateway payment notification. The audit log row is
// written before any processing so unmatched or malformed webhooks are never
// lost. An unknown order is a soft failure, not an error; everything else
// that goes wrong mid-sequence surfaces as a 500 after being logged.
func (c *WebhooksController) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid body"})
		return
	}

	var payload WebhookPayload
	parseErr := json.Unmarshal(body, &payload)

	webhookLog := models.WebhookLog{
		Payload:   string(body),
		Status:    payload.Status,
		OrderID:   payload.OrderInfo.OrderID,
		Processed: false,
		IPAddress: middleware.ClientIP(r, middleware.TrustedProxies()),
	}
	if err := c.DB.Create(&webhookLog).Error; err != nil {
		log.Printf("[webhooks] failed to write webhook log: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Webhook processing failed"})
		return
	}

	if parseErr != nil {
		_ = c.DB.Model(&webhookLog).Updates(map[string]interface{}{"processed": false, "error": "Invalid payload"}).Error
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid payload"})
		return
	}

	info := payload.OrderInfo
	log.Printf("[webhooks] webhook received for order: %s", info.OrderID)

	var order models.Order
	if err := c.DB.Where("collect_id = ?", info.OrderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[webhooks] order not found for collect_id: %s", info.OrderID)
			_ = c.DB.Model(&webhookLog).Updates(map[string]interface{}{"processed": false, "error": "Order not found"}).Error
			utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: false, Message: "Order not found"})
			return
		}
		log.Printf("[webhooks] order lookup error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Webhook processing failed"})
		return
	}

	// Webhook-provided amounts win; fall back to whatever was stored before,
	// then to zero (and to order_amount for the transaction amount).
	var existing models.OrderStatus
	hasExisting := c.DB.Where("collect_id = ?", info.OrderID).First(&existing).Error == nil

	orderAmount := info.OrderAmount
	if orderAmount == 0 && hasExisting {
		orderAmount = existing.OrderAmount
	}
	transactionAmount := info.TransactionAmount
	if transactionAmount == 0 && hasExisting {
		transactionAmount = existing.TransactionAmount
	}
	if transactionAmount == 0 {
		transactionAmount = orderAmount
	}

	updates := map[string]interface{}{
		"order_amount":       orderAmount,
		"transaction_amount": transactionAmount,
		"payment_mode":       info.PaymentMode,
		"payment_details":    info.PaymentDetails,
		"bank_reference":     info.BankReference,
		"payment_message":    info.PaymentMessage,
		"status":             info.Status,
		"error_message":      info.ErrorMessage,
		"payment_time":       parsePaymentTime(info.PaymentTime),
	}

	// Upsert keyed on collect_id: a webhook may legitimately arrive before
	// the order-creation path wrote the initial status row.
	if hasExisting {
		err = c.DB.Model(&models.OrderStatus{}).Where("collect_id = ?", info.OrderID).Updates(updates).Error
	} else {
		status := models.OrderStatus{
			CollectID:         info.OrderID,
			OrderAmount:       orderAmount,
			TransactionAmount: transactionAmount,
			PaymentMode:       info.PaymentMode,
			PaymentDetails:    info.PaymentDetails,
			BankReference:     info.BankReference,
			PaymentMessage:    info.PaymentMessage,
			Status:            info.Status,
			ErrorMessage:      info.ErrorMessage,
			PaymentTime:       parsePaymentTime(info.PaymentTime),
		}
		err = c.DB.Create(&status).Error
	}
	if err != nil {
		log.Printf("[webhooks] order status upsert error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Webhook processing failed"})
		return
	}

	if err := c.DB.Model(&webhookLog).Update("processed", true).Error; err != nil {
		log.Printf("[webhooks] failed to mark webhook log processed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Webhook processing failed"})
		return
	}

	log.Printf("[webhooks] order status updated for: %s", info.OrderID)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Webhook processed successfully",
		Data: map[string]interface{}{
			"order_id": info.OrderID,
			"status":   info.Status,
		},
	})
}

// GetWebhookLogs returns the newest-first page of audit rows.
func (c *WebhooksController) GetWebhookLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := c.DB.Model(&models.WebhookLog{}).Count(&total).Error; err != nil {
		log.Printf("[webhooks] log count error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var logs []models.WebhookLog
	if err := c.DB.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error; err != nil {
		log.Printf("[webhooks] log list error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if logs == nil {
		logs = []models.WebhookLog{}
	}

	utils.WriteJSON(w, http.StatusOK, utils.PaginatedResponse{
		Success: true,
		Data:    logs,
		Pagination: utils.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: utils.TotalPages(total, limit),
		},
	})
}

func parsePaymentTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
