package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shashanks11/school-payment/models"
	"github.com/shashanks11/school-payment/utils"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderStatus{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testGatewayClient(serverURL string) *utils.EdvironClient {
	return &utils.EdvironClient{
		BaseURL:     serverURL,
		APIKey:      "test-api-key",
		PGKey:       "test-pg-key",
		SchoolID:    "school-1",
		FrontendURL: "http://localhost:5173",
		HTTP:        &http.Client{Timeout: 5 * time.Second},
	}
}

func createPaymentRequest(t *testing.T, amount float64) *http.Request {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{
		"school_id":  "school-1",
		"trustee_id": "trustee-1",
		"amount":     amount,
		"student_info": map[string]string{
			"name":  "Ravi Kumar",
			"id":    "STU-42",
			"email": "ravi@school.edu",
		},
		"gateway_name": "edviron",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/orders/create-payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreatePaymentPersistsOrderAndStatus(t *testing.T) {
	db := setupTestDB(t)

	var gotAuth string
	var gotSign string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotSign = body["sign"]
		_ = json.NewEncoder(w).Encode(map[string]string{
			"collect_request_id":  "cr_123",
			"collect_request_url": "https://pay.example/cr_123",
		})
	}))
	defer gateway.Close()

	c := NewOrdersController(db, testGatewayClient(gateway.URL))

	rec := httptest.NewRecorder()
	c.CreatePayment(rec, createPaymentRequest(t, 500))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	if gotAuth != "Bearer test-api-key" {
		t.Fatalf("gateway auth header: %q", gotAuth)
	}

	// The sign field is an HS256 JWT over the collect-request fields.
	token, err := jwt.Parse(gotSign, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-pg-key"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("sign did not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["school_id"] != "school-1" || claims["amount"] != "500" {
		t.Fatalf("unexpected sign claims: %v", claims)
	}

	var order models.Order
	if err := db.Where("collect_id = ?", "cr_123").First(&order).Error; err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	var status models.OrderStatus
	if err := db.Where("collect_id = ?", "cr_123").First(&status).Error; err != nil {
		t.Fatalf("order status not persisted: %v", err)
	}
	if status.Status != "pending" {
		t.Fatalf("expected pending status, got %s", status.Status)
	}
	if status.OrderAmount != 500 {
		t.Fatalf("expected order_amount 500, got %v", status.OrderAmount)
	}
	if order.CollectID != status.CollectID {
		t.Fatalf("collect_id mismatch: %s vs %s", order.CollectID, status.CollectID)
	}

	var resp struct {
		Data struct {
			CustomOrderID    string `json:"custom_order_id"`
			CollectRequestID string `json:"collect_request_id"`
			PaymentURL       string `json:"payment_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.CollectRequestID != "cr_123" {
		t.Fatalf("collect_request_id: %s", resp.Data.CollectRequestID)
	}
	if resp.Data.PaymentURL != "https://pay.example/cr_123" {
		t.Fatalf("payment_url: %s", resp.Data.PaymentURL)
	}
	if resp.Data.CustomOrderID != order.CustomOrderID {
		t.Fatalf("custom_order_id mismatch: %s vs %s", resp.Data.CustomOrderID, order.CustomOrderID)
	}
}

func TestCreatePaymentMissingCollectIDPersistsNothing(t *testing.T) {
	db := setupTestDB(t)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"collect_request_url": "https://pay.example/unknown",
		})
	}))
	defer gateway.Close()

	c := NewOrdersController(db, testGatewayClient(gateway.URL))

	rec := httptest.NewRecorder()
	c.CreatePayment(rec, createPaymentRequest(t, 500))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var orderCount, statusCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderStatus{}).Count(&statusCount)
	if orderCount != 0 || statusCount != 0 {
		t.Fatalf("expected nothing persisted, got %d orders / %d statuses", orderCount, statusCount)
	}
}

func TestCreatePaymentMissingPaymentURLTolerated(t *testing.T) {
	db := setupTestDB(t)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"collect_request_id": "cr_456",
		})
	}))
	defer gateway.Close()

	c := NewOrdersController(db, testGatewayClient(gateway.URL))

	rec := httptest.NewRecorder()
	c.CreatePayment(rec, createPaymentRequest(t, 250))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data["payment_url"] != nil {
		t.Fatalf("expected null payment_url, got %v", resp.Data["payment_url"])
	}

	var order models.Order
	if err := db.Where("collect_id = ?", "cr_456").First(&order).Error; err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
}

func TestCreatePaymentSurfacesGatewayError(t *testing.T) {
	db := setupTestDB(t)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "school not onboarded"})
	}))
	defer gateway.Close()

	c := NewOrdersController(db, testGatewayClient(gateway.URL))

	rec := httptest.NewRecorder()
	c.CreatePayment(rec, createPaymentRequest(t, 500))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp utils.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "school not onboarded" {
		t.Fatalf("expected gateway message surfaced, got %q", resp.Message)
	}

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("expected no order persisted, got %d", orderCount)
	}
}
