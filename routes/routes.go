package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shashanks11/school-payment/controllers/auth"
	"github.com/shashanks11/school-payment/controllers/orders"
	"github.com/shashanks11/school-payment/controllers/transactions"
	"github.com/shashanks11/school-payment/controllers/webhooks"
	"github.com/shashanks11/school-payment/middleware"
	"github.com/shashanks11/school-payment/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func InitRouter(db *gorm.DB) *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for container health checks (root level)
	r.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "school-payment-api",
		})
	})).Methods(http.MethodGet)

	// CORS - frontend origin plus anything in CORS_ALLOWED_ORIGINS (comma-separated)
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if fe := os.Getenv("FRONTEND_URL"); fe != "" {
		origins = append(origins, fe)
	}
	if originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS"); originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/api").Subrouter()

	gateway := utils.NewEdvironClientFromEnv()
	ordersController := orders.NewOrdersController(db, gateway)
	transactionsController := transactions.NewTransactionsController(db, gateway)
	webhooksController := webhooks.NewWebhooksController(db)

	// Webhook rate limiter: the gateway is the only legitimate caller
	webhookLimiter := middleware.NewIPRateLimiter(500, time.Hour)

	// Auth
	api.Handle("/auth/register", http.HandlerFunc(auth.RegisterHandler)).Methods(http.MethodPost)
	api.Handle("/auth/login", http.HandlerFunc(auth.LoginHandler)).Methods(http.MethodPost)
	api.Handle("/auth/profile", middleware.AuthMiddleware(http.HandlerFunc(auth.ProfileHandler))).Methods(http.MethodGet)
	api.Handle("/auth/logout", middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutHandler))).Methods(http.MethodPost)

	// Orders
	api.Handle("/orders/create-payment", middleware.AuthMiddleware(http.HandlerFunc(ordersController.CreatePayment))).Methods(http.MethodPost)

	// Transactions
	api.Handle("/transactions", middleware.AuthMiddleware(http.HandlerFunc(transactionsController.GetTransactions))).Methods(http.MethodGet)
	api.Handle("/transactions/school/{schoolId}", middleware.AuthMiddleware(http.HandlerFunc(transactionsController.GetTransactionsBySchool))).Methods(http.MethodGet)
	api.Handle("/transactions/status/{collectId}", middleware.AuthMiddleware(http.HandlerFunc(transactionsController.GetTransactionStatus))).Methods(http.MethodGet)
	api.Handle("/transactions/check-payment/{collectRequestId}", middleware.AuthMiddleware(http.HandlerFunc(transactionsController.CheckPaymentStatus))).Methods(http.MethodGet)

	// Webhooks - the gateway calls this, no auth
	api.Handle("/webhooks", webhookLimiter.Middleware(http.HandlerFunc(webhooksController.HandleWebhook))).Methods(http.MethodPost)
	api.Handle("/webhooks/logs", middleware.AuthMiddleware(http.HandlerFunc(webhooksController.GetWebhookLogs))).Methods(http.MethodGet)

	return r
}
