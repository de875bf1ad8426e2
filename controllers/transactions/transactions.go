package transactions

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/shashanks11/school-payment/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type TransactionsController struct {
	DB      *gorm.DB
	Gateway *utils.EdvironClient
}

func NewTransactionsController(db *gorm.DB, gateway *utils.EdvironClient) *TransactionsController {
	return &TransactionsController{DB: db, Gateway: gateway}
}

// TransactionView is the projected join of an order and its status row.
// Status fields are pointers so orders that never received a webhook keep
// null status columns instead of zero values.
type TransactionView struct {
	ID                uint       `json:"id"`
	CollectID         string     `json:"collect_id"`
	SchoolID          string     `json:"school_id"`
	CustomOrderID     string     `json:"custom_order_id"`
	GatewayName       string     `json:"gateway_name"`
	StudentName       string     `json:"student_name"`
	StudentID         string     `json:"student_id"`
	StudentEmail      string     `json:"student_email"`
	OrderAmount       *float64   `json:"order_amount"`
	TransactionAmount *float64   `json:"transaction_amount"`
	Status            *string    `json:"status"`
	PaymentMode       *string    `json:"payment_mode"`
	PaymentDetails    *string    `json:"payment_details"`
	BankReference     *string    `json:"bank_reference"`
	PaymentMessage    *string    `json:"payment_message"`
	PaymentTime       *time.Time `json:"payment_time"`
	ErrorMessage      *string    `json:"error_message"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

const joinedColumns = "orders.id, orders.collect_id, orders.school_id, orders.custom_order_id, " +
	"orders.gateway_name, orders.student_name, orders.student_id, orders.student_email, " +
	"order_statuses.order_amount, order_statuses.transaction_amount, order_statuses.status, " +
	"order_statuses.payment_mode, order_statuses.payment_details, order_statuses.bank_reference, " +
	"order_statuses.payment_message, order_statuses.payment_time, order_statuses.error_message, " +
	"orders.created_at, orders.updated_at"

// Allowed sort keys. payment_time lives on the joined status row; everything
// else sorts the order row itself.
var sortColumns = map[string]string{
	"createdAt":       "orders.created_at",
	"created_at":      "orders.created_at",
	"custom_order_id": "orders.custom_order_id",
	"collect_id":      "orders.collect_id",
	"school_id":       "orders.school_id",
	"gateway_name":    "orders.gateway_name",
	"payment_time":    "order_statuses.payment_time",
}

// joined builds the base orders ⟕ order_statuses query. LEFT JOIN so orders
// without a status row survive.
func (c *TransactionsController) joined() *gorm.DB {
	return c.DB.Table("orders").
		Select(joinedColumns).
		Joins("LEFT JOIN order_statuses ON order_statuses.collect_id = orders.collect_id")
}

func (c *TransactionsController) listTransactions(w http.ResponseWriter, r *http.Request, forcedSchoolID string) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := c.joined()

	if status := q.Get("status"); status != "" {
		query = query.Where("order_statuses.status = ?", status)
	}

	schoolID := forcedSchoolID
	if schoolID == "" {
		schoolID = q.Get("school_id")
	}
	if schoolID != "" {
		query = query.Where("orders.school_id = ?", schoolID)
	}

	if search := q.Get("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"orders.custom_order_id LIKE ? OR orders.collect_id LIKE ? OR orders.student_name LIKE ? OR orders.student_email LIKE ?",
			like, like, like, like,
		)
	}

	if startDate := q.Get("start_date"); startDate != "" {
		if t, err := parseDate(startDate); err == nil {
			query = query.Where("order_statuses.payment_time >= ?", t)
		}
	}
	if endDate := q.Get("end_date"); endDate != "" {
		if t, err := parseDate(endDate); err == nil {
			query = query.Where("order_statuses.payment_time <= ?", t)
		}
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		log.Printf("[transactions] count error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	sortCol, ok := sortColumns[q.Get("sort")]
	if !ok {
		sortCol = "orders.created_at"
	}
	direction := "DESC"
	if q.Get("order") == "asc" {
		direction = "ASC"
	}

	var rows []TransactionView
	if err := query.Order(sortCol + " " + direction).
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		log.Printf("[transactions] list error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if rows == nil {
		rows = []TransactionView{}
	}

	utils.WriteJSON(w, http.StatusOK, utils.PaginatedResponse{
		Success: true,
		Data:    rows,
		Pagination: utils.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: utils.TotalPages(total, limit),
		},
	})
}

// GetTransactions lists all joined transactions with filtering, sorting and pagination.
func (c *TransactionsController) GetTransactions(w http.ResponseWriter, r *http.Request) {
	c.listTransactions(w, r, "")
}

// GetTransactionsBySchool is GetTransactions with the school filter forced from the path.
func (c *TransactionsController) GetTransactionsBySchool(w http.ResponseWriter, r *http.Request) {
	c.listTransactions(w, r, mux.Vars(r)["schoolId"])
}

// GetTransactionStatus returns the joined record for a single collect id.
func (c *TransactionsController) GetTransactionStatus(w http.ResponseWriter, r *http.Request) {
	collectID := mux.Vars(r)["collectId"]

	var row TransactionView
	err := c.joined().Where("orders.collect_id = ?", collectID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Transaction not found"})
			return
		}
		log.Printf("[transactions] status lookup error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Data: row})
}

// CheckPaymentStatus asks the gateway directly for the live collect-request
// state, bypassing local rows. Any transport or gateway failure is reported
// as not found.
func (c *TransactionsController) CheckPaymentStatus(w http.ResponseWriter, r *http.Request) {
	collectRequestID := mux.Vars(r)["collectRequestId"]

	raw, err := c.Gateway.CollectRequestStatus(r.Context(), collectRequestID)
	if err != nil {
		log.Printf("[transactions] payment status check error: %v", err)
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Unable to fetch payment status"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Data: raw})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
