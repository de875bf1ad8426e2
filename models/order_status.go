package models

import "time"

// OrderStatus tracks the payment state for a collect request. It correlates
// to Order by value equality on collect_id; there is no foreign key. One
// logical row per collect_id, enforced by the webhook upsert path rather
// than a uniqueness constraint.
type OrderStatus struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	CollectID         string     `gorm:"size:191;not null;index" json:"collect_id"`
	OrderAmount       float64    `gorm:"type:decimal(15,2);not null;default:0" json:"order_amount"`
	TransactionAmount float64    `gorm:"type:decimal(15,2);not null;default:0" json:"transaction_amount"`
	PaymentMode       string     `gorm:"size:50" json:"payment_mode"`
	PaymentDetails    string     `gorm:"type:text" json:"payment_details"`
	BankReference     string     `gorm:"size:191" json:"bank_reference"`
	PaymentMessage    string     `gorm:"size:255" json:"payment_message"`
	Status            string     `gorm:"size:30;not null;default:'pending';index" json:"status"`
	ErrorMessage      string     `gorm:"size:255" json:"error_message"`
	PaymentTime       *time.Time `gorm:"index" json:"payment_time"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (OrderStatus) TableName() string {
	return "order_statuses"
}
