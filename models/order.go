package models

import "time"

// Order is created once per successful collect request. CollectID is the
// gateway-assigned identifier and is set immediately from the gateway
// response, never patched in afterwards.
type Order struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SchoolID      string    `gorm:"size:191;not null;index" json:"school_id"`
	TrusteeID     string    `gorm:"size:191;not null" json:"trustee_id"`
	StudentName   string    `gorm:"size:100;not null" json:"student_name"`
	StudentID     string    `gorm:"size:100;not null" json:"student_id"`
	StudentEmail  string    `gorm:"size:191;not null" json:"student_email"`
	GatewayName   string    `gorm:"size:50;not null" json:"gateway_name"`
	CustomOrderID string    `gorm:"size:191;uniqueIndex" json:"custom_order_id"`
	CollectID     string    `gorm:"size:191;index" json:"collect_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
