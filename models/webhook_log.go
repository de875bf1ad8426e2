package models

import "time"

// WebhookLog is an append-only audit row written before any webhook
// processing happens, so malformed or unmatched notifications are never lost.
type WebhookLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	Status    int       `gorm:"not null" json:"status"`
	OrderID   string    `gorm:"size:191;index" json:"order_id"`
	Processed bool      `gorm:"default:false;index" json:"processed"`
	Error     string    `gorm:"size:255" json:"error"`
	IPAddress string    `gorm:"size:64" json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs"
}
