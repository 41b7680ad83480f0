package models

import "time"

// Message is a chat entry exchanged between the two participants of a request.
// IDs are storage-assigned and increase with insertion order.
type Message struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID   string    `gorm:"size:32;not null;index" json:"request_id"`
	SenderID    string    `gorm:"size:36;not null" json:"sender_id"`
	RecipientID string    `gorm:"size:36;not null;index" json:"recipient_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Read        bool      `gorm:"default:false;index" json:"read"`
	SentAt      time.Time `json:"sent_at"`
}
