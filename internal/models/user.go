package models

import "time"

// User is a member as known to the user directory.
type User struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	DisplayName string    `gorm:"size:128;not null" json:"display_name"`
	Email       string    `gorm:"size:255;index" json:"email,omitempty"`
	City        string    `gorm:"size:128" json:"city,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
