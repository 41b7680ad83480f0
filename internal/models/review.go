package models

import "time"

// Review is a rating one participant gives the other for a request.
// At most one review exists per (request, author).
type Review struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID  string     `gorm:"size:32;not null;uniqueIndex:idx_reviews_request_author" json:"request_id"`
	AuthorID   string     `gorm:"size:36;not null;uniqueIndex:idx_reviews_request_author" json:"author_id"`
	SubjectID  string     `gorm:"size:36;not null;index" json:"subject_id"`
	Rating     int        `gorm:"not null" json:"rating"`
	Comment    string     `gorm:"type:text;not null" json:"comment"`
	Visible    bool       `gorm:"not null;default:true;index" json:"visible"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}
