package exchange

import (
	"errors"
	"fmt"

	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/guard"
	"github.com/zulandar/swapmeet/internal/models"
	"gorm.io/gorm"
)

// Get loads a request with its messages in insertion order.
func Get(db *gorm.DB, id string) (*models.ExchangeRequest, error) {
	if id == "" {
		return nil, fault.Validation("request id is required")
	}
	var r models.ExchangeRequest
	err := db.Preload("Messages", func(q *gorm.DB) *gorm.DB {
		return q.Order("id ASC")
	}).Where("id = ?", id).First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("exchange request %s not found", id)
		}
		return nil, fmt.Errorf("exchange: get %s: %w", id, err)
	}
	return &r, nil
}

// View is Get restricted to the two participants.
func View(db *gorm.DB, id, viewerID string) (*models.ExchangeRequest, error) {
	r, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if err := guard.RequireParticipant(r, viewerID, "view"); err != nil {
		return nil, err
	}
	return r, nil
}

// ListSent returns the requests userID initiated, newest first.
func ListSent(db *gorm.DB, userID string) ([]models.ExchangeRequest, error) {
	var reqs []models.ExchangeRequest
	if err := db.Where("requester_id = ?", userID).
		Order("created_at DESC, id DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("exchange: list sent by %s: %w", userID, err)
	}
	return reqs, nil
}

// ListReceived returns the requests addressed to userID, newest first.
// An empty status returns every status.
func ListReceived(db *gorm.DB, userID, status string) ([]models.ExchangeRequest, error) {
	q := db.Where("owner_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reqs []models.ExchangeRequest
	if err := q.Order("created_at DESC, id DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("exchange: list received by %s: %w", userID, err)
	}
	return reqs, nil
}

// Active returns the accepted requests userID takes part in.
func Active(db *gorm.DB, userID string) ([]models.ExchangeRequest, error) {
	return byParticipantAndStatus(db, userID, models.StatusAccepted)
}

// Completed returns the completed requests userID takes part in.
func Completed(db *gorm.DB, userID string) ([]models.ExchangeRequest, error) {
	return byParticipantAndStatus(db, userID, models.StatusCompleted)
}

func byParticipantAndStatus(db *gorm.DB, userID, status string) ([]models.ExchangeRequest, error) {
	var reqs []models.ExchangeRequest
	if err := db.Where("(requester_id = ? OR owner_id = ?) AND status = ?", userID, userID, status).
		Order("updated_at DESC, id DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("exchange: list %s for %s: %w", status, userID, err)
	}
	return reqs, nil
}

// CountPending returns how many pending requests await userID's answer.
func CountPending(db *gorm.DB, userID string) (int64, error) {
	return CountReceived(db, userID, models.StatusPending)
}

// CountReceived counts the requests addressed to userID in status, or in
// any status when status is empty.
func CountReceived(db *gorm.DB, userID, status string) (int64, error) {
	return countBy(db, "owner_id", userID, status)
}

// CountSent counts the requests userID initiated in status, or in any
// status when status is empty.
func CountSent(db *gorm.DB, userID, status string) (int64, error) {
	return countBy(db, "requester_id", userID, status)
}

func countBy(db *gorm.DB, column, userID, status string) (int64, error) {
	q := db.Model(&models.ExchangeRequest{}).Where(column+" = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("exchange: count by %s for %s: %w", column, userID, err)
	}
	return n, nil
}
