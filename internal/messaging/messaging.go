// Package messaging is the chat gate of an exchange request. Participants
// may write only while the request is accepted; they may read the history
// in any status.
package messaging

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/swapmeet/internal/exchange"
	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/guard"
	"github.com/zulandar/swapmeet/internal/models"
	"gorm.io/gorm"
)

// CanSend reports whether userID may currently post on r.
func CanSend(r *models.ExchangeRequest, userID string) bool {
	return guard.IsParticipant(r, userID) && r.Status == models.StatusAccepted
}

// Send appends a message from senderID to the other participant.
func Send(db *gorm.DB, requestID, senderID, content string) (*models.Message, error) {
	if requestID == "" {
		return nil, fault.Validation("request id is required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fault.Validation("message content is required")
	}
	if senderID == "" {
		return nil, fault.Unauthorized("no user is signed in")
	}

	var msg models.Message
	err := db.Transaction(func(tx *gorm.DB) error {
		r, err := exchange.Lock(tx, requestID)
		if err != nil {
			return err
		}
		if err := guard.RequireParticipant(r, senderID, "send messages on"); err != nil {
			return err
		}
		if r.Status != models.StatusAccepted {
			return fault.InvalidState("messaging on request %s is closed: status is %s", requestID, r.Status)
		}
		recipient, _ := guard.Counterpart(r, senderID)

		msg = models.Message{
			RequestID:   requestID,
			SenderID:    senderID,
			RecipientID: recipient,
			Content:     content,
			SentAt:      time.Now(),
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("messaging: send on %s: %w", requestID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// History returns every message of a request in insertion order.
// Only participants may read it.
func History(db *gorm.DB, requestID, readerID string) ([]models.Message, error) {
	if _, err := participantRequest(db, requestID, readerID, "read messages of"); err != nil {
		return nil, err
	}
	var msgs []models.Message
	if err := db.Where("request_id = ?", requestID).Order("id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("messaging: history %s: %w", requestID, err)
	}
	return msgs, nil
}

// MarkRead flags every unread message addressed to readerID on the request
// as read and returns how many changed.
func MarkRead(db *gorm.DB, requestID, readerID string) (int64, error) {
	if _, err := participantRequest(db, requestID, readerID, "read messages of"); err != nil {
		return 0, err
	}
	result := db.Model(&models.Message{}).
		Where("request_id = ? AND recipient_id = ? AND `read` = ?", requestID, readerID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("messaging: mark read %s: %w", requestID, result.Error)
	}
	return result.RowsAffected, nil
}

// UnreadCount returns how many messages addressed to userID are unread.
func UnreadCount(db *gorm.DB, userID string) (int64, error) {
	var n int64
	if err := db.Model(&models.Message{}).
		Where("recipient_id = ? AND `read` = ?", userID, false).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("messaging: unread count %s: %w", userID, err)
	}
	return n, nil
}

func participantRequest(db *gorm.DB, requestID, userID, action string) (*models.ExchangeRequest, error) {
	if requestID == "" {
		return nil, fault.Validation("request id is required")
	}
	if userID == "" {
		return nil, fault.Unauthorized("no user is signed in")
	}
	var r models.ExchangeRequest
	if err := db.Where("id = ?", requestID).Limit(1).Find(&r).Error; err != nil {
		return nil, fmt.Errorf("messaging: load request %s: %w", requestID, err)
	}
	if r.ID == "" {
		return nil, fault.NotFound("exchange request %s not found", requestID)
	}
	if err := guard.RequireParticipant(&r, userID, action); err != nil {
		return nil, err
	}
	return &r, nil
}
