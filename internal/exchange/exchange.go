// Package exchange owns exchange requests and their state machine.
//
//	pending --accept(owner)--> accepted
//	pending --refuse(owner)--> refused
//	pending --cancel(requester)--> cancelled
//	accepted --(second review)--> completed
//
// The last edge belongs to the review package; no user action here can
// reach completed. Every mutation runs in one transaction that locks the
// request row, checks the guard, and writes with a conditional update on
// the expected status.
package exchange

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/guard"
	"github.com/zulandar/swapmeet/internal/listing"
	"github.com/zulandar/swapmeet/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Field limits.
const (
	MaxProposalLen = 500
	MaxNoteLen     = 1000
)

// ValidTransitions maps each status to the statuses reachable from it.
var ValidTransitions = map[string][]string{
	models.StatusPending:  {models.StatusAccepted, models.StatusRefused, models.StatusCancelled},
	models.StatusAccepted: {models.StatusCompleted},
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to string) bool {
	for _, s := range ValidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CreateOpts holds parameters for opening a new request.
type CreateOpts struct {
	RequesterID string
	Target      models.Target
	Proposal    string
	Note        string
	ProposedAt  time.Time
}

func (o CreateOpts) validate(now time.Time) error {
	if strings.TrimSpace(o.RequesterID) == "" {
		return fault.Validation("requester is required")
	}
	if err := o.Target.Validate(); err != nil {
		return fault.Validation("invalid target: %v", err)
	}
	if strings.TrimSpace(o.Proposal) == "" {
		return fault.Validation("proposal is required")
	}
	if utf8.RuneCountInString(o.Proposal) > MaxProposalLen {
		return fault.Validation("proposal exceeds %d characters", MaxProposalLen)
	}
	if strings.TrimSpace(o.Note) == "" {
		return fault.Validation("message is required")
	}
	if utf8.RuneCountInString(o.Note) > MaxNoteLen {
		return fault.Validation("message exceeds %d characters", MaxNoteLen)
	}
	if o.ProposedAt.IsZero() {
		return fault.Validation("proposed date is required")
	}
	if !o.ProposedAt.After(now) {
		return fault.Validation("proposed date %s is not in the future", o.ProposedAt.Format(time.RFC3339))
	}
	return nil
}

// NewID returns a time-sortable request id.
func NewID() string {
	return ulid.Make().String()
}

// Create opens a pending request against an available item or skill owned
// by someone else. The owner is taken from the listing.
func Create(db *gorm.DB, opts CreateOpts) (*models.ExchangeRequest, error) {
	now := time.Now()
	if err := opts.validate(now); err != nil {
		return nil, err
	}

	var req models.ExchangeRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		l, err := listing.Find(tx, opts.Target)
		if err != nil {
			return err
		}
		if l.OwnerID == opts.RequesterID {
			return fault.InvalidRequest("you cannot request your own %s", opts.Target.Kind)
		}
		if !l.Available {
			return fault.InvalidRequest("%s %s is not available", opts.Target.Kind, opts.Target.ID)
		}

		req = models.ExchangeRequest{
			ID:          NewID(),
			RequesterID: opts.RequesterID,
			OwnerID:     l.OwnerID,
			TargetKind:  opts.Target.Kind,
			TargetID:    opts.Target.ID,
			Proposal:    strings.TrimSpace(opts.Proposal),
			Note:        strings.TrimSpace(opts.Note),
			ProposedAt:  opts.ProposedAt,
			Status:      models.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&req).Error; err != nil {
			return fmt.Errorf("exchange: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Accept moves a pending request to accepted and takes the listing off the
// market in the same transaction. Only the owner may accept.
func Accept(db *gorm.DB, id, actorID string) (*models.ExchangeRequest, error) {
	return transition(db, id, actorID, "accept", models.StatusAccepted, guard.RequireOwner,
		func(tx *gorm.DB, r *models.ExchangeRequest) error {
			err := listing.MarkUnavailable(tx, r.Target())
			if errors.Is(err, listing.ErrUnavailable) {
				return fault.InvalidState("%s %s is no longer available", r.TargetKind, r.TargetID)
			}
			return err
		})
}

// Refuse moves a pending request to refused. Only the owner may refuse.
// The listing is left untouched.
func Refuse(db *gorm.DB, id, actorID string) (*models.ExchangeRequest, error) {
	return transition(db, id, actorID, "refuse", models.StatusRefused, guard.RequireOwner, nil)
}

// Cancel moves a pending request to cancelled. Only the requester may cancel.
func Cancel(db *gorm.DB, id, actorID string) (*models.ExchangeRequest, error) {
	return transition(db, id, actorID, "cancel", models.StatusCancelled, guard.RequireRequester, nil)
}

// transition runs a user-driven status change out of pending. authorize runs
// after the row is locked and before the status check; after runs once the
// status write has landed.
func transition(db *gorm.DB, id, actorID, action, to string,
	authorize func(r *models.ExchangeRequest, userID, action string) error,
	after func(tx *gorm.DB, r *models.ExchangeRequest) error,
) (*models.ExchangeRequest, error) {
	if id == "" {
		return nil, fault.Validation("request id is required")
	}
	if actorID == "" {
		return nil, fault.Unauthorized("no user is signed in")
	}

	var req *models.ExchangeRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		r, err := Lock(tx, id)
		if err != nil {
			return err
		}
		if err := authorize(r, actorID, action); err != nil {
			return err
		}
		if !CanTransition(r.Status, to) {
			return fault.InvalidTransition("cannot %s request %s: status is %s", action, id, r.Status)
		}

		now := time.Now()
		result := tx.Model(&models.ExchangeRequest{}).
			Where("id = ? AND status = ?", id, r.Status).
			Updates(map[string]interface{}{"status": to, "updated_at": now})
		if result.Error != nil {
			return fmt.Errorf("exchange: %s %s: %w", action, id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fault.InvalidTransition("cannot %s request %s: status changed concurrently", action, id)
		}
		r.Status = to
		r.UpdatedAt = now

		if after != nil {
			if err := after(tx, r); err != nil {
				return err
			}
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Lock reads a request inside tx with SELECT ... FOR UPDATE. Drivers
// without row locks (SQLite) drop the clause and rely on writer
// serialization.
func Lock(tx *gorm.DB, id string) (*models.ExchangeRequest, error) {
	var r models.ExchangeRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("exchange request %s not found", id)
		}
		return nil, fmt.Errorf("exchange: lock %s: %w", id, err)
	}
	return &r, nil
}
