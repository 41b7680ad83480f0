// Package review records the ratings participants give each other and
// derives completion: the second review of an accepted request completes
// it, in the same transaction as the insert.
package review

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/zulandar/swapmeet/internal/exchange"
	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/guard"
	"github.com/zulandar/swapmeet/internal/models"
	"gorm.io/gorm"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10

	// EditWindow is how long after creation an author may edit a review.
	EditWindow = 24 * time.Hour
)

// SubmitOpts holds the fields of a new review.
type SubmitOpts struct {
	RequestID string
	AuthorID  string
	Rating    int
	Comment   string
}

// Result is a submitted review plus whether it completed the request.
type Result struct {
	Review    *models.Review
	Completed bool
}

func validate(rating int, comment string) error {
	if rating < MinRating || rating > MaxRating {
		return fault.Validation("rating must be between %d and %d, got %d", MinRating, MaxRating, rating)
	}
	if utf8.RuneCountInString(strings.TrimSpace(comment)) < MinCommentLength {
		return fault.Validation("comment must be at least %d characters", MinCommentLength)
	}
	return nil
}

// reviewable reports whether a request in status may receive reviews.
// Completed stays open so that a late submission is reported as a
// duplicate rather than a state error.
func reviewable(status string) bool {
	return status == models.StatusAccepted || status == models.StatusCompleted
}

// Submit records the author's review of the other participant. When it is
// the second review of an accepted request, the request moves to completed
// before the transaction commits.
func Submit(db *gorm.DB, opts SubmitOpts) (*Result, error) {
	if opts.RequestID == "" {
		return nil, fault.Validation("request id is required")
	}
	if err := validate(opts.Rating, opts.Comment); err != nil {
		return nil, err
	}
	if opts.AuthorID == "" {
		return nil, fault.Unauthorized("no user is signed in")
	}

	res := &Result{}
	err := db.Transaction(func(tx *gorm.DB) error {
		r, err := exchange.Lock(tx, opts.RequestID)
		if err != nil {
			return err
		}
		if err := guard.RequireParticipant(r, opts.AuthorID, "review"); err != nil {
			return err
		}
		if !reviewable(r.Status) {
			return fault.InvalidState("request %s cannot be reviewed: status is %s", r.ID, r.Status)
		}

		reviewed, err := HasReviewed(tx, r.ID, opts.AuthorID)
		if err != nil {
			return err
		}
		if reviewed {
			return fault.DuplicateReview("user %s already reviewed request %s", opts.AuthorID, r.ID)
		}

		subject, _ := guard.Counterpart(r, opts.AuthorID)
		rev := models.Review{
			RequestID: r.ID,
			AuthorID:  opts.AuthorID,
			SubjectID: subject,
			Rating:    opts.Rating,
			Comment:   strings.TrimSpace(opts.Comment),
			Visible:   true,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&rev).Error; err != nil {
			if isDuplicateKey(err) {
				return fault.DuplicateReview("user %s already reviewed request %s", opts.AuthorID, r.ID)
			}
			return fmt.Errorf("review: submit on %s: %w", r.ID, err)
		}
		res.Review = &rev

		var count int64
		if err := tx.Model(&models.Review{}).Where("request_id = ?", r.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("review: count for %s: %w", r.ID, err)
		}
		if count == 2 && r.Status == models.StatusAccepted {
			result := tx.Model(&models.ExchangeRequest{}).
				Where("id = ? AND status = ?", r.ID, models.StatusAccepted).
				Updates(map[string]interface{}{"status": models.StatusCompleted, "updated_at": time.Now()})
			if result.Error != nil {
				return fmt.Errorf("review: complete %s: %w", r.ID, result.Error)
			}
			res.Completed = result.RowsAffected == 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// isDuplicateKey reports whether err is a unique-index violation, either
// translated by gorm or raw from MySQL (error 1062).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqldrv.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// Edit replaces the rating and comment of a review. Only the author may
// edit, and only within EditWindow of creation.
func Edit(db *gorm.DB, id uint, authorID string, rating int, comment string) (*models.Review, error) {
	if err := validate(rating, comment); err != nil {
		return nil, err
	}

	var rev *models.Review
	err := db.Transaction(func(tx *gorm.DB) error {
		r, err := Get(tx, id)
		if err != nil {
			return err
		}
		if !r.Visible {
			return fault.NotFound("review %d not found", id)
		}
		if err := guard.RequireAuthor(r, authorID, "edit"); err != nil {
			return err
		}
		now := time.Now()
		if !now.Before(r.CreatedAt.Add(EditWindow)) {
			return fault.EditWindowExpired("review %d can only be edited within %s of creation", id, EditWindow)
		}

		r.Rating = rating
		r.Comment = strings.TrimSpace(comment)
		r.ModifiedAt = &now
		if err := tx.Model(&models.Review{}).Where("id = ?", id).Updates(map[string]interface{}{
			"rating":      r.Rating,
			"comment":     r.Comment,
			"modified_at": now,
		}).Error; err != nil {
			return fmt.Errorf("review: edit %d: %w", id, err)
		}
		rev = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// Delete hides a review. The row stays so the request's review count, and
// therefore its completion, is unaffected. The author or the subject may
// delete.
func Delete(db *gorm.DB, id uint, actorID string) error {
	r, err := Get(db, id)
	if err != nil {
		return err
	}
	if err := guard.RequireReviewParty(r, actorID, "delete"); err != nil {
		return err
	}
	if err := db.Model(&models.Review{}).Where("id = ?", id).Update("visible", false).Error; err != nil {
		return fmt.Errorf("review: delete %d: %w", id, err)
	}
	return nil
}

// Get loads a review by id, hidden or not.
func Get(db *gorm.DB, id uint) (*models.Review, error) {
	var r models.Review
	if err := db.Where("id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("review %d not found", id)
		}
		return nil, fmt.Errorf("review: get %d: %w", id, err)
	}
	return &r, nil
}

// HasReviewed reports whether userID already reviewed the request.
func HasReviewed(db *gorm.DB, requestID, userID string) (bool, error) {
	var n int64
	if err := db.Model(&models.Review{}).
		Where("request_id = ? AND author_id = ?", requestID, userID).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("review: check %s by %s: %w", requestID, userID, err)
	}
	return n > 0, nil
}

// CanReview reports whether userID may submit a review on r right now.
func CanReview(db *gorm.DB, r *models.ExchangeRequest, userID string) (bool, error) {
	if !guard.IsParticipant(r, userID) || !reviewable(r.Status) {
		return false, nil
	}
	reviewed, err := HasReviewed(db, r.ID, userID)
	if err != nil {
		return false, err
	}
	return !reviewed, nil
}
