// Package listing is the item registry: the goods and skills members offer.
// The exchange core only reads a listing's owner and availability and only
// ever writes its availability.
package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/models"
	"gorm.io/gorm"
)

// Listing is the registry's view of an item or skill.
type Listing struct {
	Target    models.Target
	OwnerID   string
	Title     string
	Available bool
}

// ErrUnavailable is returned by MarkUnavailable when the listing was
// already taken.
var ErrUnavailable = errors.New("listing: no longer available")

func modelFor(kind models.TargetKind) (interface{}, error) {
	switch kind {
	case models.TargetItem:
		return &models.Item{}, nil
	case models.TargetSkill:
		return &models.Skill{}, nil
	}
	return nil, fmt.Errorf("listing: unknown kind %q", kind)
}

// Find loads the listing a target references. A missing listing yields a
// NotFound fault.
func Find(db *gorm.DB, t models.Target) (*Listing, error) {
	if err := t.Validate(); err != nil {
		return nil, fault.Validation("invalid target: %v", err)
	}
	switch t.Kind {
	case models.TargetItem:
		var item models.Item
		if err := db.Where("id = ?", t.ID).First(&item).Error; err != nil {
			return nil, lookupErr(t, err)
		}
		return &Listing{Target: t, OwnerID: item.OwnerID, Title: item.Title, Available: item.Available}, nil
	default:
		var skill models.Skill
		if err := db.Where("id = ?", t.ID).First(&skill).Error; err != nil {
			return nil, lookupErr(t, err)
		}
		return &Listing{Target: t, OwnerID: skill.OwnerID, Title: skill.Title, Available: skill.Available}, nil
	}
}

func lookupErr(t models.Target, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.NotFound("%s %s not found", t.Kind, t.ID)
	}
	return fmt.Errorf("listing: find %s: %w", t, err)
}

// SetAvailable sets the availability flag unconditionally.
func SetAvailable(db *gorm.DB, t models.Target, available bool) error {
	m, err := modelFor(t.Kind)
	if err != nil {
		return err
	}
	result := db.Model(m).Where("id = ?", t.ID).Update("available", available)
	if result.Error != nil {
		return fmt.Errorf("listing: set available %s: %w", t, result.Error)
	}
	if result.RowsAffected == 0 {
		return fault.NotFound("%s %s not found", t.Kind, t.ID)
	}
	return nil
}

// MarkUnavailable flips availability from true to false. It returns
// ErrUnavailable when the listing is already unavailable, so two exchanges
// can never take the same listing.
func MarkUnavailable(db *gorm.DB, t models.Target) error {
	m, err := modelFor(t.Kind)
	if err != nil {
		return err
	}
	result := db.Model(m).Where("id = ? AND available = ?", t.ID, true).Update("available", false)
	if result.Error != nil {
		return fmt.Errorf("listing: mark unavailable %s: %w", t, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUnavailable
	}
	return nil
}

// CreateOpts holds the fields of a new listing.
type CreateOpts struct {
	OwnerID     string
	Title       string
	Description string
	Category    string // items
	Level       string // skills
}

func (o CreateOpts) validate() error {
	if strings.TrimSpace(o.OwnerID) == "" {
		return fault.Validation("owner is required")
	}
	if strings.TrimSpace(o.Title) == "" {
		return fault.Validation("title is required")
	}
	return nil
}

// CreateItem registers a new available item.
func CreateItem(db *gorm.DB, opts CreateOpts) (*models.Item, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	item := models.Item{
		ID:          uuid.NewString(),
		OwnerID:     opts.OwnerID,
		Title:       strings.TrimSpace(opts.Title),
		Description: opts.Description,
		Category:    opts.Category,
		Available:   true,
	}
	if err := db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("listing: create item: %w", err)
	}
	return &item, nil
}

// CreateSkill registers a new available skill.
func CreateSkill(db *gorm.DB, opts CreateOpts) (*models.Skill, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	skill := models.Skill{
		ID:          uuid.NewString(),
		OwnerID:     opts.OwnerID,
		Title:       strings.TrimSpace(opts.Title),
		Description: opts.Description,
		Level:       opts.Level,
		Available:   true,
	}
	if err := db.Create(&skill).Error; err != nil {
		return nil, fmt.Errorf("listing: create skill: %w", err)
	}
	return &skill, nil
}
