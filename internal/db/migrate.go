package db

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/zulandar/swapmeet/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Item{},
		&models.Skill{},
		&models.ExchangeRequest{},
		&models.Message{},
		&models.Review{},
	}
}

// AutoMigrate creates or updates all tables, including the unique index
// on reviews(request_id, author_id).
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// Fixture is a seed file describing members and their offers.
type Fixture struct {
	Users  []FixtureUser    `yaml:"users"`
	Items  []FixtureListing `yaml:"items"`
	Skills []FixtureListing `yaml:"skills"`
}

// FixtureUser is a member entry in a seed file.
type FixtureUser struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"name"`
	Email       string `yaml:"email"`
	City        string `yaml:"city"`
}

// FixtureListing is an item or skill entry in a seed file. Available
// defaults to true when omitted.
type FixtureListing struct {
	ID          string `yaml:"id"`
	Owner       string `yaml:"owner"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"` // items only
	Level       string `yaml:"level"`    // skills only
	Available   *bool  `yaml:"available"`
}

// LoadFixture reads and parses a seed file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("db: read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("db: parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Seed upserts the fixture's users, items and skills. Listings without an
// ID get a fresh UUID.
func Seed(db *gorm.DB, f *Fixture) error {
	if f == nil {
		return nil
	}
	for i, fu := range f.Users {
		if fu.ID == "" {
			return fmt.Errorf("db: seed users[%d]: id is required", i)
		}
		u := models.User{ID: fu.ID, DisplayName: fu.DisplayName, Email: fu.Email, City: fu.City}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "email", "city"}),
		}).Create(&u).Error; err != nil {
			return fmt.Errorf("db: seed user %q: %w", fu.ID, err)
		}
	}

	for _, fl := range f.Items {
		item := models.Item{
			ID:          idOrNew(fl.ID),
			OwnerID:     fl.Owner,
			Title:       fl.Title,
			Description: fl.Description,
			Category:    fl.Category,
			Available:   availableOrDefault(fl.Available),
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"owner_id", "title", "description", "category", "available"}),
		}).Create(&item).Error; err != nil {
			return fmt.Errorf("db: seed item %q: %w", fl.Title, err)
		}
	}

	for _, fl := range f.Skills {
		skill := models.Skill{
			ID:          idOrNew(fl.ID),
			OwnerID:     fl.Owner,
			Title:       fl.Title,
			Description: fl.Description,
			Level:       fl.Level,
			Available:   availableOrDefault(fl.Available),
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"owner_id", "title", "description", "level", "available"}),
		}).Create(&skill).Error; err != nil {
			return fmt.Errorf("db: seed skill %q: %w", fl.Title, err)
		}
	}
	return nil
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func availableOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
