package review

import (
	"fmt"
	"math"
	"strings"

	"github.com/zulandar/swapmeet/internal/models"
	"gorm.io/gorm"
)

// Received returns the visible reviews about subjectID, newest first.
func Received(db *gorm.DB, subjectID string) ([]models.Review, error) {
	return Recent(db, subjectID, 0)
}

// Recent returns at most limit visible reviews about subjectID, newest
// first. A limit of zero or less returns all of them.
func Recent(db *gorm.DB, subjectID string, limit int) ([]models.Review, error) {
	q := db.Where("subject_id = ? AND visible = ?", subjectID, true).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var revs []models.Review
	if err := q.Find(&revs).Error; err != nil {
		return nil, fmt.Errorf("review: received by %s: %w", subjectID, err)
	}
	return revs, nil
}

// Given returns the visible reviews authorID wrote, newest first.
func Given(db *gorm.DB, authorID string) ([]models.Review, error) {
	var revs []models.Review
	if err := db.Where("author_id = ? AND visible = ?", authorID, true).
		Order("created_at DESC, id DESC").Find(&revs).Error; err != nil {
		return nil, fmt.Errorf("review: given by %s: %w", authorID, err)
	}
	return revs, nil
}

// ForRequest returns the visible reviews of one request.
func ForRequest(db *gorm.DB, requestID string) ([]models.Review, error) {
	var revs []models.Review
	if err := db.Where("request_id = ? AND visible = ?", requestID, true).
		Order("id ASC").Find(&revs).Error; err != nil {
		return nil, fmt.Errorf("review: for request %s: %w", requestID, err)
	}
	return revs, nil
}

// PublicFilter narrows the public review listing.
type PublicFilter struct {
	MinRating int    // 0 means any rating
	Query     string // substring of the comment
}

// Public returns visible reviews matching f, newest first.
func Public(db *gorm.DB, f PublicFilter) ([]models.Review, error) {
	q := db.Where("visible = ?", true)
	if f.MinRating > 0 {
		q = q.Where("rating >= ?", f.MinRating)
	}
	if f.Query != "" {
		q = q.Where("LOWER(comment) LIKE LOWER(?) ESCAPE '!'", "%"+escapeLike(f.Query)+"%")
	}
	var revs []models.Review
	if err := q.Order("created_at DESC, id DESC").Find(&revs).Error; err != nil {
		return nil, fmt.Errorf("review: public: %w", err)
	}
	return revs, nil
}

// likeEscaper makes LIKE wildcards in user text match literally. '!' is
// the escape character on both MySQL and SQLite.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Stats aggregates the visible ratings of one subject.
type Stats struct {
	Average      float64       `json:"average"`
	Satisfaction float64       `json:"satisfaction"` // percent of ratings >= 4
	Distribution map[int]int64 `json:"distribution"` // keys 1..5, always present
	Total        int64         `json:"total"`
	Positive     int64         `json:"positive"` // ratings 4-5
	Negative     int64         `json:"negative"` // ratings 1-2
}

type ratingCount struct {
	Rating int
	Count  int64
}

// StatsFor computes rating statistics for subjectID. Average and
// satisfaction are rounded to one decimal; both are 0 without reviews.
func StatsFor(db *gorm.DB, subjectID string) (*Stats, error) {
	var rows []ratingCount
	if err := db.Model(&models.Review{}).
		Select("rating, COUNT(*) as count").
		Where("subject_id = ? AND visible = ?", subjectID, true).
		Group("rating").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("review: stats for %s: %w", subjectID, err)
	}
	return summarize(rows), nil
}

func summarize(rows []ratingCount) *Stats {
	s := &Stats{Distribution: make(map[int]int64, MaxRating)}
	for r := MinRating; r <= MaxRating; r++ {
		s.Distribution[r] = 0
	}
	var sum int64
	for _, row := range rows {
		s.Distribution[row.Rating] += row.Count
		s.Total += row.Count
		sum += int64(row.Rating) * row.Count
		switch {
		case row.Rating >= 4:
			s.Positive += row.Count
		case row.Rating <= 2:
			s.Negative += row.Count
		}
	}
	if s.Total == 0 {
		return s
	}
	s.Average = round1(float64(sum) / float64(s.Total))
	s.Satisfaction = round1(float64(s.Positive) / float64(s.Total) * 100)
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
