package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/review"
)

// dateLayouts are accepted by --date, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// parseDate reads a proposed date. Layouts without a zone are local time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fault.Validation("cannot parse date %q (want RFC3339 or \"YYYY-MM-DD HH:MM\")", s)
}

// formatTime renders timestamps in list and detail output.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// stars renders a 1..5 rating as filled and empty stars.
func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > review.MaxRating {
		rating = review.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", review.MaxRating-rating)
}

// formatStats renders rating statistics as a short report.
func formatStats(subject string, s *review.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ratings for %s\n", subject)
	if s.Total == 0 {
		b.WriteString("No reviews yet.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Average:      %.1f / 5 (%d reviews)\n", s.Average, s.Total)
	fmt.Fprintf(&b, "Satisfaction: %.1f%%\n", s.Satisfaction)
	fmt.Fprintf(&b, "Positive:     %d   Negative: %d\n", s.Positive, s.Negative)
	for r := review.MaxRating; r >= review.MinRating; r-- {
		fmt.Fprintf(&b, "  %s  %d\n", stars(r), s.Distribution[r])
	}
	return b.String()
}

// describeError renders err for the terminal, leading with the
// caller-facing message for known fault kinds.
func describeError(err error) string {
	if fault.KindOf(err) == nil {
		return err.Error()
	}
	return fmt.Sprintf("%s (%s)", fault.Message(err), err.Error())
}
