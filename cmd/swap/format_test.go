package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/review"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2030-05-01T10:30:00Z", time.Date(2030, 5, 1, 10, 30, 0, 0, time.UTC)},
		{"2030-05-01 10:30", time.Date(2030, 5, 1, 10, 30, 0, 0, time.Local)},
		{"2030-05-01T10:30", time.Date(2030, 5, 1, 10, 30, 0, 0, time.Local)},
		{"  2030-05-01 10:30  ", time.Date(2030, 5, 1, 10, 30, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		got, err := parseDate(tt.input)
		if err != nil {
			t.Errorf("parseDate(%q): %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "01/05/2030", "2030-13-01 10:00"} {
		_, err := parseDate(in)
		if !errors.Is(err, fault.ErrValidation) {
			t.Errorf("parseDate(%q) err = %v, want validation fault", in, err)
		}
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(time.Time{}); got != "-" {
		t.Errorf("formatTime(zero) = %q, want %q", got, "-")
	}
	ts := time.Date(2030, 5, 1, 10, 30, 0, 0, time.Local)
	if got := formatTime(ts); got != "2030-05-01 10:30" {
		t.Errorf("formatTime = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer proposal text", 10, "a longe..."},
		{"abcdef", 3, "abc"},
		{"vélo électrique", 6, "vél..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestStars(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{5, "★★★★★"},
		{3, "★★★☆☆"},
		{1, "★☆☆☆☆"},
		{0, "☆☆☆☆☆"},
		{9, "★★★★★"},
	}
	for _, tt := range tests {
		if got := stars(tt.rating); got != tt.want {
			t.Errorf("stars(%d) = %q, want %q", tt.rating, got, tt.want)
		}
	}
}

func TestFormatStats(t *testing.T) {
	s := &review.Stats{
		Average:      3.8,
		Satisfaction: 60,
		Distribution: map[int]int64{5: 2, 4: 1, 3: 1, 2: 1, 1: 0},
		Total:        5,
		Positive:     3,
		Negative:     1,
	}
	out := formatStats("u-bob", s)

	for _, want := range []string{"Ratings for u-bob", "3.8 / 5 (5 reviews)", "60.0%", "Positive:     3", "Negative: 1", "★★★★★  2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestFormatStats_Empty(t *testing.T) {
	out := formatStats("u-new", &review.Stats{Distribution: map[int]int64{}})
	if !strings.Contains(out, "No reviews yet.") {
		t.Errorf("expected empty notice, got:\n%s", out)
	}
}

func TestDescribeError(t *testing.T) {
	plain := errors.New("load config: boom")
	if got := describeError(plain); got != "load config: boom" {
		t.Errorf("describeError(plain) = %q", got)
	}

	got := describeError(fault.DuplicateReview("already reviewed"))
	if !strings.HasPrefix(got, fault.Message(fault.ErrDuplicateReview)) {
		t.Errorf("describeError(fault) = %q", got)
	}
}
