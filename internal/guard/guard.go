// Package guard evaluates who may act on an exchange request or one of its
// reviews. It is pure: no storage access, no side effects. Every mutating
// operation consults it before writing.
package guard

import (
	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/models"
)

// IsRequester reports whether userID initiated the request.
func IsRequester(r *models.ExchangeRequest, userID string) bool {
	return r != nil && userID != "" && r.RequesterID == userID
}

// IsOwner reports whether userID owns the requested item or skill.
func IsOwner(r *models.ExchangeRequest, userID string) bool {
	return r != nil && userID != "" && r.OwnerID == userID
}

// IsParticipant reports whether userID is the requester or the owner.
func IsParticipant(r *models.ExchangeRequest, userID string) bool {
	return IsRequester(r, userID) || IsOwner(r, userID)
}

// Counterpart returns the other participant relative to userID.
// The second result is false when userID is not a participant.
func Counterpart(r *models.ExchangeRequest, userID string) (string, bool) {
	switch {
	case IsRequester(r, userID):
		return r.OwnerID, true
	case IsOwner(r, userID):
		return r.RequesterID, true
	}
	return "", false
}

// RequireOwner returns an Unauthorized fault unless userID is the owner.
func RequireOwner(r *models.ExchangeRequest, userID, action string) error {
	if !IsOwner(r, userID) {
		return fault.Unauthorized("only the owner of request %s may %s it", r.ID, action)
	}
	return nil
}

// RequireRequester returns an Unauthorized fault unless userID is the requester.
func RequireRequester(r *models.ExchangeRequest, userID, action string) error {
	if !IsRequester(r, userID) {
		return fault.Unauthorized("only the requester of request %s may %s it", r.ID, action)
	}
	return nil
}

// RequireParticipant returns an Unauthorized fault unless userID takes part
// in the request.
func RequireParticipant(r *models.ExchangeRequest, userID, action string) error {
	if !IsParticipant(r, userID) {
		return fault.Unauthorized("user %s is not a participant of request %s and cannot %s", userID, r.ID, action)
	}
	return nil
}

// IsAuthor reports whether userID wrote the review.
func IsAuthor(rev *models.Review, userID string) bool {
	return rev != nil && userID != "" && rev.AuthorID == userID
}

// IsReviewParty reports whether userID wrote or received the review.
func IsReviewParty(rev *models.Review, userID string) bool {
	return IsAuthor(rev, userID) || (rev != nil && userID != "" && rev.SubjectID == userID)
}

// RequireAuthor returns an Unauthorized fault unless userID wrote the review.
func RequireAuthor(rev *models.Review, userID, action string) error {
	if !IsAuthor(rev, userID) {
		return fault.Unauthorized("only the author of review %d may %s it", rev.ID, action)
	}
	return nil
}

// RequireReviewParty returns an Unauthorized fault unless userID wrote or
// received the review.
func RequireReviewParty(rev *models.Review, userID, action string) error {
	if !IsReviewParty(rev, userID) {
		return fault.Unauthorized("only the author or the subject of review %d may %s it", rev.ID, action)
	}
	return nil
}
