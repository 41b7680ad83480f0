package guard

import (
	"errors"
	"testing"

	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/models"
)

func testRequest() *models.ExchangeRequest {
	return &models.ExchangeRequest{ID: "req-1", RequesterID: "alice", OwnerID: "bob"}
}

func TestRoles(t *testing.T) {
	r := testRequest()
	tests := []struct {
		user                       string
		requester, owner, particip bool
	}{
		{"alice", true, false, true},
		{"bob", false, true, true},
		{"carol", false, false, false},
		{"", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			if got := IsRequester(r, tt.user); got != tt.requester {
				t.Errorf("IsRequester = %v, want %v", got, tt.requester)
			}
			if got := IsOwner(r, tt.user); got != tt.owner {
				t.Errorf("IsOwner = %v, want %v", got, tt.owner)
			}
			if got := IsParticipant(r, tt.user); got != tt.particip {
				t.Errorf("IsParticipant = %v, want %v", got, tt.particip)
			}
		})
	}
}

func TestNilRequest(t *testing.T) {
	if IsParticipant(nil, "alice") {
		t.Error("nil request should have no participants")
	}
}

func TestCounterpart(t *testing.T) {
	r := testRequest()
	if got, ok := Counterpart(r, "alice"); !ok || got != "bob" {
		t.Errorf("Counterpart(alice) = %q, %v", got, ok)
	}
	if got, ok := Counterpart(r, "bob"); !ok || got != "alice" {
		t.Errorf("Counterpart(bob) = %q, %v", got, ok)
	}
	if _, ok := Counterpart(r, "carol"); ok {
		t.Error("Counterpart(carol) should not be ok")
	}
}

func TestRequire(t *testing.T) {
	r := testRequest()

	if err := RequireOwner(r, "bob", "accept"); err != nil {
		t.Errorf("RequireOwner(bob) = %v", err)
	}
	if err := RequireOwner(r, "alice", "accept"); !errors.Is(err, fault.ErrUnauthorized) {
		t.Errorf("RequireOwner(alice) = %v, want Unauthorized", err)
	}
	if err := RequireRequester(r, "alice", "cancel"); err != nil {
		t.Errorf("RequireRequester(alice) = %v", err)
	}
	if err := RequireRequester(r, "bob", "cancel"); !errors.Is(err, fault.ErrUnauthorized) {
		t.Errorf("RequireRequester(bob) = %v, want Unauthorized", err)
	}
	if err := RequireParticipant(r, "carol", "message"); !errors.Is(err, fault.ErrUnauthorized) {
		t.Errorf("RequireParticipant(carol) = %v, want Unauthorized", err)
	}
}

func TestReviewRoles(t *testing.T) {
	rev := &models.Review{ID: 7, RequestID: "req-1", AuthorID: "alice", SubjectID: "bob"}
	tests := []struct {
		user          string
		author, party bool
	}{
		{"alice", true, true},
		{"bob", false, true},
		{"carol", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			if got := IsAuthor(rev, tt.user); got != tt.author {
				t.Errorf("IsAuthor = %v, want %v", got, tt.author)
			}
			if got := IsReviewParty(rev, tt.user); got != tt.party {
				t.Errorf("IsReviewParty = %v, want %v", got, tt.party)
			}
		})
	}
	if IsAuthor(nil, "alice") || IsReviewParty(nil, "alice") {
		t.Error("nil review has no parties")
	}
}

func TestRequireReviewRoles(t *testing.T) {
	rev := &models.Review{ID: 7, AuthorID: "alice", SubjectID: "bob"}

	if err := RequireAuthor(rev, "alice", "edit"); err != nil {
		t.Errorf("author edit: %v", err)
	}
	if err := RequireAuthor(rev, "bob", "edit"); !errors.Is(err, fault.ErrUnauthorized) {
		t.Errorf("subject edit err = %v, want unauthorized", err)
	}
	if err := RequireReviewParty(rev, "bob", "delete"); err != nil {
		t.Errorf("subject delete: %v", err)
	}
	if err := RequireReviewParty(rev, "carol", "delete"); !errors.Is(err, fault.ErrUnauthorized) {
		t.Errorf("outsider delete err = %v, want unauthorized", err)
	}
	if err := RequireReviewParty(rev, "", "delete"); !errors.Is(err, fault.ErrUnauthorized) {
		t.Errorf("anonymous delete err = %v, want unauthorized", err)
	}
}
