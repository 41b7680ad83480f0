package models

import (
	"fmt"
	"time"
)

// Exchange request statuses.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRefused   = "refused"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// TargetKind distinguishes the two kinds of offer a request can reference.
type TargetKind string

const (
	TargetItem  TargetKind = "item"
	TargetSkill TargetKind = "skill"
)

// Target references exactly one offer: an item or a skill. It is persisted
// as a (kind, id) pair, so a request can never point at both or neither.
type Target struct {
	Kind TargetKind
	ID   string
}

// ItemTarget references an item offer.
func ItemTarget(id string) Target { return Target{Kind: TargetItem, ID: id} }

// SkillTarget references a skill offer.
func SkillTarget(id string) Target { return Target{Kind: TargetSkill, ID: id} }

// Validate reports whether t names a known kind and a non-empty id.
func (t Target) Validate() error {
	switch t.Kind {
	case TargetItem, TargetSkill:
	default:
		return fmt.Errorf("unknown target kind %q", t.Kind)
	}
	if t.ID == "" {
		return fmt.Errorf("%s id is required", t.Kind)
	}
	return nil
}

func (t Target) String() string { return string(t.Kind) + ":" + t.ID }

// ExchangeRequest is a negotiation between a requester and the owner of
// an item or skill.
type ExchangeRequest struct {
	ID          string     `gorm:"primaryKey;size:32" json:"id"`
	RequesterID string     `gorm:"size:36;not null;index" json:"requester_id"`
	OwnerID     string     `gorm:"size:36;not null;index" json:"owner_id"`
	TargetKind  TargetKind `gorm:"size:8;not null" json:"target_kind"`
	TargetID    string     `gorm:"size:36;not null;index" json:"target_id"`
	Proposal    string     `gorm:"size:500;not null" json:"proposal"`
	Note        string     `gorm:"size:1000;not null" json:"note"`
	ProposedAt  time.Time  `gorm:"not null" json:"proposed_at"`
	Status      string     `gorm:"size:16;default:pending;index" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:RequestID" json:"messages,omitempty"`
}

// Target returns the offer the request references.
func (r *ExchangeRequest) Target() Target {
	return Target{Kind: r.TargetKind, ID: r.TargetID}
}

// IsTerminal reports whether no further transition is possible.
func (r *ExchangeRequest) IsTerminal() bool {
	switch r.Status {
	case StatusRefused, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}
