// Package identity resolves the acting user. Authentication itself happens
// elsewhere; this package only carries the resulting user id and checks it
// against the user directory.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/models"
	"gorm.io/gorm"
)

// Provider yields the current user, if any.
type Provider interface {
	CurrentUser(ctx context.Context) (string, bool)
}

type ctxKey struct{}

// WithUser returns a context carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// FromContext returns the user stored by WithUser.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// ContextProvider reads the user placed in the context by WithUser.
type ContextProvider struct{}

func (ContextProvider) CurrentUser(ctx context.Context) (string, bool) {
	return FromContext(ctx)
}

// Static always reports the same user. An empty Static means anonymous.
type Static string

func (s Static) CurrentUser(context.Context) (string, bool) {
	id := strings.TrimSpace(string(s))
	return id, id != ""
}

// Require returns the current user or an Unauthorized fault when nobody is
// signed in.
func Require(ctx context.Context, p Provider) (string, error) {
	id, ok := p.CurrentUser(ctx)
	if !ok {
		return "", fault.Unauthorized("no user is signed in")
	}
	return id, nil
}

// Lookup loads a user from the directory.
func Lookup(db *gorm.DB, userID string) (*models.User, error) {
	if userID == "" {
		return nil, fault.Validation("user id is required")
	}
	var u models.User
	if err := db.Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("user %s not found", userID)
		}
		return nil, fmt.Errorf("identity: lookup %s: %w", userID, err)
	}
	return &u, nil
}

// Exists reports whether userID is a known user.
func Exists(db *gorm.DB, userID string) (bool, error) {
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("identity: exists %s: %w", userID, err)
	}
	return n > 0, nil
}
