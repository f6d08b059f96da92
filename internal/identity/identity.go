// Package identity owns who is signed in to the storefront client and tells interested
// parties when that changes.
package identity

import (
	"context"
	"strings"

	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/google/uuid"
)

// Identity is a signed-in user. A nil *Identity means signed out.
type Identity struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
}

func FromProfile(p storefront.Profile) *Identity {
	return &Identity{
		ID:        p.ID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      p.Role,
	}
}

// DisplayName prefers the first name and falls back to the email.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if name := strings.TrimSpace(i.FirstName); name != "" {
		return name
	}
	return i.Email
}

// Same reports whether a and b refer to the same user (or are both signed out).
func Same(a, b *Identity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}

// Listener is told about every identity transition, in order.
type Listener func(ctx context.Context, current *Identity) error

// Provider exposes the current identity and change notifications.
type Provider interface {
	Current() *Identity
	Subscribe(fn Listener) (unsubscribe func())
}
