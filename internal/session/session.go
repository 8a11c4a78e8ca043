// Package session holds the signed-in user.
//
// The user slot is the only representation of the session. LoggedIn and
// Profile are computed from it on every call, so they cannot drift from
// the stored user.
package session

import (
	"context"
	"fmt"

	"github.com/roach88/easybook/internal/model"
	"github.com/roach88/easybook/internal/store"
	"github.com/roach88/easybook/internal/writer"
)

// Profile is the flattened view of the current user.
type Profile struct {
	UserID   string     `json:"userId"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	LoggedIn bool       `json:"loggedIn"`
}

// Holder owns the user slot.
type Holder struct {
	store  store.Backend
	writer writer.Submitter
}

// New creates a Holder.
func New(st store.Backend, w writer.Submitter) *Holder {
	return &Holder{store: st, writer: w}
}

// Save replaces the current user.
func (h *Holder) Save(ctx context.Context, user model.User) error {
	if err := model.Validate(user); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return h.writer.Do(ctx, store.SlotUser, func(ctx context.Context) error {
		return store.SaveDoc(ctx, h.store, store.SlotUser, &user)
	})
}

// Current returns the signed-in user, or nil when nobody is signed in or
// the stored user cannot be read.
func (h *Holder) Current(ctx context.Context) (*model.User, error) {
	return store.LoadDoc[model.User](ctx, h.store, store.SlotUser)
}

// Clear signs the user out.
func (h *Holder) Clear(ctx context.Context) error {
	return h.writer.Do(ctx, store.SlotUser, func(ctx context.Context) error {
		return h.store.Remove(ctx, store.SlotUser)
	})
}

// LoggedIn reports whether a user is stored.
func (h *Holder) LoggedIn(ctx context.Context) (bool, error) {
	user, err := h.Current(ctx)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// Profile returns the flattened view of the current user. The zero Profile
// (LoggedIn false) is returned when nobody is signed in.
func (h *Holder) Profile(ctx context.Context) (Profile, error) {
	user, err := h.Current(ctx)
	if err != nil || user == nil {
		return Profile{}, err
	}
	return Profile{
		UserID:   user.ID,
		Name:     user.FullName(),
		Email:    user.Email,
		Role:     user.Role,
		LoggedIn: true,
	}, nil
}
