package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/queue"
)

// Register creates a customer account. Usernames and passwords must be
// non-empty and free of spaces; usernames are unique.
func (s *BookingService) Register(ctx context.Context, username, password, displayName string) (model.User, error) {
	var created model.User
	err := s.mutate(ctx, "register", func() ([]queue.BookingEvent, error) {
		if err := model.ValidateCredential("username", username); err != nil {
			return nil, err
		}
		if err := model.ValidateCredential("password", password); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(displayName)
		if name == "" {
			return nil, fmt.Errorf("%w: display name is required", model.ErrValidation)
		}
		stored, err := s.hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		created = model.User{Username: username, Password: stored, Role: model.RoleCustomer, DisplayName: name}
		return nil, s.st.users.Add(created)
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("customer registered", "username", created.Username)
	return created, nil
}

// Authenticate returns the account when the password matches.
func (s *BookingService) Authenticate(username, password string) (u model.User, err error) {
	defer s.observe("authenticate", &err)
	s.mu.Lock()
	u, ok := s.st.users.Get(username)
	s.mu.Unlock()
	if !ok || !s.hasher.Verify(u.Password, password) {
		return model.User{}, model.ErrUnauthorized
	}
	return u, nil
}

// EnsureDefaultAdmin creates an ADMIN account when the directory has none.
// It reports whether an account was created.
func (s *BookingService) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	s.mu.Lock()
	hasAdmin := s.st.users.HasAdmin()
	s.mu.Unlock()
	if hasAdmin {
		return false, nil
	}

	created := false
	err := s.mutate(ctx, "ensure_default_admin", func() ([]queue.BookingEvent, error) {
		if s.st.users.HasAdmin() {
			return nil, nil
		}
		if err := model.ValidateCredential("username", username); err != nil {
			return nil, err
		}
		if err := model.ValidateCredential("password", password); err != nil {
			return nil, err
		}
		stored, err := s.hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.st.users.Add(model.User{Username: username, Password: stored, Role: model.RoleAdmin}); err != nil {
			return nil, err
		}
		created = true
		return nil, nil
	})
	if err != nil {
		return false, err
	}
	if created {
		s.log.Warn("default admin account created", "username", username)
	}
	return created, nil
}

// GetUser looks up an account by username.
func (s *BookingService) GetUser(username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users.Get(username)
	if !ok {
		return model.User{}, fmt.Errorf("%w: user %s", model.ErrNotFound, username)
	}
	return u, nil
}
