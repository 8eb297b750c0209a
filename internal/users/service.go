// Package users implements account registration, login and profile
// management on top of a pluggable user store.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayush/blog-api/internal/apperr"
	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/models"
)

const (
	msgEmailTaken         = "User with that email already exists"
	msgEmailInUse         = "Email already in use by another user"
	msgBadCredentials     = "Invalid email or password"
	msgOldPasswordMissing = "Old password is required"
	msgOldPasswordWrong   = "Old password is incorrect"
	msgUserNotFound       = "User not found"
)

// Store defines the interface for user persistence.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (*models.User, error)
}

// Credentials is the subset of the auth service the user flows need.
type Credentials interface {
	HashPassword(ctx context.Context, password string) (string, error)
	ComparePassword(ctx context.Context, password, hash string) bool
	GenerateToken(userID string) (string, error)
	RevokeToken(ctx context.Context, claims *auth.Claims) error
}

type Service struct {
	store Store
	creds Credentials
}

func NewService(store Store, creds Credentials) *Service {
	return &Service{store: store, creds: creds}
}

// Register creates an account and returns a token bound to it.
func (s *Service) Register(ctx context.Context, dto models.CreateUserDto) (string, *models.User, error) {
	_, err := s.store.FindUserByEmail(ctx, dto.Email)
	switch {
	case err == nil:
		return "", nil, apperr.BadRequest(msgEmailTaken)
	case !errors.Is(err, models.ErrNotFound):
		return "", nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.creds.HashPassword(ctx, dto.Password)
	if err != nil {
		return "", nil, err
	}

	user, err := s.store.CreateUser(ctx, &models.User{
		Name:        dto.Name,
		Email:       dto.Email,
		Password:    hash,
		PhoneNumber: dto.PhoneNumber,
		Address:     dto.Address,
	})
	if errors.Is(err, models.ErrDuplicate) {
		// lost a race with a concurrent registration
		return "", nil, apperr.BadRequest(msgEmailTaken)
	}
	if err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.creds.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login returns a fresh token. Unknown email and wrong password fail
// identically.
func (s *Service) Login(ctx context.Context, dto models.LoginUserDto) (string, error) {
	user, err := s.store.FindUserByEmail(ctx, dto.Email)
	if errors.Is(err, models.ErrNotFound) {
		return "", apperr.Unauthorized(msgBadCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("lookup email: %w", err)
	}
	if !s.creds.ComparePassword(ctx, dto.Password, user.Password) {
		return "", apperr.Unauthorized(msgBadCredentials)
	}
	return s.creds.GenerateToken(user.ID)
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	return s.creds.RevokeToken(ctx, claims)
}

// UpdateProfile applies a partial update to the caller's own record. A new
// password is only accepted together with the current one.
func (s *Service) UpdateProfile(ctx context.Context, userID string, dto models.UpdateUserDto) (*models.User, error) {
	if dto.Email != nil {
		other, err := s.store.FindUserByEmail(ctx, *dto.Email)
		switch {
		case err == nil && other.ID != userID:
			return nil, apperr.Conflict(msgEmailInUse)
		case err != nil && !errors.Is(err, models.ErrNotFound):
			return nil, fmt.Errorf("lookup email: %w", err)
		}
	}

	upd := models.UserUpdate{
		Name:        dto.Name,
		Email:       dto.Email,
		PhoneNumber: dto.PhoneNumber,
		Address:     dto.Address,
	}

	if dto.Password != nil && *dto.Password != "" {
		if dto.OldPassword == nil || *dto.OldPassword == "" {
			return nil, apperr.BadRequest(msgOldPasswordMissing)
		}
		current, err := s.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !s.creds.ComparePassword(ctx, *dto.OldPassword, current.Password) {
			return nil, apperr.Unauthorized(msgOldPasswordWrong)
		}
		hash, err := s.creds.HashPassword(ctx, *dto.Password)
		if err != nil {
			return nil, err
		}
		upd.Password = &hash
	}

	user, err := s.store.UpdateUser(ctx, userID, upd)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return nil, apperr.NotFound(msgUserNotFound)
	case errors.Is(err, models.ErrDuplicate):
		return nil, apperr.Conflict(msgEmailInUse)
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// DeleteProfile removes the record and returns what it held.
func (s *Service) DeleteProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.DeleteUser(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return user, nil
}
