// Package account registers users and signs them in.
package account

import (
	"context"
	"errors"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/repository"
)

// Service handles accounts and sessions.
type Service struct {
	Users  repository.UserRepository
	Issuer *auth.Issuer
}

// NewService wires an account Service.
func NewService(users repository.UserRepository, issuer *auth.Issuer) *Service {
	return &Service{Users: users, Issuer: issuer}
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Session is what a successful sign-in returns.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Profile is the current user as the UI sees it.
type Profile struct {
	models.Identity
	IsAdmin bool `json:"isAdmin"`
}

var errBadCredentials = apperr.New(apperr.ErrUnauthenticated, "Invalid email or password")

// Register creates a user and signs them in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	var password models.Password
	if err := password.Set(in.Password); err != nil {
		return Session{}, apperr.Backend("hash password", err)
	}
	user := &models.User{
		Email:        strings.TrimSpace(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: password.Hash,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return Session{}, err
	}
	return s.session(*user)
}

// Login checks the credentials and issues a token.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	user, err := s.Users.ByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Session{}, errBadCredentials
		}
		return Session{}, err
	}
	password := models.Password{Hash: user.PasswordHash}
	ok, err := password.Matches(in.Password)
	if err != nil {
		return Session{}, apperr.Backend("check password", err)
	}
	if !ok {
		return Session{}, errBadCredentials
	}
	return s.session(user)
}

func (s *Service) session(user models.User) (Session, error) {
	token, err := s.Issuer.GenerateToken(models.Identity{ID: user.ID, Email: user.Email})
	if err != nil {
		return Session{}, apperr.Backend("sign token", err)
	}
	return Session{Token: token, User: user}, nil
}

// Me returns the caller's profile, including the admin flag.
func (s *Service) Me(ctx context.Context) (Profile, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return Profile{}, apperr.ErrUnauthenticated
	}
	isAdmin, err := s.Users.IsAdmin(ctx, id.ID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Identity: id, IsAdmin: isAdmin}, nil
}

// GrantAdmin sets or clears the admin flag by email. Operator use only.
func (s *Service) GrantAdmin(ctx context.Context, email string, admin bool) error {
	return s.Users.SetAdmin(ctx, strings.TrimSpace(email), admin)
}
