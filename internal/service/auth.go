// Package service — account and login business logic.
//
// AuthService sits between the GraphQL resolvers and the user repository /
// auth utilities:
//
//	resolvers → AuthService (rules) → UserRepository (DB)
//	                        ↘ TokenService (JWT), PasswordService (bcrypt)
//
// It owns the signup/login rules and the token→user resolution the
// middleware uses on every request.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/library-backend/internal/apperror"
	"github.com/sakif/library-backend/internal/auth"
	"github.com/sakif/library-backend/internal/model"
	"github.com/sakif/library-backend/internal/repository"
)

// Account constraints, carried over from the persistence schema of the
// system this replaces: usernames at least 4 characters, passwords at least
// 8 before hashing.
const (
	MinUsernameLength = 4
	MinPasswordLength = 8
)

// AuthService handles signup, login, and token resolution.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// CreateUser registers a new account. No authentication required — this IS
// the signup path.
//
// The password is bcrypt-hashed before it goes anywhere near the database;
// the plaintext is never stored or logged. Length is validated on the
// plaintext (a hash is always long).
func (s *AuthService) CreateUser(ctx context.Context, username, password, favouriteGenre string) (*model.User, error) {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength {
		return nil, apperror.ValidationFailed(
			fmt.Sprintf("username must be at least %d characters", MinUsernameLength), username)
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed(
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength), nil)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		s.logger.Error("hashing password failed", slog.String("error", err.Error()))
		return nil, apperror.Internal("failed to create user")
	}

	user := &model.User{
		Username:       username,
		Password:       hash,
		FavouriteGenre: favouriteGenre,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err // duplicate username etc. — already a domain error
		}
		s.logger.Error("creating user failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal("failed to create user")
	}

	s.logger.Info("user created", slog.String("username", user.Username))
	return user, nil
}

// Login verifies the credentials and issues a signed token.
//
// Error contract:
//   - unknown username  → NOT_FOUND
//   - wrong password    → BAD_USER_INPUT (invalid credentials)
//
// The bcrypt comparison is constant-time, so response timing doesn't leak
// how much of the password was right.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err // repository already returns NotFound
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		s.logger.Info("login failed", slog.String("username", username))
		return "", nil, apperror.BadCredentials()
	}

	token, err := s.tokens.Generate(user.ID.Hex(), user.Username)
	if err != nil {
		s.logger.Error("issuing token failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return "", nil, apperror.Internal("failed to issue token")
	}

	s.logger.Info("user logged in", slog.String("username", username))
	return token, user, nil
}

// UserFromToken resolves a bearer token to its user record. Implements
// auth.UserSource for the middleware.
//
// Any failure — bad signature, expiry, malformed id, vanished user — returns
// an error, which the middleware treats as "anonymous". A valid token is no
// guarantee the user still exists.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("service: token subject is not a valid id: %w", err)
	}

	return s.users.FindByID(ctx, id)
}
