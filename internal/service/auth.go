// Package service contains the business logic layer: validation, auth rules,
// and product orchestration, independent of HTTP.
//
// The dependency chain is assembled in the server package:
//
//	handler (HTTP) → service (rules) → repository (storage)
//	                          ↘ auth.TokenService / auth.PasswordService
//
// Services accept primitives and input structs, never *http.Request, and
// return domain errors (apperror), never status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"

	"github.com/vichithchamodya/product-catalog/internal/apperror"
	"github.com/vichithchamodya/product-catalog/internal/auth"
	"github.com/vichithchamodya/product-catalog/internal/model"
	"github.com/vichithchamodya/product-catalog/internal/repository"
)

// MinPasswordLength is the registration password floor.
const MinPasswordLength = 6

// AuthService handles registration, credential login, and OAuth
// login-or-register.
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

// AuthResult bundles the authenticated user with the issued access token so
// the handler can set the session cookies in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterInput is the registration form payload.
type RegisterInput struct {
	FullName        string
	Email           string
	Phone           string
	Gender          string
	Password        string
	ConfirmPassword string
}

// ValidateRegistration checks every registration rule and returns all
// failures at once, keyed by field. An empty map means valid.
//
// Rules: every field required, email shape, password at least 6 characters,
// confirmation equal to password, gender one of Male/Female/Other.
func ValidateRegistration(in RegisterInput) apperror.FieldErrors {
	errs := apperror.FieldErrors{}

	if strings.TrimSpace(in.FullName) == "" {
		errs["fullName"] = "Full name is required"
	}

	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case !validEmail(email):
		errs["email"] = "Invalid email value"
	}

	if strings.TrimSpace(in.Phone) == "" {
		errs["phone"] = "Phone number is required"
	}

	switch {
	case in.Gender == "":
		errs["gender"] = "Gender is required"
	case !slices.Contains(model.Genders, in.Gender):
		errs["gender"] = "Gender is not allowed"
	}

	switch {
	case in.Password == "":
		errs["password"] = "Password is required"
	case len(in.Password) < MinPasswordLength:
		errs["password"] = fmt.Sprintf("Password is of minimum %d characters", MinPasswordLength)
	}

	switch {
	case in.ConfirmPassword == "":
		errs["confirmPassword"] = "Confirm password is required"
	case in.ConfirmPassword != in.Password:
		errs["confirmPassword"] = "Password didn't match"
	}

	return errs
}

// Register validates the input and creates a credential account.
//
// Validation failures return before any repository call is made. On success
// the caller gets the user back but NO token: registration does not
// establish a session, the user logs in separately.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if errs := ValidateRegistration(in); len(errs) > 0 {
		return nil, errs
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        normalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Gender:       in.Gender,
		PasswordHash: hash,
		Provider:     model.ProviderLocal,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates an email/password pair and issues an access token.
//
// Every failure mode after validation (unknown email, OAuth-only account,
// wrong password) collapses into the same generic unauthorized error so a
// caller cannot tell which part was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	errs := apperror.FieldErrors{}
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case !validEmail(email):
		errs["email"] = "Invalid email value"
	}
	if password == "" {
		errs["password"] = "Password is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid login details")
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	// OAuth accounts have no password hash; they must log in upstream.
	if user.PasswordHash == "" {
		return nil, apperror.Unauthorized("invalid login details")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid login details")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// LoginOrRegisterOAuth handles a completed OAuth callback: upsert the user
// keyed by (provider, subject), then issue a token exactly as credential
// login does. First login inserts, later logins refresh name and email.
func (s *AuthService) LoginOrRegisterOAuth(ctx context.Context, identity *auth.OAuthUser) (*AuthResult, error) {
	if identity == nil {
		return nil, fmt.Errorf("service/auth: OAuth identity must not be nil")
	}

	user := &model.User{
		FullName:   identity.Name,
		Email:      normalizeEmail(identity.Email),
		Provider:   identity.Provider,
		ProviderID: identity.Subject,
	}

	if err := s.users.UpsertOAuthUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting %s user %s: %w", identity.Provider, identity.Subject, err)
	}

	s.logger.Info("user authenticated via OAuth",
		slog.String("userID", user.ID),
		slog.String("provider", identity.Provider),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by the JSON
// API after the middleware validates the token.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ValidateToken validates a JWT string and returns the userID it encodes.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}

// validEmail checks address shape with net/mail. ParseAddress accepts
// "Name <addr>" forms, so we also require the parsed address to equal the
// input.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
