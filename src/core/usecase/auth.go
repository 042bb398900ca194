package usecase

import (
	"context"
	"log/slog"
	"strings"

	"gussgame/src/core/domain"
	"gussgame/src/core/ports"
)

const (
	maxUsernameLength = 64
	// maxPasswordBytes is the longest input bcrypt accepts.
	maxPasswordBytes = 72
)

// AuthService implements login-or-register and session token checks.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    *slog.Logger
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log}
}

type LoginResult struct {
	Token string
	User  *domain.User
}

// Login signs in an existing user or registers a new one on first use.
// The role of a new user is derived from its username.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError("username", "is required")
	}
	if len(username) > maxUsernameLength {
		return nil, domain.NewValidationError("username", "is too long")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "is required")
	}
	if len(password) > maxPasswordBytes {
		return nil, domain.NewValidationError("password", "is too long")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
			return nil, domain.NewUnauthorizedError("invalid password")
		}
	case domain.IsNotFound(err):
		user, err = s.register(ctx, username, password)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	token, err := s.tokens.Issue(ports.Principal{UserID: user.ID, Username: user.Username, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) register(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, username, hash, domain.RoleForUsername(username))
	if err == nil {
		s.log.Info("user registered", "user_id", user.ID, "role", user.Role)
		return user, nil
	}
	if !domain.IsConflict(err) {
		return nil, err
	}

	// Someone registered the same name concurrently; treat it as a login.
	user, err = s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.NewUnauthorizedError("invalid password")
	}
	return user, nil
}

// Authenticate resolves a session token to its principal.
func (s *AuthService) Authenticate(token string) (*ports.Principal, error) {
	if token == "" {
		return nil, domain.NewUnauthorizedError("missing token")
	}
	p, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid token")
	}
	return p, nil
}
