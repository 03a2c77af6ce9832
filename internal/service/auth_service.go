package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/todo-service/internal/auth"
	"github.com/spec-kit/todo-service/internal/config"
	"github.com/spec-kit/todo-service/internal/domain"
	"github.com/spec-kit/todo-service/internal/events"
	"github.com/spec-kit/todo-service/internal/repository"
	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
	maxPasswordBytes = 72
)

var (
	// ErrInvalidCredentials is returned for malformed input without saying which field.
	ErrInvalidCredentials = apperrors.NewValidationError("invalid_credentials", "email or password malformed")
	// ErrEmailTaken is the one registration failure callers may distinguish.
	ErrEmailTaken = apperrors.NewConflict("email_taken", "email already registered")
	// ErrBadLogin covers both unknown emails and wrong passwords.
	ErrBadLogin = apperrors.NewUnauthorized("bad_login", "email or password incorrect")
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	hasher     *auth.Hasher
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
}

// AuthDependencies encapsulates requirements for the auth service. Hasher and
// Tokens are built from config when nil.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     *auth.Hasher
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewHasher(cfg.BcryptCost)
	}
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL())
	}
	return &AuthService{
		users:      deps.UserRepo,
		hasher:     hasher,
		tokenMgr:   tokens,
		dispatcher: deps.Dispatcher,
	}
}

// Register creates a credential holder and returns a token for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, domain.Token, error) {
	email, ok := normalizeCredentials(email, password)
	if !ok {
		return nil, domain.Token{}, ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, domain.Token{}, apperrors.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.Token{}, ErrEmailTaken
		}
		return nil, domain.Token{}, apperrors.NewInternalError(fmt.Errorf("create user: %w", err))
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, domain.Token{}, err
	}

	s.publish(ctx, events.Event{Type: events.EventUserRegistered, SubjectID: user.ID})
	return user, token, nil
}

// Login authenticates a credential holder. Unknown emails return before any
// hash comparison runs, so the two bad_login paths differ in latency.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Token, error) {
	email, ok := normalizeCredentials(email, password)
	if !ok {
		return nil, domain.Token{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Token{}, ErrBadLogin
		}
		return nil, domain.Token{}, apperrors.NewInternalError(fmt.Errorf("lookup user: %w", err))
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, domain.Token{}, ErrBadLogin
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, domain.Token{}, err
	}
	return user, token, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (domain.Token, error) {
	token, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return domain.Token{}, apperrors.NewInternalError(fmt.Errorf("sign token: %w", err))
	}
	return token, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}

// normalizeCredentials lowercases the email and checks both fields' shape.
func normalizeCredentials(email, password string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return "", false
	}
	if utf8.RuneCountInString(password) < minPasswordLength || len(password) > maxPasswordBytes {
		return "", false
	}
	return email, true
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	domainPart := email[at+1:]
	return strings.Contains(domainPart, ".") && !strings.HasSuffix(domainPart, ".") && !strings.HasPrefix(domainPart, ".")
}
