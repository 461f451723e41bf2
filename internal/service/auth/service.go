package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/pkg/apperr"
	"taskmanager/pkg/logger"
	"taskmanager/pkg/metrics"
	"taskmanager/pkg/util"
)

const (
	MsgEmailInUse         = "Email already in use"
	MsgInvalidCredentials = "Invalid credentials"
	MsgPasswordTooLong    = "Password must be at most 72 bytes"
)

// UserStore is the credential store used by the service.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
}

var _ UserStore = (*repository.UserRepository)(nil)

type Service struct {
	users  UserStore
	tokens *util.TokenService
	logger *zap.Logger

	// compared against on unknown emails so both login failures cost one bcrypt run
	dummyHash string
}

func NewService(users UserStore, tokens *util.TokenService, log *zap.Logger) (*Service, error) {
	dummy, err := util.HashPassword("taskmanager-login-timing-guard")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		logger:    log,
		dummyHash: dummy,
	}, nil
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string            `json:"token"`
	User  model.UserSummary `json:"user"`
}

// Register creates a new user. No token is issued.
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	log := logger.WithTrace(ctx, s.logger)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Internal(fmt.Errorf("lookup user by email: %w", err))
	}
	if existing != nil {
		metrics.IncrementAuthAttempt("register", "conflict")
		log.Info("Register rejected: email in use")
		return nil, apperr.New(apperr.KindConflict, MsgEmailInUse)
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		if errors.Is(err, util.ErrPasswordTooLong) {
			return nil, apperr.Validation(apperr.FieldError{Field: "password", Message: MsgPasswordTooLong})
		}
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			metrics.IncrementAuthAttempt("register", "conflict")
			return nil, apperr.New(apperr.KindConflict, MsgEmailInUse)
		}
		return nil, apperr.Internal(fmt.Errorf("create user: %w", err))
	}

	metrics.IncrementAuthAttempt("register", "success")
	log.Info("User registered", zap.Int("user_id", u.ID))
	return u, nil
}

// Login checks credentials and returns a signed token. Unknown email and
// wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.WithTrace(ctx, s.logger)

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Internal(fmt.Errorf("lookup user by email: %w", err))
		}
		util.CheckPassword(password, s.dummyHash)
		return nil, s.invalidCredentials(log)
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return nil, s.invalidCredentials(log)
	}

	token, err := s.tokens.Issue(util.Identity{UserID: u.ID, Name: u.Name, Email: u.Email})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	metrics.IncrementAuthAttempt("login", "success")
	log.Info("User logged in", zap.Int("user_id", u.ID))
	return &LoginResult{Token: token, User: u.Summary()}, nil
}

func (s *Service) invalidCredentials(log *zap.Logger) error {
	metrics.IncrementAuthAttempt("login", "invalid_credentials")
	log.Info("Login rejected: invalid credentials")
	return apperr.New(apperr.KindInvalidCredentials, MsgInvalidCredentials)
}
