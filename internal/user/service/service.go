package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smiileyface/ezpunishments/internal/common/clock"
	"github.com/smiileyface/ezpunishments/internal/common/constants"
	commoncrypto "github.com/smiileyface/ezpunishments/internal/common/crypto"
	commonerrors "github.com/smiileyface/ezpunishments/internal/common/errors"
	"github.com/smiileyface/ezpunishments/internal/common/logger"
	"github.com/smiileyface/ezpunishments/internal/mojang"
	"github.com/smiileyface/ezpunishments/internal/observability/metrics"
	userdomain "github.com/smiileyface/ezpunishments/internal/user/domain"
	userrepo "github.com/smiileyface/ezpunishments/internal/user/repository"
)

type Service struct {
	repo        userrepo.Repository
	resolver    mojang.Resolver
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	jwtSecret   []byte
	tokenTTL    time.Duration
	log         *logger.Logger
}

type Deps struct {
	Repo        userrepo.Repository
	Resolver    mojang.Resolver
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

func New(deps Deps, cfg Config) *Service {
	return &Service{
		repo:        deps.Repo,
		resolver:    deps.Resolver,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		clock:       deps.Clock,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenTTL:    cfg.TokenTTL,
		log:         deps.Log,
	}
}

type RegisterInput struct {
	Username string
	Password string
}

// Register resolves the username against the Mojang directory and stores a
// new account bound to the resolved UUID. The username is the only caller
// identity input; the UUID is never accepted from outside.
func (s *Service) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := validateRegisterInput(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return userdomain.User{}, err
	}

	mcUUID, err := s.resolver.Resolve(ctx, input.Username)
	if err != nil {
		if errors.Is(err, mojang.ErrNameNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_name_unresolved",
			}).Warn("register failed: username does not resolve")
			return userdomain.User{}, ErrInvalidMinecraftName
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_resolve_failed",
		}).Errorf("register failed: resolve error: %v", err)
		return userdomain.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return userdomain.User{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return userdomain.User{}, err
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     input.Username,
		MCUUID:       mcUUID,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			return userdomain.User{}, ErrUsernameTaken
		}
		if errors.Is(err, userrepo.ErrUUIDAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_profile_exists",
			}).Warn("register failed: profile already bound")
			return userdomain.User{}, ErrProfileTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.AccountsCreated.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	return user, nil
}

// RegisterSuperuser creates an account and elevates it to staff+superuser.
func (s *Service) RegisterSuperuser(ctx context.Context, username, password string) (userdomain.User, error) {
	user, err := s.Register(ctx, RegisterInput{Username: username, Password: password})
	if err != nil {
		return userdomain.User{}, err
	}

	if err := s.repo.SetSuperuser(ctx, user.ID); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"user_id":  string(user.ID),
			"action":   "register_superuser_failed",
		}).Errorf("superuser elevation failed: %v", err)
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	user.IsStaff = true
	user.IsSuperuser = true
	return user, nil
}

// IssueToken verifies the credentials and returns a signed access token.
func (s *Service) IssueToken(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"action":   "token_user_not_found",
			}).Warn("token issue failed: user not found")
			return "", ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "token_fetch_failed",
		}).Errorf("token issue failed: %v", err)
		return "", commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "token_invalid_password",
		}).Warn("token issue failed: invalid password")
		return "", ErrInvalidCredentials
	}

	token, err := s.signToken(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"user_id":  string(user.ID),
			"action":   "token_sign_failed",
		}).Errorf("token issue failed: sign error: %v", err)
		return "", err
	}

	metrics.TokensIssued.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": username,
		"user_id":  string(user.ID),
		"action":   "token_issued",
	}).Info("token issued")

	return token, nil
}

func (s *Service) Profile(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return userdomain.User{}, commonerrors.NewDomainError(
				"USER_NOT_FOUND",
				commonerrors.CategoryNotFound,
				404,
				"user not found",
			)
		}
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return user, nil
}

// ChangePassword re-hashes and stores a new credential. Username and
// mc_uuid are immutable after creation.
func (s *Service) ChangePassword(ctx context.Context, id userdomain.ID, password string) error {
	if len(password) < constants.PasswordMinLength {
		return ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(id),
			"action":  "change_password_failed",
		}).Errorf("change password failed: %v", err)
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(id),
		"action":  "password_changed",
	}).Info("password changed")
	return nil
}

func (s *Service) signToken(user userdomain.User) (string, error) {
	jti, err := s.idGenerator.NewID()
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub": string(user.ID),
		"usr": user.Username,
		"jti": jti,
		"exp": now.Add(s.tokenTTL).Unix(),
		"iat": now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func validateRegisterInput(input RegisterInput) error {
	if input.Username == "" {
		return ErrUsernameRequired
	}
	if len(input.Username) > constants.UsernameMaxLength {
		return ErrUsernameTooLong
	}
	if len(input.Password) < constants.PasswordMinLength {
		return ErrPasswordTooShort
	}
	return nil
}
