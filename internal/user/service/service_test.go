package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smiileyface/ezpunishments/internal/common/clock"
	"github.com/smiileyface/ezpunishments/internal/common/logger"
	"github.com/smiileyface/ezpunishments/internal/mojang"
	userdomain "github.com/smiileyface/ezpunishments/internal/user/domain"
	userrepo "github.com/smiileyface/ezpunishments/internal/user/repository"
)

type mockRepository struct {
	createFunc         func(ctx context.Context, user userdomain.User) error
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
	findByIDFunc       func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	updatePasswordFunc func(ctx context.Context, id userdomain.ID, passwordHash string) error
	setSuperuserFunc   func(ctx context.Context, id userdomain.ID) error
}

func (m *mockRepository) Create(ctx context.Context, user userdomain.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockRepository) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	return m.findByUsernameFunc(ctx, username)
}

func (m *mockRepository) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockRepository) UpdatePassword(ctx context.Context, id userdomain.ID, passwordHash string) error {
	return m.updatePasswordFunc(ctx, id, passwordHash)
}

func (m *mockRepository) SetSuperuser(ctx context.Context, id userdomain.ID) error {
	return m.setSuperuserFunc(ctx, id)
}

type mockResolver struct {
	resolveFunc func(ctx context.Context, username string) (string, error)
}

func (m *mockResolver) Resolve(ctx context.Context, username string) (string, error) {
	return m.resolveFunc(ctx, username)
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	return m.hashFunc(password)
}

func (m *mockHasher) Compare(hash, password string) error {
	return m.compareFunc(hash, password)
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	return m.newIDFunc()
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "critical")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, repo *mockRepository, resolver *mockResolver) *Service {
	t.Helper()
	return New(
		Deps{
			Repo:     repo,
			Resolver: resolver,
			Hasher: &mockHasher{
				hashFunc:    func(password string) (string, error) { return "hashed:" + password, nil },
				compareFunc: func(hash, password string) error { return nil },
			},
			IDGenerator: &mockIDGenerator{
				newIDFunc: func() (string, error) { return "id-1", nil },
			},
			Clock: clock.NewMockClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)),
			Log:   newTestLogger(t),
		},
		Config{
			JWTSecret: testSecret,
			TokenTTL:  24 * time.Hour,
		},
	)
}

func TestRegisterStoresResolvedUUID(t *testing.T) {
	var created userdomain.User
	repo := &mockRepository{
		createFunc: func(ctx context.Context, user userdomain.User) error {
			created = user
			return nil
		},
	}
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, username string) (string, error) {
			if username != "smiileyface" {
				t.Errorf("resolved unexpected username %s", username)
			}
			return "c6edbd5a24aa440d918a1e299b22e5f9", nil
		},
	}

	svc := newTestService(t, repo, resolver)

	user, err := svc.Register(context.Background(), RegisterInput{Username: "smiileyface", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.MCUUID != "c6edbd5a24aa440d918a1e299b22e5f9" {
		t.Errorf("expected resolved uuid, got %s", user.MCUUID)
	}
	if created.PasswordHash != "hashed:secret" {
		t.Errorf("expected hashed password persisted, got %s", created.PasswordHash)
	}
	if created.PasswordHash == "secret" {
		t.Error("plaintext password must never be persisted")
	}
	if !created.IsActive {
		t.Error("new accounts must start active")
	}
	if created.IsStaff || created.IsSuperuser {
		t.Error("new accounts must not be elevated")
	}
}

func TestRegisterEmptyUsername(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, user userdomain.User) error {
			t.Error("repository must not be called for invalid input")
			return nil
		},
	}
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, username string) (string, error) {
			t.Error("resolver must not be called for invalid input")
			return "", nil
		},
	}

	svc := newTestService(t, repo, resolver)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "", Password: "secret"})
	if !errors.Is(err, ErrUsernameRequired) {
		t.Errorf("expected ErrUsernameRequired, got %v", err)
	}
}

func TestRegisterUsernameTooLong(t *testing.T) {
	svc := newTestService(t, &mockRepository{}, &mockResolver{})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "ThisNameIsTooLongFor", Password: "secret"})
	if !errors.Is(err, ErrUsernameTooLong) {
		t.Errorf("expected ErrUsernameTooLong, got %v", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newTestService(t, &mockRepository{}, &mockResolver{})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "smiileyface", Password: "abcd"})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestRegisterUnresolvableName(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, user userdomain.User) error {
			t.Error("nothing must be persisted when the name does not resolve")
			return nil
		},
	}
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, username string) (string, error) {
			return "", mojang.ErrNameNotFound
		},
	}

	svc := newTestService(t, repo, resolver)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "nosuchplayer", Password: "secret"})
	if !errors.Is(err, ErrInvalidMinecraftName) {
		t.Errorf("expected ErrInvalidMinecraftName, got %v", err)
	}
}

func TestRegisterResolverOutage(t *testing.T) {
	outage := errors.New("connection refused")
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, username string) (string, error) {
			return "", outage
		},
	}

	svc := newTestService(t, &mockRepository{}, resolver)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "smiileyface", Password: "secret"})
	if !errors.Is(err, outage) {
		t.Errorf("expected outage error to propagate, got %v", err)
	}
	if errors.Is(err, ErrInvalidMinecraftName) {
		t.Error("outage must not be reported as an invalid name")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, user userdomain.User) error {
			return userrepo.ErrUsernameAlreadyExists
		},
	}
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, username string) (string, error) {
			return "c6edbd5a24aa440d918a1e299b22e5f9", nil
		},
	}

	svc := newTestService(t, repo, resolver)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "smiileyface", Password: "secret"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
	if ErrUsernameTaken.HTTPStatus() != 400 {
		t.Errorf("duplicate username must map to 400, got %d", ErrUsernameTaken.HTTPStatus())
	}
}

func TestRegisterDuplicateProfile(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, user userdomain.User) error {
			return userrepo.ErrUUIDAlreadyExists
		},
	}
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, username string) (string, error) {
			return "c6edbd5a24aa440d918a1e299b22e5f9", nil
		},
	}

	svc := newTestService(t, repo, resolver)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "smiileyface", Password: "secret"})
	if !errors.Is(err, ErrProfileTaken) {
		t.Errorf("expected ErrProfileTaken, got %v", err)
	}
}

func TestRegisterSuperuserElevates(t *testing.T) {
	elevated := false
	repo := &mockRepository{
		createFunc: func(ctx context.Context, user userdomain.User) error { return nil },
		setSuperuserFunc: func(ctx context.Context, id userdomain.ID) error {
			elevated = true
			return nil
		},
	}
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, username string) (string, error) {
			return "c5cb9e1c4cbe4563bc55754d59b55a1e", nil
		},
	}

	svc := newTestService(t, repo, resolver)

	user, err := svc.RegisterSuperuser(context.Background(), "SamieMarie", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !elevated {
		t.Error("expected SetSuperuser to be called")
	}
	if !user.IsStaff || !user.IsSuperuser {
		t.Error("returned user must carry staff and superuser flags")
	}
}

func TestIssueTokenSignsClaims(t *testing.T) {
	repo := &mockRepository{
		findByUsernameFunc: func(ctx context.Context, username string) (userdomain.User, error) {
			return userdomain.User{
				ID:           "user-1",
				Username:     "smiileyface",
				PasswordHash: "hashed:secret",
			}, nil
		},
	}

	svc := newTestService(t, repo, &mockResolver{})

	token, err := svc.IssueToken(context.Background(), "smiileyface", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "user-1" {
		t.Errorf("expected sub user-1, got %v", claims["sub"])
	}
	if claims["usr"] != "smiileyface" {
		t.Errorf("expected usr smiileyface, got %v", claims["usr"])
	}
}

func TestIssueTokenUnknownUser(t *testing.T) {
	repo := &mockRepository{
		findByUsernameFunc: func(ctx context.Context, username string) (userdomain.User, error) {
			return userdomain.User{}, userrepo.ErrUserNotFound
		},
	}

	svc := newTestService(t, repo, &mockResolver{})

	_, err := svc.IssueToken(context.Background(), "ghost", "secret")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestIssueTokenWrongPassword(t *testing.T) {
	repo := &mockRepository{
		findByUsernameFunc: func(ctx context.Context, username string) (userdomain.User, error) {
			return userdomain.User{ID: "user-1", Username: "smiileyface", PasswordHash: "hashed:other"}, nil
		},
	}
	svc := New(
		Deps{
			Repo:     repo,
			Resolver: &mockResolver{},
			Hasher: &mockHasher{
				compareFunc: func(hash, password string) error { return errors.New("mismatch") },
			},
			IDGenerator: &mockIDGenerator{newIDFunc: func() (string, error) { return "id-1", nil }},
			Clock:       clock.NewMockClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)),
			Log:         newTestLogger(t),
		},
		Config{JWTSecret: testSecret, TokenTTL: 24 * time.Hour},
	)

	_, err := svc.IssueToken(context.Background(), "smiileyface", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestIssueTokenEmptyCredentials(t *testing.T) {
	svc := newTestService(t, &mockRepository{}, &mockResolver{})

	if _, err := svc.IssueToken(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePasswordRehashes(t *testing.T) {
	var storedHash string
	repo := &mockRepository{
		updatePasswordFunc: func(ctx context.Context, id userdomain.ID, passwordHash string) error {
			storedHash = passwordHash
			return nil
		},
	}

	svc := newTestService(t, repo, &mockResolver{})

	if err := svc.ChangePassword(context.Background(), "user-1", "newsecret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storedHash != "hashed:newsecret" {
		t.Errorf("expected rehashed credential, got %s", storedHash)
	}
}

func TestChangePasswordTooShort(t *testing.T) {
	repo := &mockRepository{
		updatePasswordFunc: func(ctx context.Context, id userdomain.ID, passwordHash string) error {
			t.Error("repository must not be called for invalid input")
			return nil
		},
	}

	svc := newTestService(t, repo, &mockResolver{})

	if err := svc.ChangePassword(context.Background(), "user-1", "abc"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}
