package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smiileyface/ezpunishments/internal/common/clock"
	"github.com/smiileyface/ezpunishments/internal/common/logger"
	"github.com/smiileyface/ezpunishments/internal/mojang"
	punishmentdomain "github.com/smiileyface/ezpunishments/internal/punishment/domain"
	punishmentrepo "github.com/smiileyface/ezpunishments/internal/punishment/repository"
)

type mockRepository struct {
	createFunc   func(ctx context.Context, p punishmentdomain.Punishment) (punishmentdomain.Punishment, error)
	findByIDFunc func(ctx context.Context, id int64) (punishmentdomain.Punishment, error)
	listFunc     func(ctx context.Context, filter punishmentdomain.Filter) ([]punishmentdomain.Punishment, error)
	updateFunc   func(ctx context.Context, id int64, update punishmentdomain.Update, updatedAt time.Time) error
	deleteFunc   func(ctx context.Context, id int64) error
}

func (m *mockRepository) Create(ctx context.Context, p punishmentdomain.Punishment) (punishmentdomain.Punishment, error) {
	return m.createFunc(ctx, p)
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (punishmentdomain.Punishment, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockRepository) List(ctx context.Context, filter punishmentdomain.Filter) ([]punishmentdomain.Punishment, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockRepository) Update(ctx context.Context, id int64, update punishmentdomain.Update, updatedAt time.Time) error {
	return m.updateFunc(ctx, id, update, updatedAt)
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

type mockResolver struct {
	resolveFunc func(ctx context.Context, username string) (string, error)
}

func (m *mockResolver) Resolve(ctx context.Context, username string) (string, error) {
	return m.resolveFunc(ctx, username)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "critical")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *mockRepository, resolver *mockResolver) *Service {
	t.Helper()
	return New(repo, resolver, clock.NewMockClock(testNow), newTestLogger(t))
}

func staticResolver(uuids map[string]string) *mockResolver {
	return &mockResolver{
		resolveFunc: func(ctx context.Context, username string) (string, error) {
			uuid, ok := uuids[username]
			if !ok {
				return "", mojang.ErrNameNotFound
			}
			return uuid, nil
		},
	}
}

func TestCreateResolvesBothNames(t *testing.T) {
	var persisted punishmentdomain.Punishment
	repo := &mockRepository{
		createFunc: func(ctx context.Context, p punishmentdomain.Punishment) (punishmentdomain.Punishment, error) {
			persisted = p
			p.ID = 1
			return p, nil
		},
	}
	resolver := staticResolver(map[string]string{
		"smiileyface": "c6edbd5a24aa440d918a1e299b22e5f9",
		"SamieMarie":  "c5cb9e1c4cbe4563bc55754d59b55a1e",
	})

	svc := newTestService(t, repo, resolver)

	expires := testNow.Add(72 * time.Hour)
	created, err := svc.Create(context.Background(), CreateInput{
		MCUsername: "smiileyface",
		Reason:     "griefing",
		Proof:      "https://imgur.com/evidence",
		PunishedBy: "SamieMarie",
		Expires:    expires,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected assigned id 1, got %d", created.ID)
	}
	if persisted.MCUUID != "c6edbd5a24aa440d918a1e299b22e5f9" {
		t.Errorf("unexpected target uuid %s", persisted.MCUUID)
	}
	if persisted.PunishedByUUID != "c5cb9e1c4cbe4563bc55754d59b55a1e" {
		t.Errorf("unexpected issuer uuid %s", persisted.PunishedByUUID)
	}
	if !persisted.IsActive {
		t.Error("new punishments must start active")
	}
	if persisted.RemovedBy != nil || persisted.RemovedByUUID != nil {
		t.Error("new punishments must have no remover")
	}
	if !persisted.DatePunished.Equal(testNow) || !persisted.LastUpdated.Equal(testNow) {
		t.Error("timestamps must come from the clock")
	}
}

func TestCreateMissingFields(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, p punishmentdomain.Punishment) (punishmentdomain.Punishment, error) {
			t.Error("repository must not be called for invalid input")
			return p, nil
		},
	}
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, username string) (string, error) {
			t.Error("resolver must not be called for invalid input")
			return "", nil
		},
	}

	svc := newTestService(t, repo, resolver)

	expires := testNow.Add(time.Hour)
	cases := []struct {
		name    string
		input   CreateInput
		wantErr error
	}{
		{
			name:    "missing target",
			input:   CreateInput{Reason: "griefing", PunishedBy: "SamieMarie", Expires: expires},
			wantErr: ErrTargetRequired,
		},
		{
			name:    "missing reason",
			input:   CreateInput{MCUsername: "smiileyface", PunishedBy: "SamieMarie", Expires: expires},
			wantErr: ErrReasonRequired,
		},
		{
			name:    "missing issuer",
			input:   CreateInput{MCUsername: "smiileyface", Reason: "griefing", Expires: expires},
			wantErr: ErrPunishedByRequired,
		},
		{
			name:    "missing expires",
			input:   CreateInput{MCUsername: "smiileyface", Reason: "griefing", PunishedBy: "SamieMarie"},
			wantErr: ErrExpiresRequired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateUnresolvableTargetWritesNothing(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, p punishmentdomain.Punishment) (punishmentdomain.Punishment, error) {
			t.Error("nothing must be persisted when resolution fails")
			return p, nil
		},
	}
	resolver := staticResolver(map[string]string{"SamieMarie": "c5cb9e1c4cbe4563bc55754d59b55a1e"})

	svc := newTestService(t, repo, resolver)

	_, err := svc.Create(context.Background(), CreateInput{
		MCUsername: "nosuchplayer",
		Reason:     "griefing",
		PunishedBy: "SamieMarie",
		Expires:    testNow.Add(time.Hour),
	})
	if !errors.Is(err, ErrInvalidMinecraftName) {
		t.Errorf("expected ErrInvalidMinecraftName, got %v", err)
	}
}

func TestCreateUnresolvableIssuerWritesNothing(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, p punishmentdomain.Punishment) (punishmentdomain.Punishment, error) {
			t.Error("nothing must be persisted when resolution fails")
			return p, nil
		},
	}
	resolver := staticResolver(map[string]string{"smiileyface": "c6edbd5a24aa440d918a1e299b22e5f9"})

	svc := newTestService(t, repo, resolver)

	_, err := svc.Create(context.Background(), CreateInput{
		MCUsername: "smiileyface",
		Reason:     "griefing",
		PunishedBy: "ghost",
		Expires:    testNow.Add(time.Hour),
	})
	if !errors.Is(err, ErrInvalidMinecraftName) {
		t.Errorf("expected ErrInvalidMinecraftName, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	repo := &mockRepository{
		findByIDFunc: func(ctx context.Context, id int64) (punishmentdomain.Punishment, error) {
			return punishmentdomain.Punishment{}, punishmentrepo.ErrPunishmentNotFound
		},
	}

	svc := newTestService(t, repo, &mockResolver{})

	_, err := svc.Get(context.Background(), 42)
	if !errors.Is(err, ErrPunishmentNotFound) {
		t.Errorf("expected ErrPunishmentNotFound, got %v", err)
	}
}

func TestListPassesFilterThrough(t *testing.T) {
	var seen punishmentdomain.Filter
	repo := &mockRepository{
		listFunc: func(ctx context.Context, filter punishmentdomain.Filter) ([]punishmentdomain.Punishment, error) {
			seen = filter
			return []punishmentdomain.Punishment{{ID: 1}, {ID: 2}}, nil
		},
	}

	svc := newTestService(t, repo, &mockResolver{})

	filter := punishmentdomain.Filter{
		MCUsernames: []string{"smiileyface", "SamieMarie"},
		PunishedBy:  []string{"SamieMarie"},
	}
	punishments, err := svc.List(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(punishments) != 2 {
		t.Errorf("expected 2 punishments, got %d", len(punishments))
	}
	if len(seen.MCUsernames) != 2 || len(seen.PunishedBy) != 1 {
		t.Errorf("filter not passed through: %+v", seen)
	}
}

func TestUpdatePartialFieldsOnly(t *testing.T) {
	var applied punishmentdomain.Update
	var appliedAt time.Time
	repo := &mockRepository{
		updateFunc: func(ctx context.Context, id int64, update punishmentdomain.Update, updatedAt time.Time) error {
			applied = update
			appliedAt = updatedAt
			return nil
		},
		findByIDFunc: func(ctx context.Context, id int64) (punishmentdomain.Punishment, error) {
			return punishmentdomain.Punishment{ID: id, IsActive: false}, nil
		},
	}

	svc := newTestService(t, repo, &mockResolver{})

	inactive := false
	updated, err := svc.Update(context.Background(), 7, UpdateInput{IsActive: &inactive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied.IsActive == nil || *applied.IsActive {
		t.Error("expected is_active=false to be applied")
	}
	if applied.Reason != nil || applied.Proof != nil || applied.Expires != nil {
		t.Error("unset fields must not be touched")
	}
	if applied.RemovedBy != nil || applied.RemovedByUUID != nil {
		t.Error("remover must not change when not supplied")
	}
	if !appliedAt.Equal(testNow) {
		t.Error("last_updated must come from the clock")
	}
	if updated.ID != 7 {
		t.Errorf("expected refreshed record, got id %d", updated.ID)
	}
}

func TestUpdateResolvesRemover(t *testing.T) {
	var applied punishmentdomain.Update
	repo := &mockRepository{
		updateFunc: func(ctx context.Context, id int64, update punishmentdomain.Update, updatedAt time.Time) error {
			applied = update
			return nil
		},
		findByIDFunc: func(ctx context.Context, id int64) (punishmentdomain.Punishment, error) {
			return punishmentdomain.Punishment{ID: id}, nil
		},
	}
	resolver := staticResolver(map[string]string{"SamieMarie": "c5cb9e1c4cbe4563bc55754d59b55a1e"})

	svc := newTestService(t, repo, resolver)

	removedBy := "SamieMarie"
	if _, err := svc.Update(context.Background(), 7, UpdateInput{RemovedBy: &removedBy}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied.RemovedBy == nil || *applied.RemovedBy != "SamieMarie" {
		t.Error("expected removed_by to be applied")
	}
	if applied.RemovedByUUID == nil || *applied.RemovedByUUID != "c5cb9e1c4cbe4563bc55754d59b55a1e" {
		t.Error("expected remover uuid to be resolved and applied")
	}
}

func TestUpdateUnresolvableRemover(t *testing.T) {
	repo := &mockRepository{
		updateFunc: func(ctx context.Context, id int64, update punishmentdomain.Update, updatedAt time.Time) error {
			t.Error("nothing must be written when the remover does not resolve")
			return nil
		},
	}
	resolver := staticResolver(map[string]string{})

	svc := newTestService(t, repo, resolver)

	removedBy := "ghost"
	_, err := svc.Update(context.Background(), 7, UpdateInput{RemovedBy: &removedBy})
	if !errors.Is(err, ErrInvalidMinecraftName) {
		t.Errorf("expected ErrInvalidMinecraftName, got %v", err)
	}
}

func TestUpdateEmpty(t *testing.T) {
	svc := newTestService(t, &mockRepository{}, &mockResolver{})

	_, err := svc.Update(context.Background(), 7, UpdateInput{})
	if !errors.Is(err, ErrEmptyUpdate) {
		t.Errorf("expected ErrEmptyUpdate, got %v", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := &mockRepository{
		updateFunc: func(ctx context.Context, id int64, update punishmentdomain.Update, updatedAt time.Time) error {
			return punishmentrepo.ErrPunishmentNotFound
		},
	}

	svc := newTestService(t, repo, &mockResolver{})

	reason := "updated reason"
	_, err := svc.Update(context.Background(), 404, UpdateInput{Reason: &reason})
	if !errors.Is(err, ErrPunishmentNotFound) {
		t.Errorf("expected ErrPunishmentNotFound, got %v", err)
	}
}
