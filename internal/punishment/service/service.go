package service

import (
	"context"
	"errors"
	"time"

	"github.com/smiileyface/ezpunishments/internal/common/clock"
	commonerrors "github.com/smiileyface/ezpunishments/internal/common/errors"
	"github.com/smiileyface/ezpunishments/internal/common/logger"
	"github.com/smiileyface/ezpunishments/internal/mojang"
	"github.com/smiileyface/ezpunishments/internal/observability/metrics"
	punishmentdomain "github.com/smiileyface/ezpunishments/internal/punishment/domain"
	punishmentrepo "github.com/smiileyface/ezpunishments/internal/punishment/repository"
)

type Service struct {
	repo     punishmentrepo.Repository
	resolver mojang.Resolver
	clock    clock.Clock
	log      *logger.Logger
}

func New(repo punishmentrepo.Repository, resolver mojang.Resolver, clk clock.Clock, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		clock:    clk,
		log:      log,
	}
}

type CreateInput struct {
	MCUsername string
	Reason     string
	Proof      string
	PunishedBy string
	Expires    time.Time
}

type UpdateInput struct {
	Reason    *string
	Proof     *string
	IsActive  *bool
	RemovedBy *string
	Expires   *time.Time
}

// Create resolves the target and issuer names independently and persists
// the fully-resolved record in a single insert. Either resolution failure
// aborts the whole creation; nothing is written until both succeed.
func (s *Service) Create(ctx context.Context, input CreateInput) (punishmentdomain.Punishment, error) {
	s.log.WithFields(ctx, logger.Fields{
		"mc_username": input.MCUsername,
		"punished_by": input.PunishedBy,
		"action":      "create_punishment_attempt",
	}).Info("create punishment attempt")

	if err := validateCreateInput(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"mc_username": input.MCUsername,
			"action":      "create_punishment_validation_failed",
		}).Warnf("create punishment validation failed: %v", err)
		return punishmentdomain.Punishment{}, err
	}

	mcUUID, err := s.resolveName(ctx, input.MCUsername, "target")
	if err != nil {
		return punishmentdomain.Punishment{}, err
	}

	punishedByUUID, err := s.resolveName(ctx, input.PunishedBy, "issuer")
	if err != nil {
		return punishmentdomain.Punishment{}, err
	}

	now := s.clock.Now()
	p := punishmentdomain.Punishment{
		MCUsername:     input.MCUsername,
		MCUUID:         mcUUID,
		Reason:         input.Reason,
		Proof:          input.Proof,
		PunishedBy:     input.PunishedBy,
		PunishedByUUID: punishedByUUID,
		IsActive:       true,
		Expires:        input.Expires,
		DatePunished:   now,
		LastUpdated:    now,
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"mc_username": input.MCUsername,
			"action":      "create_punishment_failed",
		}).Errorf("create punishment failed: %v", err)
		return punishmentdomain.Punishment{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.PunishmentsCreated.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"punishment_id": created.ID,
		"mc_username":   created.MCUsername,
		"punished_by":   created.PunishedBy,
		"action":        "punishment_created",
	}).Info("punishment created")

	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (punishmentdomain.Punishment, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, punishmentrepo.ErrPunishmentNotFound) {
			return punishmentdomain.Punishment{}, ErrPunishmentNotFound
		}
		return punishmentdomain.Punishment{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, filter punishmentdomain.Filter) ([]punishmentdomain.Punishment, error) {
	punishments, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "list_punishments_failed",
		}).Errorf("list punishments failed: %v", err)
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return punishments, nil
}

// Update applies a partial update. Identity fields are never recomputed,
// except that setting removed_by resolves the remover's UUID the same way
// issuers are resolved at creation.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (punishmentdomain.Punishment, error) {
	update := punishmentdomain.Update{
		Reason:   input.Reason,
		Proof:    input.Proof,
		IsActive: input.IsActive,
		Expires:  input.Expires,
	}

	if input.RemovedBy != nil && *input.RemovedBy != "" {
		removedByUUID, err := s.resolveName(ctx, *input.RemovedBy, "remover")
		if err != nil {
			return punishmentdomain.Punishment{}, err
		}
		update.RemovedBy = input.RemovedBy
		update.RemovedByUUID = &removedByUUID
	} else if input.RemovedBy != nil {
		update.RemovedBy = input.RemovedBy
	}

	if update.Empty() {
		return punishmentdomain.Punishment{}, ErrEmptyUpdate
	}

	if err := s.repo.Update(ctx, id, update, s.clock.Now()); err != nil {
		if errors.Is(err, punishmentrepo.ErrPunishmentNotFound) {
			return punishmentdomain.Punishment{}, ErrPunishmentNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"punishment_id": id,
			"action":        "update_punishment_failed",
		}).Errorf("update punishment failed: %v", err)
		return punishmentdomain.Punishment{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.PunishmentsUpdated.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"punishment_id": id,
		"action":        "punishment_updated",
	}).Info("punishment updated")

	return s.Get(ctx, id)
}

func (s *Service) resolveName(ctx context.Context, username, role string) (string, error) {
	uuid, err := s.resolver.Resolve(ctx, username)
	if err != nil {
		if errors.Is(err, mojang.ErrNameNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": username,
				"role":     role,
				"action":   "punishment_name_unresolved",
			}).Warnf("%s name does not resolve", role)
			return "", ErrInvalidMinecraftName
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"role":     role,
			"action":   "punishment_resolve_failed",
		}).Errorf("%s name resolution failed: %v", role, err)
		return "", err
	}
	return uuid, nil
}

func validateCreateInput(input CreateInput) error {
	if input.MCUsername == "" {
		return ErrTargetRequired
	}
	if input.Reason == "" {
		return ErrReasonRequired
	}
	if input.PunishedBy == "" {
		return ErrPunishedByRequired
	}
	if input.Expires.IsZero() {
		return ErrExpiresRequired
	}
	return nil
}
