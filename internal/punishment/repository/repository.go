package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/smiileyface/ezpunishments/internal/common/db"
	"github.com/smiileyface/ezpunishments/internal/punishment/domain"
)

type Repository interface {
	Create(ctx context.Context, p domain.Punishment) (domain.Punishment, error)
	FindByID(ctx context.Context, id int64) (domain.Punishment, error)
	List(ctx context.Context, filter domain.Filter) ([]domain.Punishment, error)
	Update(ctx context.Context, id int64, update domain.Update, updatedAt time.Time) error
	Delete(ctx context.Context, id int64) error
}

var ErrPunishmentNotFound = errors.New("punishment not found")

const punishmentColumns = `id, mc_username, mc_uuid, reason, proof, punished_by, punished_by_uuid,
	removed_by, removed_by_uuid, is_active, expires, date_punished, last_updated`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, p domain.Punishment) (domain.Punishment, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO punishments
		 (mc_username, mc_uuid, reason, proof, punished_by, punished_by_uuid, is_active, expires, date_punished, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+punishmentColumns,
		p.MCUsername,
		p.MCUUID,
		p.Reason,
		p.Proof,
		p.PunishedBy,
		p.PunishedByUUID,
		p.IsActive,
		p.Expires,
		p.DatePunished,
		p.LastUpdated,
	)

	created, err := scanPunishment(row)
	if err := db.HandleQueryError(err, ErrPunishmentNotFound, "create punishment", start); err != nil {
		return domain.Punishment{}, err
	}
	return created, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id int64) (domain.Punishment, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+punishmentColumns+` FROM punishments WHERE id = $1`,
		id,
	)

	p, err := scanPunishment(row)
	if err := db.HandleQueryError(err, ErrPunishmentNotFound, "find punishment by id", start); err != nil {
		return domain.Punishment{}, err
	}
	return p, nil
}

func (r *PgRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Punishment, error) {
	start := time.Now()

	var mcUsernames, punishedBy []string
	if len(filter.MCUsernames) > 0 {
		mcUsernames = filter.MCUsernames
	}
	if len(filter.PunishedBy) > 0 {
		punishedBy = filter.PunishedBy
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+punishmentColumns+` FROM punishments
		 WHERE ($1::text[] IS NULL OR mc_username = ANY($1))
		   AND ($2::text[] IS NULL OR punished_by = ANY($2))
		 ORDER BY id`,
		mcUsernames,
		punishedBy,
	)
	if err := db.HandleQueryError(err, ErrPunishmentNotFound, "list punishments", start); err != nil {
		return nil, err
	}
	defer rows.Close()

	punishments := make([]domain.Punishment, 0)
	for rows.Next() {
		p, err := scanPunishment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan punishment row: %w", err)
		}
		punishments = append(punishments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punishments: %w", err)
	}

	return punishments, nil
}

// Update writes only the fields present on the update; last_updated is
// always bumped.
func (r *PgRepository) Update(ctx context.Context, id int64, update domain.Update, updatedAt time.Time) error {
	start := time.Now()

	set := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Reason != nil {
		add("reason", *update.Reason)
	}
	if update.Proof != nil {
		add("proof", *update.Proof)
	}
	if update.IsActive != nil {
		add("is_active", *update.IsActive)
	}
	if update.RemovedBy != nil {
		add("removed_by", *update.RemovedBy)
	}
	if update.RemovedByUUID != nil {
		add("removed_by_uuid", *update.RemovedByUUID)
	}
	if update.Expires != nil {
		add("expires", *update.Expires)
	}
	add("last_updated", updatedAt)

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE punishments SET %s WHERE id = $%d`,
		strings.Join(set, ", "),
		len(args),
	)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err := db.HandleExecError(err, "update punishment", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPunishmentNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	tag, err := r.pool.Exec(ctx, `DELETE FROM punishments WHERE id = $1`, id)
	if err := db.HandleExecError(err, "delete punishment", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPunishmentNotFound
	}
	return nil
}

func scanPunishment(row pgx.Row) (domain.Punishment, error) {
	var p domain.Punishment
	err := row.Scan(
		&p.ID,
		&p.MCUsername,
		&p.MCUUID,
		&p.Reason,
		&p.Proof,
		&p.PunishedBy,
		&p.PunishedByUUID,
		&p.RemovedBy,
		&p.RemovedByUUID,
		&p.IsActive,
		&p.Expires,
		&p.DatePunished,
		&p.LastUpdated,
	)
	return p, err
}
