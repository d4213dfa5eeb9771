package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/catchemall/internal/game/battle"
	"github.com/cory-johannsen/catchemall/internal/game/creature"
	"github.com/cory-johannsen/catchemall/internal/storage"
)

const combatantColumns = `id, species, name, attack, defence, max_hp, speed, current_hp,
		       level, xp, cp, growth_attack, growth_defence, growth_max_hp, growth_speed`

// RosterRepository stores parties in the combatants table.
type RosterRepository struct {
	db *pgxpool.Pool
}

var _ storage.Roster = (*RosterRepository)(nil)

// NewRosterRepository creates a RosterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with migrations applied.
func NewRosterRepository(db *pgxpool.Pool) *RosterRepository {
	return &RosterRepository{db: db}
}

// LoadParty returns owner's party in slot order.
//
// Postcondition: Returns storage.ErrNotFound if owner has no combatants.
func (r *RosterRepository) LoadParty(ctx context.Context, owner string) (*battle.Party, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+combatantColumns+`
		FROM combatants WHERE owner = $1 ORDER BY slot ASC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("querying party for %q: %w", owner, err)
	}
	members, err := pgx.CollectRows(rows, scanCombatant)
	if err != nil {
		return nil, fmt.Errorf("scanning party for %q: %w", owner, err)
	}
	if len(members) == 0 {
		return nil, storage.ErrNotFound
	}
	return &battle.Party{Owner: owner, Members: members}, nil
}

// SaveAll replaces every given owner's party in a single transaction.
//
// Precondition: parties must pass storage.CheckParties.
// Postcondition: Either every party is stored or none is. Returns
// storage.ErrConflict if a combatant ID is stored under a different owner.
func (r *RosterRepository) SaveAll(ctx context.Context, parties ...*battle.Party) error {
	if err := storage.CheckParties(parties); err != nil {
		return fmt.Errorf("saving roster: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning roster transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, p := range parties {
		if _, err := tx.Exec(ctx, `DELETE FROM combatants WHERE owner = $1`, p.Owner); err != nil {
			return fmt.Errorf("clearing party for %q: %w", p.Owner, err)
		}
		batch := &pgx.Batch{}
		for slot, c := range p.Members {
			batch.Queue(`
				INSERT INTO combatants
					(id, owner, slot, species, name, attack, defence, max_hp, speed, current_hp,
					 level, xp, cp, growth_attack, growth_defence, growth_max_hp, growth_speed)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
				c.ID, p.Owner, slot, c.Species, c.Name, c.Attack, c.Defence, c.MaxHP, c.Speed, c.CurrentHP,
				c.Level, c.XP, c.CP, c.Growth[creature.StatAttack], c.Growth[creature.StatDefence],
				c.Growth[creature.StatMaxHP], c.Growth[creature.StatSpeed],
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("saving party for %q: %w", p.Owner, storage.ErrConflict)
			}
			return fmt.Errorf("saving party for %q: %w", p.Owner, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing roster: %w", err)
	}
	return nil
}

// DeleteParty removes owner's party.
//
// Postcondition: Returns storage.ErrNotFound if no row was deleted.
func (r *RosterRepository) DeleteParty(ctx context.Context, owner string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM combatants WHERE owner = $1`, owner)
	if err != nil {
		return fmt.Errorf("deleting party for %q: %w", owner, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Owners lists owners with a stored party.
//
// Postcondition: Returns a non-nil slice (may be empty) or a non-nil error.
func (r *RosterRepository) Owners(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT owner FROM combatants ORDER BY owner ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing owners: %w", err)
	}
	owners, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning owners: %w", err)
	}
	if owners == nil {
		owners = []string{}
	}
	return owners, nil
}

// RematchTimes returns every stored rematch time.
//
// Postcondition: Returns a non-nil map (may be empty) or a non-nil error.
func (r *RosterRepository) RematchTimes(ctx context.Context) (map[string]time.Time, error) {
	rows, err := r.db.Query(ctx, `SELECT trainer_id, ready_at FROM trainer_rematches`)
	if err != nil {
		return nil, fmt.Errorf("querying rematch times: %w", err)
	}
	type entry struct {
		TrainerID string    `db:"trainer_id"`
		ReadyAt   time.Time `db:"ready_at"`
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[entry])
	if err != nil {
		return nil, fmt.Errorf("scanning rematch times: %w", err)
	}
	out := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		out[e.TrainerID] = e.ReadyAt.UTC()
	}
	return out, nil
}

// SetRematchTime upserts trainerID's rematch time.
func (r *RosterRepository) SetRematchTime(ctx context.Context, trainerID string, readyAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO trainer_rematches (trainer_id, ready_at) VALUES ($1, $2)
		ON CONFLICT (trainer_id) DO UPDATE SET ready_at = EXCLUDED.ready_at`,
		trainerID, readyAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing rematch time for %q: %w", trainerID, err)
	}
	return nil
}

func scanCombatant(row pgx.CollectableRow) (*creature.Combatant, error) {
	var c creature.Combatant
	err := row.Scan(
		&c.ID, &c.Species, &c.Name, &c.Attack, &c.Defence, &c.MaxHP, &c.Speed, &c.CurrentHP,
		&c.Level, &c.XP, &c.CP,
		&c.Growth[creature.StatAttack], &c.Growth[creature.StatDefence],
		&c.Growth[creature.StatMaxHP], &c.Growth[creature.StatSpeed],
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
