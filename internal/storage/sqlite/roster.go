// Package sqlite provides a file-backed roster store on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	sqlitelib "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/cory-johannsen/catchemall/internal/game/battle"
	"github.com/cory-johannsen/catchemall/internal/game/creature"
	"github.com/cory-johannsen/catchemall/internal/storage"
)

// Roster stores parties in a single SQLite database file.
type Roster struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ storage.Roster = (*Roster)(nil)

// Open opens or creates the database at path and ensures the schema exists.
// ":memory:" gives a private in-memory database.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a ready Roster or a non-nil error; the caller must Close it.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Roster, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if path != ":memory:" {
		parent := filepath.Dir(path)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, fmt.Errorf("creating sqlite directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %q: %w", path, err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("sqlite roster opened", zap.String("path", path))
	return &Roster{db: db, logger: logger}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS combatants (
    id             TEXT    PRIMARY KEY,
    owner          TEXT    NOT NULL,
    slot           INTEGER NOT NULL CHECK (slot >= 0),
    species        TEXT    NOT NULL,
    name           TEXT    NOT NULL,
    attack         INTEGER NOT NULL,
    defence        INTEGER NOT NULL,
    max_hp         INTEGER NOT NULL,
    speed          INTEGER NOT NULL,
    current_hp     INTEGER NOT NULL,
    level          INTEGER NOT NULL CHECK (level >= 1),
    xp             INTEGER NOT NULL CHECK (xp >= 0 AND xp < 100),
    cp             INTEGER NOT NULL,
    growth_attack  INTEGER NOT NULL,
    growth_defence INTEGER NOT NULL,
    growth_max_hp  INTEGER NOT NULL,
    growth_speed   INTEGER NOT NULL,
    updated_at_ms  INTEGER NOT NULL,
    UNIQUE (owner, slot)
);
CREATE INDEX IF NOT EXISTS idx_combatants_owner ON combatants (owner);
CREATE TABLE IF NOT EXISTS trainer_rematches (
    trainer_id  TEXT    PRIMARY KEY,
    ready_at_ns INTEGER NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("ensuring sqlite roster schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *Roster) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// LoadParty returns owner's party in slot order.
//
// Postcondition: Returns storage.ErrNotFound if owner has no combatants.
func (r *Roster) LoadParty(ctx context.Context, owner string) (*battle.Party, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, species, name, attack, defence, max_hp, speed, current_hp,
       level, xp, cp, growth_attack, growth_defence, growth_max_hp, growth_speed
FROM combatants WHERE owner = ? ORDER BY slot ASC
`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying party for %q: %w", owner, err)
	}
	defer rows.Close()

	var members []*creature.Combatant
	for rows.Next() {
		var c creature.Combatant
		if err := rows.Scan(
			&c.ID, &c.Species, &c.Name, &c.Attack, &c.Defence, &c.MaxHP, &c.Speed, &c.CurrentHP,
			&c.Level, &c.XP, &c.CP,
			&c.Growth[creature.StatAttack], &c.Growth[creature.StatDefence],
			&c.Growth[creature.StatMaxHP], &c.Growth[creature.StatSpeed],
		); err != nil {
			return nil, fmt.Errorf("scanning party for %q: %w", owner, err)
		}
		members = append(members, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading party for %q: %w", owner, err)
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
func (r *Roster) SaveAll(ctx context.Context, parties ...*battle.Party) error {
	if err := storage.CheckParties(parties); err != nil {
		return fmt.Errorf("saving roster: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning roster transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	nowMs := time.Now().UTC().UnixMilli()
	for _, p := range parties {
		if _, err := tx.ExecContext(ctx, `DELETE FROM combatants WHERE owner = ?`, p.Owner); err != nil {
			return fmt.Errorf("clearing party for %q: %w", p.Owner, err)
		}
		for slot, c := range p.Members {
			_, err := tx.ExecContext(ctx, `
INSERT INTO combatants (
    id, owner, slot, species, name, attack, defence, max_hp, speed, current_hp,
    level, xp, cp, growth_attack, growth_defence, growth_max_hp, growth_speed, updated_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.ID, p.Owner, slot, c.Species, c.Name, c.Attack, c.Defence, c.MaxHP, c.Speed, c.CurrentHP,
				c.Level, c.XP, c.CP, c.Growth[creature.StatAttack], c.Growth[creature.StatDefence],
				c.Growth[creature.StatMaxHP], c.Growth[creature.StatSpeed], nowMs)
			if err != nil {
				if isConstraintError(err) {
					return fmt.Errorf("saving %s for %q: %w", c.Name, p.Owner, storage.ErrConflict)
				}
				return fmt.Errorf("saving %s for %q: %w", c.Name, p.Owner, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing roster: %w", err)
	}
	r.logger.Debug("roster saved", zap.Int("parties", len(parties)))
	return nil
}

// DeleteParty removes owner's party.
//
// Postcondition: Returns storage.ErrNotFound if no row was deleted.
func (r *Roster) DeleteParty(ctx context.Context, owner string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM combatants WHERE owner = ?`, owner)
	if err != nil {
		return fmt.Errorf("deleting party for %q: %w", owner, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting party for %q: %w", owner, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Owners lists owners with a stored party.
//
// Postcondition: Returns a non-nil slice (may be empty) or a non-nil error.
func (r *Roster) Owners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT owner FROM combatants ORDER BY owner ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing owners: %w", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scanning owners: %w", err)
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

// RematchTimes returns every stored rematch time.
//
// Postcondition: Returns a non-nil map (may be empty) or a non-nil error.
func (r *Roster) RematchTimes(ctx context.Context) (map[string]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT trainer_id, ready_at_ns FROM trainer_rematches`)
	if err != nil {
		return nil, fmt.Errorf("querying rematch times: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var (
			id string
			ns int64
		)
		if err := rows.Scan(&id, &ns); err != nil {
			return nil, fmt.Errorf("scanning rematch times: %w", err)
		}
		out[id] = time.Unix(0, ns).UTC()
	}
	return out, rows.Err()
}

// SetRematchTime upserts trainerID's rematch time.
func (r *Roster) SetRematchTime(ctx context.Context, trainerID string, readyAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO trainer_rematches (trainer_id, ready_at_ns) VALUES (?, ?)
ON CONFLICT (trainer_id) DO UPDATE SET ready_at_ns = excluded.ready_at_ns
`, trainerID, readyAt.UnixNano())
	if err != nil {
		return fmt.Errorf("storing rematch time for %q: %w", trainerID, err)
	}
	return nil
}

// isConstraintError reports a constraint violation such as a duplicate id.
func isConstraintError(err error) bool {
	var se *sqlitelib.Error
	if !errors.As(err, &se) {
		return false
	}
	// Extended codes carry the primary code in the low byte.
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
