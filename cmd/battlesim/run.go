package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catchemall/internal/config"
	"github.com/cory-johannsen/catchemall/internal/game/battle"
	"github.com/cory-johannsen/catchemall/internal/storage"
)

// RandomOpponent asks for a randomly built opponent party.
const RandomOpponent = "random"

// Options selects the two sides of a run.
type Options struct {
	// Challenger is a trainer ID, or an owner name for a random or stored party.
	Challenger string
	// Opponent is a trainer ID or RandomOpponent.
	Opponent string
	// Size and Level shape randomly built parties.
	Size  int
	Level int
	// Persist loads the challenger from the roster and saves both sides afterwards.
	Persist bool
	// Now is the battle time used for rematch cooldowns; zero means time.Now.
	Now time.Time
}

// Run loads content, builds both parties, fights them and writes the
// transcript to out. A beaten trainer's rematch cooldown is saved to the
// store whether or not Persist is set.
//
// Precondition: cfg must be valid; logger must be non-nil.
// Postcondition: On success the transcript has been written; with Persist,
// both parties are saved in one transaction.
func Run(ctx context.Context, cfg config.Config, opts Options, out io.Writer, logger *zap.Logger) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	s, cleanup, err := newSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	challenger, err := s.buildChallenger(ctx, opts, now)
	if err != nil {
		return fmt.Errorf("building challenger: %w", err)
	}
	opponent, err := s.buildOpponent(opts, now)
	if err != nil {
		return fmt.Errorf("building opponent: %w", err)
	}

	res, err := s.sim.Simulate(challenger, opponent)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, res.Transcript.String()); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}

	if res.Outcome == battle.OutcomeChallengerWins {
		if err := s.recordDefeat(ctx, opts.Opponent, challenger.Owner, now, out); err != nil {
			return err
		}
	}

	if opts.Persist {
		if err := s.store.SaveAll(ctx, challenger, opponent); err != nil {
			return fmt.Errorf("saving roster: %w", err)
		}
		s.logger.Info("roster saved",
			zap.String("challenger", challenger.Owner),
			zap.String("opponent", opponent.Owner),
		)
	}
	return nil
}

// buildChallenger prefers a stored party, then a trainer, then a random party.
// A stored party is healed before it fights. Trainer parties are stored
// under the trainer's display name, so that is the key looked up for them.
func (s *session) buildChallenger(ctx context.Context, opts Options, now time.Time) (*battle.Party, error) {
	owner := opts.Challenger
	t, isTrainer := s.trainers.Trainer(opts.Challenger)
	if isTrainer {
		owner = t.Name
	}
	if opts.Persist {
		p, err := s.store.LoadParty(ctx, owner)
		switch {
		case err == nil:
			p.HealAll()
			return p, nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}
	}
	if isTrainer {
		return s.trainers.Party(opts.Challenger, now, s.rng)
	}
	return s.trainers.RandomTrainer(opts.Challenger, opts.Size, opts.Level, s.rng)
}

func (s *session) buildOpponent(opts Options, now time.Time) (*battle.Party, error) {
	if opts.Opponent == "" || opts.Opponent == RandomOpponent {
		return s.trainers.RandomTrainer("Wild", opts.Size, opts.Level, s.rng)
	}
	return s.trainers.Party(opts.Opponent, now, s.rng)
}

// recordDefeat prints the beaten trainer's parting line and saves its
// rematch cooldown. Non-trainer opponents are ignored.
func (s *session) recordDefeat(ctx context.Context, trainerID, winner string, now time.Time, out io.Writer) error {
	t, ok := s.trainers.Trainer(trainerID)
	if !ok {
		return nil
	}
	if line, ok := s.trainers.DefeatLine(trainerID, winner); ok {
		if _, err := fmt.Fprintf(out, "%s: %s\n", t.Name, line); err != nil {
			return fmt.Errorf("writing transcript: %w", err)
		}
	}
	readyAt, err := s.trainers.RecordDefeat(trainerID, now)
	if err != nil {
		return err
	}
	if readyAt.IsZero() {
		return nil
	}
	if err := s.store.SetRematchTime(ctx, trainerID, readyAt); err != nil {
		return err
	}
	s.logger.Info("rematch cooldown started",
		zap.String("trainer", trainerID),
		zap.Time("ready_at", readyAt),
	)
	return nil
}
