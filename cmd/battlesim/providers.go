package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catchemall/internal/config"
	"github.com/cory-johannsen/catchemall/internal/game/battle"
	"github.com/cory-johannsen/catchemall/internal/game/dice"
	"github.com/cory-johannsen/catchemall/internal/game/npc"
	"github.com/cory-johannsen/catchemall/internal/game/species"
	"github.com/cory-johannsen/catchemall/internal/scripting"
	"github.com/cory-johannsen/catchemall/internal/storage"
	"github.com/cory-johannsen/catchemall/internal/storage/postgres"
	"github.com/cory-johannsen/catchemall/internal/storage/sqlite"
)

// session holds everything a battle run needs. newSession assembles it.
type session struct {
	logger   *zap.Logger
	rng      dice.Ranger
	trainers *npc.Manager
	store    storage.Roster
	sim      *battle.Simulator
}

// provideRanger seeds from battle.seed when it is non-zero.
func provideRanger(cfg config.Config, logger *zap.Logger) dice.Ranger {
	var src dice.Source
	if cfg.Battle.Seed != 0 {
		src = dice.NewSeededSource(cfg.Battle.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	return dice.NewLoggedRoller(src, logger)
}

func provideSpecies(cfg config.Config, logger *zap.Logger) (*species.Registry, error) {
	templates, err := species.LoadTemplates(cfg.Content.SpeciesDir)
	if err != nil {
		return nil, fmt.Errorf("loading species: %w", err)
	}
	reg, err := species.NewRegistry(templates)
	if err != nil {
		return nil, fmt.Errorf("indexing species: %w", err)
	}
	logger.Info("species loaded", zap.Int("count", reg.Len()))
	return reg, nil
}

func provideTrainerTemplates(cfg config.Config) ([]*npc.Trainer, error) {
	if cfg.Content.TrainersDir == "" {
		return nil, nil
	}
	trainers, err := npc.LoadTrainers(cfg.Content.TrainersDir)
	if err != nil {
		return nil, fmt.Errorf("loading trainers: %w", err)
	}
	return trainers, nil
}

func provideScripts(rng dice.Ranger, logger *zap.Logger) (*scripting.Manager, func()) {
	mgr := scripting.NewManager(rng, logger)
	return mgr, mgr.Close
}

// provideTrainerManager loads trainer scripts and reinstates the rematch
// cooldowns saved by earlier runs.
func provideTrainerManager(
	ctx context.Context,
	cfg config.Config,
	trainers []*npc.Trainer,
	reg *species.Registry,
	scripts npc.Scripts,
	store storage.Roster,
	logger *zap.Logger,
) (*npc.Manager, error) {
	mgr, err := npc.NewManager(trainers, reg, scripts, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Content.ScriptsDir != "" {
		if err := mgr.LoadScripts(cfg.Content.ScriptsDir, cfg.Content.ScriptInstructionLimit); err != nil {
			return nil, fmt.Errorf("loading trainer scripts: %w", err)
		}
	}
	rematches, err := store.RematchTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rematch times: %w", err)
	}
	restored := 0
	for id, readyAt := range rematches {
		if mgr.RestoreRematch(id, readyAt) {
			restored++
		}
	}
	logger.Info("trainers loaded",
		zap.Int("count", len(trainers)),
		zap.Int("rematch_cooldowns", restored),
	)
	return mgr, nil
}

// provideStore connects the backend named by cfg.Storage.Driver and returns
// it with its release func.
func provideStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Roster, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected", zap.String("host", cfg.Database.Host))
		return postgres.NewRosterRepository(pool.DB()), pool.Close, nil
	case config.DriverSQLite:
		r, err := sqlite.Open(ctx, cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func provideRules(cfg config.Config) battle.Rules {
	b := cfg.Battle
	return battle.Rules{
		CritChance:         b.CritChance,
		BaseXPReward:       b.BaseXPReward,
		MaxDifficultyBonus: b.MaxDifficultyBonus,
		MaxPartySize:       b.MaxPartySize,
		MaxExchanges:       b.MaxExchanges,
	}
}
