// Package main provides the battle simulator binary. It builds two parties
// from trainer content or random encounters, fights them and prints the
// transcript. The -list, -stat and -release modes inspect the roster store
// instead of fighting.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catchemall/internal/config"
	"github.com/cory-johannsen/catchemall/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	speciesDir := flag.String("species-dir", "", "species YAML/pokedex directory; overrides content.species_dir")
	trainersDir := flag.String("trainers-dir", "", "trainer YAML directory; overrides content.trainers_dir")
	challenger := flag.String("challenger", "Player", "trainer ID or owner name of the challenging side")
	opponent := flag.String("opponent", RandomOpponent, "trainer ID of the opponent, or \"random\"")
	size := flag.Int("size", 3, "party size for randomly built parties")
	level := flag.Int("level", 5, "level for randomly built parties")
	seed := flag.Uint64("seed", 0, "RNG seed; overrides battle.seed when non-zero")
	persist := flag.Bool("persist", false, "load the challenger from the roster store and save both sides afterwards")
	list := flag.Bool("list", false, "list every stored party and exit")
	stat := flag.String("stat", "", "print the stat card of this owner's member at -slot and exit")
	release := flag.String("release", "", "release this owner's member at -slot and exit")
	slot := flag.Int("slot", 0, "party slot used by -stat and -release, starting at 0")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *speciesDir != "" {
		cfg.Content.SpeciesDir = *speciesDir
	}
	if *trainersDir != "" {
		cfg.Content.TrainersDir = *trainersDir
	}
	if *seed != 0 {
		cfg.Battle.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if *list || *stat != "" || *release != "" {
		if err := inspect(context.Background(), cfg, *list, *stat, *release, *slot, logger); err != nil {
			logger.Error("inspect failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "battlesim: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := Options{
		Challenger: *challenger,
		Opponent:   *opponent,
		Size:       *size,
		Level:      *level,
		Persist:    *persist,
	}
	if err := Run(context.Background(), cfg, opts, os.Stdout, logger); err != nil {
		logger.Error("battle failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		fmt.Fprintf(os.Stderr, "battlesim: %v\n", err)
		os.Exit(1)
	}
	logger.Info("battlesim finished", zap.Duration("elapsed", time.Since(start)))
}

// inspect runs one of the roster modes against the configured store.
func inspect(ctx context.Context, cfg config.Config, list bool, stat, release string, slot int, logger *zap.Logger) error {
	store, closeStore, err := provideStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	switch {
	case list:
		return ListParties(ctx, store, os.Stdout)
	case stat != "":
		return ShowMember(ctx, store, stat, slot, os.Stdout)
	default:
		return ReleaseMember(ctx, store, release, slot, os.Stdout)
	}
}
