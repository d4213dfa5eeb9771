// Package npc provides trainer definitions and builds ready-to-fight parties
// for trainers and wild encounters.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/catchemall/internal/game/battle"
)

// Trainer defines a reusable NPC trainer loaded from YAML.
type Trainer struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Party lists species IDs in send-out order.
	Party []string `yaml:"party"`
	Level int      `yaml:"level"`
	// LeadScript names a directory under the scripts root whose *.lua files may
	// define order_party. Empty means the trainer keeps its listed order.
	LeadScript string `yaml:"lead_script"`
	// RematchDelay is the duration string (e.g. "5m", "30s") before a beaten
	// trainer can be challenged again. Empty means no cooldown.
	RematchDelay string `yaml:"rematch_delay"`
}

// Validate checks that the trainer satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Party holds between
// 1 and battle.MaxPartySize non-empty species IDs, Level >= 1, and
// RematchDelay is empty or a valid duration.
func (t *Trainer) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("trainer: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("trainer %q: name must not be empty", t.ID)
	}
	if len(t.Party) == 0 || len(t.Party) > battle.MaxPartySize {
		return fmt.Errorf("trainer %q: party must hold 1..%d species, got %d", t.ID, battle.MaxPartySize, len(t.Party))
	}
	for i, id := range t.Party {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("trainer %q: party[%d] must not be empty", t.ID, i)
		}
	}
	if t.Level < 1 {
		return fmt.Errorf("trainer %q: level must be >= 1", t.ID)
	}
	if _, err := t.rematchDelay(); err != nil {
		return err
	}
	return nil
}

func (t *Trainer) rematchDelay() (time.Duration, error) {
	if t.RematchDelay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(t.RematchDelay)
	if err != nil {
		return 0, fmt.Errorf("trainer %q: rematch_delay %q is not a valid duration: %w", t.ID, t.RematchDelay, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("trainer %q: rematch_delay must not be negative", t.ID)
	}
	return d, nil
}

// LoadTrainerFromBytes parses a single trainer from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Trainer.
// Postcondition: Returns a validated *Trainer, or an error.
func LoadTrainerFromBytes(data []byte) (*Trainer, error) {
	var t Trainer
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing trainer YAML: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTrainers reads all *.yaml files in dir and returns the parsed trainers.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all trainers or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTrainers(dir string) ([]*Trainer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading trainer dir %q: %w", dir, err)
	}

	var trainers []*Trainer
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		t, err := LoadTrainerFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		trainers = append(trainers, t)
	}
	return trainers, nil
}
