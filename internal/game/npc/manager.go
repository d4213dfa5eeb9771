package npc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catchemall/internal/game/battle"
	"github.com/cory-johannsen/catchemall/internal/game/creature"
	"github.com/cory-johannsen/catchemall/internal/game/dice"
	"github.com/cory-johannsen/catchemall/internal/game/species"
)

// OrderPartyHook is the Lua global a trainer script may define to choose its
// send-out order. It receives an array of member names and returns the same
// names reordered.
const OrderPartyHook = "order_party"

// DefeatLineHook is the Lua global a trainer script may define to say
// something when beaten. It receives the winner's name and returns a string.
const DefeatLineHook = "defeat_line"

// SharedScriptsDir is the directory under the scripts root whose scripts
// serve every trainer without a lead script of its own.
const SharedScriptsDir = "global"

var (
	// ErrUnknownTrainer is returned when a trainer ID is not registered.
	ErrUnknownTrainer = errors.New("unknown trainer")
	// ErrRematchCooldown is returned when a beaten trainer is challenged again too soon.
	ErrRematchCooldown = errors.New("trainer is not ready for a rematch")
)

// Scripts is the subset of the scripting manager used by trainers.
type Scripts interface {
	LoadTrainer(trainerID, scriptDir string, instLimit int) error
	LoadGlobal(scriptDir string, instLimit int) error
	CallStringsHook(trainerID, hook string, in []string) ([]string, bool)
	CallLineHook(trainerID, hook, arg string) (string, bool)
}

// Manager builds parties for registered trainers and for random encounters.
// All methods are safe for concurrent use provided the Ranger passed to them is.
type Manager struct {
	mu       sync.RWMutex
	trainers map[string]*Trainer
	species  *species.Registry
	scripts  Scripts
	logger   *zap.Logger
	rematch  *rematchBook
	// shared is set once scripts from SharedScriptsDir are loaded.
	shared bool
}

// NewManager creates a Manager over trainers and the species registry.
// scripts may be nil, in which case every trainer keeps its listed order.
//
// Precondition: reg and logger must be non-nil.
// Postcondition: Returns an error on duplicate trainer IDs or a party entry
// naming a species absent from reg.
func NewManager(trainers []*Trainer, reg *species.Registry, scripts Scripts, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		trainers: make(map[string]*Trainer, len(trainers)),
		species:  reg,
		scripts:  scripts,
		logger:   logger,
		rematch:  newRematchBook(),
	}
	for _, t := range trainers {
		if _, dup := m.trainers[t.ID]; dup {
			return nil, fmt.Errorf("duplicate trainer id %q", t.ID)
		}
		for _, id := range t.Party {
			if _, ok := reg.Get(id); !ok {
				return nil, fmt.Errorf("trainer %q: unknown species %q", t.ID, id)
			}
		}
		m.trainers[t.ID] = t
	}
	return m, nil
}

// LoadScripts loads the lead script of every trainer that names one from
// scriptsRoot/<lead_script>, then the shared scripts in
// scriptsRoot/SharedScriptsDir when that directory exists.
//
// Precondition: m was built with non-nil Scripts.
// Postcondition: Returns the first load failure, if any.
func (m *Manager) LoadScripts(scriptsRoot string, instLimit int) error {
	if m.scripts == nil {
		return fmt.Errorf("npc.Manager.LoadScripts: no script manager configured")
	}
	sharedDir := filepath.Join(scriptsRoot, SharedScriptsDir)
	if info, err := os.Stat(sharedDir); err == nil && info.IsDir() {
		if err := m.scripts.LoadGlobal(sharedDir, instLimit); err != nil {
			return fmt.Errorf("shared scripts: %w", err)
		}
		m.mu.Lock()
		m.shared = true
		m.mu.Unlock()
	}
	for _, t := range m.Trainers() {
		if t.LeadScript == "" {
			continue
		}
		if err := m.scripts.LoadTrainer(t.ID, filepath.Join(scriptsRoot, t.LeadScript), instLimit); err != nil {
			return fmt.Errorf("trainer %q: %w", t.ID, err)
		}
	}
	return nil
}

// Trainer returns the registered trainer with the given ID.
//
// Postcondition: Returns (t, true) if found, or (nil, false) otherwise.
func (m *Manager) Trainer(id string) (*Trainer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trainers[id]
	return t, ok
}

// Trainers returns all registered trainers ordered by ID.
func (m *Manager) Trainers() []*Trainer {
	m.mu.RLock()
	out := make([]*Trainer, 0, len(m.trainers))
	for _, t := range m.trainers {
		out = append(out, t)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Party builds a fresh, fully healed party for trainerID at the trainer's
// level. If the trainer has an order_party script, its answer decides the
// send-out order; a malformed answer is logged and ignored.
//
// Precondition: r must be non-nil.
// Postcondition: Returns ErrUnknownTrainer or ErrRematchCooldown (wrapped)
// when the trainer cannot fight at now.
func (m *Manager) Party(trainerID string, now time.Time, r dice.Ranger) (*battle.Party, error) {
	t, ok := m.Trainer(trainerID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrainer, trainerID)
	}
	if at, cooling := m.rematch.until(trainerID, now); cooling {
		return nil, fmt.Errorf("%w: %s until %s", ErrRematchCooldown, t.Name, at.Format(time.RFC3339))
	}

	members := make([]*creature.Combatant, 0, len(t.Party))
	for _, id := range t.Party {
		tmpl, _ := m.species.Get(id)
		members = append(members, creature.GenerateAtLevel(tmpl, t.Level, r))
	}
	members = m.order(t, members)
	return battle.NewParty(t.Name, members...)
}

// RecordDefeat starts trainerID's rematch cooldown at now and returns the
// time the trainer can fight again. The zero time means no cooldown.
//
// Postcondition: Returns ErrUnknownTrainer (wrapped) for unregistered IDs.
func (m *Manager) RecordDefeat(trainerID string, now time.Time) (time.Time, error) {
	t, ok := m.Trainer(trainerID)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTrainer, trainerID)
	}
	d, _ := t.rematchDelay()
	if d <= 0 {
		return time.Time{}, nil
	}
	readyAt := now.Add(d)
	m.rematch.restore(trainerID, readyAt)
	return readyAt, nil
}

// RestoreRematch reinstates a cooldown saved by an earlier process.
// Entries for unregistered trainers are skipped.
//
// Postcondition: Returns false when trainerID is not registered.
func (m *Manager) RestoreRematch(trainerID string, readyAt time.Time) bool {
	if _, ok := m.Trainer(trainerID); !ok {
		m.logger.Debug("skipping rematch time for unknown trainer", zap.String("trainer", trainerID))
		return false
	}
	m.rematch.restore(trainerID, readyAt)
	return true
}

// DefeatLine asks trainerID's script what the trainer says after losing to
// winner.
//
// Postcondition: Returns ("", false) for unregistered IDs or when no
// script answers.
func (m *Manager) DefeatLine(trainerID, winner string) (string, bool) {
	t, ok := m.Trainer(trainerID)
	if !ok || !m.scripted(t) {
		return "", false
	}
	return m.scripts.CallLineHook(t.ID, DefeatLineHook, winner)
}

// scripted reports whether any script can answer for t.
func (m *Manager) scripted(t *Trainer) bool {
	if m.scripts == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return t.LeadScript != "" || m.shared
}

// Wild builds a single random wild combatant at level.
//
// Precondition: level >= 1; r must be non-nil.
func (m *Manager) Wild(level int, r dice.Ranger) *creature.Combatant {
	return creature.GenerateAtLevel(m.species.Random(r), level, r)
}

// RandomTrainer builds an ad-hoc party of size random species at level for owner.
//
// Precondition: r must be non-nil.
// Postcondition: Returns a *battle.InvalidPartyError if size is outside
// 1..battle.MaxPartySize; returns an error if level < 1.
func (m *Manager) RandomTrainer(owner string, size, level int, r dice.Ranger) (*battle.Party, error) {
	if size < 1 || size > battle.MaxPartySize {
		return nil, &battle.InvalidPartyError{Owner: owner, Size: size, Reason: fmt.Sprintf("size must be 1..%d", battle.MaxPartySize)}
	}
	if level < 1 {
		return nil, fmt.Errorf("npc.Manager.RandomTrainer: level must be >= 1, got %d", level)
	}
	members := make([]*creature.Combatant, size)
	for i := range members {
		members[i] = m.Wild(level, r)
	}
	return battle.NewParty(owner, members...)
}

// order applies t's order_party hook to members. The hook's answer must be a
// permutation of the member names; anything else leaves members as they are.
func (m *Manager) order(t *Trainer, members []*creature.Combatant) []*creature.Combatant {
	if !m.scripted(t) {
		return members
	}
	names := make([]string, len(members))
	for i, c := range members {
		names[i] = c.Name
	}
	answer, ok := m.scripts.CallStringsHook(t.ID, OrderPartyHook, names)
	if !ok {
		return members
	}
	reordered, ok := permute(members, answer)
	if !ok {
		m.logger.Warn("ignoring malformed send-out order",
			zap.String("trainer", t.ID),
			zap.Strings("members", names),
			zap.Strings("answer", answer),
		)
		return members
	}
	return reordered
}

// permute reorders members to follow names. Repeated names are matched to
// members in their original order.
func permute(members []*creature.Combatant, names []string) ([]*creature.Combatant, bool) {
	if len(names) != len(members) {
		return nil, false
	}
	used := make([]bool, len(members))
	out := make([]*creature.Combatant, 0, len(members))
	for _, name := range names {
		found := false
		for i, c := range members {
			if !used[i] && c.Name == name {
				used[i] = true
				out = append(out, c)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}
