// Package species provides the creature templates that combatants are generated from.
package species

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is the base stat block shared by every creature of one species.
type Template struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Attack  int    `yaml:"attack"`
	Defense int    `yaml:"defense"`
	HP      int    `yaml:"hp"`
	Speed   int    `yaml:"speed"`
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, Attack, Defense and
// Speed are >= 0, and HP >= 1.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("species template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("species template %q: name must not be empty", t.ID)
	}
	if t.Attack < 0 || t.Defense < 0 || t.Speed < 0 {
		return fmt.Errorf("species template %q: attack, defense and speed must be >= 0", t.ID)
	}
	if t.HP < 1 {
		return fmt.Errorf("species template %q: hp must be >= 1", t.ID)
	}
	return nil
}

// MissingNo is the placeholder species used when no pokedex is available.
func MissingNo() *Template {
	return &Template{ID: "missingno", Name: "???", Attack: 0, Defense: 0, HP: 1, Speed: 0}
}

// LoadTemplateFromBytes parses a single species template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing species YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// pokedexEntry mirrors one element of a pokedex.json file.
type pokedexEntry struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"ename"`
	Base struct {
		HP      int `yaml:"HP"`
		Attack  int `yaml:"Attack"`
		Defense int `yaml:"Defense"`
		Speed   int `yaml:"Speed"`
	} `yaml:"base"`
}

// LoadPokedex parses a pokedex.json document (a JSON array of entries with
// "ename" and "base" stats). Template IDs are the lower-cased names.
//
// Postcondition: Returns validated templates in document order, or an error on
// the first malformed entry.
func LoadPokedex(data []byte) ([]*Template, error) {
	var entries []pokedexEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing pokedex: %w", err)
	}
	out := make([]*Template, 0, len(entries))
	for i, e := range entries {
		tmpl := &Template{
			ID:      strings.ToLower(strings.TrimSpace(e.Name)),
			Name:    e.Name,
			Attack:  e.Base.Attack,
			Defense: e.Base.Defense,
			HP:      e.Base.HP,
			Speed:   e.Base.Speed,
		}
		if err := tmpl.Validate(); err != nil {
			return nil, fmt.Errorf("pokedex entry %d: %w", i, err)
		}
		out = append(out, tmpl)
	}
	return out, nil
}

// LoadTemplates reads every *.yaml file and any pokedex.json in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates sorted by ID, or an error on the first
// parse or validate failure.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading species dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)
		switch {
		case strings.HasSuffix(name, ".yaml"):
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading %q: %w", path, err)
			}
			tmpl, err := LoadTemplateFromBytes(data)
			if err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
			templates = append(templates, tmpl)
		case name == "pokedex.json":
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading %q: %w", path, err)
			}
			dex, err := LoadPokedex(data)
			if err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
			templates = append(templates, dex...)
		}
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}
