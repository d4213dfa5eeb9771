package species

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/catchemall/internal/game/dice"
)

// Registry indexes species templates by ID. It is read-only after construction
// and therefore safe for concurrent use.
type Registry struct {
	byID  map[string]*Template
	order []*Template
}

// NewRegistry builds a Registry from templates. An empty list yields a
// registry holding only MissingNo.
//
// Postcondition: Returns an error on duplicate IDs.
func NewRegistry(templates []*Template) (*Registry, error) {
	if len(templates) == 0 {
		templates = []*Template{MissingNo()}
	}
	r := &Registry{byID: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		key := strings.ToLower(t.ID)
		if _, dup := r.byID[key]; dup {
			return nil, fmt.Errorf("duplicate species id %q", t.ID)
		}
		r.byID[key] = t
		r.order = append(r.order, t)
	}
	return r, nil
}

// Get looks a species up by ID, case-insensitively.
//
// Postcondition: Returns (tmpl, true) if found, or (nil, false) otherwise.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.byID[strings.ToLower(id)]
	return t, ok
}

// Random picks a species uniformly. The draw indexes the registration order.
//
// Precondition: rng must be non-nil.
func (r *Registry) Random(rng dice.Ranger) *Template {
	return r.order[rng.Between(0, len(r.order)-1)]
}

// All returns the templates in the order they were registered.
func (r *Registry) All() []*Template {
	out := make([]*Template, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered species.
func (r *Registry) Len() int { return len(r.order) }
