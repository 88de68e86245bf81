// store.go — In-memory template repository that hands templates out by id.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store is a read-mostly set of canonical templates. Get returns copies, so
// callers can never mutate a shared record.
type Store struct {
	mu       sync.RWMutex
	byID      map[string]Template
	cleanups  []func()
	onReplace []func(id string)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]Template)}
}

// Put validates and stores t, replacing any template with the same id.
func (s *Store) Put(t Template) error {
	if err := Validate(&t); err != nil {
		return err
	}
	s.mu.Lock()
	_, replaced := s.byID[t.ID]
	s.byID[t.ID] = t.Clone()
	hooks := s.onReplace
	s.mu.Unlock()
	if replaced {
		for _, fn := range hooks {
			fn(t.ID)
		}
	}
	return nil
}

// OnReplace registers fn to run after Put replaces a template that was
// already stored.
func (s *Store) OnReplace(fn func(id string)) {
	s.mu.Lock()
	s.onReplace = append(s.onReplace, fn)
	s.mu.Unlock()
}

// Get returns a copy of the template with the given id.
func (s *Store) Get(id string) (Template, error) {
	s.mu.RLock()
	t, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t.Clone(), nil
}

// List returns all templates sorted by name, optionally filtered by category
// (case-insensitive).
func (s *Store) List(category string) []Template {
	s.mu.RLock()
	out := make([]Template, 0, len(s.byID))
	for _, t := range s.byID {
		if category != "" && !strings.EqualFold(t.Category, category) {
			continue
		}
		out = append(out, t.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Categories returns the distinct categories in the store.
func (s *Store) Categories() []string {
	s.mu.RLock()
	set := make(map[string]struct{})
	for _, t := range s.byID {
		set[t.Category] = struct{}{}
	}
	s.mu.RUnlock()

	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LoadDir loads every *.json and *.gsposter file in dir. It returns the
// number of templates loaded and a warning per file that failed; one bad
// record never blocks the rest.
func (s *Store) LoadDir(dir string, opts NormalizeOptions) (int, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, nil, fmt.Errorf("read templates dir: %w", err)
	}

	var warnings []string
	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())

		var tpl *Template
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json":
			tpl, err = LoadFile(path, opts)
		case BundleExt:
			var cleanup func()
			tpl, cleanup, err = LoadBundle(path, opts)
			if err == nil {
				s.mu.Lock()
				s.cleanups = append(s.cleanups, cleanup)
				s.mu.Unlock()
			}
		default:
			continue
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", e.Name(), err))
			continue
		}
		if err := s.Put(*tpl); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", e.Name(), err))
			continue
		}
		loaded++
	}
	return loaded, warnings, nil
}

// Close removes temp directories of extracted bundles.
func (s *Store) Close() {
	s.mu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()
	for _, c := range cleanups {
		c()
	}
}
