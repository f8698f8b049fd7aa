package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"expensetracker/internal/core"
)

// SeedFile is the optional seed read by NewFromDir.
const SeedFile = "seed_expenses.json"

// partition keeps insertion order alongside an id index.
type partition struct {
	order []string
	byID  map[string]core.Expense
}

// Store is a process-local record store. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	parts map[core.Account]*partition
}

func New() *Store {
	return &Store{parts: make(map[core.Account]*partition)}
}

// NewFromDir returns a store seeded from <base>/seed_expenses.json when that
// file exists. The file maps account names to expense lists.
func NewFromDir(base string) (*Store, error) {
	s := New()
	path := filepath.Join(base, SeedFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var seed map[string][]core.Expense
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	for name, items := range seed {
		account, err := core.ParseAccount(name)
		if err != nil {
			return nil, fmt.Errorf("seed account: %w", err)
		}
		for _, e := range items {
			if e.ID == "" {
				e.ID = core.NewID()
			} else if e.ID, err = core.CanonicalID(e.ID); err != nil {
				return nil, fmt.Errorf("seed %s: %w", name, err)
			}
			if !e.Date.IsZero() {
				e.Month, e.Year = e.Date.Month(), e.Date.Year()
			}
			if err := e.Validate(); err != nil {
				return nil, fmt.Errorf("seed %s/%s: %w", name, e.ID, err)
			}
			s.put(account, e)
		}
	}
	return s, nil
}

func (s *Store) part(account core.Account) *partition {
	p, ok := s.parts[account]
	if !ok {
		p = &partition{byID: make(map[string]core.Expense)}
		s.parts[account] = p
	}
	return p
}

func (s *Store) put(account core.Account, e core.Expense) {
	p := s.part(account)
	if _, exists := p.byID[e.ID]; !exists {
		p.order = append(p.order, e.ID)
	}
	p.byID[e.ID] = e
}

// Insert stores e under a freshly generated id.
func (s *Store) Insert(_ context.Context, account core.Account, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	e.ID = core.NewID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(account, e)
	return e.ID, nil
}

func (s *Store) FindByID(_ context.Context, account core.Account, id string) (core.Expense, error) {
	id, err := core.CanonicalID(id)
	if err != nil {
		return core.Expense{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parts[account]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	e, ok := p.byID[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

// FindAll returns matching records in insertion order.
func (s *Store) FindAll(_ context.Context, account core.Account, f core.Filter) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Expense, 0)
	p, ok := s.parts[account]
	if !ok {
		return out, nil
	}
	for _, id := range p.order {
		if e := p.byID[id]; f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) UpdateFields(_ context.Context, account core.Account, id string, patch core.Patch) (core.Expense, error) {
	id, err := core.CanonicalID(id)
	if err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[account]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	e, ok := p.byID[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	e = patch.Apply(e)
	p.byID[id] = e
	return e, nil
}

func (s *Store) DeleteByID(_ context.Context, account core.Account, id string) (bool, error) {
	id, err := core.CanonicalID(id)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[account]
	if !ok {
		return false, nil
	}
	if _, ok := p.byID[id]; !ok {
		return false, nil
	}
	delete(p.byID, id)
	for i, v := range p.order {
		if v == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
