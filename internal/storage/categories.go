package storage

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"enriquecer/internal/core"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
)

// CategoryStore persists the user managed category list. Transactions keep a
// copy of the category name, so nothing here ever touches them.
type CategoryStore struct {
	mu  sync.Mutex
	rec *Record[[]core.Category]
}

func NewCategoryStore(kv KV) *CategoryStore {
	return &CategoryStore{
		rec: NewRecord(kv, KeyCategories, core.DefaultCategories),
	}
}

func (s *CategoryStore) List(ctx context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Load(ctx)
}

// ListKind returns the categories offered for one transaction type.
func (s *CategoryStore) ListKind(ctx context.Context, kind core.Kind) ([]core.Category, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(all))
	for _, c := range all {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CategoryStore) Add(ctx context.Context, name string, kind core.Kind) (core.Category, error) {
	c := core.Category{ID: uuid.NewString(), Name: strings.TrimSpace(name), Kind: kind}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.rec.Load(ctx)
	if err != nil {
		return core.Category{}, err
	}
	if nameTaken(cur, c.ID, c.Kind, c.Name) {
		return core.Category{}, ErrCategoryExists
	}
	if err := s.rec.Save(ctx, append(cur, c)); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *CategoryStore) Rename(ctx context.Context, id, name string) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, core.ErrEmptyCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.rec.Load(ctx)
	if err != nil {
		return core.Category{}, err
	}
	for i := range cur {
		if cur[i].ID == id {
			if nameTaken(cur, id, cur[i].Kind, name) {
				return core.Category{}, ErrCategoryExists
			}
			cur[i].Name = name
			if err := s.rec.Save(ctx, cur); err != nil {
				return core.Category{}, err
			}
			return cur[i], nil
		}
	}
	return core.Category{}, ErrCategoryNotFound
}

func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.rec.Load(ctx)
	if err != nil {
		return err
	}
	next := make([]core.Category, 0, len(cur))
	for _, c := range cur {
		if c.ID != id {
			next = append(next, c)
		}
	}
	if len(next) == len(cur) {
		return ErrCategoryNotFound
	}
	return s.rec.Save(ctx, next)
}

// nameTaken reports whether another category of kind already uses name,
// ignoring case. The category with id skip is not compared.
func nameTaken(cur []core.Category, skip string, kind core.Kind, name string) bool {
	for _, c := range cur {
		if c.ID != skip && c.Kind == kind && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}
