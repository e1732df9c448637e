package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"enriquecer/internal/core"
	"enriquecer/internal/storage"
)

var ErrClosed = errors.New("memory store closed")

// Store is an in-process storage.KV. Values are copied on the way in and out
// so callers never share backing arrays with the store.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// NewFromFiles builds a store seeded from the files found in base:
//
//	seed_categories.txt  one category per line, "income:Name" or "expense:Name"
//	                     (no prefix means expense)
//	transactions.json    a JSON array of transactions
//
// Missing or unreadable files are skipped.
func NewFromFiles(base string) *Store {
	s := New()

	if cats := parseCategories(readLines(filepath.Join(base, "seed_categories.txt"))); len(cats) > 0 {
		if raw, err := json.Marshal(cats); err == nil {
			s.values[storage.KeyCategories] = raw
		}
	}

	if raw, err := os.ReadFile(filepath.Join(base, "transactions.json")); err == nil {
		var txs []core.Transaction
		if err := json.Unmarshal(raw, &txs); err != nil {
			slog.Warn("Ignoring malformed transaction seed", "dir", base, "error", err)
		} else {
			s.values[storage.KeyTransactions] = raw
			slog.Info("Seeded transactions", "dir", base, "count", len(txs))
		}
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func parseCategories(lines []string) []core.Category {
	out := make([]core.Category, 0, len(lines))
	for _, line := range lines {
		kind := core.KindExpense
		name := line
		if prefix, rest, ok := strings.Cut(line, ":"); ok {
			if k := core.Kind(strings.ToLower(strings.TrimSpace(prefix))); k.IsValid() {
				kind, name = k, rest
			}
		}
		c := core.Category{ID: uuid.NewString(), Name: strings.TrimSpace(name), Kind: kind}
		if c.Validate() != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
