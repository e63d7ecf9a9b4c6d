// Package store holds the canonical in-memory inventory snapshot.
package store

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/yogu/stockdash/internal/models"
	"github.com/yogu/stockdash/internal/normalize"
)

// Lister is the slice of the gateway the store reads from.
type Lister interface {
	Items(ctx context.Context) ([]map[string]any, error)
}

// BadgeSink receives the shortage count after every reload and every
// optimistic patch.
type BadgeSink func(count int)

// Store owns the inventory snapshot: the full item list as received
// from the remote store plus the derived shortage subsequence. The
// snapshot is replaced wholesale on reload and only ever patched in
// place for a single optimistic quantity update.
type Store struct {
	mu        sync.RWMutex
	gw        Lister
	badge     BadgeSink
	items     []models.Item
	shortages []models.Item
}

// New creates an empty store backed by the given gateway.
func New(gw Lister) *Store {
	return &Store{gw: gw}
}

// SetBadgeSink registers the shortage-count sink. Pass nil to detach.
func (s *Store) SetBadgeSink(fn BadgeSink) {
	s.mu.Lock()
	s.badge = fn
	s.mu.Unlock()
}

// Reload fetches the full listing, normalizes every record and swaps
// the snapshot. Shortage membership is recomputed wholesale, never
// incrementally.
func (s *Store) Reload(ctx context.Context) error {
	raw, err := s.gw.Items(ctx)
	if err != nil {
		slog.Warn("store: reload failed", "err", err)
		return err
	}
	items := normalize.NormalizeAll(raw)

	s.mu.Lock()
	s.items = items
	s.recomputeShortages()
	count := len(s.shortages)
	badge := s.badge
	s.mu.Unlock()

	slog.Debug("store: reloaded", "items", len(items), "shortages", count)
	if badge != nil {
		badge(count)
	}
	return nil
}

// ApplyOptimisticUpdate patches the in-memory quantity for one item so
// a just-persisted value is visible before the next reload. Unknown
// ids are a no-op.
func (s *Store) ApplyOptimisticUpdate(id int, value float64) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].CurrentQty = value
			break
		}
	}
	s.recomputeShortages()
	count := len(s.shortages)
	badge := s.badge
	s.mu.Unlock()

	if badge != nil {
		badge(count)
	}
}

// recomputeShortages rebuilds the shortage subsequence. Caller holds mu.
func (s *Store) recomputeShortages() {
	s.shortages = s.shortages[:0]
	for _, it := range s.items {
		if it.IsShortage() {
			s.shortages = append(s.shortages, it)
		}
	}
}

// Filter returns items matching a case-insensitive substring search on
// the name and an exact category match. Empty filters match everything.
func (s *Store) Filter(query, category string) []models.Item {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, 0, len(s.items))
	for _, it := range s.items {
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) {
			continue
		}
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Items returns a copy of the full snapshot in remote order.
func (s *Store) Items() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Item(nil), s.items...)
}

// Shortages returns a copy of the shortage subsequence.
func (s *Store) Shortages() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Item(nil), s.shortages...)
}

// ShortageCount returns the number of items below threshold.
func (s *Store) ShortageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shortages)
}

// Categories returns the sorted set of non-empty categories, for the
// category filter.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	var cats []string
	for _, it := range s.items {
		if it.Category != "" && !seen[it.Category] {
			seen[it.Category] = true
			cats = append(cats, it.Category)
		}
	}
	sort.Strings(cats)
	return cats
}

// Lookup returns the item with the given id.
func (s *Store) Lookup(id int) (models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.Item{}, false
}
