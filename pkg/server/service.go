package server

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/bastiangx/tagcomplete/internal/utils"
	"github.com/bastiangx/tagcomplete/pkg/index"
	"github.com/bastiangx/tagcomplete/pkg/store"
	"github.com/bastiangx/tagcomplete/pkg/terms"
	"github.com/charmbracelet/log"
)

// DefaultLimit is the number of suggestions returned when none is configured.
const DefaultLimit = 15

// ErrTermTooLong rejects terms above Options.MaxTerm runes.
var ErrTermTooLong = errors.New("term too long")

// Options bounds what a Service answers.
type Options struct {
	// Limit caps the suggestions per query; requests may ask for fewer.
	Limit int
	// MaxTerm is the longest accepted term in runes. 0 disables the check.
	MaxTerm int
}

// Service serves completions from an in-memory index and records submitted
// tags in the store, when one is configured.
type Service struct {
	index *index.Index
	store *store.Store
	opts  Options
}

// NewService wires an index and an optional store.
func NewService(ix *index.Index, st *store.Store, opts Options) *Service {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return &Service{index: ix, store: st, opts: opts}
}

// Warm loads every stored tag into the index.
func (s *Service) Warm(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	tags, err := s.store.All(ctx)
	if err != nil {
		return fmt.Errorf("warming index: %w", err)
	}
	s.index.AddAll(tags)
	return nil
}

// Complete returns suggestions for term. An empty term yields no suggestions.
// limit <= 0 or above the configured limit uses the configured limit.
func (s *Service) Complete(term string, limit int) ([]index.Tag, error) {
	if s.opts.MaxTerm > 0 && utf8.RuneCountInString(term) > s.opts.MaxTerm {
		return nil, fmt.Errorf("%w: term exceeds maximum length of %d characters", ErrTermTooLong, s.opts.MaxTerm)
	}
	if limit <= 0 || limit > s.opts.Limit {
		limit = s.opts.Limit
	}
	if term == "" {
		return []index.Tag{}, nil
	}
	return s.index.Search(term, limit), nil
}

// Record stores every non-empty term of a submitted field value and makes
// it available for completion. A tag repeated in one submission counts once.
func (s *Service) Record(ctx context.Context, value string) ([]index.Tag, error) {
	names := utils.Unique(terms.Complete(value))
	if len(names) == 0 {
		return []index.Tag{}, nil
	}

	var recorded []index.Tag
	if s.store != nil {
		stored, err := s.store.Add(ctx, names...)
		if err != nil {
			return nil, err
		}
		recorded = stored
	} else {
		for _, n := range names {
			recorded = append(recorded, index.Tag{Name: n, Uses: 1})
		}
	}

	for _, t := range recorded {
		s.index.Add(index.Tag{ID: t.ID, Name: t.Name, Uses: 1})
	}
	log.Debugf("Recorded %d tags", len(recorded))
	return recorded, nil
}

// ErrNoStore is returned by operations that need the tag database.
var ErrNoStore = errors.New("no tag store configured")

// Lookup searches the tag database directly, including use counts.
func (s *Service) Lookup(ctx context.Context, term string, limit int) ([]index.Tag, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if limit <= 0 || limit > s.opts.Limit {
		limit = s.opts.Limit
	}
	return s.store.Search(ctx, term, limit)
}

// Stats reports index counters.
func (s *Service) Stats() map[string]int {
	return s.index.Stats()
}
