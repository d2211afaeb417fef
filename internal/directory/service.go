package directory

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fkhayef/ensamble/internal/apperr"
	"github.com/fkhayef/ensamble/internal/metrics"
)

const (
	// MinQueryLength is the shortest query that reaches the directory
	MinQueryLength = 3
	// MaxResults caps every lookup
	MaxResults = 5
)

// Source performs the partial-match lookup
type Source interface {
	SearchByUsername(ctx context.Context, query string, limit int) ([]Profile, error)
}

// Service handles directory lookups
type Service struct {
	source  Source
	log     *zap.SugaredLogger
	metrics *metrics.Recorder
}

// NewService creates a new directory service
func NewService(source Source, log *zap.SugaredLogger, m *metrics.Recorder) *Service {
	return &Service{source: source, log: log, metrics: m}
}

// Searchable reports whether query is long enough to be looked up
func Searchable(query string) bool {
	return utf8.RuneCountInString(query) >= MinQueryLength
}

// Search returns at most MaxResults profiles matching query. Queries shorter
// than MinQueryLength return no results without a lookup.
func (s *Service) Search(ctx context.Context, query string) ([]Profile, error) {
	if !Searchable(query) {
		return nil, nil
	}

	profiles, err := s.source.SearchByUsername(ctx, query, MaxResults)
	if err != nil {
		s.log.Errorw("directory search failed", "query", query, "error", err)
		return nil, apperr.Wrap(apperr.Unexpected, "Search failed", apperr.BackendMessage(err), err)
	}
	if len(profiles) > MaxResults {
		profiles = profiles[:MaxResults]
	}
	return profiles, nil
}

// Guard runs fn on a result set while whatever owns it is locked
type Guard func(fn func(rs *ResultSet)) error

// SearchInto runs a search for a result set owned by a draft. The lookup
// itself happens outside guard so the draft stays usable meanwhile; the
// response is only stored if no newer search began in between. It returns
// the result set's current results either way.
func (s *Service) SearchInto(ctx context.Context, query string, guard Guard) ([]Profile, error) {
	var (
		seq    uint64
		lookup bool
	)
	if err := guard(func(rs *ResultSet) { seq, lookup = rs.Begin(query) }); err != nil {
		return nil, err
	}
	if !lookup {
		s.metrics.Search("skipped")
		return nil, nil
	}

	profiles, err := s.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var (
		accepted bool
		current  []Profile
	)
	err = guard(func(rs *ResultSet) {
		accepted = rs.Deliver(seq, profiles)
		current = append([]Profile(nil), rs.Results...)
	})
	if err != nil {
		return nil, err
	}

	if accepted {
		s.metrics.Search("accepted")
	} else {
		s.metrics.Search("stale")
		s.log.Debugw("stale directory response discarded", "query", query, "seq", seq)
	}
	return current, nil
}
