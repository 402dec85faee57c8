package catalog

import (
	"context"
	"slices"
	"sort"
	"strings"
)

const (
	// MinScore is the confidence floor; lower-scoring candidates are
	// never returned.
	MinScore = 60.0

	// MaxResults caps a search result list.
	MaxResults = 10

	// linearScanBelow triggers the full scan tier when the index tiers
	// produced fewer candidates than this.
	linearScanBelow = 5
)

// Match is a scored search candidate.
type Match struct {
	Entry Entry
	Score float64

	// position in the loaded dataset; breaks score ties.
	index int
}

// Search returns up to MaxResults entries matching query, best first.
// year 0 means no year filter. Results are deterministic for a given
// query, year, and dataset.
func (d *DB) Search(ctx context.Context, query string, year int) ([]Match, error) {
	snap, err := d.current(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	key := cacheKey(q, year)
	if cached, ok := snap.results.Get(key); ok {
		return slices.Clone(cached), nil
	}

	results := snap.search(q, year)
	snap.results.Add(key, results)
	return slices.Clone(results), nil
}

func (s *snapshot) search(q string, year int) []Match {
	if q == "" {
		return nil
	}

	seen := make(map[int]bool)
	var results []Match

	consider := func(i int) {
		if seen[i] {
			return
		}
		seen[i] = true
		e := &s.entries[i]
		if score := MatchScore(e, q, year); score >= MinScore {
			results = append(results, Match{Entry: *e, Score: score, index: i})
		}
	}

	// Tier 1: exact title or synonym.
	for _, i := range s.index[q] {
		consider(i)
	}

	// Tier 2: containment either way against every key.
	for k, idx := range s.index {
		if strings.Contains(k, q) || strings.Contains(q, k) {
			for _, i := range idx {
				consider(i)
			}
		}
	}

	// Tier 3: everything else.
	if len(results) < linearScanBelow {
		for i := range s.entries {
			consider(i)
		}
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].index < results[b].index
	})
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// BestMatch returns the top candidate for query when it clears MinScore
// and, if both years are known, lies within maxYearDiff of year.
func (d *DB) BestMatch(ctx context.Context, query string, year, maxYearDiff int) (*Match, error) {
	results, err := d.Search(ctx, query, year)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	best := results[0]
	if best.Score < MinScore {
		return nil, nil
	}
	if ey := best.Entry.Year(); year != 0 && ey != 0 && abs(ey-year) > maxYearDiff {
		if d.log != nil {
			d.log.Warn("catalog year mismatch",
				"query", query, "year", year,
				"match", best.Entry.Title, "match_year", ey)
		}
		return nil, nil
	}
	return &best, nil
}

// FindByAniListID returns the entry linked to an AniList ID.
func (d *DB) FindByAniListID(ctx context.Context, id int64) (*Entry, error) {
	return d.findBy(ctx, id, func(s *snapshot) map[int64]int { return s.byAniList })
}

// FindByAniDBID returns the entry linked to an AniDB ID.
func (d *DB) FindByAniDBID(ctx context.Context, id int64) (*Entry, error) {
	return d.findBy(ctx, id, func(s *snapshot) map[int64]int { return s.byAniDB })
}

// FindByMALID returns the entry linked to a MyAnimeList ID.
func (d *DB) FindByMALID(ctx context.Context, id int64) (*Entry, error) {
	return d.findBy(ctx, id, func(s *snapshot) map[int64]int { return s.byMAL })
}

func (d *DB) findBy(ctx context.Context, id int64, m func(*snapshot) map[int64]int) (*Entry, error) {
	snap, err := d.current(ctx)
	if err != nil {
		return nil, err
	}
	i, ok := m(snap)[id]
	if !ok {
		return nil, nil
	}
	e := snap.entries[i]
	return &e, nil
}
