// Package portfolio holds the catalog of past work samples and ranks them
// against a job's required skills.
package portfolio

import (
	"context"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/cold-outreach/internal/skills"
	"github.com/jonathan/cold-outreach/internal/types"
)

// Source supplies the full catalog on every call.
type Source interface {
	Rows(ctx context.Context) ([]types.PortfolioEntry, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]types.PortfolioEntry, error)

// Rows calls f(ctx).
func (f SourceFunc) Rows(ctx context.Context) ([]types.PortfolioEntry, error) {
	return f(ctx)
}

type entry struct {
	link   string
	skills []string
	set    map[string]struct{}
}

// DefaultLoadTimeout bounds a single read of the catalog source.
const DefaultLoadTimeout = 30 * time.Second

// snapshot is never modified after it is published.
type snapshot struct {
	entries  []entry
	skipped  int
	loadedAt time.Time
}

// Index is an in-memory skill index over a portfolio catalog.
// Queries read whichever snapshot is current; Load builds a new one and
// swaps it in, so readers never observe a partially built index.
type Index struct {
	// LoadTimeout bounds each catalog read. Zero means DefaultLoadTimeout.
	LoadTimeout time.Duration

	source   Source
	validate *validator.Validate
	current  atomic.Pointer[snapshot]
	loads    singleflight.Group
}

// NewIndex creates an empty index over source. Call Load before Query.
func NewIndex(source Source) *Index {
	return &Index{
		LoadTimeout: DefaultLoadTimeout,
		source:      source,
		validate:    validator.New(),
	}
}

// Load reads the whole catalog and replaces the current snapshot.
// Concurrent calls share a single read of the source. The shared read is
// detached from any one caller: it is bounded by LoadTimeout, and a caller
// whose ctx ends stops waiting without failing the others. On failure the
// previous snapshot stays in place.
func (ix *Index) Load(ctx context.Context) error {
	ch := ix.loads.DoChan("load", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ix.loadTimeout())
		defer cancel()
		return nil, ix.load(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Printf("[portfolio] joined in-flight catalog load")
		}
		return res.Err
	case <-ctx.Done():
		log.Printf("[portfolio] stopped waiting for catalog load: %v", ctx.Err())
		return &RetrievalError{Message: "catalog load abandoned", Cause: ctx.Err()}
	}
}

func (ix *Index) loadTimeout() time.Duration {
	if ix.LoadTimeout > 0 {
		return ix.LoadTimeout
	}
	return DefaultLoadTimeout
}

func (ix *Index) load(ctx context.Context) error {
	if ix.source == nil {
		return &RetrievalError{Message: "no catalog source configured"}
	}

	rows, err := ix.source.Rows(ctx)
	if err != nil {
		return &RetrievalError{Message: "failed to read catalog", Cause: err}
	}

	snap := &snapshot{
		entries:  make([]entry, 0, len(rows)),
		loadedAt: time.Now().UTC(),
	}
	for i, row := range rows {
		row.Skills = skills.NormalizeAll(row.Skills)
		if err := ix.validate.Struct(row); err != nil {
			log.Printf("[portfolio] skipping catalog row %d (%s): %v", i+1, row.Link, err)
			snap.skipped++
			continue
		}
		snap.entries = append(snap.entries, entry{
			link:   row.Link,
			skills: row.Skills,
			set:    skills.Set(row.Skills),
		})
	}

	ix.current.Store(snap)
	log.Printf("[portfolio] loaded %d entries (%d skipped)", len(snap.entries), snap.skipped)
	return nil
}

// Len returns the number of entries in the current snapshot.
func (ix *Index) Len() int {
	snap := ix.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.entries)
}

// Loaded reports whether any load has succeeded.
func (ix *Index) Loaded() bool {
	return ix.current.Load() != nil
}

// LoadedAt returns when the current snapshot was built.
func (ix *Index) LoadedAt() time.Time {
	snap := ix.current.Load()
	if snap == nil {
		return time.Time{}
	}
	return snap.loadedAt
}

type candidate struct {
	pos   int
	score float64
	match []string
}

// Query returns up to k catalog links ranked by Jaccard similarity between
// the query skills and each entry's skills. Entries sharing no skill are left
// out, equal scores keep catalog order, and a link listed more than once is
// returned once at its best rank. An empty skill set or k <= 0 yields an
// empty result.
func (ix *Index) Query(querySkills []string, k int) (types.RetrievalResult, error) {
	empty := types.RetrievalResult{Links: []string{}}

	query := skills.NormalizeAll(querySkills)
	if len(query) == 0 || k <= 0 {
		return empty, nil
	}

	snap := ix.current.Load()
	if snap == nil {
		return empty, &RetrievalError{Message: "portfolio index not loaded"}
	}

	candidates := make([]candidate, 0, len(snap.entries))
	for pos, e := range snap.entries {
		var shared []string
		for _, s := range query {
			if _, ok := e.set[s]; ok {
				shared = append(shared, s)
			}
		}
		if len(shared) == 0 {
			continue
		}
		union := len(query) + len(e.skills) - len(shared)
		candidates = append(candidates, candidate{
			pos:   pos,
			score: float64(len(shared)) / float64(union),
			match: shared,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	result := types.RetrievalResult{Links: make([]string, 0, k)}
	seen := make(map[string]bool, k)
	for _, c := range candidates {
		if len(result.Links) == k {
			break
		}
		link := snap.entries[c.pos].link
		if seen[link] {
			continue
		}
		seen[link] = true
		result.Links = append(result.Links, link)
		result.Matches = append(result.Matches, types.Match{Link: link, Score: c.score, Skills: c.match})
	}
	return result, nil
}
