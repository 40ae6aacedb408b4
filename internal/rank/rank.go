package rank

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mwestergaard/slrpipe/internal/document"
)

// Searcher is the slice of the similarity store the ranker needs.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, k int, filter map[string]string) ([]document.ScoredFragment, error)
}

// SourceFilterField is the metadata field used for per-document filters.
const SourceFilterField = "source_id"

// TopN ranks candidate documents against a query: it retrieves a global
// pool of poolSize fragments, keeps those belonging to a candidate, buckets
// distances per source, and orders candidates by ascending mean distance
// (lower distance = more relevant). Candidates absent from the pool are
// excluded, so fewer than topN ids may be returned.
func TopN(ctx context.Context, s Searcher, query string, candidates []string, topN, poolSize int) ([]string, error) {
	if poolSize <= 0 {
		poolSize = 100
	}
	results, err := s.SimilaritySearch(ctx, query, poolSize, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve ranking pool: %w", err)
	}

	wanted := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		wanted[id] = true
	}

	scores := make(map[string][]float64)
	var order []string
	for _, r := range results {
		id := r.Fragment.Meta.SourceID
		if !wanted[id] {
			continue
		}
		if _, seen := scores[id]; !seen {
			order = append(order, id)
		}
		scores[id] = append(scores[id], r.Distance)
	}

	type ranked struct {
		id   string
		mean float64
	}
	rankedDocs := make([]ranked, 0, len(order))
	for _, id := range order {
		ds := scores[id]
		var sum float64
		for _, d := range ds {
			sum += d
		}
		rankedDocs = append(rankedDocs, ranked{id: id, mean: sum / float64(len(ds))})
	}
	sort.SliceStable(rankedDocs, func(i, j int) bool { return rankedDocs[i].mean < rankedDocs[j].mean })

	if topN > 0 && len(rankedDocs) > topN {
		rankedDocs = rankedDocs[:topN]
	}
	ids := make([]string, 0, len(rankedDocs))
	for _, r := range rankedDocs {
		ids = append(ids, r.id)
	}
	return ids, nil
}

// WaitForEmbeddings polls the similarity store until every id's fragments
// are visible or the timeout elapses. This is a convergence wait on an
// eventually-consistent store, not a request timeout: it always terminates
// after the deadline and returns the ids that never became visible, which
// are logged as a warning. Processing continues with whatever is available.
func WaitForEmbeddings(ctx context.Context, s Searcher, ids []string, timeout, pollInterval time.Duration, log *slog.Logger) []string {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	remaining := make(map[string]bool, len(ids))
	for _, id := range ids {
		remaining[id] = true
	}

	deadline := time.Now().Add(timeout)
	for len(remaining) > 0 && time.Now().Before(deadline) {
		for id := range remaining {
			results, err := s.SimilaritySearch(ctx, "placeholder", 1, map[string]string{SourceFilterField: id})
			if err != nil {
				log.Warn("similarity store poll failed", "source_id", id, "error", err)
				continue
			}
			if len(results) > 0 {
				delete(remaining, id)
			}
		}
		if len(remaining) == 0 {
			break
		}
		select {
		case <-ctx.Done():
			return missingIDs(remaining)
		case <-time.After(pollInterval):
		}
	}

	missing := missingIDs(remaining)
	if len(missing) > 0 {
		log.Warn("embeddings did not become visible before timeout", "missing", missing)
	}
	return missing
}

func missingIDs(remaining map[string]bool) []string {
	if len(remaining) == 0 {
		return nil
	}
	missing := make([]string, 0, len(remaining))
	for id := range remaining {
		missing = append(missing, id)
	}
	sort.Strings(missing)
	return missing
}
