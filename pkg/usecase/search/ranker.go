package search

import (
	"math"
	"sort"

	"github.com/granary-dev/granary/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Candidate is one (id, vector) pair offered for ranking
type Candidate struct {
	ID     model.DocumentID
	Vector []float32
}

// RankedID is one entry of the ranked output
type RankedID struct {
	ID    model.DocumentID
	Score float64
}

// Rank scores every candidate against the query vector by cosine similarity
// and returns the top k, ordered by descending score. Ties keep the
// candidates' arrival order. Candidates whose similarity is undefined
// (zero-norm vectors) are excluded from the output. A candidate whose
// dimension differs from the query fails the whole call: skipping it silently
// would hide corrupted embeddings.
//
// Pure computation, O(n*d) for n candidates of dimension d.
func Rank(query []float32, candidates []Candidate, k int) ([]RankedID, error) {
	if k <= 0 {
		return nil, goerr.New("k must be positive", goerr.T(model.ErrTagValidation), goerr.V("k", k))
	}

	ranked := make([]RankedID, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) != len(query) {
			return nil, goerr.Wrap(model.ErrDimensionMismatch, "candidate dimension differs from query",
				goerr.V("id", c.ID),
				goerr.V("query_dim", len(query)),
				goerr.V("candidate_dim", len(c.Vector)))
		}

		score, ok := cosineSimilarity(query, c.Vector)
		if !ok {
			continue
		}
		ranked = append(ranked, RankedID{ID: c.ID, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}

// cosineSimilarity returns the normalized dot product of a and b. The second
// return value is false when either vector has zero norm, where the
// similarity is undefined.
func cosineSimilarity(a, b []float32) (float64, bool) {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
