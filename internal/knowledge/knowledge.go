// Package knowledge finds the knowledge-bank entry closest to a query
// embedding.
package knowledge

import (
	"errors"
	"fmt"
	"math"
)

// MatchThreshold is the similarity a best match must exceed.
const MatchThreshold = 0.7

// ErrMalformedCorpus marks a knowledge bank that cannot be searched.
var ErrMalformedCorpus = errors.New("malformed knowledge corpus")

// Entry is one precomputed knowledge-bank record.
type Entry struct {
	Topic   string    `json:"topic"`
	Source  string    `json:"source"`
	Summary string    `json:"summary"`
	Action  string    `json:"action"`
	Vector  []float64 `json:"vector"`
}

// Result is a match above MatchThreshold.
type Result struct {
	Entry      Entry
	Similarity float64
}

// DimensionError reports an entry whose vector length differs from the
// corpus dimension.
type DimensionError struct {
	Index int
	Topic string
	Want  int
	Got   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("entry %d (%q): vector has %d dimensions, want %d", e.Index, e.Topic, e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error { return ErrMalformedCorpus }

// CosineSimilarity returns dot(a,b)/(|a||b|). A zero vector yields 0.
// Vectors of different length are a programming error and panic.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("knowledge: cosine similarity of %d and %d dimensional vectors", len(a), len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / math.Sqrt(normA*normB)
}

// Retrieve scans corpus for the entry most similar to query. The first
// entry wins ties. It reports false unless the best similarity is strictly
// above MatchThreshold.
func Retrieve(query []float64, corpus []Entry) (Result, bool) {
	idx, sim := argMax(query, corpus, 0, len(corpus))
	if idx < 0 || sim <= MatchThreshold {
		return Result{}, false
	}
	return Result{Entry: corpus[idx], Similarity: sim}, true
}

// argMax returns the index and score of the best entry in corpus[lo:hi],
// or -1 for an empty range.
func argMax(query []float64, corpus []Entry, lo, hi int) (int, float64) {
	best, bestSim := -1, math.Inf(-1)
	for i := lo; i < hi; i++ {
		sim := CosineSimilarity(query, corpus[i].Vector)
		if sim > bestSim {
			best, bestSim = i, sim
		}
	}
	return best, bestSim
}
