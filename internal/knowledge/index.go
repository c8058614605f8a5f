package knowledge

import (
	"fmt"
	"sync"
)

// Retriever finds the best match for a query embedding.
type Retriever interface {
	Retrieve(query []float64) (Result, bool)
	Dimension() int
	Len() int
}

// FlatIndex is a linear scan over a validated corpus.
type FlatIndex struct {
	entries []Entry
	dim     int
}

// NewFlatIndex validates that every entry has dimension dim. A dim of 0
// takes the dimension of the first entry.
func NewFlatIndex(entries []Entry, dim int) (*FlatIndex, error) {
	dim, err := validate(entries, dim)
	if err != nil {
		return nil, err
	}
	return &FlatIndex{entries: entries, dim: dim}, nil
}

func (f *FlatIndex) Retrieve(query []float64) (Result, bool) {
	return Retrieve(query, f.entries)
}

func (f *FlatIndex) Dimension() int { return f.dim }

func (f *FlatIndex) Len() int { return len(f.entries) }

// ShardedIndex splits the corpus into contiguous shards scanned
// concurrently. Ties resolve to the lowest corpus index, matching
// FlatIndex.
type ShardedIndex struct {
	entries []Entry
	dim     int
	shards  int
}

// NewShardedIndex validates entries like NewFlatIndex.
func NewShardedIndex(entries []Entry, dim, shards int) (*ShardedIndex, error) {
	if shards < 1 {
		return nil, fmt.Errorf("shard count must be positive, got %d", shards)
	}
	dim, err := validate(entries, dim)
	if err != nil {
		return nil, err
	}
	return &ShardedIndex{entries: entries, dim: dim, shards: shards}, nil
}

func (s *ShardedIndex) Retrieve(query []float64) (Result, bool) {
	n := len(s.entries)
	if n == 0 {
		return Result{}, false
	}

	shards := min(s.shards, n)
	size := (n + shards - 1) / shards

	type hit struct {
		idx int
		sim float64
	}
	hits := make([]hit, shards)

	var wg sync.WaitGroup
	for i := 0; i < shards; i++ {
		lo := i * size
		hi := min(lo+size, n)
		wg.Add(1)
		go func(i, lo, hi int) {
			defer wg.Done()
			idx, sim := argMax(query, s.entries, lo, hi)
			hits[i] = hit{idx: idx, sim: sim}
		}(i, lo, hi)
	}
	wg.Wait()

	// Shards are merged in corpus order so only a strictly higher score
	// replaces an earlier one.
	best := hit{idx: -1}
	for _, h := range hits {
		if h.idx < 0 {
			continue
		}
		if best.idx < 0 || h.sim > best.sim {
			best = h
		}
	}

	if best.idx < 0 || best.sim <= MatchThreshold {
		return Result{}, false
	}
	return Result{Entry: s.entries[best.idx], Similarity: best.sim}, true
}

func (s *ShardedIndex) Dimension() int { return s.dim }

func (s *ShardedIndex) Len() int { return len(s.entries) }

func validate(entries []Entry, dim int) (int, error) {
	if dim < 0 {
		return 0, fmt.Errorf("%w: negative dimension %d", ErrMalformedCorpus, dim)
	}
	for i, e := range entries {
		if dim == 0 {
			dim = len(e.Vector)
			if dim == 0 {
				return 0, &DimensionError{Index: i, Topic: e.Topic, Want: 1, Got: 0}
			}
		}
		if len(e.Vector) != dim {
			return 0, &DimensionError{Index: i, Topic: e.Topic, Want: dim, Got: len(e.Vector)}
		}
		if e.Topic == "" {
			return 0, fmt.Errorf("%w: entry %d has no topic", ErrMalformedCorpus, i)
		}
	}
	return dim, nil
}
