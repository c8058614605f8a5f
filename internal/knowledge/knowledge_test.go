package knowledge

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(topic string, vec ...float64) Entry {
	return Entry{Topic: topic, Source: "test", Summary: topic + " summary", Action: topic + " action", Vector: vec}
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("self similarity", func(t *testing.T) {
		assert.Equal(t, 1.0, CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}))

		r := rand.New(rand.NewSource(7))
		for i := 0; i < 50; i++ {
			v := make([]float64, 16)
			for j := range v {
				v[j] = r.NormFloat64()
			}
			assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-12)
		}
	})

	t.Run("symmetry", func(t *testing.T) {
		r := rand.New(rand.NewSource(11))
		for i := 0; i < 50; i++ {
			a := make([]float64, 8)
			b := make([]float64, 8)
			for j := range a {
				a[j] = r.NormFloat64()
				b[j] = r.NormFloat64()
			}
			assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
		}
	})

	t.Run("orthogonal and opposite", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}))
		assert.Equal(t, -1.0, CosineSimilarity([]float64{1, 0}, []float64{-3, 0}))
	})

	t.Run("zero vector", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
		assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{0, 0}))
	})

	t.Run("dimension mismatch panics", func(t *testing.T) {
		assert.Panics(t, func() { CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}) })
	})
}

func TestRetrieve(t *testing.T) {
	query := []float64{1, 0, 0, 0}

	tests := []struct {
		name   string
		corpus []Entry
		found  bool
		topic  string
	}{
		{"empty corpus", nil, false, ""},
		{
			name:   "exactly at threshold",
			corpus: []Entry{entry("edge", 7, 7, 1, 1)},
			found:  false,
		},
		{
			name:   "best match above threshold",
			corpus: []Entry{entry("far", 0, 1, 0, 0), entry("near", 0.9, 0.1, 0, 0), entry("close", 0.8, 0.5, 0, 0)},
			found:  true,
			topic:  "near",
		},
		{
			name:   "ties keep first seen",
			corpus: []Entry{entry("other", 0, 1, 0, 0), entry("first", 2, 0, 0, 0), entry("second", 5, 0, 0, 0)},
			found:  true,
			topic:  "first",
		},
		{
			name:   "nothing relevant",
			corpus: []Entry{entry("a", 0, 1, 0, 0), entry("b", -1, 0, 0, 0)},
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := Retrieve(query, tt.corpus)
			assert.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.topic, res.Entry.Topic)
				assert.Greater(t, res.Similarity, MatchThreshold)
			} else {
				assert.Equal(t, Result{}, res)
			}
		})
	}
}

func TestIndexes(t *testing.T) {
	corpus := []Entry{
		entry("t0", 0, 1, 0),
		entry("t1", 1, 1, 0),
		entry("t2", 0, 0, 1),
		entry("t3", 1, 0.1, 0),
		entry("t4", 0.5, 0.5, 0.5),
		entry("t5", 0, 1, 1),
		entry("t6", 1, 0.1, 0),
	}
	queries := [][]float64{
		{1, 0, 0},
		{1, 1, 0},
		{0, 0, 1},
		{0, 1, 0.9},
		{-1, 0, 0},
	}

	flat, err := NewFlatIndex(corpus, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, flat.Dimension())
	assert.Equal(t, 7, flat.Len())

	for _, shards := range []int{1, 2, 3, 4, 7, 20} {
		t.Run(fmt.Sprintf("%d shards", shards), func(t *testing.T) {
			sharded, err := NewShardedIndex(corpus, 0, shards)
			require.NoError(t, err)
			assert.Equal(t, 3, sharded.Dimension())

			for _, q := range queries {
				want, wantOK := flat.Retrieve(q)
				got, gotOK := sharded.Retrieve(q)
				assert.Equal(t, wantOK, gotOK)
				assert.Equal(t, want, got)
			}
		})
	}

	res, ok := flat.Retrieve([]float64{1, 0.1, 0})
	require.True(t, ok)
	assert.Equal(t, "t3", res.Entry.Topic)
}

func TestIndexEmpty(t *testing.T) {
	var retrievers []Retriever

	flat, err := NewFlatIndex(nil, 1536)
	require.NoError(t, err)
	sharded, err := NewShardedIndex(nil, 1536, 4)
	require.NoError(t, err)
	retrievers = append(retrievers, flat, sharded)

	for _, r := range retrievers {
		_, ok := r.Retrieve(make([]float64, 1536))
		assert.False(t, ok)
		assert.Equal(t, 0, r.Len())
	}
}

func TestIndexValidation(t *testing.T) {
	_, err := NewFlatIndex([]Entry{entry("a", 1, 0), entry("b", 1, 0, 0)}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedCorpus))

	var dimErr *DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 1, dimErr.Index)
	assert.Equal(t, "b", dimErr.Topic)
	assert.Equal(t, 2, dimErr.Want)
	assert.Equal(t, 3, dimErr.Got)

	_, err = NewFlatIndex([]Entry{entry("", 1, 0)}, 2)
	assert.ErrorIs(t, err, ErrMalformedCorpus)

	_, err = NewShardedIndex([]Entry{entry("a", 1)}, 1, 0)
	assert.Error(t, err)
}
