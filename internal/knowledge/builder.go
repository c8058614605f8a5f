package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Seed is an unembedded knowledge record.
type Seed struct {
	Topic   string `json:"topic"`
	Source  string `json:"source"`
	Summary string `json:"summary"`
	Action  string `json:"action"`
}

// Text is the string embedded for a seed.
func (s Seed) Text() string {
	return fmt.Sprintf("%s. %s. %s", s.Topic, s.Summary, s.Action)
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// LoadSeeds reads a JSON array of seeds.
func LoadSeeds(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading seeds: %w", err)
	}

	var seeds []Seed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("error parsing seeds %s: %w", path, err)
	}
	for i, s := range seeds {
		if s.Topic == "" {
			return nil, fmt.Errorf("seed %d has no topic", i)
		}
	}
	return seeds, nil
}

// BatchEmbedder embeds several texts in one call, in input order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Build embeds every seed in order and checks the result is one corpus
// of a single dimension. Embedders that also implement BatchEmbedder are
// called once for the whole set.
func Build(ctx context.Context, logger *log.Logger, embedder Embedder, seeds []Seed) ([]Entry, error) {
	vectors, err := embedSeeds(ctx, logger, embedder, seeds)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(seeds))
	for i, s := range seeds {
		entries = append(entries, Entry{
			Topic:   s.Topic,
			Source:  s.Source,
			Summary: s.Summary,
			Action:  s.Action,
			Vector:  vectors[i],
		})
	}

	if _, err := validate(entries, 0); err != nil {
		return nil, err
	}
	return entries, nil
}

func embedSeeds(ctx context.Context, logger *log.Logger, embedder Embedder, seeds []Seed) ([][]float64, error) {
	if batch, ok := embedder.(BatchEmbedder); ok && len(seeds) > 0 {
		texts := make([]string, len(seeds))
		for i, s := range seeds {
			texts[i] = s.Text()
		}
		vectors, err := batch.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding %d seeds: %w", len(seeds), err)
		}
		if len(vectors) != len(seeds) {
			return nil, fmt.Errorf("embedding returned %d vectors for %d seeds", len(vectors), len(seeds))
		}
		logger.Debug("Embedded seeds", "count", len(seeds))
		return vectors, nil
	}

	vectors := make([][]float64, len(seeds))
	for i, s := range seeds {
		vec, err := embedder.Embed(ctx, s.Text())
		if err != nil {
			return nil, fmt.Errorf("embedding seed %d (%q): %w", i, s.Topic, err)
		}
		logger.Debug("Embedded seed", "topic", s.Topic, "dimension", len(vec))
		vectors[i] = vec
	}
	return vectors, nil
}
