package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
)

// LoadBank reads one bank file and checks every vector against dim. A dim
// of 0 takes the dimension of the first entry.
func LoadBank(path string, dim int) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading knowledge bank: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCorpus, path, err)
	}

	if _, err := validate(entries, dim); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// LoadBanks reads every bank into one corpus. Missing banks are skipped
// with a warning; a malformed bank, or banks of different dimensions,
// fail the load.
func LoadBanks(logger *log.Logger, paths []string, dim int) ([]Entry, error) {
	var corpus []Entry
	for _, path := range paths {
		entries, err := LoadBank(path, dim)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Knowledge bank not found, skipping", "path", path)
			continue
		}
		if err != nil {
			return nil, err
		}

		if dim == 0 && len(entries) > 0 {
			dim = len(entries[0].Vector)
		}
		logger.Debug("Loaded knowledge bank", "path", path, "entries", len(entries), "dimension", dim)
		corpus = append(corpus, entries...)
	}
	return corpus, nil
}

// WriteBank stores entries in the format LoadBank reads.
func WriteBank(path string, entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding knowledge bank: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing knowledge bank: %w", err)
	}
	return nil
}
