package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a lexicon from a YAML file. Sections missing from the file
// inherit the built-in tables.
func Load(path string) (Lexicon, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Lexicon{}, fmt.Errorf("lexicon file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("error reading lexicon: %w", err)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("error parsing lexicon %s: %w", path, err)
	}

	lex = lex.withDefaults()
	if err := lex.Validate(); err != nil {
		return Lexicon{}, fmt.Errorf("invalid lexicon %s: %w", path, err)
	}

	return lex, nil
}

// LoadOrDefault loads path when it is set and falls back to Default otherwise.
func LoadOrDefault(path string) (Lexicon, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks that the tables can drive a parser.
func (l Lexicon) Validate() error {
	if l.WordLimit < 0 {
		return fmt.Errorf("word_limit must be positive, got %d", l.WordLimit)
	}

	for _, section := range []struct {
		name  string
		terms []string
	}{
		{"question_phrases", l.QuestionPhrases},
		{"cardio_terms", l.CardioTerms},
		{"strength_terms", l.StrengthTerms},
		{"exercises", l.Exercises},
	} {
		for i, term := range section.terms {
			if strings.TrimSpace(term) == "" {
				return fmt.Errorf("%s[%d] is empty", section.name, i)
			}
		}
	}

	return nil
}
