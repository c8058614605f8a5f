package workout

import (
	"time"

	"arlo/internal/lexicon"
)

// Parser runs classification followed by extraction.
type Parser struct {
	classifier *Classifier
	extractor  *Extractor
}

// NewParser builds a parser over one lexicon.
func NewParser(lex lexicon.Lexicon) *Parser {
	return &Parser{
		classifier: NewClassifier(lex),
		extractor:  NewExtractor(lex),
	}
}

// Parse classifies text and extracts an entry dated at. The decision is
// returned even when no entry is built.
func (p *Parser) Parse(text string, at time.Time) (LogEntry, Decision, bool) {
	d := p.classifier.Decide(text)
	if d.Category == NotALog {
		return LogEntry{}, d, false
	}
	entry, ok := p.extractor.ExtractAt(text, d.Category, at)
	return entry, d, ok
}
