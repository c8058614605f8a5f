package workout

import (
	"sort"
	"strings"

	"arlo/internal/lexicon"
)

// Rule names reported by Decide.
const (
	RuleQuestion = "question"
	RuleTooLong  = "too_long"
	RuleStrength = "strength_term"
	RuleCardio   = "cardio_term"
	RuleDefault  = "no_term"
)

// Decision is a classification together with the rule that produced it.
type Decision struct {
	Category Category
	Rule     string
}

// message is the normalised view of a text that rules evaluate.
type message struct {
	lower string
	words int
}

// rule is one row of the classification table. Rules are evaluated by
// ascending priority and the first match wins.
type rule struct {
	name     string
	priority int
	outcome  Category
	match    func(m message) bool
}

// Classifier decides whether a message is a workout log.
type Classifier struct {
	rules []rule
}

// NewClassifier builds the rule table from a lexicon.
func NewClassifier(lex lexicon.Lexicon) *Classifier {
	limit := lex.WordLimit
	if limit <= 0 {
		limit = lexicon.DefaultWordLimit
	}

	questions := lowerAll(lex.QuestionPhrases)
	strength := lowerAll(lex.StrengthTerms)
	cardio := lowerAll(lex.CardioTerms)

	rules := []rule{
		{
			name:     RuleQuestion,
			priority: 10,
			outcome:  NotALog,
			match:    func(m message) bool { return containsAny(m.lower, questions) },
		},
		{
			name:     RuleTooLong,
			priority: 20,
			outcome:  NotALog,
			match:    func(m message) bool { return m.words > limit },
		},
		// Strength is checked before cardio so overlapping terms like
		// "row" resolve to Strength.
		{
			name:     RuleStrength,
			priority: 30,
			outcome:  Strength,
			match:    func(m message) bool { return containsAny(m.lower, strength) },
		},
		{
			name:     RuleCardio,
			priority: 40,
			outcome:  Cardio,
			match:    func(m message) bool { return containsAny(m.lower, cardio) },
		},
		{
			name:     RuleDefault,
			priority: 100,
			outcome:  NotALog,
			match:    func(message) bool { return true },
		},
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].priority < rules[j].priority
	})

	return &Classifier{rules: rules}
}

// Classify returns the category of text.
func (c *Classifier) Classify(text string) Category {
	return c.Decide(text).Category
}

// Decide evaluates the rule table and reports which rule fired.
func (c *Classifier) Decide(text string) Decision {
	m := message{
		lower: strings.ToLower(text),
		words: len(strings.Fields(text)),
	}
	for _, r := range c.rules {
		if r.match(m) {
			return Decision{Category: r.outcome, Rule: r.name}
		}
	}
	return Decision{Category: NotALog, Rule: RuleDefault}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
