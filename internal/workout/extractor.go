package workout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"arlo/internal/lexicon"
)

var (
	distanceRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(km|miles|mile|mi|k)\b`)
	hourRe     = regexp.MustCompile(`(?i)^\s*hour`)
	durationRe = regexp.MustCompile(`(?i)\b(?:in|took|for)\s*(\d+)\s*min(?:ute)?s?\b`)
	paceRe     = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*/\s*(km|miles|mile|mi|k)\b`)

	clauseRe     = regexp.MustCompile(`(?i),|\bthen\b|\band\b|\n`)
	weightRepsRe = regexp.MustCompile(`(?i)(\d+)\s*(lbs?|kg)?\s*(?:x|×|for)\s*(\d+)\s*(?:reps?)?`)
	setsRe       = regexp.MustCompile(`(?i)(\d+)\s*sets?\b`)
)

// Extractor turns classified text into a LogEntry.
type Extractor struct {
	exercises []string
	now       func() time.Time
}

// NewExtractor prepares the exercise search order from lex.
func NewExtractor(lex lexicon.Lexicon) *Extractor {
	return &Extractor{
		exercises: lex.ExercisesByLength(),
		now:       time.Now,
	}
}

// Extract parses text dated now. It reports false when no entry can be
// built, which includes strength text without a recognised exercise.
func (e *Extractor) Extract(text string, cat Category) (LogEntry, bool) {
	return e.ExtractAt(text, cat, e.now())
}

// ExtractAt is Extract with an explicit entry date.
func (e *Extractor) ExtractAt(text string, cat Category, at time.Time) (LogEntry, bool) {
	switch cat {
	case Cardio:
		details := extractCardio(text)
		return LogEntry{Date: at, RawText: text, Category: Cardio, Cardio: &details}, true
	case Strength:
		sets := e.extractStrength(text)
		if len(sets) == 0 {
			return LogEntry{}, false
		}
		return LogEntry{Date: at, RawText: text, Category: Strength, Exercises: sets}, true
	default:
		return LogEntry{}, false
	}
}

func extractCardio(text string) CardioDetails {
	var d CardioDetails

	for _, m := range distanceRe.FindAllStringSubmatchIndex(text, -1) {
		if hourRe.MatchString(text[m[1]:]) {
			continue
		}
		v, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		d.Distance = floatPtr(v)
		d.DistanceUnit = normalizeDistanceUnit(text[m[4]:m[5]])
		break
	}

	if m := durationRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			d.DurationMinutes = intPtr(v)
		}
	}

	if m := paceRe.FindStringSubmatch(text); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		d.Pace = fmt.Sprintf("%d:%s/%s", minutes, m[2], normalizeDistanceUnit(m[3]))
	}

	return d
}

func (e *Extractor) extractStrength(text string) []ExerciseSet {
	var out []ExerciseSet
	for _, clause := range clauseRe.Split(text, -1) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if set, ok := e.parseClause(clause); ok {
			out = append(out, set)
		}
	}
	return out
}

func (e *Extractor) parseClause(clause string) (ExerciseSet, bool) {
	lower := strings.ToLower(clause)

	var set ExerciseSet
	for _, name := range e.exercises {
		if strings.Contains(lower, name) {
			set.Name = name
			break
		}
	}
	if set.Name == "" {
		return ExerciseSet{}, false
	}

	if m := weightRepsRe.FindStringSubmatch(clause); m != nil {
		weight, werr := strconv.Atoi(m[1])
		reps, rerr := strconv.Atoi(m[3])
		if werr == nil && rerr == nil {
			set.Weight = intPtr(weight)
			set.Reps = intPtr(reps)
			set.WeightUnit = UnitLB
			if strings.EqualFold(m[2], "kg") {
				set.WeightUnit = UnitKG
			}
		}
	}

	if m := setsRe.FindStringSubmatch(clause); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			set.Sets = intPtr(v)
		}
	}

	return set, true
}

func normalizeDistanceUnit(raw string) DistanceUnit {
	switch strings.ToLower(raw) {
	case "k":
		return UnitK
	case "km":
		return UnitKM
	case "mi":
		return UnitMi
	default:
		return UnitMile
	}
}
