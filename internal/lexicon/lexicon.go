// Package lexicon holds the curated keyword tables used to classify and parse
// workout messages. Tables are plain data so callers can inject their own.
package lexicon

import (
	"sort"
	"strings"
)

// DefaultWordLimit is the word count above which a message is treated as
// conversation rather than a terse log.
const DefaultWordLimit = 50

// Lexicon is the full set of tables consumed by the workout parser.
type Lexicon struct {
	QuestionPhrases []string `yaml:"question_phrases"`
	CardioTerms     []string `yaml:"cardio_terms"`
	StrengthTerms   []string `yaml:"strength_terms"`
	Exercises       []string `yaml:"exercises"`
	WordLimit       int      `yaml:"word_limit"`
}

// Default returns the built-in tables.
func Default() Lexicon {
	return Lexicon{
		QuestionPhrases: []string{
			"?", "should i", "what do", "how do", "can i", "is it", "would it",
			"do you think", "advice", "help", "recommend", "suggest", "opinion",
			"supposed to", "planning to", "going to", "about to", "want to",
		},
		CardioTerms: []string{
			"run", "running", "ran", "jog", "jogging", "bike", "biking", "swim", "swimming",
			"row", "rowing", "hike", "hiking", "walked", "walk",
		},
		StrengthTerms: []string{
			"lift", "lifting", "lifted", "squat", "squats", "deadlift", "deadlifts", "bench",
			"press", "curl", "row", "pull", "push", "workout", "gym", "weights", "reps", "sets",
			"training", "chest", "back", "legs", "shoulders", "arms",
		},
		Exercises: []string{
			// chest
			"bench press", "bench", "incline press", "incline bench", "decline press", "decline bench",
			"chest press", "dumbbell press", "db press", "cable flies", "cable fly", "pec flies", "pec fly",
			"chest flies", "chest fly", "dips", "push ups", "pushups",
			// back
			"deadlift", "deadlifts", "barbell row", "barbell rows", "bent over row", "bent row",
			"dumbbell row", "db row", "cable row", "seated row", "lat pulldown", "pulldown",
			"pull up", "pullup", "pull-up", "pullups", "chin up", "chinup", "chin-up",
			"t-bar row", "tbar row", "face pulls", "face pull",
			// legs
			"squat", "squats", "back squat", "front squat", "leg press", "leg extension",
			"leg curl", "hamstring curl", "calf raise", "calf raises", "lunges", "lunge",
			"bulgarian split squat", "split squat", "romanian deadlift", "rdl", "leg day",
			// shoulders
			"overhead press", "ohp", "shoulder press", "military press", "arnold press",
			"lateral raise", "lateral raises", "front raise", "front raises", "rear delt fly",
			"rear delt flies", "shrugs", "shrug",
			// arms
			"bicep curl", "bicep curls", "curls", "curl", "hammer curl", "hammer curls",
			"preacher curl", "concentration curl", "tricep extension", "tricep extensions",
			"skull crusher", "skull crushers", "close grip bench", "tricep pushdown", "tricep dips",
			// core
			"plank", "planks", "sit up", "sit ups", "crunches", "crunch", "leg raise", "leg raises",
			"russian twist", "russian twists", "ab wheel", "hanging leg raise",
		},
		WordLimit: DefaultWordLimit,
	}
}

// ExercisesByLength returns the exercise names lowercased, deduplicated and
// ordered longest first so that "bench press" is tried before "bench".
// Names of equal length keep their table order.
func (l Lexicon) ExercisesByLength() []string {
	seen := make(map[string]bool, len(l.Exercises))
	names := make([]string, 0, len(l.Exercises))
	for _, name := range l.Exercises {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})
	return names
}

// withDefaults fills empty sections from Default.
func (l Lexicon) withDefaults() Lexicon {
	def := Default()
	if len(l.QuestionPhrases) == 0 {
		l.QuestionPhrases = def.QuestionPhrases
	}
	if len(l.CardioTerms) == 0 {
		l.CardioTerms = def.CardioTerms
	}
	if len(l.StrengthTerms) == 0 {
		l.StrengthTerms = def.StrengthTerms
	}
	if len(l.Exercises) == 0 {
		l.Exercises = def.Exercises
	}
	if l.WordLimit == 0 {
		l.WordLimit = def.WordLimit
	}
	return l
}
