package workout

import "time"

// Category is the outcome of classifying a message
type Category int

const (
	NotALog Category = iota
	Cardio
	Strength
)

func (c Category) String() string {
	switch c {
	case Cardio:
		return "cardio"
	case Strength:
		return "strength"
	default:
		return "none"
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	*c = ParseCategory(string(b))
	return nil
}

// ParseCategory maps a stored category name back to a Category
func ParseCategory(s string) Category {
	switch s {
	case "cardio":
		return Cardio
	case "strength":
		return Strength
	default:
		return NotALog
	}
}

// DistanceUnit is the unit a cardio distance was logged in
type DistanceUnit string

const (
	UnitK    DistanceUnit = "k"
	UnitKM   DistanceUnit = "km"
	UnitMile DistanceUnit = "mile"
	UnitMi   DistanceUnit = "mi"
)

// WeightUnit is the unit a lifted weight was logged in
type WeightUnit string

const (
	UnitLB WeightUnit = "lb"
	UnitKG WeightUnit = "kg"
)

// CardioDetails holds the optional fields of a cardio log.
// Pointers distinguish between 0 and unset.
type CardioDetails struct {
	Distance        *float64     `json:"distance,omitempty"`
	DistanceUnit    DistanceUnit `json:"distanceUnit,omitempty"`
	DurationMinutes *int         `json:"durationMinutes,omitempty"`
	Pace            string       `json:"pace,omitempty"` // mm:ss/unit
}

// ExerciseSet is one recognised exercise from a strength log
type ExerciseSet struct {
	Name       string     `json:"name"`
	Weight     *int       `json:"weight,omitempty"`
	WeightUnit WeightUnit `json:"weightUnit,omitempty"`
	Reps       *int       `json:"reps,omitempty"`
	Sets       *int       `json:"sets,omitempty"`
}

// LogEntry is a parsed workout message. Cardio entries carry Cardio,
// strength entries carry at least one ExerciseSet.
type LogEntry struct {
	Date      time.Time      `json:"date"`
	RawText   string         `json:"rawText"`
	Category  Category       `json:"category"`
	Cardio    *CardioDetails `json:"cardio,omitempty"`
	Exercises []ExerciseSet  `json:"exercises,omitempty"`
}

// Day returns the UTC calendar date of the entry
func (e LogEntry) Day() string {
	return e.Date.UTC().Format(dayLayout)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
