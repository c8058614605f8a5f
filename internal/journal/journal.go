// Package journal imports historical messages from CSV and exports parsed
// workouts to CSV.
package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"arlo/internal/workout"
)

// Message is one historical inbound message: timestamp,user,text
type Message struct {
	Timestamp time.Time
	User      string
	Text      string
}

var exportHeader = []string{
	"timestamp", "category", "distance", "distance_unit", "duration", "pace",
	"exercise", "weight", "weight_unit", "reps", "sets", "raw_text",
}

// LoadMessages reads a message CSV file
func LoadMessages(path string) ([]Message, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening message file: %w", err)
	}
	defer file.Close()

	return ReadMessages(file)
}

// ReadMessages parses message records, skipping an optional header row and
// any invalid rows.
func ReadMessages(r io.Reader) ([]Message, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading message CSV: %w", err)
	}

	var messages []Message
	for i, record := range records {
		// Skip header row
		if i == 0 && len(record) > 0 && record[0] == "timestamp" {
			continue
		}

		msg, err := parseMessageRecord(record)
		if err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// parseMessageRecord parses a CSV record: timestamp,user,text
func parseMessageRecord(record []string) (Message, error) {
	if len(record) != 3 {
		return Message{}, fmt.Errorf("expected 3 fields, got %d", len(record))
	}

	timestamp, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return Message{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	user := strings.TrimSpace(record[1])
	if user == "" {
		return Message{}, fmt.Errorf("missing user")
	}
	if strings.TrimSpace(record[2]) == "" {
		return Message{}, fmt.Errorf("empty message")
	}

	return Message{Timestamp: timestamp, User: user, Text: record[2]}, nil
}

// WorkoutSink stores parsed workouts.
type WorkoutSink interface {
	AppendWorkout(ctx context.Context, userID string, e workout.LogEntry) (string, error)
}

type ImportReport struct {
	Read    int
	Logged  int
	Ignored int
}

// Import runs every message through parser and stores the workouts found,
// dated at the message timestamp.
func Import(ctx context.Context, logger *log.Logger, parser *workout.Parser, sink WorkoutSink, messages []Message) (ImportReport, error) {
	var report ImportReport
	for _, msg := range messages {
		report.Read++

		entry, decision, ok := parser.Parse(msg.Text, msg.Timestamp)
		if !ok {
			logger.Debug("Message is not a workout", "user", msg.User, "rule", decision.Rule)
			report.Ignored++
			continue
		}

		if _, err := sink.AppendWorkout(ctx, msg.User, entry); err != nil {
			return report, fmt.Errorf("error storing workout for %s: %w", msg.User, err)
		}
		report.Logged++
	}
	return report, nil
}

// WriteWorkouts writes entries as CSV with a header row. Strength entries
// produce one row per exercise.
func WriteWorkouts(w io.Writer, entries []workout.LogEntry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, e := range entries {
		for _, record := range workoutRecords(e) {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("error writing CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func workoutRecords(e workout.LogEntry) [][]string {
	ts := e.Date.Format(time.RFC3339)

	if e.Category == workout.Cardio {
		var distance, unit, duration, pace string
		if c := e.Cardio; c != nil {
			if c.Distance != nil {
				distance = strconv.FormatFloat(*c.Distance, 'f', -1, 64)
				unit = string(c.DistanceUnit)
			}
			duration = optInt(c.DurationMinutes)
			pace = c.Pace
		}
		return [][]string{{ts, e.Category.String(), distance, unit, duration, pace, "", "", "", "", "", e.RawText}}
	}

	records := make([][]string, 0, len(e.Exercises))
	for _, ex := range e.Exercises {
		records = append(records, []string{
			ts, e.Category.String(), "", "", "", "",
			ex.Name, optInt(ex.Weight), string(ex.WeightUnit), optInt(ex.Reps), optInt(ex.Sets), e.RawText,
		})
	}
	return records
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
