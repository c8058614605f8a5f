package journal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"arlo/internal/lexicon"
	"arlo/internal/workout"
)

func TestParseMessageRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  []string
		wantErr bool
	}{
		{
			name:    "valid record",
			record:  []string{"2026-03-09T07:15:00+01:00", "+15550001", "Ran 5k in 27 minutes"},
			wantErr: false,
		},
		{
			name:    "invalid timestamp",
			record:  []string{"yesterday", "+15550001", "Ran 5k"},
			wantErr: true,
		},
		{
			name:    "wrong number of fields",
			record:  []string{"2026-03-09T07:15:00+01:00", "+15550001"},
			wantErr: true,
		},
		{
			name:    "missing user",
			record:  []string{"2026-03-09T07:15:00+01:00", " ", "Ran 5k"},
			wantErr: true,
		},
		{
			name:    "empty text",
			record:  []string{"2026-03-09T07:15:00+01:00", "+15550001", ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := parseMessageRecord(tt.record)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.User != "+15550001" {
				t.Errorf("expected user +15550001, got %s", msg.User)
			}
			if msg.Text != "Ran 5k in 27 minutes" {
				t.Errorf("expected text to be kept, got %q", msg.Text)
			}
			if msg.Timestamp.UTC().Hour() != 6 {
				t.Errorf("expected 06:15 UTC, got %s", msg.Timestamp.UTC())
			}
		})
	}
}

func TestLoadMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.csv")
	data := `timestamp,user,text
2026-03-09T07:15:00Z,+15550001,"Ran 5k in 27 minutes, pace 5:24/km"
not-a-time,+15550001,ignored
2026-03-10T18:00:00Z,+15550002,"bench 225x10 3 sets, then squat 315x5"
2026-03-10T19:00:00Z,+15550002,Should I deload next week?
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write messages: %v", err)
	}

	msgs, err := LoadMessages(path)
	if err != nil {
		t.Fatalf("failed to load messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "Ran 5k in 27 minutes, pace 5:24/km" {
		t.Errorf("quoted field not preserved: %q", msgs[0].Text)
	}

	if _, err := LoadMessages(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

type memorySink struct {
	entries map[string][]workout.LogEntry
	err     error
}

func (m *memorySink) AppendWorkout(_ context.Context, userID string, e workout.LogEntry) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.entries == nil {
		m.entries = map[string][]workout.LogEntry{}
	}
	m.entries[userID] = append(m.entries[userID], e)
	return "id", nil
}

func TestImport(t *testing.T) {
	msgs, err := ReadMessages(strings.NewReader(`2026-03-09T07:15:00Z,u1,Ran 5k
2026-03-09T12:00:00Z,u1,Should I run again tonight?
2026-03-10T18:00:00Z,u2,squat 315x5
2026-03-11T18:00:00Z,u2,great gym session
`))
	if err != nil {
		t.Fatalf("failed to read messages: %v", err)
	}

	sink := &memorySink{}
	parser := workout.NewParser(lexicon.Default())
	report, err := Import(context.Background(), log.New(io.Discard), parser, sink, msgs)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if report != (ImportReport{Read: 4, Logged: 2, Ignored: 2}) {
		t.Errorf("unexpected report: %+v", report)
	}
	if got := sink.entries["u1"]; len(got) != 1 || !got[0].Date.Equal(time.Date(2026, 3, 9, 7, 15, 0, 0, time.UTC)) {
		t.Errorf("expected u1 run dated at message time, got %+v", got)
	}
	if got := sink.entries["u2"]; len(got) != 1 || got[0].Exercises[0].Name != "squat" {
		t.Errorf("expected u2 squat, got %+v", got)
	}

	sink = &memorySink{err: errors.New("disk full")}
	if _, err := Import(context.Background(), log.New(io.Discard), parser, sink, msgs); err == nil {
		t.Errorf("expected sink error to stop the import")
	}
}

func TestWriteWorkouts(t *testing.T) {
	km := 5.0
	mins, w1, r1, s1, w2, r2 := 27, 225, 10, 3, 315, 5
	at := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)

	entries := []workout.LogEntry{
		{Date: at, RawText: "Ran 5k in 27 minutes", Category: workout.Cardio,
			Cardio: &workout.CardioDetails{Distance: &km, DistanceUnit: workout.UnitK, DurationMinutes: &mins, Pace: "5:24/km"}},
		{Date: at.Add(time.Hour), RawText: "bench 225x10 3 sets, then squat 315x5", Category: workout.Strength,
			Exercises: []workout.ExerciseSet{
				{Name: "bench", Weight: &w1, WeightUnit: workout.UnitLB, Reps: &r1, Sets: &s1},
				{Name: "squat", Weight: &w2, WeightUnit: workout.UnitLB, Reps: &r2},
			}},
	}

	var buf bytes.Buffer
	if err := WriteWorkouts(&buf, entries); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	want := `timestamp,category,distance,distance_unit,duration,pace,exercise,weight,weight_unit,reps,sets,raw_text
2026-03-09T07:00:00Z,cardio,5,k,27,5:24/km,,,,,,Ran 5k in 27 minutes
2026-03-09T08:00:00Z,strength,,,,,bench,225,lb,10,3,"bench 225x10 3 sets, then squat 315x5"
2026-03-09T08:00:00Z,strength,,,,,squat,315,lb,5,,"bench 225x10 3 sets, then squat 315x5"
`
	if buf.String() != want {
		t.Errorf("unexpected export:\n%s\nwant:\n%s", buf.String(), want)
	}
}
