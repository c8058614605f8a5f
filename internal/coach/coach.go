// Package coach handles one inbound message: it logs workouts and, for
// everything else, looks up relevant knowledge and drafts a reply.
package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"arlo/internal/ai"
	"arlo/internal/knowledge"
	"arlo/internal/metrics"
	"arlo/internal/store"
	"arlo/internal/workout"
)

var (
	ErrUnknownUser  = errors.New("unknown user")
	ErrInactiveUser = errors.New("inactive subscription")
)

// Canned replies for the error outcomes above and for failed generation.
const (
	UnknownUserReply  = "Hi! To start using Arlo, please sign up at arlo.coach"
	InactiveUserReply = "Your Arlo subscription has ended. Resubscribe at arlo.coach to continue coaching!"
	ErrorReply        = "Sorry, I encountered an error. Please try again in a moment."
)

// SystemPrompt frames conversational replies.
const SystemPrompt = `You are Arlo, an AI performance and lifestyle coach. You communicate via text message with athletes and high performers.

Your coaching style:
- Calm, confident, and motivational (think Huberman meets Olympic coach)
- Science-based but conversational
- Ask clarifying questions when needed
- Keep responses concise (2-3 sentences max for text)
- Focus on: workouts, recovery, sleep, nutrition, performance optimization

You interpret user logs like "Ran 5K" or "Slept 6 hours" and provide actionable insights.`

// HistoryLimit is how many messages, the current one included, a
// conversational reply sees.
const HistoryLimit = 10

// Store is the persistence the message pipeline needs.
type Store interface {
	GetUser(ctx context.Context, id string) (store.User, error)
	TouchUser(ctx context.Context, id string, at time.Time) error
	AppendWorkout(ctx context.Context, userID string, e workout.LogEntry) (string, error)
	WorkoutDates(ctx context.Context, userID string) ([]time.Time, error)
	AppendMessage(ctx context.Context, userID, direction, content string, at time.Time) error
	RecentMessages(ctx context.Context, userID string, limit int) ([]store.Message, error)
}

// Completer drafts a reply from a system prompt and the conversation so
// far, oldest turn first.
type Completer interface {
	Chat(ctx context.Context, system string, turns []ai.Turn) (string, error)
}

type ReplyKind int

const (
	ReplyLogged ReplyKind = iota
	ReplyConversation
)

// Reply is the outcome of handling a message. Text may be empty for a
// conversational message when no completer is configured.
type Reply struct {
	Kind     ReplyKind
	Text     string
	Decision workout.Decision
	Entry    *workout.LogEntry
	Streak   int
	Insight  *knowledge.Result
	Context  string
}

type Service struct {
	parser    *workout.Parser
	store     Store
	embedder  knowledge.Embedder
	index     knowledge.Retriever
	completer Completer
	logger    *log.Logger
}

// NewService wires the pipeline. embedder, index and completer may be nil,
// which disables the matching step.
func NewService(logger *log.Logger, parser *workout.Parser, st Store, embedder knowledge.Embedder, index knowledge.Retriever, completer Completer) *Service {
	return &Service{
		parser:    parser,
		store:     st,
		embedder:  embedder,
		index:     index,
		completer: completer,
		logger:    logger.WithPrefix("coach"),
	}
}

// HandleMessage processes text sent by userID at the given time. Both the
// message and a successful reply are kept as conversation history.
func (s *Service) HandleMessage(ctx context.Context, userID, text string, at time.Time) (Reply, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Reply{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	if err != nil {
		return Reply{}, fmt.Errorf("error loading user: %w", err)
	}
	if !user.Active() {
		return Reply{}, fmt.Errorf("%w: %s", ErrInactiveUser, userID)
	}

	defer func() {
		if err := s.store.TouchUser(ctx, userID, at); err != nil {
			s.logger.Warn("Failed to update user stats", "user", userID, "error", err)
		}
	}()

	entry, decision, ok := s.parser.Parse(text, at)
	metrics.MessagesClassified.WithLabelValues(decision.Category.String(), decision.Rule).Inc()
	s.logger.Debug("Classified message", "user", userID, "category", decision.Category, "rule", decision.Rule, "logged", ok)

	if ok {
		s.record(ctx, userID, store.DirectionIncoming, text, at)
		return s.logWorkout(ctx, userID, entry, decision)
	}

	history := s.history(ctx, userID)
	s.record(ctx, userID, store.DirectionIncoming, text, at)
	return s.converse(ctx, user, text, history, decision, at), nil
}

// record keeps a message; a failure only costs history.
func (s *Service) record(ctx context.Context, userID, direction, content string, at time.Time) {
	if err := s.store.AppendMessage(ctx, userID, direction, content, at); err != nil {
		s.logger.Warn("Failed to store message", "user", userID, "direction", direction, "error", err)
	}
}

// history returns the turns preceding the current message.
func (s *Service) history(ctx context.Context, userID string) []ai.Turn {
	if s.completer == nil {
		return nil
	}
	msgs, err := s.store.RecentMessages(ctx, userID, HistoryLimit-1)
	if err != nil {
		s.logger.Warn("Failed to load conversation history", "user", userID, "error", err)
		return nil
	}
	return lo.Map(msgs, func(m store.Message, _ int) ai.Turn {
		if m.Direction == store.DirectionOutgoing {
			return ai.Turn{Role: ai.RoleAssistant, Content: m.Content}
		}
		return ai.Turn{Role: ai.RoleUser, Content: m.Content}
	})
}

func (s *Service) logWorkout(ctx context.Context, userID string, entry workout.LogEntry, decision workout.Decision) (Reply, error) {
	if _, err := s.store.AppendWorkout(ctx, userID, entry); err != nil {
		return Reply{}, fmt.Errorf("error storing workout: %w", err)
	}
	metrics.WorkoutsLogged.WithLabelValues(entry.Category.String()).Inc()

	streak := 0
	dates, err := s.store.WorkoutDates(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load workout dates", "user", userID, "error", err)
	} else {
		streak = workout.CurrentStreak(dates, entry.Date)
	}

	text := workout.Confirmation(entry)
	if streak > 1 {
		text += fmt.Sprintf("\n🔥 %d-day streak", streak)
	}
	s.record(ctx, userID, store.DirectionOutgoing, text, entry.Date)

	return Reply{
		Kind:     ReplyLogged,
		Text:     text,
		Decision: decision,
		Entry:    &entry,
		Streak:   streak,
	}, nil
}

func (s *Service) converse(ctx context.Context, user store.User, text string, history []ai.Turn, decision workout.Decision, at time.Time) Reply {
	match := s.lookup(ctx, text)
	userContext := UserContext(user, match)

	reply := Reply{
		Kind:     ReplyConversation,
		Decision: decision,
		Insight:  match,
		Context:  userContext,
	}
	if s.completer == nil {
		return reply
	}

	turns := append(history, ai.Turn{Role: ai.RoleUser, Content: text})
	out, err := s.completer.Chat(ctx, SystemPrompt+"\n\n"+userContext, turns)
	if err != nil {
		s.logger.Error("Error generating reply", "user", user.ID, "error", err)
		reply.Text = ErrorReply
		return reply
	}
	s.record(ctx, user.ID, store.DirectionOutgoing, out, at)
	reply.Text = out
	return reply
}

// lookup embeds text and queries the knowledge index. Every failure
// degrades to no match.
func (s *Service) lookup(ctx context.Context, text string) *knowledge.Result {
	if s.embedder == nil || s.index == nil || s.index.Len() == 0 {
		metrics.KnowledgeLookups.WithLabelValues(metrics.LookupSkipped).Inc()
		return nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("Embedding failed, skipping knowledge lookup", "error", err)
		metrics.KnowledgeLookups.WithLabelValues(metrics.LookupFailed).Inc()
		return nil
	}
	if len(vec) != s.index.Dimension() {
		s.logger.Warn("Embedding dimension does not match knowledge index", "got", len(vec), "want", s.index.Dimension())
		metrics.KnowledgeLookups.WithLabelValues(metrics.LookupFailed).Inc()
		return nil
	}

	res, ok := s.index.Retrieve(vec)
	if !ok {
		s.logger.Debug("No relevant knowledge found")
		metrics.KnowledgeLookups.WithLabelValues(metrics.LookupMiss).Inc()
		return nil
	}

	s.logger.Info("Found relevant insight", "topic", res.Entry.Topic, "similarity", fmt.Sprintf("%.2f", res.Similarity))
	metrics.KnowledgeLookups.WithLabelValues(metrics.LookupMatch).Inc()
	return &res
}

// UserContext describes the user, plus the matched knowledge when present.
// Age and gender are left out when unknown.
func UserContext(u store.User, match *knowledge.Result) string {
	name := u.Name
	if name == "" {
		name = "User"
	}
	if u.Age > 0 {
		name += fmt.Sprintf(", %d years old", u.Age)
	}
	if u.Gender != "" {
		name += ", " + u.Gender
	}
	goal := u.Goal
	if goal == "" {
		goal = "Not specified yet"
	}
	return fmt.Sprintf("User info: %s. Goals: %s.%s", name, goal, KnowledgeContext(match))
}

// KnowledgeContext renders a match for a generation prompt. A nil match
// renders as the empty string.
func KnowledgeContext(match *knowledge.Result) string {
	if match == nil {
		return ""
	}
	e := match.Entry
	return fmt.Sprintf("\n\nRelevant research insight:\nTopic: %s\nSource: %s\nSummary: %s\nAction: %s",
		e.Topic, e.Source, e.Summary, e.Action)
}
