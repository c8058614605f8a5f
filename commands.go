package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"arlo/internal/ai"
	"arlo/internal/coach"
	"arlo/internal/insight"
	"arlo/internal/journal"
	"arlo/internal/knowledge"
	"arlo/internal/lexicon"
	"arlo/internal/metrics"
	"arlo/internal/stats"
	"arlo/internal/store"
	"arlo/internal/weekly"
	"arlo/internal/workout"
)

var errNoAPIKey = errors.New("openai api key is not configured (set OPENAI_API_KEY or openai.api_key)")

func newParseCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Classify a message and show the extracted workout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := newParser()
			if err != nil {
				return err
			}

			entry, decision, ok := parser.Parse(strings.Join(args, " "), time.Now())
			out := cmd.OutOrStdout()

			if asJSON {
				if !ok {
					return json.NewEncoder(out).Encode(map[string]string{
						"category": decision.Category.String(),
						"rule":     decision.Rule,
					})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entry)
			}

			fmt.Fprintln(out, labelStyle.Render("Category:")+decision.Category.String())
			fmt.Fprintln(out, labelStyle.Render("Rule:")+decision.Rule)
			if !ok {
				fmt.Fprintln(out, mutedStyle.Render("Not a workout log"))
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, workout.Confirmation(entry))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed entry as JSON")
	return cmd
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Find the research insight most relevant to a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newAIService()
			if err != nil {
				return err
			}
			index, err := loadIndex()
			if err != nil {
				return err
			}

			vec, err := svc.Embed(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(vec) != index.Dimension() {
				return fmt.Errorf("embedding has %d dimensions, knowledge index expects %d", len(vec), index.Dimension())
			}

			out := cmd.OutOrStdout()
			res, ok := index.Retrieve(vec)
			if !ok {
				fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("No insight above %.2f similarity (%d entries searched)", knowledge.MatchThreshold, index.Len())))
				return nil
			}

			fmt.Fprintln(out, titleStyle.Render(res.Entry.Topic))
			fmt.Fprintln(out, labelStyle.Render("Similarity:")+fmt.Sprintf("%.3f", res.Similarity))
			fmt.Fprintln(out, labelStyle.Render("Source:")+res.Entry.Source)
			fmt.Fprintln(out)
			fmt.Fprintln(out, res.Entry.Summary)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "→ "+res.Entry.Action)
			return nil
		},
	}
}

func newLogCmd() *cobra.Command {
	var (
		userID string
		at     string
	)

	cmd := &cobra.Command{
		Use:   "log --user ID <message>",
		Short: "Handle a message from a user as if it arrived by text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q: %w", at, err)
				}
				when = t
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			svc, err := newCoach(st)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			reply, err := svc.HandleMessage(cmd.Context(), userID, strings.Join(args, " "), when)
			switch {
			case errors.Is(err, coach.ErrUnknownUser):
				fmt.Fprintln(out, replyStyle.Render(coach.UnknownUserReply))
				return nil
			case errors.Is(err, coach.ErrInactiveUser):
				fmt.Fprintln(out, replyStyle.Render(coach.InactiveUserReply))
				return nil
			case err != nil:
				fmt.Fprintln(out, replyStyle.Render(coach.ErrorReply))
				return err
			}

			if reply.Kind == coach.ReplyConversation && reply.Text == "" {
				fmt.Fprintln(out, mutedStyle.Render("No completion model configured; prompt context:"))
				fmt.Fprintln(out, reply.Context)
				return nil
			}
			fmt.Fprintln(out, replyStyle.Render(reply.Text))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID (phone number)")
	cmd.Flags().StringVar(&at, "at", "", "message time as RFC3339 (default now)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var u store.User
	add := &cobra.Command{
		Use:   "add",
		Short: "Create or update a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch u.Status {
			case store.StatusActive, store.StatusInactive, store.StatusCancelled:
			default:
				return fmt.Errorf("unknown status %q (use: active, inactive, cancelled)", u.Status)
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.UpsertUser(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved user %s\n", u.ID)
			return nil
		},
	}
	add.Flags().StringVar(&u.ID, "id", "", "user ID (phone number)")
	add.Flags().StringVar(&u.Name, "name", "", "display name")
	add.Flags().StringVar(&u.Goal, "goal", "", "training goal")
	add.Flags().IntVar(&u.Age, "age", 0, "age in years")
	add.Flags().StringVar(&u.Gender, "gender", "", "gender, as the user describes it")
	add.Flags().StringVar(&u.Status, "status", store.StatusActive, "subscription status")
	add.MarkFlagRequired("id")

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			users, err := st.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No users yet"))
				return nil
			}
			for _, u := range users {
				last := "never"
				if u.LastMessageAt.Valid {
					last = u.LastMessageAt.Time.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(out, "%-16s %-12s %-10s %4d msgs  last %s\n", u.ID, u.Name, u.Status, u.MessageCount, last)
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newReportCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "report --user ID",
		Short: "Preview this week's progress report for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			u, err := st.GetUser(ctx, userID)
			if err != nil {
				return err
			}

			now := time.Now()
			weekStart := stats.WeekStart(now)
			workouts, err := st.PendingWorkouts(ctx, u.ID, now)
			if err != nil {
				return err
			}
			prior, err := st.PriorWeekTotal(ctx, u.ID, weekStart)
			if err != nil {
				logger.Warn("Prior week unavailable, skipping trend", "user", u.ID, "error", err)
				prior = nil
			}

			summary := stats.Aggregate(workouts, prior)
			prompts := stats.BuildPrompts(summary, u.Goal)
			text := insight.NewGenerator(logger, completerOrNil()).Weekly(ctx, insight.Profile{Name: u.Name, Goal: u.Goal}, summary, prompts)

			out := cmd.OutOrStdout()
			printStats(out, summary)
			if len(prompts) > 0 {
				fmt.Fprintln(out)
				for _, p := range prompts {
					fmt.Fprintln(out, mutedStyle.Render("• "+p))
				}
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, weekly.FormatReport(weekStart, now, text))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.MarkFlagRequired("user")
	return cmd
}

func printStats(out io.Writer, s stats.WeeklyStats) {
	fmt.Fprintln(out, titleStyle.Render("THIS WEEK"))
	if s.NoDataThisWeek {
		fmt.Fprintln(out, mutedStyle.Render("No workouts logged"))
		return
	}
	fmt.Fprintln(out, labelStyle.Render("Workouts:")+fmt.Sprintf("%d (%d cardio, %d strength)", s.TotalWorkouts, s.CardioCount, s.StrengthCount))
	fmt.Fprintln(out, labelStyle.Render("Distance:")+fmt.Sprintf("%.1f", s.TotalDistance))
	fmt.Fprintln(out, labelStyle.Render("Duration:")+fmt.Sprintf("%d min", s.TotalDurationMinutes))
	fmt.Fprintln(out, labelStyle.Render("Active days:")+fmt.Sprintf("%d (%s consistency)", s.ActiveDayCount, s.Consistency))
	b := s.TrainingBalance()
	fmt.Fprintln(out, labelStyle.Render("Balance:")+fmt.Sprintf("%d%% cardio / %d%% strength", b.CardioPercent, b.StrengthPercent))
	trend := string(s.VolumeTrend)
	if s.VolumeChangePercent != nil {
		trend = fmt.Sprintf("%s (%+d%%)", trend, *s.VolumeChangePercent)
	}
	fmt.Fprintln(out, labelStyle.Render("Volume trend:")+trend)
}

func newStreakCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "streak --user ID",
		Short: "Show a user's current streak of consecutive workout days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			dates, err := st.WorkoutDates(cmd.Context(), userID)
			if err != nil {
				return err
			}
			streak := workout.CurrentStreak(dates, time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "🔥 %d-day streak\n", streak)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "history --user ID",
		Short: "Show archived weekly reports for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := st.History(cmd.Context(), userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No archived weeks"))
				return nil
			}
			for _, row := range rows {
				fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s → %s", row.WeekStart, row.WeekEnd))+
					mutedStyle.Render(fmt.Sprintf("  %d workouts", row.TotalVolume)))
				fmt.Fprintln(out, row.Insights)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newEmbedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed <seeds.json> <bank.json>",
		Short: "Embed curated research seeds into a knowledge bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := knowledge.LoadSeeds(args[0])
			if err != nil {
				return err
			}
			svc, err := newAIService()
			if err != nil {
				return err
			}

			entries, err := knowledge.Build(cmd.Context(), logger, svc, seeds)
			if err != nil {
				return err
			}
			if err := knowledge.WriteBank(args[1], entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %d entries to %s\n", len(entries), args[1])
			return nil
		},
	}
}

func newWeeklyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Run the weekly progress check once, printing each report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runner := newRunner(st, weekly.NewWriterNotifier(cmd.OutOrStdout()))
			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf("sent %d, skipped %d, errors %d", report.Sent, report.Skipped, report.Errors)))
			return nil
		},
	}
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the weekly check on its cron schedule and serve metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runner := newRunner(st, weekly.NewWriterNotifier(cmd.OutOrStdout()))
			scheduler, err := weekly.NewScheduler(logger, appConfig.Weekly.Schedule, runner)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			server := &http.Server{Addr: appConfig.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("Serving metrics", "addr", appConfig.MetricsAddr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			scheduler.Start(ctx)

			select {
			case <-ctx.Done():
				logger.Info("Shutting down")
			case err = <-serveErr:
				logger.Error("Metrics server failed", "error", err)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if serr := server.Shutdown(shutdownCtx); serr != nil {
				logger.Warn("Metrics server shutdown", "error", serr)
			}
			scheduler.Stop()
			return err
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <messages.csv>",
		Short: "Parse a CSV export of messages and store the workouts found",
		Long: `Import reads a CSV file with the columns timestamp,user,text (RFC3339
timestamps, header row optional) and stores every message that parses as a
workout, dated at its timestamp.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := journal.LoadMessages(args[0])
			if err != nil {
				return err
			}
			parser, err := newParser()
			if err != nil {
				return err
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := journal.Import(cmd.Context(), logger, parser, st, messages)
			fmt.Fprintf(cmd.OutOrStdout(), "Read %d messages: %d workouts logged, %d ignored\n", report.Read, report.Logged, report.Ignored)
			return err
		},
	}
}

func newExportCmd() *cobra.Command {
	var (
		userID  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export --user ID",
		Short: "Export a user's workouts as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.Workouts(cmd.Context(), userID)
			if err != nil {
				return err
			}

			if outPath == "" {
				return journal.WriteWorkouts(cmd.OutOrStdout(), entries)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("error creating %s: %w", outPath, err)
			}
			if err := journal.WriteWorkouts(f, entries); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appConfig
			out := cmd.OutOrStdout()

			lexiconPath := cfg.LexiconPath
			if lexiconPath == "" {
				lexiconPath = "(built-in)"
			}
			apiKey := "not set"
			if cfg.OpenAI.APIKey != "" {
				apiKey = "set"
			}

			fmt.Fprintln(out, titleStyle.Render("ARLO CONFIGURATION"))
			fmt.Fprintln(out)
			for _, row := range [][2]string{
				{"Data directory:", cfg.DataDir},
				{"Database:", cfg.DBPath},
				{"Lexicon:", lexiconPath},
				{"Log level:", cfg.LogLevel},
				{"Metrics address:", cfg.MetricsAddr},
				{"Weekly schedule:", cfg.Weekly.Schedule},
				{"Min account age:", fmt.Sprintf("%d days", cfg.Weekly.MinAccountAgeDays)},
				{"Embedding model:", cfg.OpenAI.EmbeddingModel},
				{"Completion model:", cfg.OpenAI.CompletionModel},
				{"OpenAI API key:", apiKey},
				{"Index dimension:", fmt.Sprintf("%d", cfg.Knowledge.Dimension)},
				{"Index shards:", fmt.Sprintf("%d", cfg.Knowledge.Shards)},
			} {
				fmt.Fprintln(out, labelStyle.Render(row[0])+row[1])
			}
			fmt.Fprintln(out)

			for _, bank := range cfg.Knowledge.Banks {
				if _, err := os.Stat(bank); os.IsNotExist(err) {
					fmt.Fprintln(out, warnMessage.Render("⚠️  Knowledge bank does not exist: "+bank))
					continue
				}
				entries, err := knowledge.LoadBank(bank, cfg.Knowledge.Dimension)
				if err != nil {
					fmt.Fprintln(out, warnMessage.Render(fmt.Sprintf("⚠️  Error loading %s: %v", bank, err)))
					continue
				}
				fmt.Fprintf(out, "✅ %s: %d entries\n", bank, len(entries))
			}
			return nil
		},
	}
}

func newParser() (*workout.Parser, error) {
	lex, err := lexicon.LoadOrDefault(appConfig.LexiconPath)
	if err != nil {
		return nil, err
	}
	return workout.NewParser(lex), nil
}

func openStore() (*store.Store, error) {
	if err := appConfig.EnsureDataDir(); err != nil {
		return nil, err
	}
	return store.NewStore(appConfig.DBPath)
}

func newAIService() (*ai.Service, error) {
	if appConfig.OpenAI.APIKey == "" {
		return nil, errNoAPIKey
	}
	o := appConfig.OpenAI
	return ai.NewOpenAIService(logger, ai.Config{
		APIKey:          o.APIKey,
		BaseURL:         o.BaseURL,
		EmbeddingModel:  o.EmbeddingModel,
		CompletionModel: o.CompletionModel,
		Temperature:     o.Temperature,
		MaxTokens:       o.MaxTokens,
	}), nil
}

// completerOrNil returns a nil interface rather than a typed nil when no
// API key is configured.
func completerOrNil() insight.Completer {
	svc, err := newAIService()
	if err != nil {
		return nil
	}
	return svc
}

func loadIndex() (knowledge.Retriever, error) {
	k := appConfig.Knowledge
	entries, err := knowledge.LoadBanks(logger, k.Banks, k.Dimension)
	if err != nil {
		return nil, err
	}
	if k.Shards > 1 {
		idx, err := knowledge.NewShardedIndex(entries, k.Dimension, k.Shards)
		if err != nil {
			return nil, err
		}
		return idx, nil
	}
	idx, err := knowledge.NewFlatIndex(entries, k.Dimension)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func newCoach(st *store.Store) (*coach.Service, error) {
	parser, err := newParser()
	if err != nil {
		return nil, err
	}

	svc, err := newAIService()
	if err != nil {
		logger.Warn("Running without OpenAI; knowledge lookup and replies are disabled")
		return coach.NewService(logger, parser, st, nil, nil, nil), nil
	}

	index, err := loadIndex()
	if err != nil {
		return nil, err
	}
	return coach.NewService(logger, parser, st, svc, index, svc), nil
}

func newRunner(st *store.Store, notifier weekly.Notifier) *weekly.Runner {
	writer := insight.NewGenerator(logger, completerOrNil())
	return weekly.NewRunner(logger, st, writer, notifier, appConfig.Weekly.MinAccountAgeDays)
}
