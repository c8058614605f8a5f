package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"arlo/internal/config"
)

const version = "0.1.0"

var (
	cfgFile   string
	appConfig *config.Config
	logger    *log.Logger
)

var (
	accent      = lipgloss.Color("#0d7377")
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle  = lipgloss.NewStyle().Width(18)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	replyStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1)
	warnMessage = lipgloss.NewStyle().Foreground(lipgloss.Color("#d7875f"))
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "arlo",
		Short: "Arlo - text message performance coach",
		Long: `Arlo turns short workout texts into structured logs, answers questions
with the help of a curated research corpus, and sends a weekly progress
report to every active user.

Configuration is read from --config, or arlo.yaml in the working directory
or ~/.arlo. ARLO_* environment variables and a .env file override it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			appConfig = cfg
			logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
				ReportTimestamp: true,
				Level:           cfg.Level(),
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./arlo.yaml or $HOME/.arlo/arlo.yaml)")

	root.AddCommand(
		newParseCmd(),
		newAskCmd(),
		newLogCmd(),
		newUserCmd(),
		newReportCmd(),
		newStreakCmd(),
		newHistoryCmd(),
		newEmbedCmd(),
		newWeeklyCmd(),
		newScheduleCmd(),
		newImportCmd(),
		newExportCmd(),
		newConfigCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, warnMessage.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
