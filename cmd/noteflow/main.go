// Command noteflow keeps study notes and turns them into practice tests,
// flashcards and summaries with Gemini.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/UgochukwuChidera/studio-sub001/internal/flow"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/session"
)

// Exit codes.
const (
	exitError      = 1
	exitInvalid    = 2
	exitGeneration = 3
	exitSignedOut  = 4
)

// cli holds the global flags and what PersistentPreRunE derives from them.
type cli struct {
	configPath string
	dbPath     string
	verbose    bool

	cfg    *model.AppConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "noteflow",
		Short: "Study notes, practice tests and flashcards in the terminal",
		Long: `noteflow keeps your study notes and uses Gemini to turn them into
practice tests, flashcards and summaries, or to transcribe photos of
handwritten notes.

Sign in with 'noteflow login', add a note with 'noteflow note add', then
try 'noteflow test <note-id>' or open the inbox with 'noteflow inbox'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", model.DefaultConfigPath(), "config file")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "database path (overrides storage.db_path)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newNoteCmd(c),
		newOCRCmd(c),
		newTestCmd(c),
		newFlashcardsCmd(c),
		newSummarizeCmd(c),
		newArtifactsCmd(c),
		newNotificationsCmd(c),
		newConsentCmd(c),
		newInboxCmd(c),
		newConfigCmd(c),
	)

	return root
}

// setup builds the logger and loads the configuration.
func (c *cli) setup() error {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if c.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	c.logger = logger

	cfg, err := model.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.Storage.DBPath = c.dbPath
	}
	c.cfg = cfg

	c.logger.Debug("configuration loaded",
		zap.String("path", c.configPath),
		zap.String("db", cfg.Storage.DBPath),
		zap.String("model", cfg.AI.Model),
	)
	return nil
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case flow.IsValidation(err):
		return exitInvalid
	case flow.IsExecution(err):
		return exitGeneration
	case errors.Is(err, session.ErrSignedOut):
		return exitSignedOut
	default:
		return exitError
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	stop()
	os.Exit(exitCode(err))
}
