package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/UgochukwuChidera/studio-sub001/internal/keys"
	"github.com/UgochukwuChidera/studio-sub001/internal/kv"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/ui/config"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit settings",
	}

	var asJSON, asYAML bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the active settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case asJSON:
				return writeJSON(cmd.OutOrStdout(), c.cfg)
			case asYAML:
				return writeYAML(cmd.OutOrStdout(), c.cfg)
			}
			renderConfig(cmd.OutOrStdout(), c.configPath, c.cfg)
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	show.Flags().BoolVar(&asYAML, "yaml", false, "print in config file format")
	show.MarkFlagsMutuallyExclusive("json", "yaml")

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), c.configPath)
		},
	}

	edit := &cobra.Command{
		Use:   "edit",
		Short: "Edit settings interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var secrets kv.Store
			if ring, err := openSecrets(c.cfg.Secrets); err != nil {
				c.logger.Warn("keyring unavailable, API key field hidden", zap.Error(err))
			} else {
				secrets = ring
			}

			view := config.New(*c.cfg, c.configPath, secrets, keys.DefaultKeyMap(), 80, 24)
			p := tea.NewProgram(settingsProgram{view: view}, tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("running settings editor: %w", err)
			}
			if sp, ok := final.(settingsProgram); ok && sp.view.Status() != "" {
				fmt.Fprintln(cmd.OutOrStdout(), sp.view.Status())
			}
			return nil
		},
	}

	cmd.AddCommand(show, path, edit)
	return cmd
}

// settingsProgram runs the settings view on its own.
type settingsProgram struct {
	view config.Model
}

func (p settingsProgram) Init() tea.Cmd {
	return p.view.Init()
}

func (p settingsProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return p, tea.Quit
		}
	case config.DoneMsg:
		return p, tea.Quit
	}

	var cmd tea.Cmd
	p.view, cmd = p.view.Update(msg)
	return p, cmd
}

func (p settingsProgram) View() string {
	return p.view.View()
}

// writeYAML prints cfg in the layout of the config file.
func writeYAML(w io.Writer, cfg *model.AppConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

func renderConfig(w io.Writer, path string, cfg *model.AppConfig) {
	t := newTable("SETTING", "VALUE")
	t.Row("config file", path)
	t.Row("ai.model", cfg.AI.Model)
	t.Row("ai.timeout_sec", fmt.Sprint(cfg.AI.TimeoutSec))
	t.Row("ai.prompt_dir", cfg.AI.PromptDir)
	t.Row("storage.db_path", cfg.Storage.DBPath)
	t.Row("notifications.retention_days", fmt.Sprint(cfg.Notifications.RetentionDays))
	t.Row("notifications.max_count", fmt.Sprint(cfg.Notifications.MaxCount))
	t.Row("notifications.poll_interval_sec", fmt.Sprint(cfg.Notifications.PollIntervalSec))
	t.Row("consent.version", fmt.Sprint(cfg.Consent.Version))
	t.Row("secrets.file_dir", cfg.Secrets.FileDir)
	t.Row("display.theme", cfg.Display.Theme)
	fmt.Fprintln(w, t.Render())
}
