package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/UgochukwuChidera/studio-sub001/internal/app"
	appsync "github.com/UgochukwuChidera/studio-sub001/internal/sync"
)

func newInboxCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "Open the notification inbox and notes in the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				svc, err := e.workspace(cmd.Context())
				if err != nil {
					return err
				}
				in := svc.Inbox()

				poller := appsync.New(in,
					appsync.WithInterval(time.Duration(e.cfg.Notifications.PollIntervalSec)*time.Second),
					appsync.WithLogger(e.logger),
				)
				defer poller.Stop()

				m := app.New(app.Deps{
					Notes:      e.store,
					Inbox:      in,
					Consent:    e.consent,
					Study:      svc,
					Poller:     poller,
					Config:     e.cfg,
					ConfigPath: c.configPath,
					Secrets:    e.secrets,
					Logger:     e.logger,
				})
				p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("running inbox: %w", err)
				}
				return nil
			})
		},
	}
}
