package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/UgochukwuChidera/studio-sub001/internal/consent"
)

func newConsentCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent",
		Short: "Show or answer the storage consent question",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the stored answer (unset, accepted or declined)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				s, err := e.consent.Read(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}

	accept := &cobra.Command{
		Use:   "accept",
		Short: "Accept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				return e.consent.Accept(cmd.Context())
			})
		},
	}

	decline := &cobra.Command{
		Use:   "decline",
		Short: "Decline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				return e.consent.Decline(cmd.Context())
			})
		},
	}

	var force bool
	prompt := &cobra.Command{
		Use:   "prompt",
		Short: "Ask interactively when no answer is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				visible, err := e.consent.BannerVisible(ctx)
				if err != nil {
					return err
				}
				if !visible && !force {
					s, err := e.consent.Read(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Already answered: %s\n", s)
					return nil
				}

				var ok bool
				err = huh.NewConfirm().
					Title("Allow NoteFlow to store preferences?").
					Description(consent.Notice).
					Affirmative("Accept").
					Negative("Decline").
					Value(&ok).
					Run()
				if err != nil {
					return fmt.Errorf("asking for consent: %w", err)
				}

				if ok {
					err = e.consent.Accept(ctx)
				} else {
					err = e.consent.Decline(ctx)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stateAfter(ok))
				return nil
			})
		},
	}
	prompt.Flags().BoolVar(&force, "force", false, "ask even when already answered")

	cmd.AddCommand(status, accept, decline, prompt)
	return cmd
}

func stateAfter(accepted bool) consent.State {
	if accepted {
		return consent.Accepted
	}
	return consent.Declined
}
