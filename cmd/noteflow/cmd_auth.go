package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/UgochukwuChidera/studio-sub001/internal/credential"
)

func newLoginCmd(c *cli) *cobra.Command {
	var (
		userID string
		token  string
		ttl    time.Duration
		apiKey string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Cache a signed-in session",
		Long: `Caches the identity issued by the hosted sign-in provider so later
commands run as that user. Pass --api-key to store a Gemini API key
alongside the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				sess, err := e.sessions.SignIn(ctx, userID, token, ttl)
				if err != nil {
					return err
				}
				if apiKey != "" {
					if err := e.secrets.Set(ctx, credential.APIKeyName, apiKey); err != nil {
						return fmt.Errorf("storing API key: %w", err)
					}
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Signed in as %s\n", sess.UserID)
				if !sess.ExpiresAt.IsZero() {
					fmt.Fprintf(out, "Session expires %s\n", sess.ExpiresAt.Local().Format(time.RFC1123))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id issued by the sign-in provider")
	cmd.Flags().StringVar(&token, "token", "", "access token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "session lifetime (0 never expires)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key to store")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	var forgetKey bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Drop the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				if err := e.sessions.SignOut(ctx); err != nil {
					return err
				}
				if forgetKey {
					if err := e.secrets.Delete(ctx, credential.APIKeyName); err != nil {
						return fmt.Errorf("removing API key: %w", err)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&forgetKey, "forget-key", false, "also remove the stored API key")
	return cmd
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				sess, err := e.current(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sess.UserID)
				return nil
			})
		},
	}
}

