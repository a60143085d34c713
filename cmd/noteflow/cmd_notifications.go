package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/notify"
)

func newNotificationsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif", "n"},
		Short:   "Read and manage notifications",
	}
	cmd.AddCommand(
		newNotificationsListCmd(c),
		newNotificationsShowCmd(c),
		newNotificationsReadCmd(c),
		newNotificationsReadAllCmd(c),
		newNotificationsCountCmd(c),
		newNotificationsRmCmd(c),
		newNotificationsPruneCmd(c),
	)
	return cmd
}

// withInbox runs fn with the signed-in user's inbox.
func (c *cli) withInbox(cmd *cobra.Command, fn func(e *env, in *notify.Inbox) error) error {
	return c.withEnv(func(e *env) error {
		in, err := e.inbox(cmd.Context())
		if err != nil {
			return err
		}
		return fn(e, in)
	})
}

func newNotificationsListCmd(c *cli) *cobra.Command {
	var (
		unread   bool
		category string
		limit    int
		offset   int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notifications, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := notify.Filter{UnreadOnly: unread, Limit: limit, Offset: offset}
			if category != "" {
				cat, err := model.ParseNotificationCategory(category)
				if err != nil {
					return err
				}
				f.Category = &cat
			}
			return c.withInbox(cmd, func(e *env, in *notify.Inbox) error {
				list, err := in.Find(cmd.Context(), f)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), list)
				}
				renderNotificationList(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&unread, "unread", "u", false, "only unread notifications")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number to show (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many (with --limit)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func newNotificationsShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withInbox(cmd, func(e *env, in *notify.Inbox) error {
				n, err := in.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				renderNotification(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}

func newNotificationsReadCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>...",
		Short: "Mark notifications as read",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withInbox(cmd, func(e *env, in *notify.Inbox) error {
				for _, id := range args {
					if err := in.MarkRead(cmd.Context(), id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newNotificationsReadAllCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withInbox(cmd, func(e *env, in *notify.Inbox) error {
				return in.MarkAllRead(cmd.Context())
			})
		},
	}
}

func newNotificationsCountCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of unread notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withInbox(cmd, func(e *env, in *notify.Inbox) error {
				n, err := in.UnreadCount(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}

func newNotificationsRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove notifications",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withInbox(cmd, func(e *env, in *notify.Inbox) error {
				for _, id := range args {
					if err := in.Remove(cmd.Context(), id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newNotificationsPruneCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Apply the configured retention policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withInbox(cmd, func(e *env, in *notify.Inbox) error {
				if e.center.Retention().Unbounded() {
					fmt.Fprintln(cmd.OutOrStdout(), "Retention is unbounded; nothing to prune.")
					return nil
				}
				n, err := in.Prune(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d notification(s)\n", n)
				return nil
			})
		},
	}
}
