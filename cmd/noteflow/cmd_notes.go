package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/UgochukwuChidera/studio-sub001/internal/model"
)

func newNoteCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Manage study notes",
	}
	cmd.AddCommand(
		newNoteAddCmd(c),
		newNoteListCmd(c),
		newNoteShowCmd(c),
		newNoteEditCmd(c),
		newNoteRmCmd(c),
	)
	return cmd
}

// noteBody reads note content from --content, --file or stdin, in that
// order.
func noteBody(cmd *cobra.Command, content, file string) (string, error) {
	switch {
	case content != "" && file != "":
		return "", errors.New("use either --content or --file, not both")
	case content != "":
		return content, nil
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		return string(data), nil
	default:
		return "", nil
	}
}

func newNoteAddCmd(c *cli) *cobra.Command {
	var title, content, file string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a note",
		Long:  "Adds a note. The body comes from --content, --file, or stdin with --file -.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := noteBody(cmd, content, file)
			if err != nil {
				return err
			}
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				sess, err := e.current(ctx)
				if err != nil {
					return err
				}
				note, err := e.store.CreateNote(ctx, model.Note{
					UserID:  sess.UserID,
					Title:   title,
					Content: body,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), note.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "note body")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the body from a file (- for stdin)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newNoteListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				sess, err := e.current(ctx)
				if err != nil {
					return err
				}
				notes, err := e.store.GetNotes(ctx, sess.UserID)
				if err != nil {
					return err
				}
				renderNoteList(cmd.OutOrStdout(), notes)
				return nil
			})
		},
	}
}

func newNoteShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				sess, err := e.current(ctx)
				if err != nil {
					return err
				}
				note, err := e.store.GetNoteByID(ctx, sess.UserID, args[0])
				if err != nil {
					return err
				}
				renderNote(cmd.OutOrStdout(), note)
				return nil
			})
		},
	}
}

func newNoteEditCmd(c *cli) *cobra.Command {
	var title, content, file string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note's title or body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := noteBody(cmd, content, file)
			if err != nil {
				return err
			}
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				sess, err := e.current(ctx)
				if err != nil {
					return err
				}
				note, err := e.store.GetNoteByID(ctx, sess.UserID, args[0])
				if err != nil {
					return err
				}
				if strings.TrimSpace(title) != "" {
					note.Title = title
				}
				if content != "" || file != "" {
					note.Content = body
				}
				if err := e.store.UpdateNote(ctx, *note); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Updated", note.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "new body")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the new body from a file (- for stdin)")

	return cmd
}

func newNoteRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(func(e *env) error {
				ctx := cmd.Context()
				sess, err := e.current(ctx)
				if err != nil {
					return err
				}
				if err := e.store.DeleteNote(ctx, sess.UserID, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
				return nil
			})
		},
	}
}
