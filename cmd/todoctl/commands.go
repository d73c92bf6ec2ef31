package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/birlikkoshan/todo-serverless/pkg/client"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiURL string
	apiKey string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "todoctl",
		Short:         "Command line client for the todo API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", envOr("TODO_API_URL", "http://localhost:8080/api"), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("TODO_API_KEY"), "API key sent as X-Api-Key")

	cmd.AddCommand(
		newListCmd(opts),
		newGetCmd(opts),
		newAddCmd(opts),
		newUpdateCmd(opts),
		newToggleCmd(opts),
		newRmCmd(opts),
	)
	return cmd
}

func (o *rootOptions) client() *client.Client {
	var copts []client.Option
	if o.apiKey != "" {
		copts = append(copts, client.WithAPIKey(o.apiKey))
	}
	return client.New(o.apiURL, copts...)
}

// board returns a loaded Board. Mutations through it are optimistic and
// trigger a reload on failure.
func (o *rootOptions) board(ctx context.Context) (*client.Board, error) {
	b := client.NewBoard(o.client())
	if err := b.Load(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func newListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := o.client().List(cmd.Context())
			if err != nil {
				return err
			}
			printTodos(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func newGetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := o.client().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTodos(cmd.OutOrStdout(), []client.Todo{t})
			return nil
		},
	}
}

func newAddCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <description>",
		Short: "Create a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := o.client().Create(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.ID)
			return nil
		},
	}
}

func newUpdateCmd(o *rootOptions) *cobra.Command {
	var done, notDone bool
	cmd := &cobra.Command{
		Use:   "update <id> <description>",
		Short: "Replace a todo's description and completion flag",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := o.client()
			t, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t.Description = strings.Join(args[1:], " ")
			switch {
			case done:
				t.IsCompleted = true
			case notDone:
				t.IsCompleted = false
			}
			return c.Update(cmd.Context(), t)
		},
	}
	cmd.Flags().BoolVar(&done, "done", false, "mark completed")
	cmd.Flags().BoolVar(&notDone, "not-done", false, "mark not completed")
	cmd.MarkFlagsMutuallyExclusive("done", "not-done")
	return cmd
}

func newToggleCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a todo's completion flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := o.board(cmd.Context())
			if err != nil {
				return err
			}
			err = b.Toggle(cmd.Context(), args[0])
			return errors.Join(err, b.Wait())
		},
	}
}

func newRmCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete todos",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := o.board(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := b.Remove(cmd.Context(), id); err != nil {
					return errors.Join(err, b.Wait())
				}
			}
			return b.Wait()
		},
	}
}

func printTodos(w io.Writer, list []client.Todo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tDESCRIPTION\tCREATED")
	for _, t := range list {
		mark := " "
		if t.IsCompleted {
			mark = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\n", t.ID, mark, t.Description, t.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
