package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/stackplan/pkg/io"
	"github.com/matzehuels/stackplan/pkg/store"
)

// showCommand creates the show command, which prints a stored snapshot.
func (c *CLI) showCommand() *cobra.Command {
	var revision string

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Print a stored schedule snapshot",
		Example: `  stackplan show migration
  stackplan show migration --revision 3f0c2b9e-...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			k := c.keyer()
			key := k.SnapshotKey(args[0])
			if revision != "" {
				key = k.RevisionKey(args[0], revision)
			}
			data, ok, err := st.Get(ctx, key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no snapshot stored for %s", args[0])
			}
			doc, err := pio.ReadJSON(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", key, err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, StyleTitle.Render(displayName(doc)))
			printDetail(w, "revision %s, saved %s", doc.Revision, doc.CreatedAt.Format("2006-01-02 15:04"))
			fmt.Fprintln(w, renderSchedule(doc))
			printStats(w, doc, true)
			return nil
		},
	}

	cmd.Flags().StringVar(&revision, "revision", "", "show this revision instead of the latest")

	return cmd
}

// storeCommand creates the store command with subcommands for managing snapshots.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored schedule snapshots",
	}

	cmd.AddCommand(c.storeDeleteCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	var revision string

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project's latest snapshot or one revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			k := c.keyer()
			key := k.SnapshotKey(args[0])
			if revision != "" {
				key = k.RevisionKey(args[0], revision)
			}
			if err := st.Delete(ctx, key); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Deleted %s", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&revision, "revision", "", "delete this revision instead of the latest")

	return cmd
}

func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file store directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.store.Dir
			if dir == "" {
				var err error
				if dir, err = store.DefaultDir(); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
