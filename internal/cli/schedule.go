package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackplan/pkg/calendar"
	pio "github.com/matzehuels/stackplan/pkg/io"
)

// scheduleOpts holds the flags of the schedule command.
type scheduleOpts struct {
	output string
	save   bool
}

// scheduleCommand creates the schedule command.
func (c *CLI) scheduleCommand() *cobra.Command {
	var opts scheduleOpts

	cmd := &cobra.Command{
		Use:   "schedule <project-file>",
		Short: "Compute and print a project's schedule",
		Long: `Schedule reads a project file (.toml or .json), computes earliest and
latest dates for every task and prints them as a table.

Tasks on the critical path are highlighted. Use --save to keep the result
as a snapshot in the configured store and -o to export it as JSON.`,
		Example: `  stackplan schedule project.toml
  stackplan schedule project.toml -o schedule.json
  stackplan schedule project.toml --save --store redis`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSchedule(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the schedule as JSON to this file")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the schedule as a snapshot in the store")

	return cmd
}

func (c *CLI) runSchedule(cmd *cobra.Command, path string, opts scheduleOpts) error {
	s, err := c.openProject(path)
	if err != nil {
		return err
	}
	doc := pio.NewDocument(s.Snapshot())
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, StyleTitle.Render(displayName(doc)))
	fmt.Fprintln(w, renderSchedule(doc))

	if opts.save {
		if err := c.saveDocument(cmd.Context(), doc); err != nil {
			return err
		}
	}
	printStats(w, doc, opts.save)

	if opts.output != "" {
		if err := pio.ExportJSON(doc, opts.output); err != nil {
			return err
		}
		printFile(w, opts.output)
	}
	return nil
}

// saveDocument stores doc as the project's latest snapshot and as a revision.
func (c *CLI) saveDocument(ctx context.Context, doc *pio.Document) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	k := c.keyer()
	if err := st.Set(ctx, k.SnapshotKey(doc.Project), data, 0); err != nil {
		return err
	}
	if err := st.Set(ctx, k.RevisionKey(doc.Project, doc.Revision), data, 0); err != nil {
		return err
	}
	c.Logger.Info("Saved snapshot", "project", doc.Project, "revision", doc.Revision, "store", c.store.Backend)
	return nil
}

// criticalCommand creates the critical command.
func (c *CLI) criticalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "critical <project-file>",
		Short: "Print the critical path of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openProject(args[0])
			if err != nil {
				return err
			}
			doc := pio.NewDocument(s.Snapshot())
			w := cmd.OutOrStdout()

			if len(doc.CriticalPath) == 0 {
				printInfo(w, "%s has no tasks", displayName(doc))
				return nil
			}
			printKeyValue(w, "Start", doc.Start.String())
			printKeyValue(w, "Finish", doc.Finish.String())
			printKeyValue(w, "Length", fmt.Sprintf("%d days", doc.Finish.Sub(doc.Start)+1))
			fmt.Fprintln(w, StyleCritical.Render(formatPath(doc.CriticalPath)))
			return nil
		},
	}
}

// loadCommand creates the load command.
func (c *CLI) loadCommand() *cobra.Command {
	var resource string

	cmd := &cobra.Command{
		Use:   "load <project-file>",
		Short: "Print the daily load of booked resources",
		Long: `Load schedules a project and prints, for each resource its tasks book,
the booked quantity per day. Days above capacity (forced bookings) are
shown as warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openProject(args[0])
			if err != nil {
				return err
			}
			doc := pio.NewDocument(s.Snapshot())
			w := cmd.OutOrStdout()

			start, end, ok := bookingSpan(doc)
			if !ok {
				printInfo(w, "%s books no resources", displayName(doc))
				return nil
			}
			found := false
			for _, r := range doc.Resources {
				if resource != "" && r.ID != resource {
					continue
				}
				found = true
				fmt.Fprintln(w, StyleTitle.Render(r.ID)+" "+StyleDim.Render(fmt.Sprintf("capacity %d", r.Capacity)))
				fmt.Fprintln(w, renderLoad(doc, r, start, end))
			}
			if !found {
				return fmt.Errorf("resource %q is not booked by %s", resource, doc.Project)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&resource, "resource", "r", "", "only show this resource")

	return cmd
}

// bookingSpan returns the first and last booked day of a document.
func bookingSpan(doc *pio.Document) (start, end calendar.Date, ok bool) {
	for _, t := range doc.Tasks {
		for _, b := range t.Bookings {
			if !ok || b.Start.Before(start) {
				start = b.Start
			}
			if !ok || b.End.After(end) {
				end = b.End
			}
			ok = true
		}
	}
	return start, end, ok
}

func displayName(doc *pio.Document) string {
	if doc.Name != "" {
		return doc.Name
	}
	return doc.Project
}
