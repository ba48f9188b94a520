package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackplan/pkg/dag/transform"
	errs "github.com/matzehuels/stackplan/pkg/errors"
	pio "github.com/matzehuels/stackplan/pkg/io"
)

// errCheckFailed is returned by check after its findings have been printed.
var errCheckFailed = errors.New("check failed")

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check <project-file>",
		Short: "Validate a project file",
		Long: `Check loads and schedules a project without printing the schedule. It
reports load errors such as dependency cycles, dependencies already implied
by other paths and days on which forced bookings exceed a resource's
capacity.

With --strict, warnings make the command fail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			s, err := c.openProject(args[0])
			if err != nil {
				printError(w, "%s", errs.UserMessage(err))
				if code := errs.GetCode(err); code != "" {
					printDetail(w, "%s", code)
				}
				return errCheckFailed
			}

			warnings := 0
			for _, e := range transform.RedundantDependencies(s.Graph()) {
				warnings++
				printWarning(w, "%s depends on %s (%s) through another path", e.Successor, e.Predecessor, e.Type)
			}

			doc := pio.NewDocument(s.Snapshot())
			if start, end, ok := bookingSpan(doc); ok {
				for _, r := range doc.Resources {
					for d := start; !d.After(end); d = d.AddDays(1) {
						if n := doc.Load(r.ID, d); n > r.Capacity {
							warnings++
							printWarning(w, "%s is booked %d/%d on %s", r.ID, n, r.Capacity, d)
						}
					}
				}
			}

			if warnings == 0 {
				printSuccess(w, "%s: %d tasks, no issues", displayName(doc), len(doc.Tasks))
				return nil
			}
			printInfo(w, "%d warnings", warnings)
			if strict {
				return errCheckFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings")

	return cmd
}
