package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackplan/pkg/calendar"
	pio "github.com/matzehuels/stackplan/pkg/io"
	"github.com/matzehuels/stackplan/pkg/task"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleCritical for tasks on the critical path.
	StyleCritical = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleStored   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	statusStyles = map[task.Status]lipgloss.Style{
		task.Pending:    lipgloss.NewStyle().Foreground(colorWhite),
		task.Blocked:    lipgloss.NewStyle().Foreground(colorYellow),
		task.InProgress: lipgloss.NewStyle().Foreground(colorCyan),
		task.Completed:  lipgloss.NewStyle().Foreground(colorGreen),
	}
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess  = "✓"
	iconError    = "✗"
	iconWarning  = "!"
	iconInfo     = "›"
	iconArrow    = "→"
	iconStored   = "stored"
	iconComputed = "computed"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Schedule Display
// =============================================================================

// printStats prints snapshot statistics on a single line.
func printStats(w io.Writer, doc *pio.Document, stored bool) {
	deps := 0
	for _, t := range doc.Tasks {
		deps += len(t.Depends)
	}
	parts := []string{
		fmt.Sprintf("%d tasks", len(doc.Tasks)),
		fmt.Sprintf("%d dependencies", deps),
		fmt.Sprintf("finish %s", doc.Finish),
	}

	status, statusStyle := iconComputed, styleComputed
	if stored {
		status, statusStyle = iconStored, styleStored
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Fprintln(w, line+StyleDim.Render(" · ")+statusStyle.Render(status))
}

// renderSchedule renders the task table of a document.
func renderSchedule(doc *pio.Document) string {
	critical := make(map[string]bool, len(doc.CriticalPath))
	for _, id := range doc.CriticalPath {
		critical[id] = true
	}

	rows := make([][]string, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		rows = append(rows, []string{
			t.ID,
			t.Title,
			t.Status.String(),
			t.EarliestStart.String(),
			t.EarliestFinish.String(),
			strconv.Itoa(t.Duration),
			strconv.Itoa(t.Slack),
			formatDepends(t.Depends),
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Task", "Title", "Status", "Start", "Finish", "Days", "Slack", "Depends on").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			t := doc.Tasks[row]
			switch {
			case col == 0 && critical[t.ID]:
				return StyleCritical
			case col == 2:
				return statusStyles[t.Status]
			case col == 7:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	return tbl.Render()
}

// renderLoad renders the daily load of one resource between start and end.
// Days without bookings are skipped.
func renderLoad(doc *pio.Document, r pio.ResourceDocument, start, end calendar.Date) string {
	var rows [][]string
	var over []bool
	for d := start; !d.After(end); d = d.AddDays(1) {
		n := doc.Load(r.ID, d)
		if n == 0 {
			continue
		}
		bar := strings.Repeat("█", min(n, 40))
		rows = append(rows, []string{d.String(), fmt.Sprintf("%d/%d", n, r.Capacity), bar})
		over = append(over, n > r.Capacity)
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Day", "Load", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if over[row] {
				return StyleWarning
			}
			return lipgloss.NewStyle().Foreground(colorCyan)
		})
	return tbl.Render()
}

func formatDepends(deps []pio.DependencyDocument) string {
	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = d.Task + " (" + string(d.Type) + ")"
	}
	return strings.Join(parts, ", ")
}

// formatPath joins ids with arrows.
func formatPath(ids []string) string {
	return strings.Join(ids, " "+iconArrow+" ")
}
