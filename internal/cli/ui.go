package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackbump/pkg/checker"
	"github.com/matzehuels/stackbump/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
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

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

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

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
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

// printNextStep prints a suggested next command.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Run Output
// =============================================================================

// printStats prints run statistics on a single line.
func printStats(w io.Writer, res *pipeline.Result) {
	parts := []string{fmt.Sprintf("%d dependencies", res.Stats.Dependencies)}
	if n := len(res.Updated()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d updatable", n))
	}
	if res.Stats.FilesChanged > 0 {
		parts = append(parts, fmt.Sprintf("%d files changed", res.Stats.FilesChanged))
	}
	if n := len(res.Failures); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}

	status, statusStyle := iconFresh, styleComputed
	if res.CacheInfo.ParseHit {
		status, statusStyle = iconCached, styleCached
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(part))
	}
	b.WriteString(StyleDim.Render(" · ") + statusStyle.Render(status))
	fmt.Fprintln(w, b.String())
}

// reasonStyle colors a decision by whether it moves the dependency.
func reasonStyle(r checker.Reason) lipgloss.Style {
	switch r {
	case checker.ReasonUpdate:
		return StyleSuccess
	case checker.ReasonSecurityFix:
		return StyleWarning.Bold(true)
	case checker.ReasonUpToDate, checker.ReasonNotVulnerable:
		return StyleDim
	}
	return StyleWarning
}

// outcomeRows returns one table row per outcome. With all false, up to
// date dependencies are left out.
func outcomeRows(outcomes []pipeline.Outcome, all bool) [][]string {
	var rows [][]string
	for _, o := range outcomes {
		r := o.Decision.Reason
		if !all && (r == checker.ReasonUpToDate || r == checker.ReasonNotVulnerable) {
			continue
		}
		current := o.Current
		if current == "" {
			current = "—"
		}
		target := "—"
		if o.Decision.Target != nil {
			target = o.Decision.Target.String()
		}
		rows = append(rows, []string{o.Dependency.Name, current, target, r.String()})
	}
	return rows
}

// printOutcomes renders outcomes as a table.
func printOutcomes(w io.Writer, outcomes []pipeline.Outcome, all bool) {
	rows := outcomeRows(outcomes, all)
	if len(rows) == 0 {
		printSuccess(w, "All dependencies are up to date")
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Dependency", "Current", "Target", "Decision").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 3 && row < len(rows) {
				r, _ := parseReason(rows[row][3])
				return reasonStyle(r)
			}
			if col == 2 {
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		})
	fmt.Fprintln(w, t.Render())
}

// printFailures lists dependencies that could not be checked.
func printFailures(w io.Writer, failures map[string]error) {
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printError(w, "%s: %v", name, failures[name])
	}
}

// printChangedFiles lists rewritten files.
func printChangedFiles(w io.Writer, res *pipeline.Result) {
	for _, f := range res.Files {
		printFile(w, f.Name)
	}
}

func parseReason(s string) (checker.Reason, bool) {
	for r := checker.ReasonUpdate; r <= checker.ReasonNotVulnerable; r++ {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}
