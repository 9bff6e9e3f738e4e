package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/conneroisu/showcase/internal/registry"
)

var (
	tabHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))
	primaryHeaderStyle = tabHeaderStyle.
				Underline(true)
	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

var showCmd = &cobra.Command{
	Use:   "show <demo>",
	Short: "Print every tab of a demo",
	Long: `Print the sources of a demo in display order. The primary file comes
first, followed by its companions in source table order.

Examples:
  showcase show timer-signal
  showcase show timer-signal --tab tab-1`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var showTab string

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showTab, "tab", "", "Only print the tab with this id")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	result, err := a.demos.Query(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(result.Entries) == 0 {
		fmt.Fprintf(out, "Demo %s has no source files\n", args[0])
		return nil
	}

	printed := 0
	for _, entry := range result.Entries {
		if showTab != "" && entry.OrdinalID != showTab {
			continue
		}
		printTab(out, entry, result.Primary != nil && result.Primary.Path == entry.Path)
		printed++
	}
	if printed == 0 {
		return fmt.Errorf("demo %s has no tab %q", args[0], showTab)
	}
	return nil
}

func printTab(w io.Writer, entry registry.MatchedEntry, primary bool) {
	style := tabHeaderStyle
	if primary {
		style = primaryHeaderStyle
	}
	fmt.Fprintf(w, "%s %s\n", style.Render(entry.Label), pathStyle.Render(entry.Path))
	fmt.Fprintln(w, strings.TrimRight(entry.Content, "\n"))
	fmt.Fprintln(w)
}
