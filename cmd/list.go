package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/showcase/internal/registry"
	"github.com/conneroisu/showcase/internal/services"
)

var listCmd = &cobra.Command{
	Use:     "list [demo]",
	Aliases: []string{"ls"},
	Short:   "List configured demos or the tabs of one demo",
	Long: `List every configured demo, or the ordered tabs of a single demo.

Examples:
  showcase list                       # All demos as a table
  showcase list --format json         # All demos as JSON
  showcase list timer-signal          # Tabs of one demo, primary first
  showcase list timer-signal -f yaml  # Tabs with their content as YAML`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var listFlags *StandardFlags

func init() {
	rootCmd.AddCommand(listCmd)
	listFlags = AddStandardFlags(listCmd, "output")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := listFlags.ValidateFlags(); err != nil {
		return err
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		return outputDemos(out, a.demos.Demos(), listFlags.Format)
	}

	result, err := a.demos.Query(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return outputEntries(out, result, listFlags.Format, listFlags.Verbose)
}

func outputDemos(w io.Writer, demos []services.DemoSummary, format string) error {
	switch format {
	case "json":
		return writeJSON(w, demos)
	case "yaml":
		return writeYAML(w, demos)
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTITLE\tPATTERN\tPRIMARY")
		for _, demo := range demos {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", demo.Name, demo.Title, demo.Pattern, demo.PrimaryPattern)
		}
		return tw.Flush()
	}
}

// listedEntry hides content from structured output unless --verbose is set.
type listedEntry struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Path     string `json:"path" yaml:"path"`
	Category string `json:"category" yaml:"category"`
	Primary  bool   `json:"primary" yaml:"primary"`
	Content  string `json:"content,omitempty" yaml:"content,omitempty"`
}

func outputEntries(w io.Writer, result *registry.QueryResult, format string, verbose bool) error {
	entries := make([]listedEntry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		listed := listedEntry{
			ID:       entry.OrdinalID,
			Label:    entry.Label,
			Path:     entry.Path,
			Category: string(entry.Category),
			Primary:  result.Primary != nil && result.Primary.Path == entry.Path,
		}
		if verbose {
			listed.Content = entry.Content
		}
		entries = append(entries, listed)
	}

	switch format {
	case "json":
		return writeJSON(w, entries)
	case "yaml":
		return writeYAML(w, entries)
	default:
		if len(entries) == 0 {
			fmt.Fprintln(w, "No source files match this demo")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tLABEL\tPATH\t")
		for _, entry := range entries {
			marker := ""
			if entry.Primary {
				marker = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry.ID, entry.Label, entry.Path, marker)
		}
		return tw.Flush()
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
