package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/showcase/internal/errors"
)

var validateFormat string

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every demo selects sources and can be exported",
	Long: `Validate every configured demo:

- The pattern and primary pattern compile
- The pattern selects at least one source file
- A primary file is found and its declarations can be extracted
- The synthesized project has no colliding paths

Examples:
  showcase validate                  # Validate all demos
  showcase validate --format json    # Output results as JSON`,
	Args: cobra.NoArgs,
	RunE: runValidateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().
		StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

// ValidationResult is the outcome for one demo.
type ValidationResult struct {
	Demo   string   `json:"demo"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidationSummary is the outcome for all demos.
type ValidationSummary struct {
	Total   int                `json:"total"`
	Valid   int                `json:"valid"`
	Invalid int                `json:"invalid"`
	Results []ValidationResult `json:"results"`
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	if err := ValidateFormat(validateFormat, []string{"text", "json"}); err != nil {
		return err
	}

	a, err := loadApp(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	collector := a.demos.Validate(cmd.Context())
	summary := summarize(a.config.DemoNames(), collector)

	out := cmd.OutOrStdout()
	if validateFormat == "json" {
		if err := writeJSON(out, summary); err != nil {
			return err
		}
	} else {
		printValidation(out, summary)
	}

	if summary.Invalid > 0 {
		return fmt.Errorf("%d of %d demos failed validation", summary.Invalid, summary.Total)
	}
	return nil
}

func summarize(names []string, collector *errors.ErrorCollector) ValidationSummary {
	summary := ValidationSummary{Total: len(names), Results: make([]ValidationResult, 0, len(names))}
	for _, name := range names {
		result := ValidationResult{Demo: name, Valid: true, Errors: []string{}}
		for _, demoErr := range collector.GetErrorsByDemo(name) {
			result.Valid = false
			result.Errors = append(result.Errors, demoErr.Stage+": "+demoErr.Err.Error())
		}
		if result.Valid {
			summary.Valid++
		} else {
			summary.Invalid++
		}
		summary.Results = append(summary.Results, result)
	}
	return summary
}

func printValidation(w io.Writer, summary ValidationSummary) {
	for _, result := range summary.Results {
		if result.Valid {
			fmt.Fprintf(w, "✓ %s\n", result.Demo)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", result.Demo)
		for _, msg := range result.Errors {
			fmt.Fprintf(w, "    %s\n", msg)
		}
	}
	fmt.Fprintf(w, "\n%d demos, %d valid, %d invalid\n", summary.Total, summary.Valid, summary.Invalid)
}
