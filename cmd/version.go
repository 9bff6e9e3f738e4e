package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/showcase/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for showcase including:

- Semantic version number
- Git commit hash
- Build timestamp
- Go version and target platform

Examples:
  showcase version               # Show version
  showcase version --short       # Show short version only
  showcase version --detailed    # Show detailed version info
  showcase version --format json # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	detailed, _ := cmd.Flags().GetBool("detailed")
	out := cmd.OutOrStdout()

	switch versionFormat {
	case "json":
		return writeJSON(out, version.GetBuildInfo())
	case "text":
		switch {
		case versionShort:
			fmt.Fprintln(out, version.GetShortVersion())
		case detailed:
			outputVersionDetailed(out)
		default:
			outputVersionDefault(out)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", versionFormat)
	}
}

func outputVersionDefault(w io.Writer) {
	info := version.GetBuildInfo()

	fmt.Fprintf(w, "showcase %s", info.Version)
	if info.GitCommit != "unknown" && len(info.GitCommit) >= 7 {
		fmt.Fprintf(w, " (%s)", info.GitCommit[:7])
	}
	if info.Dirty {
		fmt.Fprint(w, " (dirty)")
	}
	fmt.Fprintln(w)

	if !info.BuildTime.IsZero() {
		fmt.Fprintf(w, "Built: %s\n", info.BuildTime.Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform: %s\n", info.Platform)
}

func outputVersionDetailed(w io.Writer) {
	fmt.Fprintln(w, version.GetDetailedVersion())

	if version.IsDirty() {
		fmt.Fprintln(w, "Working directory: dirty")
	}
	if version.IsRelease() {
		fmt.Fprintln(w, "Build type: release")
	} else {
		fmt.Fprintln(w, "Build type: development")
	}
}
