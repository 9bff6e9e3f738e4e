package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/conneroisu/showcase/internal/scaffolding"
)

var exportCmd = &cobra.Command{
	Use:   "export <demo>",
	Short: "Synthesize the sandbox project of a demo",
	Long: `Synthesize the runnable project for a demo by merging its sources with
the bootstrap templates.

Without flags the project file list is printed. The project can be written
to disk, printed as JSON, copied to the clipboard or opened in the sandbox.

Examples:
  showcase export timer-signal                  # Print the file list
  showcase export timer-signal --json           # Print project and options
  showcase export timer-signal --out ./build    # Write the project to disk
  showcase export timer-signal --copy           # Copy the entry file
  showcase export timer-signal --open           # Open in the sandbox`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportOut   string
	exportForce bool
	exportJSON  bool
	exportCopy  bool
	exportOpen  bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "Write the project files below this directory")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "Overwrite existing files when writing")
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "Print the project and launch options as JSON")
	exportCmd.Flags().BoolVar(&exportCopy, "copy", false, "Copy the entry file content to the clipboard")
	exportCmd.Flags().BoolVar(&exportOpen, "open", false, "Open the project in the sandbox")
	exportCmd.MarkFlagsMutuallyExclusive("json", "open")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	name := args[0]

	if exportOpen {
		launched, err := a.demos.Launch(ctx, name)
		if err != nil {
			return err
		}
		if !launched {
			fmt.Fprintf(out, "No browser available, skipped opening %s\n", name)
			return nil
		}
		fmt.Fprintf(out, "Opened %s in the sandbox\n", name)
		return nil
	}

	export, err := a.demos.Export(ctx, name)
	if err != nil {
		return err
	}

	if exportJSON {
		return writeJSON(out, export)
	}

	if exportOut != "" {
		written, err := scaffolding.WriteProject(exportOut, export.Project, exportForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d files to %s\n", len(written), exportOut)
	} else {
		fmt.Fprintf(out, "%s (open %s)\n", export.Project.Title, export.Options.OpenFile)
		for _, path := range export.Project.Paths() {
			fmt.Fprintf(out, "  %s\n", path)
		}
	}

	if exportCopy {
		content := export.Project.Files[export.Options.OpenFile]
		if err := clipboard.WriteAll(content); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintf(out, "Copied %s to clipboard (%d lines)\n", export.Options.OpenFile, strings.Count(content, "\n")+1)
	}

	return nil
}
