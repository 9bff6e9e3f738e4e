package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Server flags
	Port           int
	Host           string
	DisableBrowser bool

	// Output flags
	Format  string
	Verbose bool
	Quiet   bool
}

var outputFormats = []string{"table", "json", "yaml"}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 0, "Port to serve on (default from config)")
	cmd.Flags().StringVar(&flags.Host, "host", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&flags.DisableBrowser, "disable-browser", false, "Don't open browser automatically")
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")

	AddFlagValidation(cmd, "format", func(format string) error {
		return ValidateFormat(format, outputFormats)
	})
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.Port < 0 || f.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", f.Port)
	}

	if f.Format != "" {
		if err := ValidateFormat(f.Format, outputFormats); err != nil {
			return err
		}
	}

	if f.Quiet && f.Verbose {
		return fmt.Errorf("cannot specify both --quiet and --verbose")
	}

	return nil
}

// ValidateFormat checks format against the supported formats
func ValidateFormat(format string, valid []string) error {
	for _, candidate := range valid {
		if strings.EqualFold(format, candidate) {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %s, must be one of: %s", format, strings.Join(valid, ", "))
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}
