// Package cmd provides the command-line interface for showcase.
//
// Configuration System:
//
//	Configuration is read from several sources with clear precedence:
//	1. Command-line flags (--config, --log-level, etc.) - highest priority
//	2. SHOWCASE_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (SHOWCASE_SERVER_PORT, etc.)
//	4. Configuration files (.showcase.yml) - lowest priority
//
// A .env file in the working directory is loaded into the environment before
// any of the above are read.
//
// Environment Variables:
//
//	SHOWCASE_CONFIG_FILE: Path to custom configuration file
//	SHOWCASE_SERVER_PORT: Override server port
//	SHOWCASE_SOURCES_ROOT: Override the demo source root
//	SHOWCASE_NO_BROWSER: Never open a browser
//	And others following the SHOWCASE_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/showcase/internal/errors"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "showcase",
	Short: "Browse demo sources and open them in an online sandbox",
	Long: `Showcase indexes demo source files, selects the files belonging to each
demo with a path pattern, orders them for display with the entry file first,
and synthesizes a runnable project that opens in an online sandbox.

Quick Start:
  showcase list                   List configured demos
  showcase list timer-signal      List the tabs of one demo
  showcase show timer-signal      Print every tab of a demo
  showcase export timer-signal    Synthesize the sandbox project
  showcase serve                  Serve the demo API with live reload
  showcase validate               Check every demo can be exported`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return execute(context.Background())
}

// execute runs the command line and logs a failure at the level matching
// its error category.
func execute(ctx context.Context) error {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		if cmd == nil {
			cmd = rootCmd
		}
		errors.NewErrorHandler(newLogger(cmd)).Handle(cmd.Context(), err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .showcase.yml, can also use SHOWCASE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system.
//
// Configuration file lookup (highest to lowest):
//  1. --config flag
//  2. SHOWCASE_CONFIG_FILE environment variable
//  3. .showcase.yml in the current directory
func initConfig() {
	// A missing .env file is normal.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SHOWCASE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".showcase")
	}

	viper.SetEnvPrefix("SHOWCASE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, key := range []string{"server.port", "server.host", "sources.root", "sources.manifest", "development.hot_reload"} {
		viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
