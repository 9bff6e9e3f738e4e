package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/showcase/internal/server"
	"github.com/conneroisu/showcase/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo API with live reload",
	Long: `Start the preview server. It serves the demo list, the ordered tabs of
each demo, synthesized projects and the sandbox hand-off page. Websocket
clients on /ws are told whenever the source table is reloaded.

Examples:
  showcase serve                  # Serve on the configured address
  showcase serve -p 9000          # Serve on another port
  showcase serve --open           # Open the demo list in a browser
  showcase serve --no-reload      # Do not watch the sources`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveNoReload bool

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("open", false, "Open the demo list in a browser")
	serveCmd.Flags().BoolVar(&serveNoReload, "no-reload", false, "Don't reload sources when they change")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.open", serveCmd.Flags().Lookup("open"))
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.config.Development.HotReload && !serveNoReload {
		reloader := services.NewSourceReloader(a.config.Sources, a.registry, a.logger)
		if err := reloader.Start(ctx, services.DefaultDebounce); err != nil {
			return fmt.Errorf("failed to watch sources: %w", err)
		}
		defer reloader.Stop()
	}

	srv := server.New(a.config, a.demos, a.logger)

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d demos at http://%s:%d\n",
		len(a.config.Demos), a.config.Server.Host, a.config.Server.Port)

	return srv.Start(ctx)
}
