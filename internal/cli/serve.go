package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"campusinterview/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	log, err := newLogger(cfg.LogMode, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}
