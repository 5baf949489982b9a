package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"campusinterview/internal/app"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a session log with its statistics as JSON",
	Long: `Write one session's conversation log together with its scene, dimension
and follow-up distribution. Use a persistent store (--store sqlite or mongo)
so sessions from earlier runs are available.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("session", "", "Session ID to export (required)")
	exportCmd.Flags().String("out", "", "Write to this file instead of stdout")
	exportCmd.MarkFlagRequired("session")
}

func runExport(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("session")
	if id == "" {
		return errors.New("--session is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogMode, true)
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	export, err := a.Interview.ExportSession(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to export session %s: %w", id, err)
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("out")
	if path == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(export.Log), path)
	return nil
}
