package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"campusinterview/internal/app"
	"campusinterview/internal/catalog"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the topic catalog",
	Long: `Print every topic of the configured catalog with its core question.
With --write the catalog is exported as YAML, ready for TOPIC_SOURCE=yaml.`,
	RunE: runTopics,
}

func init() {
	topicsCmd.Flags().String("write", "", "Write the catalog to this YAML file instead of printing it")
}

func runTopics(cmd *cobra.Command, args []string) error {
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

	if path, _ := cmd.Flags().GetString("write"); path != "" {
		if err := catalog.Write(path, a.Topics); err != nil {
			return fmt.Errorf("failed to write catalog: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d topics to %s\n", len(a.Topics), path)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCENE\tDIMENSION\tQUESTION")
	for _, t := range a.Topics {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, t.Scene, t.EduType, t.CoreQuestion())
	}
	return w.Flush()
}
