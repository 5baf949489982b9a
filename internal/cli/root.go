// Package cli defines the Cobra commands of the interview binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"campusinterview/internal/config"
	"campusinterview/internal/logger"
)

var (
	verbose       bool
	storeFlag     string
	topicsFlag    string
	interviewFile string
	version       = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "interview",
	Short: "Campus interview orchestration engine",
	Long: `interview runs structured student interviews: it picks topics across
scenes and developmental dimensions, scores answers for depth, asks
follow-ups and keeps an undoable conversation log.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "Session store: memory, sqlite or mongo (overrides STORE)")
	rootCmd.PersistentFlags().StringVar(&topicsFlag, "topics", "", "Topic source: builtin, yaml or mongo (overrides TOPIC_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&interviewFile, "config", "", "Interview tuning YAML (overrides INTERVIEW_CONFIG_FILE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadConfig reads the environment and applies the persistent flags on top
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if storeFlag != "" {
		cfg.Store = storeFlag
	}
	if topicsFlag != "" {
		cfg.TopicSource = topicsFlag
	}
	if interviewFile != "" {
		ic, err := config.LoadInterviewFile(interviewFile)
		if err != nil {
			return nil, err
		}
		cfg.Interview = ic
	}
	return cfg, nil
}

// newLogger keeps interactive commands quiet unless --verbose is set
func newLogger(mode string, interactive bool) (*logger.Logger, error) {
	if interactive && !verbose {
		return logger.Nop(), nil
	}
	return logger.New(mode)
}
