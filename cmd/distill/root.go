package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docdistill/distill/internal/config"
	"github.com/docdistill/distill/internal/home"
	"github.com/docdistill/distill/version"
)

var (
	cfgFile  string
	homeDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "distill",
	Short: "Document extraction assistant driven by natural-language field descriptions",
	Long: `Distill turns plain-English descriptions of the fields you care about into
a reusable extraction configuration, then applies it to batches of PDF,
DOCX, and DOC documents.

The workflow:
  - Describe your fields once; an LLM synthesizes a validation schema
    and an extraction prompt, saved as a named use case
  - Run extraction over document folders with the saved configuration
  - Export validated records to XLSX, CSV, or JSON`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.distill/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "distill home directory (default: ~/.distill)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			level = slog.LevelInfo
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(usecasesCmd)
	rootCmd.AddCommand(extractCmd)
}

// runtimeEnv resolves the home directory and configuration shared by every
// command.
func runtimeEnv() (*home.Dir, *config.Config, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, nil, err
	}

	path := cfgFile
	if path == "" {
		if _, err := os.Stat(h.ConfigPath()); err == nil {
			path = h.ConfigPath()
		}
	}
	cm, err := config.NewManager(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return h, cm.Get(), nil
}
