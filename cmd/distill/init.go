package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docdistill/distill/internal/config"
	"github.com/docdistill/distill/internal/home"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the distill home directory and a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("Initialized %s\n", h.Path())
		fmt.Printf("Edit %s to set API keys, or export OPENAI_API_KEY / ANTHROPIC_API_KEY.\n", h.ConfigPath())
		return nil
	},
}
