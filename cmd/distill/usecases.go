package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docdistill/distill/internal/usecase"
)

var usecasesCmd = &cobra.Command{
	Use:     "usecases",
	Aliases: []string{"uc"},
	Short:   "Manage saved extraction use cases",
}

var usecasesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved use cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, err := runtimeEnv()
		if err != nil {
			return err
		}
		store := usecase.NewStore(h.UseCasesPath(), slog.Default())
		n := 0
		for name := range store.List() {
			fmt.Println(name)
			n++
		}
		if n == 0 {
			fmt.Println("No use cases configured. Run 'distill configure' to create one.")
		}
		return nil
	},
}

var usecasesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a use case's fields, schema, and prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, err := runtimeEnv()
		if err != nil {
			return err
		}
		store := usecase.NewStore(h.UseCasesPath(), slog.Default())
		uc, art, prompt, err := store.Load(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Use case:  %s\n", uc.Name)
		fmt.Printf("About:     %s\n", uc.Description)
		fmt.Printf("Models:    generation=%s extraction=%s azure=%v\n",
			uc.GenerationModel, uc.ExtractionModel, uc.AzureMode)
		fmt.Printf("Schema:    %s (by %s at %s)\n",
			art.Hash[:12], art.GeneratedBy, art.GeneratedAt.Format("2006-01-02 15:04"))
		fmt.Println("\nFields:")
		for _, f := range art.Fields {
			req := "optional"
			if f.Required {
				req = "required"
			}
			line := fmt.Sprintf("  %-24s %-18s %s", f.Name, f.Kind, req)
			if len(f.Enum) > 0 {
				line += "  [" + strings.Join(f.Enum, ", ") + "]"
			}
			fmt.Println(line)
		}
		fmt.Println("\nExtraction prompt:")
		fmt.Println(prompt.Text)
		return nil
	},
}

var usecasesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a use case and its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, err := runtimeEnv()
		if err != nil {
			return err
		}
		store := usecase.NewStore(h.UseCasesPath(), slog.Default())
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted use case %q\n", args[0])
		return nil
	},
}

func init() {
	usecasesCmd.AddCommand(usecasesListCmd)
	usecasesCmd.AddCommand(usecasesShowCmd)
	usecasesCmd.AddCommand(usecasesDeleteCmd)
}
