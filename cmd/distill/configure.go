package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/docdistill/distill/internal/fieldspec"
	"github.com/docdistill/distill/internal/llmlog"
	"github.com/docdistill/distill/internal/prompts"
	"github.com/docdistill/distill/internal/schema"
	"github.com/docdistill/distill/internal/usecase"
)

var configureFlags struct {
	fieldsFile   string
	purpose      string
	documentType string
	instructions string
	model        string
	azure        bool
	force        bool
}

var configureCmd = &cobra.Command{
	Use:   "configure <fields-file>",
	Short: "Synthesize and save an extraction use case from field descriptions",
	Long: `Configure reads a YAML definition of a use case and its fields, asks the
generation model to synthesize a validation schema and an extraction
prompt, and saves the three as a named use case.

The fields file looks like:

  name: contracts
  description: Extract key terms from signed vendor contracts
  fields:
    - name: vendor name
      description: Legal name of the vendor on the contract
      required: true
    - name: contract type
      description: Category of agreement
      categories: [MSA, SOW, NDA, Other]

Nothing is saved if any synthesis step fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, cfg, err := runtimeEnv()
		if err != nil {
			return err
		}

		uc, err := loadUseCaseFile(args[0])
		if err != nil {
			return err
		}
		if configureFlags.model != "" {
			uc.GenerationModel = configureFlags.model
		}
		if uc.GenerationModel == "" {
			uc.GenerationModel = cfg.Defaults.GenerationModel
		}
		if uc.ExtractionModel == "" {
			uc.ExtractionModel = cfg.Defaults.ExtractionModel
		}
		if configureFlags.azure {
			uc.AzureMode = true
		}

		if err := cfg.ValidateForModel(uc.GenerationModel, uc.AzureMode); err != nil {
			return err
		}

		store := usecase.NewStore(h.UseCasesPath(), slog.Default())
		if !configureFlags.force {
			if _, _, _, err := store.Load(uc.Name); err == nil {
				return fmt.Errorf("use case %q already exists (use --force to replace)", uc.Name)
			}
		}

		reg, err := cfg.BuildRegistry()
		if err != nil {
			return err
		}
		client, err := reg.ForModel(uc.GenerationModel, uc.AzureMode)
		if err != nil {
			return err
		}

		recorder := llmlog.NewRecorder(h.LLMLogPath(), slog.Default())
		defer recorder.Close()

		fmt.Printf("Synthesizing schema for %q with %s...\n", uc.Name, uc.GenerationModel)
		synth := schema.NewSynthesizer(client, uc.GenerationModel, slog.Default())
		synth.SetRecorder(recorder)
		art, err := synth.Synthesize(cmd.Context(), uc)
		if err != nil {
			return err
		}

		fmt.Println("Synthesizing extraction prompt...")
		psynth := prompts.NewSynthesizer(client, uc.GenerationModel, slog.Default())
		psynth.SetRecorder(recorder)
		prompt, err := psynth.Synthesize(cmd.Context(), uc, art, prompts.Context{
			Purpose:            configureFlags.purpose,
			DocumentType:       configureFlags.documentType,
			CustomInstructions: configureFlags.instructions,
		})
		if err != nil {
			return err
		}

		if err := store.Save(uc, art, prompt); err != nil {
			return err
		}
		fmt.Printf("Saved use case %q (%d fields, schema %s)\n", uc.Name, len(art.Fields), art.Hash[:12])
		return nil
	},
}

func init() {
	configureCmd.Flags().StringVar(&configureFlags.purpose, "purpose", "", "what the extracted data is for")
	configureCmd.Flags().StringVar(&configureFlags.documentType, "document-type", "", "what kind of documents will be processed")
	configureCmd.Flags().StringVar(&configureFlags.instructions, "instructions", "", "extra instructions for the extraction prompt")
	configureCmd.Flags().StringVar(&configureFlags.model, "model", "", "generation model override")
	configureCmd.Flags().BoolVar(&configureFlags.azure, "azure", false, "use the Azure-hosted backend (GPT models only)")
	configureCmd.Flags().BoolVar(&configureFlags.force, "force", false, "replace an existing use case")
}

func loadUseCaseFile(path string) (*fieldspec.UseCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fields file: %w", err)
	}
	var uc fieldspec.UseCase
	if err := yaml.Unmarshal(data, &uc); err != nil {
		return nil, fmt.Errorf("failed to parse fields file: %w", err)
	}
	uc.Normalize()
	if err := uc.Validate(); err != nil {
		return nil, err
	}
	return &uc, nil
}
