package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/docdistill/distill/internal/document"
	"github.com/docdistill/distill/internal/export"
	"github.com/docdistill/distill/internal/extract"
	"github.com/docdistill/distill/internal/llmlog"
	"github.com/docdistill/distill/internal/usecase"
)

var extractFlags struct {
	format  string
	out     string
	model   string
	workers int
}

var extractCmd = &cobra.Command{
	Use:   "extract <use-case> <documents-dir>",
	Short: "Extract structured records from a folder of documents",
	Long: `Extract runs the saved use case over every supported document (.pdf,
.docx, .doc) directly under the given directory and writes the validated
records to the output file.

Each document is an independent unit of work: a document that fails to
parse or extract is reported and skipped, never aborting the batch.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, cfg, err := runtimeEnv()
		if err != nil {
			return err
		}

		format, err := export.ParseFormat(extractFlags.format)
		if err != nil {
			return err
		}

		store := usecase.NewStore(h.UseCasesPath(), slog.Default())
		uc, art, prompt, err := store.Load(args[0])
		if err != nil {
			return err
		}

		model := uc.ExtractionModel
		if extractFlags.model != "" {
			model = extractFlags.model
		}
		if err := cfg.ValidateForModel(model, uc.AzureMode); err != nil {
			return err
		}
		reg, err := cfg.BuildRegistry()
		if err != nil {
			return err
		}
		client, err := reg.ForModel(model, uc.AzureMode)
		if err != nil {
			return err
		}

		docs, parseFailures, err := document.ParseDir(args[1], slog.Default())
		if err != nil {
			return err
		}
		if len(docs) == 0 && len(parseFailures) == 0 {
			return fmt.Errorf("no supported documents found in %s", args[1])
		}

		recorder := llmlog.NewRecorder(h.LLMLogPath(), slog.Default())
		defer recorder.Close()

		workers := extractFlags.workers
		if workers <= 0 {
			workers = cfg.Defaults.MaxWorkers
		}
		engine, err := extract.NewEngine(client, art, prompt, extract.Options{
			Model:       model,
			Timeout:     time.Duration(cfg.Defaults.TimeoutSeconds) * time.Second,
			Concurrency: workers,
			Recorder:    recorder,
			Logger:      slog.Default(),
		})
		if err != nil {
			return err
		}

		fmt.Printf("Extracting %d documents with %s (%d workers)...\n", len(docs), model, workers)
		results, summary := engine.ExtractBatch(cmd.Context(), docs)

		outPath := extractFlags.out
		if outPath == "" {
			outPath = fmt.Sprintf("%s_extracted.%s", usecase.Slug(uc.Name), format)
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		if err := export.Write(f, format, art, results); err != nil {
			return err
		}

		fmt.Printf("\n%d/%d documents extracted (%d tokens) -> %s\n",
			summary.Succeeded, summary.Total, summary.TotalTokens, outPath)
		reportFailures(os.Stdout, parseFailures, results)
		return nil
	},
}

func reportFailures(w io.Writer, parseFailures map[string]error, results []*extract.Result) {
	if len(parseFailures) > 0 {
		fmt.Fprintln(w, "\nSkipped (unreadable):")
		paths := make([]string, 0, len(parseFailures))
		for p := range parseFailures {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			fmt.Fprintf(w, "  %s: %v\n", p, parseFailures[p])
		}
	}
	failed := false
	for _, r := range results {
		if r.Err != nil {
			if !failed {
				fmt.Fprintln(w, "\nFailed:")
				failed = true
			}
			fmt.Fprintf(w, "  %s: %v\n", r.Source, r.Err)
		}
	}
	flagged := false
	for _, r := range results {
		if r.Err != nil || len(r.Flags) == 0 {
			continue
		}
		if !flagged {
			fmt.Fprintln(w, "\nAdjusted values:")
			flagged = true
		}
		for _, fl := range r.Flags {
			fmt.Fprintf(w, "  %s: %s %q (%s)\n", r.Source, fl.Field, fl.Raw, fl.Note)
		}
	}
}

func init() {
	extractCmd.Flags().StringVarP(&extractFlags.format, "format", "f", "xlsx", "output format: xlsx, csv, or json")
	extractCmd.Flags().StringVarP(&extractFlags.out, "out", "o", "", "output file (default: <use-case>_extracted.<format>)")
	extractCmd.Flags().StringVar(&extractFlags.model, "model", "", "extraction model override")
	extractCmd.Flags().IntVar(&extractFlags.workers, "workers", 0, "concurrent extractions (default from config)")
}
