package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yfarhan/ilmconvert/internal/docx"
	"github.com/yfarhan/ilmconvert/internal/extract"
	"github.com/yfarhan/ilmconvert/internal/fiqh"
	"github.com/yfarhan/ilmconvert/internal/llm"
	"github.com/yfarhan/ilmconvert/internal/model"
)

var (
	fiqhProvider  string
	fiqhModel     string
	fiqhAPIKey    string
	fiqhTimeout   time.Duration
	fiqhMaxTokens int
)

// fiqhCmd groups the DOCX card converter commands
var fiqhCmd = &cobra.Command{
	Use:   "fiqh",
	Short: "Convert DOCX fiqh comparison cards to structured JSON",
	Long: `The fiqh converter reads comparison tables from DOCX jurisprudence
cards, renders them as markdown, and sends them to an LLM with a fixed
output schema. The response is parsed and validated into issue records:
one jurisprudential question with its attributed opinions, evidence, and
references.

Extraction is deterministic (temperature pinned to zero) and the response
is forced to open as a JSON object. There are no retries: one document,
one request, and a bad response skips only that document.`,
}

// fiqhPreviewCmd renders tables without calling the extraction service
var fiqhPreviewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Preview table-to-markdown normalization (no API call)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		path := cfg.Fiqh.SampleFile
		if len(args) == 1 {
			path = args[0]
		}

		doc, err := docx.Open(path)
		if err != nil {
			return err
		}
		if len(doc.Tables) == 0 {
			fmt.Println("No tables found in document")
			return nil
		}

		for i, table := range doc.Tables {
			md, err := docx.TableToMarkdown(table)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Table %d skipped: %v\n", i+1, err)
				continue
			}
			fmt.Printf("## Table %d\n\n%s\n", i+1, md)
		}
		return nil
	},
}

// fiqhTestCmd runs the full pipeline on the bundled sample document
var fiqhTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the full pipeline on the bundled sample document",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()

		converter, logger, err := newFiqhConverter()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := context.Background()
		issues, err := converter.ConvertFile(ctx, cfg.Fiqh.SampleFile)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Fiqh.OutputDir, 0o755); err != nil {
			return err
		}
		outputPath := filepath.Join(cfg.Fiqh.OutputDir, "sample.json")
		if err := fiqh.WriteIssues(outputPath, issues); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "\nConverted %d issues:\n", len(issues))
		for i, issue := range issues {
			if i >= 5 {
				fmt.Fprintf(os.Stderr, "  ... and %d more\n", len(issues)-5)
				break
			}
			question := issue.Question
			if len(question) > 60 {
				question = question[:60] + "..."
			}
			fmt.Fprintf(os.Stderr, "  #%d %s (%d opinions)\n", issue.IssueNumber, question, len(issue.Opinions))
		}
		fmt.Fprintf(os.Stderr, "\n✓ Output saved to %s\n", outputPath)
		return nil
	},
}

// fiqhConvertCmd converts a directory of documents
var fiqhConvertCmd = &cobra.Command{
	Use:   "convert [input-dir] [output-dir]",
	Short: "Convert a directory of DOCX cards to JSON",
	Long: `Convert every .docx file in the input directory, writing one JSON file
per document. Documents are processed sequentially; a failed document is
logged and skipped without affecting the rest of the batch.

Example:
  ilmconvert fiqh convert sample_input_data/fiqh_cards sample_output_data/fiqh_cards`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		inputDir := cfg.Fiqh.InputDir
		outputDir := cfg.Fiqh.OutputDir
		if len(args) >= 1 {
			inputDir = args[0]
		}
		if len(args) == 2 {
			outputDir = args[1]
		}

		converter, logger, err := newFiqhConverter()
		if err != nil {
			return err
		}
		defer logger.Sync()

		summary, err := converter.ConvertDirectory(context.Background(), inputDir, outputDir)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "\nBatch complete: %d converted, %d failed\n", summary.Converted, summary.Failed)
		if summary.Failed > 0 {
			return fmt.Errorf("%d document(s) failed", summary.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fiqhCmd)
	fiqhCmd.AddCommand(fiqhPreviewCmd)
	fiqhCmd.AddCommand(fiqhTestCmd)
	fiqhCmd.AddCommand(fiqhConvertCmd)

	for _, cmd := range []*cobra.Command{fiqhTestCmd, fiqhConvertCmd} {
		cmd.Flags().StringVar(&fiqhProvider, "llm-provider", "anthropic", "LLM provider (anthropic, openai, ollama)")
		cmd.Flags().StringVar(&fiqhModel, "llm-model", "", "LLM model name (empty uses the provider default)")
		cmd.Flags().StringVar(&fiqhAPIKey, "api-key", "", "API key (overrides the provider's environment variable)")
		cmd.Flags().DurationVar(&fiqhTimeout, "timeout", 2*time.Minute, "timeout per extraction request")
		cmd.Flags().IntVar(&fiqhMaxTokens, "max-tokens", 8192, "maximum response tokens")
	}
}

// newFiqhConverter builds the provider, extractor, and converter from
// flags and environment. A missing API key is fatal here, before any
// document is touched.
func newFiqhConverter() (*fiqh.Converter, *zap.Logger, error) {
	llmCfg := llm.Config{
		Provider:  fiqhProvider,
		Model:     fiqhModel,
		APIKey:    fiqhAPIKey,
		Timeout:   int(fiqhTimeout.Seconds()),
		MaxTokens: fiqhMaxTokens,
	}

	if llmCfg.APIKey == "" {
		switch strings.ToLower(fiqhProvider) {
		case "anthropic", "claude":
			llmCfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if llmCfg.APIKey == "" {
				return nil, nil, &model.ConfigError{Setting: "ANTHROPIC_API_KEY", Reason: "not set (use --api-key or the environment variable)"}
			}
		case "openai":
			llmCfg.APIKey = os.Getenv("OPENAI_API_KEY")
			if llmCfg.APIKey == "" {
				return nil, nil, &model.ConfigError{Setting: "OPENAI_API_KEY", Reason: "not set (use --api-key or the environment variable)"}
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				llmCfg.BaseURL = baseURL
			}
		}
	}

	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger()
	if err != nil {
		return nil, nil, err
	}

	extractor := extract.NewIssueExtractor(provider, llmCfg.Model)
	return fiqh.NewConverter(extractor, logger), logger, nil
}
