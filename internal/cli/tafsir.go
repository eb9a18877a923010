package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yfarhan/ilmconvert/internal/model"
	"github.com/yfarhan/ilmconvert/internal/tafsir"
)

var (
	tafsirDownloadsDir string
	tafsirOutputDir    string
	tafsirFromSurah    int
	tafsirToSurah      int
	ingestAPIToken     string
	ingestNamespaceID  string
)

// tafsirCmd groups the database exporter commands
var tafsirCmd = &cobra.Command{
	Use:   "tafsir",
	Short: "Export Qul tafsir databases to a section file corpus",
	Long: `The tafsir exporter reads commentary sections from a Qul tafsir sqlite
database, strips their HTML markup, and writes one content file plus one
metadata sidecar per section under:

  output/<tafsir>/sections/surah-NNN/section-<id>.txt
  output/<tafsir>/sections/surah-NNN/section-<id>.metadata.json

Sections with no text are logged and skipped; a failed write counts that
section as failed and the run continues. Surah ranges are inclusive on
both ends.`,
}

// tafsirDownloadCmd fetches a published database export
var tafsirDownloadCmd = &cobra.Command{
	Use:   "download <name>",
	Short: "Download a tafsir database from Qul",
	Long:  fmt.Sprintf("Download and decompress a published tafsir database export.\n\nKnown tafsirs: %v", tafsir.KnownTafsirs()),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		return tafsir.Download(context.Background(), tafsirDownloadsDir, args[0], logger)
	},
}

// tafsirMappingCmd generates the ayah-to-group mapping file
var tafsirMappingCmd = &cobra.Command{
	Use:   "mapping <name>",
	Short: "Generate the ayah key to group key mapping for a tafsir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := openTafsirStore(name)
		if err != nil {
			return err
		}
		defer store.Close()

		path, err := tafsir.GenerateMapping(context.Background(), store, tafsirDownloadsDir, name, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Mapping written to %s\n", path)
		return nil
	},
}

// tafsirConvertCmd runs the exporter
var tafsirConvertCmd = &cobra.Command{
	Use:   "convert <name>",
	Short: "Export a tafsir database to section files with metadata",
	Long: `Export the sections of a tafsir database as one content/metadata file
pair per section. --from-surah and --to-surah bound the run and are both
INCLUSIVE: --from-surah 1 --to-surah 2 exports surahs 1 and 2.

Example:
  ilmconvert tafsir convert ibn-kathir --from-surah 1 --to-surah 114`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if tafsirFromSurah < 1 || tafsirToSurah < tafsirFromSurah {
			return &model.ConfigError{Setting: "surah range", Reason: fmt.Sprintf("invalid range %d..%d", tafsirFromSurah, tafsirToSurah)}
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := openTafsirStore(name)
		if err != nil {
			return err
		}
		defer store.Close()

		writer := tafsir.NewWriter(tafsirOutputDir)
		exporter := tafsir.NewExporter(store, writer, name, logger)

		summary, err := exporter.Export(context.Background(), tafsirFromSurah, tafsirToSurah)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "\nExport complete: %d written, %d skipped, %d failed\n",
			summary.Written, summary.Skipped, summary.Failed)
		return nil
	},
}

// tafsirIngestCmd enumerates the generated corpus (upload not yet wired)
var tafsirIngestCmd = &cobra.Command{
	Use:   "ingest <name>",
	Short: "Enumerate generated section files for ingestion",
	Long: `Walk the generated corpus of a tafsir, verify every section has a
complete content/metadata pair, and report the counts. Nothing is
transmitted yet; the credentials are validated so the upload step can be
added without changing the command surface.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		apiToken := ingestAPIToken
		if apiToken == "" {
			apiToken = os.Getenv("AGENTSET_API_TOKEN")
		}
		if apiToken == "" {
			return &model.ConfigError{Setting: "AGENTSET_API_TOKEN", Reason: "not set (use --api-token or the environment variable)"}
		}
		namespaceID := ingestNamespaceID
		if namespaceID == "" {
			namespaceID = os.Getenv("AGENTSET_NAMESPACE_ID")
		}
		if namespaceID == "" {
			return &model.ConfigError{Setting: "AGENTSET_NAMESPACE_ID", Reason: "not set (use --namespace-id or the environment variable)"}
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		summary, err := tafsir.EnumeratePairs(tafsirOutputDir, name, logger)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "\n%d pairs ready for ingestion (%d orphans, %d invalid)\n",
			summary.Pairs, summary.Orphans, summary.Invalid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tafsirCmd)
	tafsirCmd.AddCommand(tafsirDownloadCmd)
	tafsirCmd.AddCommand(tafsirMappingCmd)
	tafsirCmd.AddCommand(tafsirConvertCmd)
	tafsirCmd.AddCommand(tafsirIngestCmd)

	tafsirCmd.PersistentFlags().StringVar(&tafsirDownloadsDir, "downloads-dir", "downloads", "directory holding downloaded databases")
	tafsirCmd.PersistentFlags().StringVar(&tafsirOutputDir, "output-dir", "output", "root directory for generated section files")

	tafsirConvertCmd.Flags().IntVar(&tafsirFromSurah, "from-surah", 1, "first surah to export (inclusive)")
	tafsirConvertCmd.Flags().IntVar(&tafsirToSurah, "to-surah", 114, "last surah to export (inclusive)")

	tafsirIngestCmd.Flags().StringVar(&ingestAPIToken, "api-token", "", "ingestion API token (or AGENTSET_API_TOKEN)")
	tafsirIngestCmd.Flags().StringVar(&ingestNamespaceID, "namespace-id", "", "ingestion namespace ID (or AGENTSET_NAMESPACE_ID)")
}

// openTafsirStore opens the downloaded database for one tafsir; a
// missing database is a configuration error, fatal before processing
func openTafsirStore(name string) (*tafsir.Store, error) {
	dbPath := tafsir.DatabasePath(tafsirDownloadsDir, name)
	store, err := tafsir.OpenStore(dbPath)
	if err != nil {
		return nil, &model.ConfigError{
			Setting: "database",
			Reason:  fmt.Sprintf("%s is not available (run 'ilmconvert tafsir download %s' first): %v", dbPath, name, err),
		}
	}
	return store, nil
}
