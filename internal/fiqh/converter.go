package fiqh

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/yfarhan/ilmconvert/internal/docx"
	"github.com/yfarhan/ilmconvert/internal/extract"
	"github.com/yfarhan/ilmconvert/internal/model"
)

// Converter runs the DOCX-to-JSON pipeline for fiqh cards: read tables,
// normalize to markdown, one extraction call per document, write the
// validated issues. Documents are processed strictly sequentially.
type Converter struct {
	extractor *extract.IssueExtractor
	logger    *zap.Logger
}

// Summary reports the outcome of a batch run
type Summary struct {
	Converted int
	Failed    int
}

// NewConverter creates a converter. The logger is required: every skipped
// table and failed document is logged with its identifier.
func NewConverter(extractor *extract.IssueExtractor, logger *zap.Logger) *Converter {
	return &Converter{
		extractor: extractor,
		logger:    logger,
	}
}

// NormalizeTables renders every table of the document as markdown.
// A malformed table is logged and skipped; it never aborts the document.
func (c *Converter) NormalizeTables(path string, doc *docx.Document) []string {
	var tables []string
	for i, table := range doc.Tables {
		md, err := docx.TableToMarkdown(table)
		if err != nil {
			c.logger.Warn("skipping malformed table",
				zap.String("document", path),
				zap.Int("table", i+1),
				zap.Error(err))
			continue
		}
		tables = append(tables, md)
	}
	return tables
}

// ConvertFile converts one DOCX file and returns its issues
func (c *Converter) ConvertFile(ctx context.Context, path string) ([]model.Issue, error) {
	doc, err := docx.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	tables := c.NormalizeTables(path, doc)
	if len(tables) == 0 {
		return nil, &model.ContentError{Item: path, Reason: "no usable tables"}
	}

	issues, err := c.extractor.Extract(ctx, filepath.Base(path), tables)
	if err != nil {
		return nil, err
	}

	c.logger.Info("converted document",
		zap.String("document", path),
		zap.Int("tables", len(tables)),
		zap.Int("issues", len(issues)))

	return issues, nil
}

// ConvertDirectory converts every .docx file under inputDir, writing one
// JSON file per document into outputDir. A failed document is logged and
// skipped; the batch continues.
func (c *Converter) ConvertDirectory(ctx context.Context, inputDir, outputDir string) (Summary, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "read input directory %s", inputDir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(strings.ToLower(name), ".docx") && !strings.HasPrefix(name, "~$") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Summary{}, errors.Wrapf(err, "create output directory %s", outputDir)
	}

	var summary Summary
	for _, name := range files {
		inputPath := filepath.Join(inputDir, name)

		issues, err := c.ConvertFile(ctx, inputPath)
		if err != nil {
			summary.Failed++
			c.logger.Error("document failed",
				zap.String("document", inputPath),
				zap.Error(err))
			continue
		}

		outputPath := filepath.Join(outputDir, strings.TrimSuffix(name, filepath.Ext(name))+".json")
		if err := WriteIssues(outputPath, issues); err != nil {
			summary.Failed++
			c.logger.Error("document failed",
				zap.String("document", inputPath),
				zap.Error(err))
			continue
		}

		summary.Converted++
	}

	c.logger.Info("batch complete",
		zap.Int("converted", summary.Converted),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

// WriteIssues serializes issues as indented JSON without HTML escaping,
// so Arabic text stays readable in the output files
func WriteIssues(path string, issues []model.Issue) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(issues); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
