package tafsir

import (
	"context"

	"go.uber.org/zap"
)

// Exporter drives the database-to-file-corpus export: for each surah in
// an inclusive range, read that surah's sections, strip their markup, and
// write one content/metadata pair per section. Strictly sequential; every
// per-section failure is logged and counted, never fatal.
type Exporter struct {
	store  *Store
	writer *Writer
	tafsir string
	logger *zap.Logger
}

// ExportSummary reports the terminal counts of one export run
type ExportSummary struct {
	Written int
	Skipped int
	Failed  int
}

// NewExporter creates an exporter. The logger is required: every skip and
// failure is logged with the section identifier and reason.
func NewExporter(store *Store, writer *Writer, tafsirName string, logger *zap.Logger) *Exporter {
	return &Exporter{
		store:  store,
		writer: writer,
		tafsir: tafsirName,
		logger: logger,
	}
}

// Export processes surahs fromSurah through toSurah, both INCLUSIVE.
// The historical exclusive end bound was an off-by-one trap; the
// inclusive convention is the documented contract here and on the CLI
// flags.
func (e *Exporter) Export(ctx context.Context, fromSurah, toSurah int) (ExportSummary, error) {
	var summary ExportSummary

	for surah := fromSurah; surah <= toSurah; surah++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		raws, err := e.store.SectionsForSurah(ctx, surah)
		if err != nil {
			return summary, err
		}

		e.logger.Debug("exporting surah",
			zap.Int("surah", surah),
			zap.Int("sections", len(raws)))

		for _, raw := range raws {
			e.exportSection(raw, surah, &summary)
		}
	}

	e.logger.Info("export complete",
		zap.String("tafsir", e.tafsir),
		zap.Int("written", summary.Written),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

// exportSection handles one section; failures stay inside this boundary
func (e *Exporter) exportSection(raw RawSection, surah int, summary *ExportSummary) {
	section, err := ResolveSection(raw, surah, e.tafsir)
	if err != nil {
		summary.Skipped++
		e.logger.Warn("skipping malformed section",
			zap.String("section", raw.GroupKey),
			zap.Error(err))
		return
	}

	text, err := StripMarkup(section.RawText)
	if err != nil {
		summary.Skipped++
		e.logger.Warn("skipping unparseable section",
			zap.String("section", section.GroupKey),
			zap.Error(err))
		return
	}
	if text == "" {
		summary.Skipped++
		e.logger.Warn("skipping section with no text",
			zap.String("section", section.GroupKey))
		return
	}

	if err := e.writer.WriteSection(section, text); err != nil {
		summary.Failed++
		e.logger.Error("section write failed",
			zap.String("section", section.GroupKey),
			zap.Error(err))
		return
	}

	summary.Written++
	e.logger.Debug("wrote section",
		zap.String("section", section.GroupKey),
		zap.Int("ayahs", len(section.AyahKeys)))
}
