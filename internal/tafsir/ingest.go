package tafsir

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// IngestSummary reports what an ingest pass found
type IngestSummary struct {
	Pairs   int // complete content/metadata pairs
	Orphans int // content files missing their sidecar, or vice versa
	Invalid int // sidecars that do not parse back into nine fields
}

// EnumeratePairs walks the generated corpus of one tafsir and verifies
// every section pair is complete and its metadata reads back.
//
// TODO: transmit the pairs to the ingestion service once its bulk upload
// endpoint stabilizes; until then this is enumerate-and-verify only.
func EnumeratePairs(outputDir, name string, logger *zap.Logger) (IngestSummary, error) {
	root := filepath.Join(outputDir, name, "sections")
	if _, err := os.Stat(root); err != nil {
		return IngestSummary{}, errors.Wrapf(err, "no generated sections for %s", name)
	}

	var contentFiles []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".txt") {
			contentFiles = append(contentFiles, path)
		}
		return nil
	})
	if err != nil {
		return IngestSummary{}, errors.Wrapf(err, "walk %s", root)
	}
	sort.Strings(contentFiles)

	var summary IngestSummary
	for _, contentPath := range contentFiles {
		metaPath := strings.TrimSuffix(contentPath, ".txt") + ".metadata.json"

		meta, err := ReadMetadata(metaPath)
		if err != nil {
			if os.IsNotExist(errors.Cause(err)) {
				summary.Orphans++
				logger.Warn("content file has no metadata sidecar",
					zap.String("file", contentPath))
			} else {
				summary.Invalid++
				logger.Warn("metadata sidecar unreadable",
					zap.String("file", metaPath),
					zap.Error(err))
			}
			continue
		}

		summary.Pairs++
		logger.Info("section pair",
			zap.String("file", contentPath),
			zap.String("section", meta.GroupAyahKey),
			zap.Int("ayahs", len(meta.AyahKeys)))
	}

	logger.Info("ingest enumeration complete",
		zap.String("tafsir", name),
		zap.Int("pairs", summary.Pairs),
		zap.Int("orphans", summary.Orphans),
		zap.Int("invalid", summary.Invalid))

	return summary, nil
}
