package tafsir

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GenerateMapping writes the ayah_key to group_ayah_key mapping of one
// tafsir database as an indented JSON file next to the database.
func GenerateMapping(ctx context.Context, store *Store, downloadsDir, name string, logger *zap.Logger) (string, error) {
	mapping, err := store.AyahMapping(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(downloadsDir, name+"-ayah-mapping.json")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mapping); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}

	logger.Info("ayah mapping written",
		zap.String("tafsir", name),
		zap.String("path", path),
		zap.Int("entries", len(mapping)))

	return path, nil
}
