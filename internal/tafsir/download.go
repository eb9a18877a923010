package tafsir

import (
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Published tafsir database exports (bzip2-compressed sqlite files)
var tafsirURLs = map[string]string{
	"qurtubi":    "https://s3.us-east-1.wasabisys.com/static-cdn.tarteel.ai/qul-exports/tafsir/1722589836-w9ne3-ar-tafseer-al-qurtubi.db.bz2",
	"ibn-kathir": "https://s3.us-east-1.wasabisys.com/static-cdn.tarteel.ai/qul-exports/tafsir/1722592431-won0o-en-tafisr-ibn-kathir.db.bz2",
}

// KnownTafsirs lists the names Download accepts
func KnownTafsirs() []string {
	return []string{"ibn-kathir", "qurtubi"}
}

// DatabasePath returns the local path of a downloaded tafsir database
func DatabasePath(downloadsDir, name string) string {
	return filepath.Join(downloadsDir, name+".sqlite")
}

// Download fetches a tafsir database export and decompresses it into the
// downloads directory. An already-present database is left untouched.
func Download(ctx context.Context, downloadsDir, name string, logger *zap.Logger) error {
	url, ok := tafsirURLs[name]
	if !ok {
		return errors.Errorf("unknown tafsir %q (known: %v)", name, KnownTafsirs())
	}

	if err := os.MkdirAll(downloadsDir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", downloadsDir)
	}

	dbPath := DatabasePath(downloadsDir, name)
	if _, err := os.Stat(dbPath); err == nil {
		logger.Info("database already downloaded", zap.String("path", dbPath))
		return nil
	}

	logger.Info("downloading tafsir database",
		zap.String("tafsir", name),
		zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "download %s", name)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("download %s: unexpected status %s", name, resp.Status)
	}

	// Decompress while streaming; write via a temp file so an interrupted
	// download never looks like a complete database
	tmpPath := dbPath + ".partial"
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmpPath)
	}

	n, err := io.Copy(f, bzip2.NewReader(resp.Body))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "decompress %s", name)
	}

	if err := os.Rename(tmpPath, dbPath); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "finalize %s", dbPath)
	}

	logger.Info("database ready",
		zap.String("path", dbPath),
		zap.String("size", fmt.Sprintf("%d bytes", n)))

	return nil
}
