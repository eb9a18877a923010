package tafsir

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/yfarhan/ilmconvert/internal/model"
)

// SectionMetadata is the sidecar record written next to each content
// file. Surah is an integer everywhere; the string/integer mix of the
// historical format is gone.
type SectionMetadata struct {
	AyahKey      string   `json:"ayah_key"`
	GroupAyahKey string   `json:"group_ayah_key"`
	FromAyah     string   `json:"from_ayah"`
	ToAyah       string   `json:"to_ayah"`
	FromAyahInt  int      `json:"from_ayah_int"`
	ToAyahInt    int      `json:"to_ayah_int"`
	AyahKeys     []string `json:"ayah_keys"`
	Tafsir       string   `json:"tafsir"`
	Surah        int      `json:"surah"`
}

// SafeID derives a filesystem-safe identifier from a group key. The ":"
// range separator (and any other rune illegal in portable path segments)
// becomes "-"; since keys contain only digits and one separator, the
// substitution is reversible.
func SafeID(groupKey string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		default:
			return '-'
		}
	}, groupKey)
}

// Writer writes one content/metadata file pair per section under
// <root>/<tafsir>/sections/surah-NNN/
type Writer struct {
	root string
}

// NewWriter creates a writer rooted at the output directory
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// SectionDir returns the directory for one surah's sections
func (w *Writer) SectionDir(tafsir string, surah int) string {
	return filepath.Join(w.root, tafsir, "sections", fmt.Sprintf("surah-%03d", surah))
}

// WriteSection writes the stripped text and its metadata sidecar.
// The write is all-or-nothing: if the metadata write fails, the content
// file is removed so no half-written pair survives.
func (w *Writer) WriteSection(section *Section, text string) error {
	dir := w.SectionDir(section.Tafsir, section.Surah)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &model.WriteError{Section: section.GroupKey, Err: err}
	}

	stem := filepath.Join(dir, "section-"+SafeID(section.GroupKey))
	contentPath := stem + ".txt"
	metaPath := stem + ".metadata.json"

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if err := os.WriteFile(contentPath, []byte(text), 0o644); err != nil {
		return &model.WriteError{Section: section.GroupKey, Err: err}
	}

	meta := SectionMetadata{
		AyahKey:      section.AyahKey,
		GroupAyahKey: section.GroupKey,
		FromAyah:     section.FromAyah,
		ToAyah:       section.ToAyah,
		FromAyahInt:  section.FromAyahInt,
		ToAyahInt:    section.ToAyahInt,
		AyahKeys:     section.AyahKeys,
		Tafsir:       section.Tafsir,
		Surah:        section.Surah,
	}
	if err := writeMetadata(metaPath, &meta); err != nil {
		os.Remove(contentPath)
		return &model.WriteError{Section: section.GroupKey, Err: err}
	}

	return nil
}

// writeMetadata serializes the sidecar with stable field order
func writeMetadata(path string, meta *SectionMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// ReadMetadata reads a sidecar back; used by ingest and by tests
func ReadMetadata(path string) (*SectionMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var meta SectionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return &meta, nil
}
