package tafsir

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// RawSection is one unresolved section row as stored in the database
type RawSection struct {
	AyahKey  string
	GroupKey string
	FromAyah string
	ToAyah   string
	AyahKeys string // comma-separated key list
	Text     string // marked-up commentary, possibly empty
}

// Section is one resolved commentary entry covering a contiguous ayah
// range. Read once from the backing store per export run, never mutated.
type Section struct {
	AyahKey     string   // key of the canonical row ("surah:ayah")
	GroupKey    string   // group key naming the section's starting point
	FromAyah    string   // first ayah of the range
	ToAyah      string   // last ayah of the range
	FromAyahInt int      // AyahKeyToInt(FromAyah)
	ToAyahInt   int      // AyahKeyToInt(ToAyah)
	AyahKeys    []string // every ayah key in the range, in order
	Surah       int
	Tafsir      string // source name
	RawText     string
}

// ResolveSection converts one raw row into a Section. Malformed range
// keys and inverted ranges are rejected, never silently defaulted; the
// caller decides whether to skip the row or abort.
func ResolveSection(raw RawSection, surah int, tafsir string) (*Section, error) {
	fromInt, err := AyahKeyToInt(raw.FromAyah)
	if err != nil {
		return nil, err
	}
	toInt, err := AyahKeyToInt(raw.ToAyah)
	if err != nil {
		return nil, err
	}
	if fromInt > toInt {
		return nil, errors.Errorf("section %s: inverted range %s..%s", raw.GroupKey, raw.FromAyah, raw.ToAyah)
	}

	return &Section{
		AyahKey:     raw.AyahKey,
		GroupKey:    raw.GroupKey,
		FromAyah:    raw.FromAyah,
		ToAyah:      raw.ToAyah,
		FromAyahInt: fromInt,
		ToAyahInt:   toInt,
		AyahKeys:    SplitAyahKeys(raw.AyahKeys),
		Surah:       surah,
		Tafsir:      tafsir,
		RawText:     raw.Text,
	}, nil
}

// Store reads section rows from a tafsir sqlite database
type Store struct {
	db *sql.DB
}

// OpenStore opens the database read-only for the duration of one run.
// A missing file is reported before the driver touches it, so callers can
// fail fast with a clear message.
func OpenStore(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "tafsir database %s", path)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping database %s", path)
	}

	return &Store{db: db}, nil
}

// OpenStoreDB wraps an existing handle; used by tests with in-memory
// databases
func OpenStoreDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// SectionsForSurah reads the section rows of one surah in key order.
// Only canonical rows (ayah_key = group_ayah_key) carry a section's
// text; the remaining rows of a group alias into it.
func (s *Store) SectionsForSurah(ctx context.Context, surah int) ([]RawSection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ayah_key, group_ayah_key, from_ayah, to_ayah, ayah_keys, text
		FROM tafsir
		WHERE ayah_key LIKE ? AND ayah_key = group_ayah_key
		ORDER BY ayah_key;
	`, fmt.Sprintf("%d:%%", surah))
	if err != nil {
		return nil, errors.Wrapf(err, "query surah %d", surah)
	}
	defer rows.Close()

	var sections []RawSection
	for rows.Next() {
		var raw RawSection
		var ayahKeys, text sql.NullString
		if err := rows.Scan(&raw.AyahKey, &raw.GroupKey, &raw.FromAyah, &raw.ToAyah, &ayahKeys, &text); err != nil {
			return nil, errors.Wrapf(err, "scan surah %d", surah)
		}
		raw.AyahKeys = ayahKeys.String
		raw.Text = text.String
		sections = append(sections, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "read surah %d", surah)
	}

	return sections, nil
}

// AyahMapping reads the full ayah_key to group_ayah_key mapping
func (s *Store) AyahMapping(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ayah_key, group_ayah_key FROM tafsir;`)
	if err != nil {
		return nil, errors.Wrap(err, "query ayah mapping")
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var ayahKey, groupKey string
		if err := rows.Scan(&ayahKey, &groupKey); err != nil {
			return nil, errors.Wrap(err, "scan ayah mapping")
		}
		mapping[ayahKey] = groupKey
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "read ayah mapping")
	}

	return mapping, nil
}
