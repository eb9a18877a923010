package tafsir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1:1", "1-1"},
		{"2:255", "2-255"},
		{"114:6", "114-6"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := SafeID(tt.in); got != tt.want {
			t.Errorf("SafeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeID_NoReservedCharacters(t *testing.T) {
	for _, in := range []string{"1:1", "a/b", "x\\y", "a*b?c", "<1>"} {
		got := SafeID(in)
		for _, r := range got {
			switch r {
			case ':', '/', '\\', '*', '?', '<', '>', '"', '|':
				t.Errorf("SafeID(%q) = %q still contains reserved %q", in, got, r)
			}
		}
	}
}

func testSection() *Section {
	return &Section{
		AyahKey:     "1:1",
		GroupKey:    "1:1",
		FromAyah:    "1:1",
		ToAyah:      "1:7",
		FromAyahInt: 1001,
		ToAyahInt:   1007,
		AyahKeys:    []string{"1:1", "1:2", "1:3", "1:4", "1:5", "1:6", "1:7"},
		Surah:       1,
		Tafsir:      "ibn-kathir",
	}
}

func TestWriteSection_Pair(t *testing.T) {
	root := t.TempDir()
	writer := NewWriter(root)
	section := testSection()

	if err := writer.WriteSection(section, "Commentary text"); err != nil {
		t.Fatalf("WriteSection: unexpected error: %v", err)
	}

	dir := filepath.Join(root, "ibn-kathir", "sections", "surah-001")
	content, err := os.ReadFile(filepath.Join(dir, "section-1-1.txt"))
	if err != nil {
		t.Fatalf("content file not written: %v", err)
	}
	if string(content) != "Commentary text\n" {
		t.Errorf("content = %q, want %q", string(content), "Commentary text\n")
	}

	if _, err := os.Stat(filepath.Join(dir, "section-1-1.metadata.json")); err != nil {
		t.Fatalf("metadata file not written: %v", err)
	}
}

func TestWriteSection_MetadataRoundTrip(t *testing.T) {
	root := t.TempDir()
	writer := NewWriter(root)
	section := testSection()

	if err := writer.WriteSection(section, "text"); err != nil {
		t.Fatalf("WriteSection: %v", err)
	}

	metaPath := filepath.Join(root, "ibn-kathir", "sections", "surah-001", "section-1-1.metadata.json")
	meta, err := ReadMetadata(metaPath)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}

	if meta.AyahKey != "1:1" || meta.GroupAyahKey != "1:1" {
		t.Errorf("keys = %q/%q, want 1:1/1:1", meta.AyahKey, meta.GroupAyahKey)
	}
	if meta.FromAyah != "1:1" || meta.ToAyah != "1:7" {
		t.Errorf("range = %q..%q, want 1:1..1:7", meta.FromAyah, meta.ToAyah)
	}
	if meta.FromAyahInt != 1001 || meta.ToAyahInt != 1007 {
		t.Errorf("range ints = %d..%d, want 1001..1007", meta.FromAyahInt, meta.ToAyahInt)
	}
	if len(meta.AyahKeys) != 7 {
		t.Errorf("ayah keys = %d, want 7", len(meta.AyahKeys))
	}
	if meta.Tafsir != "ibn-kathir" {
		t.Errorf("tafsir = %q, want ibn-kathir", meta.Tafsir)
	}
	if meta.Surah != 1 {
		t.Errorf("surah = %d, want 1", meta.Surah)
	}
}

func TestWriteSection_Idempotent(t *testing.T) {
	root := t.TempDir()
	writer := NewWriter(root)
	section := testSection()

	if err := writer.WriteSection(section, "text"); err != nil {
		t.Fatalf("first write: %v", err)
	}
	dir := filepath.Join(root, "ibn-kathir", "sections", "surah-001")
	first, err := os.ReadFile(filepath.Join(dir, "section-1-1.metadata.json"))
	if err != nil {
		t.Fatalf("read first metadata: %v", err)
	}

	if err := writer.WriteSection(section, "text"); err != nil {
		t.Fatalf("second write: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir, "section-1-1.metadata.json"))
	if err != nil {
		t.Fatalf("read second metadata: %v", err)
	}

	if string(first) != string(second) {
		t.Error("metadata not byte-identical across runs")
	}
}

func TestWriteSection_PreservesTrailingNewline(t *testing.T) {
	root := t.TempDir()
	writer := NewWriter(root)
	section := testSection()

	if err := writer.WriteSection(section, "already terminated\n"); err != nil {
		t.Fatalf("WriteSection: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(root, "ibn-kathir", "sections", "surah-001", "section-1-1.txt"))
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if string(content) != "already terminated\n" {
		t.Errorf("content = %q, want single trailing newline", string(content))
	}
}
