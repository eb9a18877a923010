package fiqh

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/yfarhan/ilmconvert/internal/extract"
	"github.com/yfarhan/ilmconvert/internal/llm"
	"github.com/yfarhan/ilmconvert/internal/model"
)

// writeDocx writes a minimal DOCX file containing one two-row table whose
// first cell holds marker, so a test provider can tell documents apart.
func writeDocx(t *testing.T, path, marker string) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	body := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>question</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>ما حكم كذا</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`, marker)
	if _, err := f.Write([]byte(body)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// failOnProvider returns valid issues unless the prompt contains failOn
type failOnProvider struct {
	failOn string
}

func (p *failOnProvider) Name() string                         { return "test" }
func (p *failOnProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *failOnProvider) Extract(ctx context.Context, req llm.ExtractRequest) (*llm.ExtractResponse, error) {
	if p.failOn != "" && strings.Contains(req.Prompt, p.failOn) {
		return &llm.ExtractResponse{Text: "not json at all"}, nil
	}
	return &llm.ExtractResponse{Text: `{
		"issues": [
			{
				"issue_number": 1,
				"question": "حكم المسألة",
				"opinions": [{"position": "جائز", "scholars": ["الجمهور"]}]
			}
		]
	}`}, nil
}

func newTestConverter(provider llm.Provider) *Converter {
	extractor := extract.NewIssueExtractor(provider, "")
	return NewConverter(extractor, zap.NewNop())
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.docx")
	writeDocx(t, path, "issue")

	c := newTestConverter(&failOnProvider{})
	issues, err := c.ConvertFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if issues[0].Question != "حكم المسألة" {
		t.Errorf("question = %q", issues[0].Question)
	}
}

func TestConvertFile_NoTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")

	// A document with paragraphs but no tables
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>prose only</w:t></w:r></w:p></w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestConverter(&failOnProvider{})
	_, err = c.ConvertFile(context.Background(), path)
	var contentErr *model.ContentError
	if !errors.As(err, &contentErr) {
		t.Fatalf("expected ContentError, got %T: %v", err, err)
	}
}

func TestConvertDirectory_FailureIsolation(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")

	writeDocx(t, filepath.Join(inputDir, "a.docx"), "doc-a")
	writeDocx(t, filepath.Join(inputDir, "b.docx"), "doc-b")
	writeDocx(t, filepath.Join(inputDir, "c.docx"), "doc-c")

	// b fails extraction; a and c must still be written
	c := newTestConverter(&failOnProvider{failOn: "doc-b"})
	summary, err := c.ConvertDirectory(context.Background(), inputDir, outputDir)
	if err != nil {
		t.Fatalf("ConvertDirectory: %v", err)
	}
	if summary.Converted != 2 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want {Converted:2 Failed:1}", summary)
	}

	for _, name := range []string{"a.json", "c.json"} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outputDir, "b.json")); !os.IsNotExist(err) {
		t.Error("failed document must not produce an output file")
	}
}

func TestConvertDirectory_IgnoresNonDocx(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	writeDocx(t, filepath.Join(inputDir, "card.docx"), "card")
	writeDocx(t, filepath.Join(inputDir, "~$card.docx"), "lock")
	if err := os.WriteFile(filepath.Join(inputDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestConverter(&failOnProvider{})
	summary, err := c.ConvertDirectory(context.Background(), inputDir, outputDir)
	if err != nil {
		t.Fatalf("ConvertDirectory: %v", err)
	}
	if summary.Converted != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want {Converted:1 Failed:0}", summary)
	}
}

func TestWriteIssues_ArabicUnescaped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.json")
	issues := []model.Issue{
		{
			IssueNumber: 1,
			Question:    "هل يجوز <كذا>؟",
			Opinions:    []model.Opinion{{Position: "نعم"}},
		},
	}

	if err := WriteIssues(path, issues); err != nil {
		t.Fatalf("WriteIssues: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "هل يجوز <كذا>؟") {
		t.Errorf("Arabic text was escaped: %s", data)
	}

	var decoded []model.Issue
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Question != issues[0].Question {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}
