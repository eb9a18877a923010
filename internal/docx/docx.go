package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Table is one tabular structure from a document, row-major
type Table struct {
	Rows [][]string
}

// Document holds the readable content of a .docx file: paragraph text in
// order, and every table with its cell text in row/column order.
type Document struct {
	Paragraphs []string
	Tables     []Table
}

// Open reads a .docx file from disk
func Open(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	return parseArchive(&r.Reader)
}

// Parse reads a .docx from an in-memory reader
func Parse(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return parseArchive(zr)
}

// parseArchive walks word/document.xml as a token stream. WordprocessingML
// nests paragraphs inside table cells, so the cell depth decides whether a
// closed paragraph lands in a cell or in Document.Paragraphs.
func parseArchive(zr *zip.Reader) (*Document, error) {
	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	doc := &Document{}

	var (
		tableDepth  int
		curTable    *Table
		curRow      []string
		curCell     strings.Builder
		curText     strings.Builder
		inParagraph bool
		inText      bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					curTable = &Table{}
				}
			case "tr":
				if tableDepth == 1 {
					curRow = nil
				}
			case "tc":
				if tableDepth == 1 {
					curCell.Reset()
				}
			case "p":
				inParagraph = true
				curText.Reset()
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					curText.WriteString("\t")
				}
			case "br":
				if inParagraph {
					curText.WriteString("\n")
				}
			}

		case xml.CharData:
			if inText {
				curText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if !inParagraph {
					continue
				}
				inParagraph = false
				text := strings.TrimSpace(curText.String())
				if tableDepth > 0 {
					if curCell.Len() > 0 {
						curCell.WriteString("\n")
					}
					curCell.WriteString(text)
				} else if text != "" {
					doc.Paragraphs = append(doc.Paragraphs, text)
				}
			case "tc":
				if tableDepth == 1 {
					curRow = append(curRow, strings.TrimSpace(curCell.String()))
				}
			case "tr":
				if tableDepth == 1 && curRow != nil {
					curTable.Rows = append(curTable.Rows, curRow)
					curRow = nil
				}
			case "tbl":
				if tableDepth == 1 && curTable != nil {
					doc.Tables = append(doc.Tables, *curTable)
					curTable = nil
				}
				if tableDepth > 0 {
					tableDepth--
				}
			}
		}
	}

	return doc, nil
}
