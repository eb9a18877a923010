package model

import "fmt"

// Error taxonomy:
//
// ConfigError is fatal and aborts a run before any processing starts
// (missing API key, missing database). Everything else is caught at the
// item boundary: the offending table, section, or document is logged and
// skipped and the run continues.

// ConfigError indicates missing or invalid configuration (credentials,
// database path). Fatal at command startup.
type ConfigError struct {
	Setting string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

// ContentError indicates a malformed input item (bad table, malformed
// range key, absent text). Non-fatal; the item is skipped.
type ContentError struct {
	Item   string
	Reason string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content error: %s: %s", e.Item, e.Reason)
}

// ExtractionError indicates a malformed or schema-invalid response from
// the generative service. Non-fatal; that document's output is skipped.
type ExtractionError struct {
	Document string
	Reason   string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction error: %s: %s: %v", e.Document, e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction error: %s: %s", e.Document, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// WriteError indicates a failed write of a section output pair.
// Non-fatal; the section is counted as failed.
type WriteError struct {
	Section string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write error: section %s: %v", e.Section, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
