package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yfarhan/ilmconvert/internal/llm"
	"github.com/yfarhan/ilmconvert/internal/model"
)

// issueSchema is the fixed output schema description sent with every
// extraction request. The response must be exactly one JSON object.
const issueSchema = `You convert Arabic fiqh (Islamic jurisprudence) comparison tables into structured JSON.

Respond with a single JSON object and nothing else, matching this schema exactly:

{
  "issues": [
    {
      "issue_number": 1,
      "question": "the jurisprudential question being addressed",
      "context": "background or framing for the question",
      "opinions": [
        {
          "position": "the stated position",
          "scholars": ["scholar or school holding it"]
        }
      ],
      "disagreement_reason": "why the scholars differ",
      "evidence": {"label": "the evidence text cited under that label"},
      "preferred_opinion": "the position the author prefers, if stated",
      "practical_impact": "practical consequence of the disagreement",
      "references": ["cited works"]
    }
  ]
}

Rules:
- issue_number is sequential starting at 1.
- Every issue must have at least one opinion.
- Keep the original Arabic text of questions, positions, and evidence.
- Omit optional fields that the table does not provide.`

// IssueExtractor turns normalized table text into validated Issue records
// via one blocking extraction call per document. No retries: a bad
// response fails that document and the caller decides what to skip.
type IssueExtractor struct {
	provider llm.Provider
	validate *validator.Validate
	model    string
}

// NewIssueExtractor creates an extractor bound to one provider
func NewIssueExtractor(provider llm.Provider, modelName string) *IssueExtractor {
	return &IssueExtractor{
		provider: provider,
		validate: validator.New(),
		model:    modelName,
	}
}

// Extract sends the normalized tables of one document and parses the
// response into a validated issue set. document names the source file for
// error reporting only.
func (e *IssueExtractor) Extract(ctx context.Context, document string, tables []string) ([]model.Issue, error) {
	prompt := BuildPrompt(tables)

	resp, err := e.provider.Extract(ctx, llm.ExtractRequest{
		System: issueSchema,
		Prompt: prompt,
		Model:  e.model,
	})
	if err != nil {
		return nil, &model.ExtractionError{Document: document, Reason: "request failed", Err: err}
	}

	issues, err := ParseResponse(resp.Text)
	if err != nil {
		return nil, &model.ExtractionError{Document: document, Reason: "invalid response", Err: err}
	}

	if err := e.validateIssues(issues); err != nil {
		return nil, &model.ExtractionError{Document: document, Reason: "schema validation failed", Err: err}
	}

	return issues, nil
}

// BuildPrompt joins the normalized tables of one document into the user
// prompt for the extraction call
func BuildPrompt(tables []string) string {
	var b strings.Builder
	b.WriteString("Extract every jurisprudential issue from the following fiqh card tables.\n")
	for i, table := range tables {
		fmt.Fprintf(&b, "\n## Table %d\n\n%s\n", i+1, table)
	}
	return b.String()
}

// ParseResponse parses the raw response text as the issue-set object
func ParseResponse(text string) ([]model.Issue, error) {
	var set model.IssueSet
	decoder := json.NewDecoder(strings.NewReader(text))
	if err := decoder.Decode(&set); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if set.Issues == nil {
		return nil, fmt.Errorf("response has no issues field")
	}
	return set.Issues, nil
}

func (e *IssueExtractor) validateIssues(issues []model.Issue) error {
	for i := range issues {
		if err := e.validate.Struct(&issues[i]); err != nil {
			return fmt.Errorf("issue %d: %w", i+1, err)
		}
	}
	return nil
}
