package model

// Issue represents one jurisprudential question extracted from a fiqh card
// table, with the positions attributed to the scholars who held them.
// Field tags drive both JSON serialization and schema validation of LLM
// output (go-playground/validator).
type Issue struct {
	IssueNumber        int               `json:"issue_number" validate:"required,gt=0"`
	Question           string            `json:"question" validate:"required"`
	Context            string            `json:"context,omitempty"`
	Opinions           []Opinion         `json:"opinions" validate:"required,min=1,dive"`
	DisagreementReason string            `json:"disagreement_reason,omitempty"`
	Evidence           map[string]string `json:"evidence,omitempty"`
	PreferredOpinion   string            `json:"preferred_opinion,omitempty"`
	PracticalImpact    string            `json:"practical_impact,omitempty"`
	References         []string          `json:"references,omitempty"`
}

// Opinion is one position on an issue and the scholars attributed to it
type Opinion struct {
	Position string   `json:"position" validate:"required"`
	Scholars []string `json:"scholars"`
}

// IssueSet is the root object the extraction call must return
type IssueSet struct {
	Issues []Issue `json:"issues" validate:"required,dive"`
}
