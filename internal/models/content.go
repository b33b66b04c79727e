package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ResponseContent is the durable serialization of an assessment, stored as
// a JSON blob on the response record. Both the flow writer and the results
// reader depend on this shape staying parseable across writes.
type ResponseContent struct {
	Metadata   ContentMetadata   `json:"metadata"`
	Categories []ContentCategory `json:"categories"`
	// Answers holds the raw questionId -> answerId map while the
	// assessment is still in progress; the final write replaces it with
	// the scored category structure.
	Answers map[string]string `json:"answers,omitempty"`
}

// ContentMetadata describes the assessment the answers belong to.
type ContentMetadata struct {
	SubmittedAt  time.Time `json:"submittedAt"`
	CompanyType  string    `json:"companyType"`
	Goal         string    `json:"goal"`
	OverallScore int       `json:"overallScore"`
}

// ContentCategory holds one category's score and the answers behind it.
type ContentCategory struct {
	CategoryID string            `json:"categoryId"`
	Score      int               `json:"score"`
	Questions  []ContentQuestion `json:"questions"`
}

// ContentQuestion pairs a question with the answer the user chose.
type ContentQuestion struct {
	QuestionID string        `json:"questionId"`
	Answer     ContentAnswer `json:"answer"`
}

// ContentAnswer records the chosen answer and its score at submission time,
// so the report survives later edits to the reference data.
type ContentAnswer struct {
	AnswerID    string `json:"answerId"`
	AnswerScore int    `json:"answerScore"`
}

// EmptyContent is the blob written when a response is created: no answers,
// the company type pinned from the start.
func EmptyContent(companyType, goal string) ResponseContent {
	return ResponseContent{
		Metadata:   ContentMetadata{CompanyType: companyType, Goal: goal},
		Categories: []ContentCategory{},
	}
}

// Marshal serializes the content for storage.
func (c ResponseContent) Marshal() (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal response content: %w", err)
	}
	return string(raw), nil
}

// ParseContent deserializes a stored content blob.
func ParseContent(raw string) (ResponseContent, error) {
	var c ResponseContent
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return ResponseContent{}, fmt.Errorf("parse response content: %w", err)
	}
	return c, nil
}

// AnswerMap flattens the content into the questionId -> answerId map the
// device-local cache holds while the assessment is in progress. Scored
// categories take precedence over the raw in-progress map.
func (c ResponseContent) AnswerMap() map[string]string {
	m := make(map[string]string, len(c.Answers))
	for q, a := range c.Answers {
		m[q] = a
	}
	for _, cat := range c.Categories {
		for _, q := range cat.Questions {
			m[q.QuestionID] = q.Answer.AnswerID
		}
	}
	return m
}

// AssessmentResponse is the one entity this application mutates. Reference
// data stays read-only in the record store.
type AssessmentResponse struct {
	ID           string         `json:"id"`
	ResponseID   string         `json:"responseId"`
	CompanyName  string         `json:"companyName,omitempty"`
	ContactName  string         `json:"contactName,omitempty"`
	ContactEmail string         `json:"contactEmail,omitempty"`
	InitialGoal  string         `json:"initialGoal"`
	Content      string         `json:"responseContent"`
	Status       ResponseStatus `json:"responseStatus"`
	IsActive     bool           `json:"isActive"`
	CompanyTypes []string       `json:"companyTypes"`
}

// ResponseFromFields validates and decodes one AssessmentResponses record.
func ResponseFromFields(id string, f Fields) (AssessmentResponse, error) {
	goal, err := f.StringField("initialGoal")
	if err != nil {
		return AssessmentResponse{}, err
	}
	status := ResponseStatus(f.OptionalString("responseStatus"))
	if !status.Valid() {
		return AssessmentResponse{}, fmt.Errorf("%w: unknown responseStatus %q", ErrMalformedRecord, status)
	}
	return AssessmentResponse{
		ID:           id,
		ResponseID:   f.OptionalString("responseId"),
		CompanyName:  f.OptionalString("companyName"),
		ContactName:  f.OptionalString("contactName"),
		ContactEmail: f.OptionalString("contactEmail"),
		InitialGoal:  goal,
		Content:      f.OptionalString("responseContent"),
		Status:       status,
		IsActive:     f.Bool("isActive"),
		CompanyTypes: f.Links("MethodCompanyTypes"),
	}, nil
}
