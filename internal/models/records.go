package models

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is wrapped by every decoding failure at the record
// store boundary. Malformed reference data is rejected here instead of
// letting zero values leak into scoring.
var ErrMalformedRecord = errors.New("malformed record")

// Fields is the raw field map of one record as returned by the store.
type Fields map[string]interface{}

// CompanyType classifies the assessed organisation and selects which
// question set applies.
type CompanyType struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	IsActive   bool     `json:"isActive"`
	Categories []string `json:"categories,omitempty"`
}

// Category is a thematic grouping of questions with its own aggregate score.
type Category struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Description  string   `json:"description"`
	IsActive     bool     `json:"isActive"`
	CompanyTypes []string `json:"companyTypes,omitempty"`
	Questions    []string `json:"questions,omitempty"`
}

// Question belongs to one or more categories and links to its valid answers.
// Key is the human-readable identifier (Q1, Q2, ...) used when a caller
// asks for numeric ordering.
type Question struct {
	ID         string   `json:"id"`
	Key        string   `json:"key,omitempty"`
	Text       string   `json:"text"`
	IsActive   bool     `json:"isActive"`
	Categories []string `json:"categories"`
	Answers    []string `json:"answers,omitempty"`
}

// Answer carries the numeric score that drives all aggregation.
type Answer struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Description string   `json:"description,omitempty"`
	Score       int      `json:"score"`
	IsActive    bool     `json:"isActive"`
	Questions   []string `json:"questions"`
}

// Recommendation is advice looked up per (category, maturity level,
// company type) and shown on the results page.
type Recommendation struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// ExampleSolution is a concrete worked example, looked up like a
// recommendation.
type ExampleSolution struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Provider is an external service vendor linked to a recommendation or
// example solution.
type Provider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// StringField returns a required string field or a malformed-record error.
func (f Fields) StringField(name string) (string, error) {
	v, ok := f[name]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing field %q", ErrMalformedRecord, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is not a string", ErrMalformedRecord, name)
	}
	return s, nil
}

// OptionalString returns a string field, or "" when it is absent.
func (f Fields) OptionalString(name string) string {
	s, _ := f[name].(string)
	return s
}

// Bool decodes the store's checkbox representation: absent means unchecked,
// present values arrive as bool or as the number 1.
func (f Fields) Bool(name string) bool {
	switch v := f[name].(type) {
	case bool:
		return v
	case float64:
		return v == 1
	default:
		return false
	}
}

// NumberField returns a required numeric field rounded to int.
func (f Fields) NumberField(name string) (int, error) {
	v, ok := f[name]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: missing field %q", ErrMalformedRecord, name)
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: field %q is not a number", ErrMalformedRecord, name)
	}
	return int(n + 0.5), nil
}

// Links decodes a linked-table field. The store exposes linked record ids
// as an array of strings; an absent field is an empty link set.
func (f Fields) Links(name string) []string {
	switch v := f[name].(type) {
	case []string:
		return v
	case []interface{}:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				ids = append(ids, s)
			}
		}
		return ids
	default:
		return nil
	}
}

// CompanyTypeFromFields validates and decodes one MethodCompanyTypes record.
func CompanyTypeFromFields(id string, f Fields) (CompanyType, error) {
	text, err := f.StringField("companyTypeText_et")
	if err != nil {
		return CompanyType{}, err
	}
	return CompanyType{
		ID:         id,
		Text:       text,
		IsActive:   f.Bool("isActive"),
		Categories: f.Links("MethodCategories"),
	}, nil
}

// CategoryFromFields validates and decodes one MethodCategories record.
func CategoryFromFields(id string, f Fields) (Category, error) {
	text, err := f.StringField("categoryText_et")
	if err != nil {
		return Category{}, err
	}
	return Category{
		ID:           id,
		Text:         text,
		Description:  f.OptionalString("categoryDescription_et"),
		IsActive:     f.Bool("isActive"),
		CompanyTypes: f.Links("MethodCompanyTypes"),
		Questions:    f.Links("MethodQuestions"),
	}, nil
}

// QuestionFromFields validates and decodes one MethodQuestions record.
func QuestionFromFields(id string, f Fields) (Question, error) {
	text, err := f.StringField("questionText_et")
	if err != nil {
		return Question{}, err
	}
	return Question{
		ID:         id,
		Key:        f.OptionalString("questionId"),
		Text:       text,
		IsActive:   f.Bool("isActive"),
		Categories: f.Links("MethodCategories"),
		Answers:    f.Links("MethodAnswers"),
	}, nil
}

// AnswerFromFields validates and decodes one MethodAnswers record. A
// non-numeric score is a hard error: every answer must be scorable.
func AnswerFromFields(id string, f Fields) (Answer, error) {
	text, err := f.StringField("answerText_et")
	if err != nil {
		return Answer{}, err
	}
	score, err := f.NumberField("answerScore")
	if err != nil {
		return Answer{}, err
	}
	return Answer{
		ID:          id,
		Text:        text,
		Description: f.OptionalString("answerDescription_et"),
		Score:       score,
		IsActive:    f.Bool("isActive"),
		Questions:   f.Links("MethodQuestions"),
	}, nil
}

// RecommendationFromFields validates and decodes one MethodRecommendations
// record.
func RecommendationFromFields(id string, f Fields) (Recommendation, error) {
	text, err := f.StringField("recommendationText_et")
	if err != nil {
		return Recommendation{}, err
	}
	return Recommendation{
		ID:          id,
		Text:        text,
		Description: f.OptionalString("recommendationDescription_et"),
		IsActive:    f.Bool("isActive"),
	}, nil
}

// ExampleSolutionFromFields validates and decodes one MethodExampleSolutions
// record.
func ExampleSolutionFromFields(id string, f Fields) (ExampleSolution, error) {
	text, err := f.StringField("exampleSolutionText_et")
	if err != nil {
		return ExampleSolution{}, err
	}
	return ExampleSolution{
		ID:          id,
		Text:        text,
		Description: f.OptionalString("exampleSolutionDescription_et"),
		IsActive:    f.Bool("isActive"),
	}, nil
}

// ProviderFromFields validates and decodes one SolutionProviders record.
func ProviderFromFields(id string, f Fields) (Provider, error) {
	name, err := f.StringField("providerName_et")
	if err != nil {
		return Provider{}, err
	}
	return Provider{
		ID:          id,
		Name:        name,
		Description: f.OptionalString("providerDescription_et"),
		URL:         f.OptionalString("providerUrl"),
		IsActive:    f.Bool("isActive"),
	}, nil
}
