package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/airtable"
	"github.com/artifig/tehnopal/internal/models"
)

// ActiveCompanyTypes returns every active company type.
func (s *Store) ActiveCompanyTypes(ctx context.Context) ([]models.CompanyType, error) {
	records, err := s.api.Select(ctx, airtable.TableCompanyTypes, airtable.ActiveFormula(),
		"companyTypeText_et", "isActive", "MethodCategories")
	if err != nil {
		return nil, err
	}

	types := make([]models.CompanyType, 0, len(records))
	for _, r := range records {
		ct, err := models.CompanyTypeFromFields(r.ID, r.Fields)
		if err != nil {
			s.log.Warn("Rejecting malformed company type record", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		types = append(types, ct)
	}
	return types, nil
}

// CompanyTypeByText resolves a company type by its display name
// (e.g. "Startup"), as stored in the record's text field.
func (s *Store) CompanyTypeByText(ctx context.Context, text string) (*models.CompanyType, error) {
	formula := fmt.Sprintf("AND({isActive} = 1, {companyTypeText_et} = '%s')", strings.ReplaceAll(text, "'", "\\'"))
	records, err := s.api.Select(ctx, airtable.TableCompanyTypes, formula,
		"companyTypeText_et", "isActive", "MethodCategories")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("company type %q not found", text)
	}
	ct, err := models.CompanyTypeFromFields(records[0].ID, records[0].Fields)
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// CategoriesForCompanyType returns the active categories linked to the
// company type, following its link array.
func (s *Store) CategoriesForCompanyType(ctx context.Context, companyTypeID string) ([]models.Category, error) {
	companyType, err := s.api.Find(ctx, airtable.TableCompanyTypes, companyTypeID)
	if err != nil {
		return nil, err
	}
	categoryIDs := companyType.Fields.Links("MethodCategories")
	if len(categoryIDs) == 0 {
		s.log.Debug("Company type has no linked categories", zap.String("companyTypeID", companyTypeID))
		return nil, nil
	}

	records, err := s.api.SelectActiveByIDs(ctx, airtable.TableCategories, categoryIDs,
		"categoryText_et", "categoryDescription_et", "isActive", "MethodQuestions")
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(records))
	for _, r := range records {
		cat, err := models.CategoryFromFields(r.ID, r.Fields)
		if err != nil {
			s.log.Warn("Rejecting malformed category record", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

// QuestionsForCategories returns the active questions linked from the given
// categories, deduplicated across categories that share questions.
func (s *Store) QuestionsForCategories(ctx context.Context, categories []models.Category) ([]models.Question, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, cat := range categories {
		for _, id := range cat.Questions {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	records, err := s.api.SelectActiveByIDs(ctx, airtable.TableQuestions, ids,
		"questionId", "questionText_et", "isActive", "MethodCategories", "MethodAnswers")
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(records))
	for _, r := range records {
		q, err := models.QuestionFromFields(r.ID, r.Fields)
		if err != nil {
			s.log.Warn("Rejecting malformed question record", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// AnswersForQuestions returns the active answers linked from the given
// questions.
func (s *Store) AnswersForQuestions(ctx context.Context, questions []models.Question) ([]models.Answer, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, q := range questions {
		for _, id := range q.Answers {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	records, err := s.api.SelectActiveByIDs(ctx, airtable.TableAnswers, ids,
		"answerText_et", "answerDescription_et", "answerScore", "isActive", "MethodQuestions")
	if err != nil {
		return nil, err
	}

	answers := make([]models.Answer, 0, len(records))
	for _, r := range records {
		a, err := models.AnswerFromFields(r.ID, r.Fields)
		if err != nil {
			s.log.Warn("Rejecting malformed answer record", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		answers = append(answers, a)
	}
	return answers, nil
}

// RecommendationsForCategory returns active recommendations for the
// (category, maturity level, company type) tuple.
func (s *Store) RecommendationsForCategory(ctx context.Context, categoryID, level, companyTypeID string) ([]models.Recommendation, error) {
	records, err := s.api.Select(ctx, airtable.TableRecommendations, tupleFormula(categoryID, level, companyTypeID),
		"recommendationText_et", "recommendationDescription_et", "isActive")
	if err != nil {
		return nil, err
	}

	recs := make([]models.Recommendation, 0, len(records))
	for _, r := range records {
		rec, err := models.RecommendationFromFields(r.ID, r.Fields)
		if err != nil {
			s.log.Warn("Rejecting malformed recommendation record", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// SolutionsForCategory returns active example solutions for the
// (category, maturity level, company type) tuple.
func (s *Store) SolutionsForCategory(ctx context.Context, categoryID, level, companyTypeID string) ([]models.ExampleSolution, error) {
	records, err := s.api.Select(ctx, airtable.TableSolutions, tupleFormula(categoryID, level, companyTypeID),
		"exampleSolutionText_et", "exampleSolutionDescription_et", "isActive")
	if err != nil {
		return nil, err
	}

	sols := make([]models.ExampleSolution, 0, len(records))
	for _, r := range records {
		sol, err := models.ExampleSolutionFromFields(r.ID, r.Fields)
		if err != nil {
			s.log.Warn("Rejecting malformed solution record", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		sols = append(sols, sol)
	}
	return sols, nil
}

// tupleFormula matches records linked to the category and company type and
// tagged with the maturity level. Linked ids are matched through
// ARRAYJOIN since formulas cannot index into link arrays.
func tupleFormula(categoryID, level, companyTypeID string) string {
	return fmt.Sprintf(
		"AND({isActive} = 1, FIND('%s', ARRAYJOIN({MethodCategories})), {maturityLevel} = '%s', FIND('%s', ARRAYJOIN({MethodCompanyTypes})))",
		categoryID, level, companyTypeID,
	)
}

// ProvidersForRecommendation returns the active providers linked to one
// recommendation.
func (s *Store) ProvidersForRecommendation(ctx context.Context, recommendationID string) ([]models.Provider, error) {
	return s.providers(ctx, "MethodRecommendations", recommendationID)
}

// ProvidersForSolution returns the active providers linked to one example
// solution.
func (s *Store) ProvidersForSolution(ctx context.Context, solutionID string) ([]models.Provider, error) {
	return s.providers(ctx, "MethodExampleSolutions", solutionID)
}

func (s *Store) providers(ctx context.Context, linkField, id string) ([]models.Provider, error) {
	formula := fmt.Sprintf("AND({isActive} = 1, FIND('%s', ARRAYJOIN({%s})))", id, linkField)
	records, err := s.api.Select(ctx, airtable.TableProviders, formula,
		"providerName_et", "providerDescription_et", "providerUrl", "isActive")
	if err != nil {
		return nil, err
	}

	providers := make([]models.Provider, 0, len(records))
	for _, r := range records {
		p, err := models.ProviderFromFields(r.ID, r.Fields)
		if err != nil {
			s.log.Warn("Rejecting malformed provider record", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// SortQuestionsByKey orders questions by the numeric suffix of their key
// (Q2 before Q10). Questions without a numeric key sort after the rest,
// by record id.
func SortQuestionsByKey(questions []models.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		a, aok := numericSuffix(questions[i].Key)
		b, bok := numericSuffix(questions[j].Key)
		switch {
		case aok && bok:
			return a < b
		case aok:
			return true
		case bok:
			return false
		default:
			return questions[i].ID < questions[j].ID
		}
	})
}

func numericSuffix(key string) (int, bool) {
	trimmed := strings.TrimLeftFunc(key, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if trimmed == "" {
		return 0, false
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return n, true
}
