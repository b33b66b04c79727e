package scoring

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/artifig/tehnopal/internal/models"
)

// reportStore is the slice of the data access layer the report builder
// needs. Tests substitute a fake.
type reportStore interface {
	CategoriesForCompanyType(ctx context.Context, companyTypeID string) ([]models.Category, error)
	QuestionsForCategories(ctx context.Context, categories []models.Category) ([]models.Question, error)
	AnswersForQuestions(ctx context.Context, questions []models.Question) ([]models.Answer, error)
	RecommendationsForCategory(ctx context.Context, categoryID, level, companyTypeID string) ([]models.Recommendation, error)
	SolutionsForCategory(ctx context.Context, categoryID, level, companyTypeID string) ([]models.ExampleSolution, error)
	ProvidersForRecommendation(ctx context.Context, recommendationID string) ([]models.Provider, error)
	ProvidersForSolution(ctx context.Context, solutionID string) ([]models.Provider, error)
}

// RecommendationResult is a recommendation enriched with its providers.
type RecommendationResult struct {
	models.Recommendation
	Providers []models.Provider `json:"providers"`
}

// SolutionResult is an example solution enriched with its providers.
type SolutionResult struct {
	models.ExampleSolution
	Providers []models.Provider `json:"providers"`
}

// CategoryResult is one category's scored slice of the report.
type CategoryResult struct {
	models.Category
	Score           int                    `json:"score"`
	QuestionCount   int                    `json:"questionCount"`
	AnsweredCount   int                    `json:"answeredCount"`
	MaturityLevel   string                 `json:"maturityLevel"`
	MaturityColor   Bucket                 `json:"maturityColor"`
	Recommendations []RecommendationResult `json:"recommendations"`
	Solutions       []SolutionResult       `json:"solutions"`
}

// Report is the full results payload for one completed (or in-progress)
// assessment.
type Report struct {
	AssessmentID  string           `json:"assessmentId"`
	Goal          string           `json:"goal"`
	CompanyTypeID string           `json:"companyTypeId"`
	OverallScore  int              `json:"overallScore"`
	OverallBucket Bucket           `json:"overallBucket"`
	Categories    []CategoryResult `json:"categories"`
}

// Builder assembles results reports from the record store.
type Builder struct {
	store reportStore
	log   *zap.Logger
}

// NewBuilder creates a report builder.
func NewBuilder(store reportStore, log *zap.Logger) *Builder {
	return &Builder{store: store, log: log}
}

// Build computes the scored report for one assessment response. Categories
// are processed concurrently; within a category the provider lookups fan
// out and a failed lookup degrades that one item to an empty provider list
// instead of failing the report.
func (b *Builder) Build(ctx context.Context, response *models.AssessmentResponse) (*Report, error) {
	content, err := models.ParseContent(response.Content)
	if err != nil {
		return nil, err
	}
	companyTypeID := content.Metadata.CompanyType
	chosen := content.AnswerMap()

	categories, err := b.store.CategoriesForCompanyType(ctx, companyTypeID)
	if err != nil {
		return nil, err
	}
	questions, err := b.store.QuestionsForCategories(ctx, categories)
	if err != nil {
		return nil, err
	}
	answers, err := b.store.AnswersForQuestions(ctx, questions)
	if err != nil {
		return nil, err
	}

	answersByID := make(map[string]models.Answer, len(answers))
	for _, a := range answers {
		answersByID[a.ID] = a
	}

	results := make([]CategoryResult, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		i, category := i, category
		g.Go(func() error {
			results[i] = b.buildCategory(gctx, category, companyTypeID, questions, chosen, answersByID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := make([]int, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	overall := OverallAverage(scores)

	return &Report{
		AssessmentID:  response.ID,
		Goal:          response.InitialGoal,
		CompanyTypeID: companyTypeID,
		OverallScore:  overall,
		OverallBucket: BucketFor(overall),
		Categories:    results,
	}, nil
}

func (b *Builder) buildCategory(ctx context.Context, category models.Category, companyTypeID string, questions []models.Question, chosen map[string]string, answersByID map[string]models.Answer) CategoryResult {
	var categoryQuestions []models.Question
	for _, q := range questions {
		for _, catID := range q.Categories {
			if catID == category.ID {
				categoryQuestions = append(categoryQuestions, q)
				break
			}
		}
	}

	score, answered := CategoryAverage(categoryQuestions, chosen, answersByID)
	bucket := BucketFor(score)

	result := CategoryResult{
		Category:        category,
		Score:           score,
		QuestionCount:   len(categoryQuestions),
		AnsweredCount:   answered,
		MaturityLevel:   bucket.Label(),
		MaturityColor:   bucket,
		Recommendations: []RecommendationResult{},
		Solutions:       []SolutionResult{},
	}

	var (
		recommendations []models.Recommendation
		solutions       []models.ExampleSolution
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recommendations, err = b.store.RecommendationsForCategory(gctx, category.ID, string(bucket), companyTypeID)
		return err
	})
	g.Go(func() error {
		var err error
		solutions, err = b.store.SolutionsForCategory(gctx, category.ID, string(bucket), companyTypeID)
		return err
	})
	if err := g.Wait(); err != nil {
		// Degrade the category to its score alone rather than failing
		// the whole report.
		b.log.Error("Failed to load recommendations for category",
			zap.String("categoryId", category.ID),
			zap.Error(err),
		)
		return result
	}

	result.Recommendations = b.enrichRecommendations(ctx, recommendations)
	result.Solutions = b.enrichSolutions(ctx, solutions)
	return result
}

func (b *Builder) enrichRecommendations(ctx context.Context, recommendations []models.Recommendation) []RecommendationResult {
	results := make([]RecommendationResult, len(recommendations))
	var g errgroup.Group
	for i, rec := range recommendations {
		i, rec := i, rec
		g.Go(func() error {
			providers, err := b.store.ProvidersForRecommendation(ctx, rec.ID)
			if err != nil {
				b.log.Warn("Provider lookup failed for recommendation",
					zap.String("recommendationId", rec.ID),
					zap.Error(err),
				)
				providers = nil
			}
			if providers == nil {
				providers = []models.Provider{}
			}
			results[i] = RecommendationResult{Recommendation: rec, Providers: providers}
			return nil
		})
	}
	g.Wait()
	return results
}

func (b *Builder) enrichSolutions(ctx context.Context, solutions []models.ExampleSolution) []SolutionResult {
	results := make([]SolutionResult, len(solutions))
	var g errgroup.Group
	for i, sol := range solutions {
		i, sol := i, sol
		g.Go(func() error {
			providers, err := b.store.ProvidersForSolution(ctx, sol.ID)
			if err != nil {
				b.log.Warn("Provider lookup failed for solution",
					zap.String("solutionId", sol.ID),
					zap.Error(err),
				)
				providers = nil
			}
			if providers == nil {
				providers = []models.Provider{}
			}
			results[i] = SolutionResult{ExampleSolution: sol, Providers: providers}
			return nil
		})
	}
	g.Wait()
	return results
}
