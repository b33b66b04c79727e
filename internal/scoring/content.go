package scoring

import (
	"github.com/artifig/tehnopal/internal/models"
)

// BuildContent assembles the final response-content document from the
// reference data and the user's answer map. Scores are computed here with
// the same averaging and rounding the results page uses, then frozen into
// the blob.
func BuildContent(goal, companyTypeID string, categories []models.Category, questions []models.Question, answers []models.Answer, chosen map[string]string) models.ResponseContent {
	answersByID := make(map[string]models.Answer, len(answers))
	for _, a := range answers {
		answersByID[a.ID] = a
	}

	contentCategories := make([]models.ContentCategory, 0, len(categories))
	scores := make([]int, 0, len(categories))
	for _, cat := range categories {
		var categoryQuestions []models.Question
		for _, q := range questions {
			for _, catID := range q.Categories {
				if catID == cat.ID {
					categoryQuestions = append(categoryQuestions, q)
					break
				}
			}
		}

		score, _ := CategoryAverage(categoryQuestions, chosen, answersByID)
		scores = append(scores, score)

		contentQuestions := make([]models.ContentQuestion, 0, len(categoryQuestions))
		for _, q := range categoryQuestions {
			answerID, ok := chosen[q.ID]
			if !ok {
				continue
			}
			answer, ok := answersByID[answerID]
			if !ok {
				continue
			}
			contentQuestions = append(contentQuestions, models.ContentQuestion{
				QuestionID: q.ID,
				Answer: models.ContentAnswer{
					AnswerID:    answer.ID,
					AnswerScore: answer.Score,
				},
			})
		}

		contentCategories = append(contentCategories, models.ContentCategory{
			CategoryID: cat.ID,
			Score:      score,
			Questions:  contentQuestions,
		})
	}

	return models.ResponseContent{
		Metadata: models.ContentMetadata{
			CompanyType:  companyTypeID,
			Goal:         goal,
			OverallScore: OverallAverage(scores),
		},
		Categories: contentCategories,
	}
}
