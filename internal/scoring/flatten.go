package scoring

import (
	"github.com/artifig/tehnopal/internal/models"
	"github.com/artifig/tehnopal/internal/store"
)

// FlowQuestion is one entry in the flattened assessment: the question, the
// category it is presented under, and its valid answers.
type FlowQuestion struct {
	CategoryID string          `json:"categoryId"`
	Question   models.Question `json:"question"`
	Answers    []models.Answer `json:"answers"`
}

// Flatten turns the category structure into the ordered question list the
// flow walks. A question shared by several categories appears exactly once,
// under the first category that contains it; the final list is sorted by
// the questions' numeric keys so the order is stable across sessions.
func Flatten(categories []models.Category, questions []models.Question, answers []models.Answer) []FlowQuestion {
	questionsByID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		questionsByID[q.ID] = q
	}
	answersByQuestion := make(map[string][]models.Answer)
	for _, a := range answers {
		for _, qID := range a.Questions {
			answersByQuestion[qID] = append(answersByQuestion[qID], a)
		}
	}

	seen := make(map[string]bool)
	var ordered []models.Question
	categoryOf := make(map[string]string)
	for _, cat := range categories {
		for _, qID := range cat.Questions {
			if seen[qID] {
				continue
			}
			q, ok := questionsByID[qID]
			if !ok {
				// Linked but inactive or rejected at the store boundary.
				continue
			}
			seen[qID] = true
			categoryOf[qID] = cat.ID
			ordered = append(ordered, q)
		}
	}

	store.SortQuestionsByKey(ordered)

	flow := make([]FlowQuestion, 0, len(ordered))
	for _, q := range ordered {
		flow = append(flow, FlowQuestion{
			CategoryID: categoryOf[q.ID],
			Question:   q,
			Answers:    answersByQuestion[q.ID],
		})
	}
	return flow
}
