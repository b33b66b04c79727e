package scoring

import (
	"math"

	"github.com/artifig/tehnopal/internal/models"
)

// Bucket is the maturity classification derived from a score. The
// thresholds below are the only place they are defined; every caller goes
// through BucketFor.
type Bucket string

const (
	BucketRed    Bucket = "red"
	BucketYellow Bucket = "yellow"
	BucketGreen  Bucket = "green"
)

// BucketFor classifies a 0-100 score: below 40 red, below 70 yellow,
// otherwise green.
func BucketFor(score int) Bucket {
	switch {
	case score < 40:
		return BucketRed
	case score < 70:
		return BucketYellow
	default:
		return BucketGreen
	}
}

// Label is the Estonian maturity level name shown to the user.
func (b Bucket) Label() string {
	switch b {
	case BucketRed:
		return "Punane"
	case BucketYellow:
		return "Kollane"
	case BucketGreen:
		return "Roheline"
	default:
		return ""
	}
}

// CategoryAverage resolves each question's chosen answer to its score and
// averages them with integer rounding. Unanswered questions are skipped;
// a category with no answered questions scores 0.
func CategoryAverage(questions []models.Question, chosen map[string]string, answersByID map[string]models.Answer) (score, answered int) {
	sum := 0
	for _, q := range questions {
		answerID, ok := chosen[q.ID]
		if !ok {
			continue
		}
		answer, ok := answersByID[answerID]
		if !ok {
			continue
		}
		sum += answer.Score
		answered++
	}
	if answered == 0 {
		return 0, 0
	}
	return int(math.Round(float64(sum) / float64(answered))), answered
}

// OverallAverage is the unweighted mean of the category scores, rounded.
func OverallAverage(categoryScores []int) int {
	if len(categoryScores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range categoryScores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(categoryScores))))
}
