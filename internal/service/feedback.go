package service

import "math"

// FeedbackTier names the band a percentage grade falls into.
type FeedbackTier string

const (
	TierExcellent FeedbackTier = "excellent"
	TierGood      FeedbackTier = "good"
	TierPartial   FeedbackTier = "partial"
	TierRemedial  FeedbackTier = "remedial"
)

// Tier lower bounds, inclusive.
const (
	excellentThreshold = 90
	goodThreshold      = 70
	partialThreshold   = 50
)

// GradeResult is a percentage grade with its feedback message.
type GradeResult struct {
	Percentage int
	Tier       FeedbackTier
	Feedback   string
}

// GradeFromSimilarity maps a similarity score to a percentage and feedback.
// Every tier below excellent quotes the reference answer verbatim.
func GradeFromSimilarity(similarity float64, reference string) GradeResult {
	percentage := PercentageFromSimilarity(similarity)

	switch {
	case percentage >= excellentThreshold:
		return GradeResult{
			Percentage: percentage,
			Tier:       TierExcellent,
			Feedback:   "Excellent work! Your answer is very close to the expected answer.",
		}
	case percentage >= goodThreshold:
		return GradeResult{
			Percentage: percentage,
			Tier:       TierGood,
			Feedback:   "Good work, but your answer differs from the expected one in places. Expected answer: " + reference,
		}
	case percentage >= partialThreshold:
		return GradeResult{
			Percentage: percentage,
			Tier:       TierPartial,
			Feedback:   "Your answer has some correct points but lacks precision. Correct answer: " + reference,
		}
	default:
		return GradeResult{
			Percentage: percentage,
			Tier:       TierRemedial,
			Feedback:   "Your answer is far from the expected answer. Please review the material. Correct answer: " + reference,
		}
	}
}

// PercentageFromSimilarity rounds similarity*100 half-up and clamps it to [0,100].
func PercentageFromSimilarity(similarity float64) int {
	if math.IsNaN(similarity) {
		return 0
	}
	percentage := math.Floor(similarity*100 + 0.5)
	switch {
	case percentage < 0:
		return 0
	case percentage > 100:
		return 100
	default:
		return int(percentage)
	}
}
