package similarity

import (
	"context"
	"errors"
	"math"
	"time"
)

// DefaultTimeout bounds a single scoring request.
const DefaultTimeout = 10 * time.Second

// ErrScoreUnavailable wraps every failure to obtain a score from the model.
var ErrScoreUnavailable = errors.New("similarity score unavailable")

// Scorer measures how close a candidate answer is to a reference answer.
// Implementations issue at most one upstream request per call and return a
// score in [0,1] or an error wrapping ErrScoreUnavailable.
type Scorer interface {
	Score(ctx context.Context, candidate, reference string) (float64, error)
}

func clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

func normalizeTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 || timeout > DefaultTimeout {
		return DefaultTimeout
	}
	return timeout
}
