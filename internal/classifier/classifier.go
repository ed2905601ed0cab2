package classifier

import (
	"context"
	"errors"
	"fmt"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Result is an interpreted inference response. Scored is false when the
// response carried no recognizable label/score pair.
type Result struct {
	Sentiment Sentiment `json:"sentiment"`
	Label     string    `json:"label,omitempty"`
	Score     float64   `json:"score"`
	Scored    bool      `json:"scored"`
}

func Unknown() Result {
	return Result{Sentiment: SentimentNeutral}
}

type Classifier interface {
	Classify(ctx context.Context, text string) (*Result, error)
}

var ErrRateLimited = errors.New("API rate limit exceeded or invalid token.")

type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error: %d %s", e.StatusCode, e.Status)
	if e.Message != "" {
		msg += " — " + e.Message
	}
	return msg
}
