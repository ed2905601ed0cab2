package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"reviewpulse/internal/classifier"
	"reviewpulse/internal/domain"
	"reviewpulse/internal/logging"
)

type Analysis struct {
	Review domain.Review     `json:"review"`
	Result classifier.Result `json:"result"`
}

type NounAnalysis struct {
	Review domain.Review         `json:"review"`
	Result classifier.NounResult `json:"result"`
}

// AnalyzeRandom picks a review and classifies its sentiment.
func (a *App) AnalyzeRandom(ctx context.Context) (*Analysis, error) {
	release, err := acquire(&a.analyzing)
	if err != nil {
		return nil, err
	}
	defer release()

	a.setStatus(ToolSentiment, "Selecting random review…", nil)
	review, err := a.RandomReview()
	if err != nil {
		a.setStatus(ToolSentiment, "No reviews loaded.", err)
		return nil, err
	}
	return a.analyze(ctx, review)
}

// Analyze classifies caller-supplied text.
func (a *App) Analyze(ctx context.Context, text string) (*Analysis, error) {
	release, err := acquire(&a.analyzing)
	if err != nil {
		return nil, err
	}
	defer release()

	return a.analyze(ctx, domain.Review{Text: text})
}

func (a *App) analyze(ctx context.Context, review domain.Review) (*Analysis, error) {
	a.setStatus(ToolSentiment, "Analyzing review via Hugging Face Inference API…", nil)

	res, err := a.deps.Sentiment.Classify(ctx, review.Text)
	if err != nil {
		a.setStatus(ToolSentiment, "Error during analysis.", err)
		return nil, err
	}

	a.log.Info("analyzed review",
		zap.String("review", logging.Truncate(review.Text, 60)),
		zap.String("sentiment", string(res.Sentiment)),
		zap.Float64("score", res.Score))
	a.setStatus(ToolSentiment, "Done.", nil)
	return &Analysis{Review: review, Result: *res}, nil
}

// CountNounsRandom picks a review and buckets its noun count.
func (a *App) CountNounsRandom(ctx context.Context) (*NounAnalysis, error) {
	release, err := acquire(&a.counting)
	if err != nil {
		return nil, err
	}
	defer release()

	review, err := a.RandomReview()
	if err != nil {
		a.setStatus(ToolNouns, "No reviews loaded.", err)
		return nil, err
	}
	return a.countNouns(ctx, review)
}

func (a *App) CountNouns(ctx context.Context, text string) (*NounAnalysis, error) {
	release, err := acquire(&a.counting)
	if err != nil {
		return nil, err
	}
	defer release()

	return a.countNouns(ctx, domain.Review{Text: text})
}

func (a *App) countNouns(ctx context.Context, review domain.Review) (*NounAnalysis, error) {
	a.setStatus(ToolNouns, "Counting nouns…", nil)

	res, err := a.deps.Nouns.Level(ctx, review.Text)
	if err != nil {
		a.setStatus(ToolNouns, errorStatus(err), err)
		return nil, err
	}

	a.setStatus(ToolNouns, "Done.", nil)
	return &NounAnalysis{Review: review, Result: *res}, nil
}

func errorStatus(err error) string {
	if errors.Is(err, classifier.ErrRateLimited) {
		return classifier.ErrRateLimited.Error()
	}
	return "API request failed."
}
