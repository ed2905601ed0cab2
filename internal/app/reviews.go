package app

import (
	"context"
	"errors"
	"fmt"

	"reviewpulse/internal/dataset"
	"reviewpulse/internal/domain"
)

// LoadReviews replaces the working set with the contents of the configured
// source. On failure the previous set is kept.
func (a *App) LoadReviews(ctx context.Context) (int, error) {
	a.setStatus(ToolReviews, fmt.Sprintf("Fetching %s …", a.source), nil)

	reviews, err := a.deps.Loader.Load(ctx, a.source)
	if errors.Is(err, dataset.ErrNoReviews) {
		a.setStatus(ToolReviews, fmt.Sprintf("No reviews found in %s.", a.datasetName()), err)
		return 0, err
	}
	if err != nil {
		a.setStatus(ToolReviews, fmt.Sprintf("Failed to load %s.", a.datasetName()), err)
		return 0, err
	}

	a.mu.Lock()
	a.reviews = reviews
	a.mu.Unlock()

	a.setStatus(ToolReviews, fmt.Sprintf("Loaded %d reviews.", len(reviews)), nil)
	return len(reviews), nil
}

func (a *App) datasetName() string {
	if a.deps.Format == domain.SourceFeed {
		return "feed"
	}
	return "TSV"
}

func (a *App) ReviewCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.reviews)
}

func (a *App) RandomReview() (domain.Review, error) {
	a.mu.RLock()
	reviews := a.reviews
	a.mu.RUnlock()

	r, ok := a.deps.Picker.Pick(reviews)
	if !ok {
		return domain.Review{}, ErrNoReviewsLoaded
	}
	return r, nil
}
