package dataset

import (
	"io"

	"github.com/mmcdole/gofeed"

	"reviewpulse/internal/domain"
)

// ParseFeed turns the items of an RSS, Atom or JSON feed into reviews,
// preferring the description, then the content, then the title.
func ParseFeed(r io.Reader) ([]domain.Review, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(feed.Items))
	for _, item := range feed.Items {
		text := CleanText(item.Description)
		if text == "" {
			text = CleanText(item.Content)
		}
		if text == "" {
			text = CleanText(item.Title)
		}
		if text == "" {
			continue
		}
		reviews = append(reviews, domain.Review{Text: text})
	}

	if len(reviews) == 0 {
		return nil, ErrNoReviews
	}
	return reviews, nil
}
