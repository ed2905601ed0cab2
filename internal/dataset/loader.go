package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"reviewpulse/internal/domain"
)

type Loader struct {
	format domain.Source
	client *http.Client
}

func NewLoader(format domain.Source) *Loader {
	return &Loader{
		format: format,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Load reads source, a local path or an http(s) URL, and parses it in the
// loader's format.
func (l *Loader) Load(ctx context.Context, source string) ([]domain.Review, error) {
	body, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var reviews []domain.Review
	switch l.format {
	case domain.SourceFeed:
		reviews, err = ParseFeed(body)
	default:
		reviews, err = ParseTSV(body)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return reviews, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/tab-separated-values, application/rss+xml, application/xml, text/xml, */*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s (%d)", source, resp.StatusCode)
	}
	return resp.Body, nil
}
