package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"reviewpulse/internal/domain"
)

var ErrNoReviews = errors.New("no reviews found")

const textColumn = "text"

// ParseTSV reads a header-led, tab-delimited table and returns the non-blank
// values of its text column. A table without a "text" header falls back to
// its only column; wider tables without one yield ErrNoReviews.
func ParseTSV(r io.Reader) ([]domain.Review, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoReviews
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := resolveTextColumn(header)
	if col < 0 {
		return nil, ErrNoReviews
	}

	var reviews []domain.Review
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if col >= len(row) {
			continue
		}
		text := CleanText(row[col])
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

func resolveTextColumn(header []string) int {
	for i, h := range header {
		if strings.TrimPrefix(strings.TrimSpace(h), "\ufeff") == textColumn {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(h), "\ufeff"), textColumn) {
			return i
		}
	}
	if len(header) == 1 {
		return 0
	}
	return -1
}

// CleanText strips the BOM, applies NFKC and drops control characters other
// than newline and tab.
func CleanText(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	v = norm.NFKC.String(v)
	v = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, v)
	return strings.TrimSpace(v)
}
