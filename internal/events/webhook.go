package events

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"reviewpulse/internal/store"
)

const (
	StatusMissingURL      = "Missing Web App URL"
	StatusInvalidURL      = "Invalid URL"
	StatusInvalidURLSaved = "Invalid URL (must end with /exec)"
	StatusSavedURL        = "Saved Web App URL"
	StatusNetworkError    = "Network error"
	StatusLogged          = "Logged"
	StatusStorageError    = "Storage error"
)

var (
	ErrMissingWebhookURL = errors.New("missing web app URL")
	ErrInvalidWebhookURL = errors.New("invalid web app URL: must be http(s) and end with /exec")
)

// ValidateWebhookURL accepts absolute http or https URLs whose path ends
// with /exec.
func ValidateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidWebhookURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidWebhookURL
	}
	if !strings.HasSuffix(u.Path, "/exec") {
		return ErrInvalidWebhookURL
	}
	return nil
}

// SaveWebhookURL validates and persists raw, returning the status line to
// show the user.
func SaveWebhookURL(ctx context.Context, s store.Store, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StatusMissingURL, ErrMissingWebhookURL
	}
	if err := ValidateWebhookURL(raw); err != nil {
		return StatusInvalidURLSaved, err
	}
	if err := s.Set(ctx, store.KeyWebhookURL, raw); err != nil {
		return "Failed to save Web App URL", err
	}
	return StatusSavedURL, nil
}

func SavedWebhookURL(ctx context.Context, s store.Store) (string, error) {
	v, err := s.Get(ctx, store.KeyWebhookURL)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	return v, err
}
