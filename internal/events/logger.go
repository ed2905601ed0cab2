package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"reviewpulse/internal/domain"
	"reviewpulse/internal/store"
)

// Mirror receives a copy of every event that reaches the webhook.
type Mirror interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

type Options struct {
	// FallbackURL is used when nothing has been saved in the store.
	FallbackURL string
	Page        string
	UserAgent   string
	Timeout     time.Duration
	Mirror      Mirror
}

type Logger struct {
	store  store.Store
	client *http.Client
	opts   Options
	log    *zap.Logger
	now    func() time.Time
}

func NewLogger(s store.Store, opts Options, log *zap.Logger) *Logger {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Logger{
		store:  s,
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

// Log sends one form-encoded event to the saved webhook. The returned string
// is the status line for the user and is set on every path.
func (l *Logger) Log(ctx context.Context, name, variant string, meta map[string]any) (string, error) {
	target, err := SavedWebhookURL(ctx, l.store)
	if err != nil {
		return StatusStorageError, err
	}
	if target == "" {
		target = l.opts.FallbackURL
	}
	if target == "" {
		return StatusMissingURL, ErrMissingWebhookURL
	}
	if err := ValidateWebhookURL(target); err != nil {
		return StatusInvalidURL, err
	}

	now := l.now()
	uid, err := ClientID(ctx, l.store, now)
	if err != nil {
		return StatusStorageError, err
	}

	ev := domain.Event{
		Name:      name,
		Variant:   variant,
		ClientID:  uid,
		Timestamp: now,
		Meta:      l.meta(meta),
	}

	body, err := Encode(ev)
	if err != nil {
		return "Encoding error", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(body))
	if err != nil {
		return StatusInvalidURL, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	resp, err := l.client.Do(req)
	if err != nil {
		l.log.Warn("event post failed", zap.String("event", name), zap.Error(err))
		return StatusNetworkError, fmt.Errorf("post event: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := &HTTPStatusError{StatusCode: resp.StatusCode}
		return herr.Error(), herr
	}

	l.log.Debug("event logged",
		zap.String("event", name),
		zap.String("variant", variant),
		zap.String("user_id", uid))

	if l.opts.Mirror != nil {
		if err := l.opts.Mirror.Publish(ctx, ev); err != nil {
			l.log.Warn("event mirror failed", zap.String("event", name), zap.Error(err))
		}
	}

	return StatusLogged, nil
}

func (l *Logger) meta(extra map[string]any) map[string]any {
	m := map[string]any{
		"page": l.opts.Page,
		"ua":   l.opts.UserAgent,
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// ValidateEvent accepts cta_click with variant A or B and heartbeat with no
// variant.
func ValidateEvent(name, variant string) error {
	switch name {
	case domain.EventCTAClick:
		if variant != "A" && variant != "B" {
			return errors.New("cta_click requires variant A or B")
		}
	case domain.EventHeartbeat:
		if variant != "" {
			return errors.New("heartbeat takes no variant")
		}
	default:
		return fmt.Errorf("unknown event %q", name)
	}
	return nil
}

// Encode renders ev as the webhook's form body: event, variant, userId, ts
// (unix milliseconds) and meta (JSON).
func Encode(ev domain.Event) (string, error) {
	meta := ev.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("event", ev.Name)
	form.Set("variant", ev.Variant)
	form.Set("userId", ev.ClientID)
	form.Set("ts", strconv.FormatInt(ev.Timestamp.UnixMilli(), 10))
	form.Set("meta", string(rawMeta))
	return form.Encode(), nil
}
