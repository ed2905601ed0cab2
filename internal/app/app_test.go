package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reviewpulse/internal/classifier"
	"reviewpulse/internal/config"
	"reviewpulse/internal/dataset"
	"reviewpulse/internal/domain"
	"reviewpulse/internal/store"
)

type stubLoader struct {
	reviews []domain.Review
	err     error
}

func (s *stubLoader) Load(context.Context, string) ([]domain.Review, error) {
	return s.reviews, s.err
}

type stubClassifier struct {
	result *classifier.Result
	err    error
	block  chan struct{}
	texts  []string
}

func (s *stubClassifier) Classify(_ context.Context, text string) (*classifier.Result, error) {
	if s.block != nil {
		<-s.block
	}
	s.texts = append(s.texts, text)
	return s.result, s.err
}

type stubNouns struct {
	result *classifier.NounResult
	err    error
}

func (s *stubNouns) Level(context.Context, string) (*classifier.NounResult, error) {
	return s.result, s.err
}

type stubEvents struct {
	names []string
}

func (s *stubEvents) Log(_ context.Context, name, variant string, _ map[string]any) (string, error) {
	s.names = append(s.names, name+":"+variant)
	return "Logged", nil
}

func newTestApp(t *testing.T, deps Deps) *App {
	t.Helper()
	if deps.Store == nil {
		st, err := store.NewFile(filepath.Join(t.TempDir(), "state.yaml"))
		require.NoError(t, err)
		deps.Store = st
	}
	if deps.Picker == nil {
		deps.Picker = dataset.NewPicker(rand.NewPCG(7, 7))
	}
	return New("reviews_test.tsv", deps, zap.NewNop())
}

func TestLoadReviews(t *testing.T) {
	a := newTestApp(t, Deps{Loader: &stubLoader{reviews: []domain.Review{{Text: "good"}, {Text: "bad"}}}})

	n, err := a.LoadReviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, a.ReviewCount())
	assert.Equal(t, "Loaded 2 reviews.", a.Status(ToolReviews).Message)
}

func TestLoadReviews_FailureKeepsPreviousSet(t *testing.T) {
	loader := &stubLoader{reviews: []domain.Review{{Text: "good"}}}
	a := newTestApp(t, Deps{Loader: loader})
	_, err := a.LoadReviews(context.Background())
	require.NoError(t, err)

	loader.reviews, loader.err = nil, errors.New("connection refused")
	_, err = a.LoadReviews(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to load TSV.", a.Status(ToolReviews).Message)
	assert.Equal(t, 1, a.ReviewCount())

	loader.err = dataset.ErrNoReviews
	_, err = a.LoadReviews(context.Background())
	assert.ErrorIs(t, err, dataset.ErrNoReviews)
	assert.Equal(t, "No reviews found in TSV.", a.Status(ToolReviews).Message)
}

func TestAnalyzeRandom(t *testing.T) {
	cl := &stubClassifier{result: &classifier.Result{Sentiment: classifier.SentimentPositive, Score: 0.9, Scored: true}}
	a := newTestApp(t, Deps{
		Loader:    &stubLoader{reviews: []domain.Review{{Text: "only one"}}},
		Sentiment: cl,
	})

	_, err := a.AnalyzeRandom(context.Background())
	assert.ErrorIs(t, err, ErrNoReviewsLoaded)
	assert.Equal(t, "No reviews loaded.", a.Status(ToolSentiment).Message)

	_, err = a.LoadReviews(context.Background())
	require.NoError(t, err)

	res, err := a.AnalyzeRandom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "only one", res.Review.Text)
	assert.Equal(t, classifier.SentimentPositive, res.Result.Sentiment)
	assert.Equal(t, []string{"only one"}, cl.texts)
	assert.Equal(t, "Done.", a.Status(ToolSentiment).Message)
}

func TestAnalyze_RateLimitedStatus(t *testing.T) {
	a := newTestApp(t, Deps{Sentiment: &stubClassifier{err: classifier.ErrRateLimited}})

	_, err := a.Analyze(context.Background(), "text")
	assert.ErrorIs(t, err, classifier.ErrRateLimited)

	st := a.Status(ToolSentiment)
	assert.Equal(t, "Error during analysis.", st.Message)
	assert.Equal(t, "API rate limit exceeded or invalid token.", st.Error)
}

func TestAnalyze_SingleFlight(t *testing.T) {
	cl := &stubClassifier{
		result: &classifier.Result{Sentiment: classifier.SentimentNeutral},
		block:  make(chan struct{}),
	}
	a := newTestApp(t, Deps{Sentiment: cl})

	started := make(chan struct{})
	var once sync.Once
	var statuses []Status
	var mu sync.Mutex
	a.OnStatus(func(s Status) {
		mu.Lock()
		statuses = append(statuses, s)
		mu.Unlock()
		if s.Message == "Analyzing review via Hugging Face Inference API…" {
			once.Do(func() { close(started) })
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := a.Analyze(context.Background(), "first")
		done <- err
	}()

	<-started
	_, err := a.Analyze(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(cl.block)
	require.NoError(t, <-done)

	// the guard is released once the first call returns
	_, err = a.Analyze(context.Background(), "third")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, statuses)
}

func TestCountNouns(t *testing.T) {
	a := newTestApp(t, Deps{
		Loader: &stubLoader{reviews: []domain.Review{{Text: "one two three"}}},
		Nouns:  &stubNouns{result: &classifier.NounResult{Level: classifier.NounLevelHigh, Count: 20, Known: true}},
	})

	_, err := a.CountNounsRandom(context.Background())
	assert.ErrorIs(t, err, ErrNoReviewsLoaded)

	_, err = a.LoadReviews(context.Background())
	require.NoError(t, err)

	res, err := a.CountNounsRandom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, classifier.NounLevelHigh, res.Result.Level)
	assert.Equal(t, "one two three", res.Review.Text)
}

func TestCountNouns_ErrorStatus(t *testing.T) {
	a := newTestApp(t, Deps{Nouns: &stubNouns{err: classifier.ErrRateLimited}})
	_, err := a.CountNouns(context.Background(), "x")
	assert.ErrorIs(t, err, classifier.ErrRateLimited)
	assert.Equal(t, "API rate limit exceeded or invalid token.", a.Status(ToolNouns).Message)

	a = newTestApp(t, Deps{Nouns: &stubNouns{err: &classifier.APIError{StatusCode: 500}}})
	_, err = a.CountNouns(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, "API request failed.", a.Status(ToolNouns).Message)
}

func TestWebhookAndEvents(t *testing.T) {
	ev := &stubEvents{}
	a := newTestApp(t, Deps{Events: ev})
	ctx := context.Background()

	status, err := a.SaveWebhookURL(ctx, "http://x/y")
	assert.Error(t, err)
	assert.Equal(t, "Invalid URL (must end with /exec)", status)

	status, err = a.SaveWebhookURL(ctx, "https://x/exec")
	require.NoError(t, err)
	assert.Equal(t, "Saved Web App URL", status)

	url, err := a.WebhookURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://x/exec", url)

	status, err = a.LogEvent(ctx, domain.EventCTAClick, "B", nil)
	require.NoError(t, err)
	assert.Equal(t, "Logged", status)
	assert.Equal(t, []string{"cta_click:B"}, ev.names)
	assert.Equal(t, "Logged", a.Status(ToolEvents).Message)

	id1, err := a.ClientID(ctx)
	require.NoError(t, err)
	id2, err := a.ClientID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestBuild(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "state.yaml")

	a, closeFn, err := Build(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.NoError(t, closeFn())
}

// blockingEvents holds heartbeat calls until release is closed.
type blockingEvents struct {
	mu      sync.Mutex
	names   []string
	started chan struct{}
	release chan struct{}
}

func (b *blockingEvents) Log(_ context.Context, name, variant string, _ map[string]any) (string, error) {
	if name == domain.EventHeartbeat {
		close(b.started)
		<-b.release
	}
	b.mu.Lock()
	b.names = append(b.names, name+":"+variant)
	b.mu.Unlock()
	return "Logged", nil
}

func TestLogEvent_NotBlockedByHeartbeat(t *testing.T) {
	ev := &blockingEvents{started: make(chan struct{}), release: make(chan struct{})}
	a := newTestApp(t, Deps{Events: ev})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := a.LogHeartbeat(ctx, nil)
		done <- err
	}()
	<-ev.started

	status, err := a.LogEvent(ctx, domain.EventCTAClick, "A", nil)
	require.NoError(t, err)
	assert.Equal(t, "Logged", status)

	_, err = a.LogHeartbeat(ctx, nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(ev.release)
	require.NoError(t, <-done)

	ev.mu.Lock()
	defer ev.mu.Unlock()
	assert.Equal(t, []string{"cta_click:A", "heartbeat:"}, ev.names)
}

func TestLoadReviews_FeedStatusWording(t *testing.T) {
	loader := &stubLoader{err: dataset.ErrNoReviews}
	a := newTestApp(t, Deps{Format: domain.SourceFeed, Loader: loader})

	_, err := a.LoadReviews(context.Background())
	assert.ErrorIs(t, err, dataset.ErrNoReviews)
	assert.Equal(t, "No reviews found in feed.", a.Status(ToolReviews).Message)

	loader.err = errors.New("connection refused")
	_, err = a.LoadReviews(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "Failed to load feed.", a.Status(ToolReviews).Message)
}
