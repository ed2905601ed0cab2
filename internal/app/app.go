// Package app holds the explicit application state shared by the CLI and the
// HTTP API: the loaded reviews, the remote clients, the persisted key-value
// store and the per-tool status line.
package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"reviewpulse/internal/classifier"
	"reviewpulse/internal/config"
	"reviewpulse/internal/dataset"
	"reviewpulse/internal/domain"
	"reviewpulse/internal/events"
	"reviewpulse/internal/store"
)

type Tool string

const (
	ToolReviews   Tool = "reviews"
	ToolSentiment Tool = "sentiment"
	ToolNouns     Tool = "nouns"
	ToolEvents    Tool = "events"
)

var (
	ErrBusy            = errors.New("a request is already in flight")
	ErrNoReviewsLoaded = errors.New("no reviews loaded")
)

type Status struct {
	Tool    Tool      `json:"tool"`
	Message string    `json:"message"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

type StatusHook func(Status)

type ReviewLoader interface {
	Load(ctx context.Context, source string) ([]domain.Review, error)
}

type NounLeveler interface {
	Level(ctx context.Context, text string) (*classifier.NounResult, error)
}

type EventSender interface {
	Log(ctx context.Context, name, variant string, meta map[string]any) (string, error)
}

type Deps struct {
	// Format names the dataset in status lines; empty means TSV.
	Format    domain.Source
	Loader    ReviewLoader
	Picker    *dataset.Picker
	Sentiment classifier.Classifier
	Nouns     NounLeveler
	Events    EventSender
	Store     store.Store
}

type App struct {
	source string
	deps   Deps
	log    *zap.Logger

	mu      sync.RWMutex
	reviews []domain.Review

	statusMu sync.Mutex
	status   map[Tool]Status
	hook     StatusHook

	analyzing    atomic.Bool
	counting     atomic.Bool
	logging      atomic.Bool
	heartbeating atomic.Bool
}

func New(source string, deps Deps, log *zap.Logger) *App {
	if deps.Picker == nil {
		deps.Picker = dataset.NewPicker(nil)
	}
	return &App{
		source: source,
		deps:   deps,
		log:    log,
		status: make(map[Tool]Status),
	}
}

// Build wires the production dependencies described by cfg. The returned
// close function releases the store and the event mirror.
func Build(cfg *config.Config, log *zap.Logger) (*App, func() error, error) {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	mirror, closeMirror, err := openMirror(cfg.Events.Kafka, log)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	sentiment := classifier.NewHuggingFace(cfg.Classifier.Endpoint, cfg.Classifier.Token, cfg.Classifier.Prompt, cfg.Classifier.Timeout)
	nounToken := cfg.Nouns.Token
	if nounToken == "" {
		nounToken = cfg.Classifier.Token
	}
	nouns := classifier.NewNouns(
		classifier.NewHuggingFace(cfg.Nouns.Endpoint, nounToken, cfg.Nouns.Prompt, cfg.Nouns.Timeout),
		classifier.Thresholds{MediumMin: cfg.Nouns.MediumMin, HighMin: cfg.Nouns.HighMin},
	)

	evOpts := events.Options{
		FallbackURL: cfg.Events.WebhookURL,
		Page:        cfg.Events.Page,
		UserAgent:   cfg.Events.UserAgent,
		Timeout:     cfg.Events.Timeout,
	}
	if mirror != nil {
		evOpts.Mirror = mirror
	}

	format := domain.Source(cfg.Dataset.Format)
	a := New(cfg.Dataset.Source, Deps{
		Format:    format,
		Loader:    dataset.NewLoader(format),
		Picker:    dataset.NewPicker(nil),
		Sentiment: sentiment,
		Nouns:     nouns,
		Events:    events.NewLogger(st, evOpts, log.Named("events")),
		Store:     st,
	}, log)

	closeFn := func() error {
		return errors.Join(closeMirror(), st.Close())
	}
	return a, closeFn, nil
}

// OnStatus registers the hook that receives every status change.
func (a *App) OnStatus(h StatusHook) {
	a.statusMu.Lock()
	a.hook = h
	a.statusMu.Unlock()
}

func (a *App) Status(tool Tool) Status {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()
	return a.status[tool]
}

func (a *App) setStatus(tool Tool, msg string, err error) {
	s := Status{Tool: tool, Message: msg, At: time.Now()}
	if err != nil {
		s.Error = err.Error()
	}

	a.statusMu.Lock()
	a.status[tool] = s
	hook := a.hook
	a.statusMu.Unlock()

	if err != nil {
		a.log.Warn(msg, zap.String("tool", string(tool)), zap.Error(err))
	} else {
		a.log.Debug(msg, zap.String("tool", string(tool)))
	}

	if hook != nil {
		hook(s)
	}
}

// acquire marks flag busy and returns the release func, or ErrBusy when a
// call is already outstanding.
func acquire(flag *atomic.Bool) (func(), error) {
	if !flag.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	return func() { flag.Store(false) }, nil
}
