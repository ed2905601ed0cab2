package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"reviewpulse/internal/app"
	"reviewpulse/internal/classifier"
	"reviewpulse/internal/dataset"
	"reviewpulse/internal/domain"
	"reviewpulse/internal/events"
)

type textRequest struct {
	Text string `json:"text"`
}

type webhookRequest struct {
	URL string `json:"url"`
}

type eventRequest struct {
	Event   string         `json:"event"`
	Variant string         `json:"variant"`
	Meta    map[string]any `json:"meta"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"reviews": s.app.ReviewCount(),
	})
}

func (s *Server) loadReviews(c echo.Context) error {
	n, err := s.app.LoadReviews(c.Request().Context())
	if err != nil {
		return s.fail(c, app.ToolReviews, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"loaded": n,
		"status": s.app.Status(app.ToolReviews).Message,
	})
}

func (s *Server) randomReview(c echo.Context) error {
	r, err := s.app.RandomReview()
	if err != nil {
		return s.fail(c, app.ToolReviews, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) analyze(c echo.Context) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	ctx := c.Request().Context()
	var (
		res *app.Analysis
		err error
	)
	if text := strings.TrimSpace(req.Text); text != "" {
		res, err = s.app.Analyze(ctx, text)
	} else {
		res, err = s.app.AnalyzeRandom(ctx)
	}
	if err != nil {
		return s.fail(c, app.ToolSentiment, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) nouns(c echo.Context) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	ctx := c.Request().Context()
	var (
		res *app.NounAnalysis
		err error
	)
	if text := strings.TrimSpace(req.Text); text != "" {
		res, err = s.app.CountNouns(ctx, text)
	} else {
		res, err = s.app.CountNounsRandom(ctx)
	}
	if err != nil {
		return s.fail(c, app.ToolNouns, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getWebhook(c echo.Context) error {
	u, err := s.app.WebhookURL(c.Request().Context())
	if err != nil {
		return s.fail(c, app.ToolEvents, err)
	}
	return c.JSON(http.StatusOK, webhookRequest{URL: u})
}

func (s *Server) saveWebhook(c echo.Context) error {
	var req webhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	status, err := s.app.SaveWebhookURL(c.Request().Context(), req.URL)
	if err != nil {
		return c.JSON(statusCode(err), errorResponse{Error: err.Error(), Status: status})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status, "url": strings.TrimSpace(req.URL)})
}

func (s *Server) clientID(c echo.Context) error {
	id, err := s.app.ClientID(c.Request().Context())
	if err != nil {
		return s.fail(c, app.ToolEvents, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"userId": id})
}

func (s *Server) logEvent(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := events.ValidateEvent(req.Event, req.Variant); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	meta := req.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	if _, ok := meta["ua"]; !ok && c.Request().UserAgent() != "" {
		meta["ua"] = c.Request().UserAgent()
	}

	var (
		status string
		err    error
	)
	if req.Event == domain.EventHeartbeat {
		status, err = s.app.LogHeartbeat(c.Request().Context(), meta)
	} else {
		status, err = s.app.LogEvent(c.Request().Context(), req.Event, req.Variant, meta)
	}
	if err != nil {
		return c.JSON(statusCode(err), errorResponse{Error: err.Error(), Status: status})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status})
}

func (s *Server) status(c echo.Context) error {
	out := map[app.Tool]app.Status{}
	for _, tool := range []app.Tool{app.ToolReviews, app.ToolSentiment, app.ToolNouns, app.ToolEvents} {
		out[tool] = s.app.Status(tool)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) fail(c echo.Context, tool app.Tool, err error) error {
	return c.JSON(statusCode(err), errorResponse{
		Error:  err.Error(),
		Status: s.app.Status(tool).Message,
	})
}

func statusCode(err error) int {
	var apiErr *classifier.APIError
	var hookErr *events.HTTPStatusError
	var netErr *url.Error
	switch {
	case errors.Is(err, app.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, app.ErrNoReviewsLoaded), errors.Is(err, dataset.ErrNoReviews):
		return http.StatusConflict
	case errors.Is(err, classifier.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, events.ErrMissingWebhookURL), errors.Is(err, events.ErrInvalidWebhookURL):
		return http.StatusBadRequest
	case errors.As(err, &apiErr), errors.As(err, &hookErr), errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
