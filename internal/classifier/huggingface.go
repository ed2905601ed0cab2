package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HuggingFace calls a hosted inference endpoint. It makes exactly one
// attempt per call.
type HuggingFace struct {
	endpoint string
	token    string
	prompt   string
	client   *http.Client
}

func NewHuggingFace(endpoint, token, prompt string, timeout time.Duration) *HuggingFace {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HuggingFace{
		endpoint: endpoint,
		token:    token,
		prompt:   prompt,
		client:   &http.Client{Timeout: timeout},
	}
}

// Infer posts {"inputs": prompt+text} and returns the JSON body.
func (h *HuggingFace) Infer(ctx context.Context, text string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"inputs": h.prompt + text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Error any `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != nil {
			if s, ok := errBody.Error.(string); ok {
				apiErr.Message = s
			} else if b, err := json.Marshal(errBody.Error); err == nil {
				apiErr.Message = string(b)
			}
		}
		return nil, apiErr
	}

	var data json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return data, nil
}

func (h *HuggingFace) Classify(ctx context.Context, text string) (*Result, error) {
	data, err := h.Infer(ctx, text)
	if err != nil {
		return nil, err
	}
	result := Interpret(data)
	return &result, nil
}
