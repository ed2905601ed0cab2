package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)


func TestInterpret(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		sentiment Sentiment
		score     float64
		scored    bool
	}{
		{"nested array", `[[{"label":"POSITIVE","score":0.9}]]`, SentimentPositive, 0.9, true},
		{"flat array", `[{"label":"NEGATIVE","score":0.6}]`, SentimentNegative, 0.6, true},
		{"empty object", `{}`, SentimentNeutral, 0, false},
		{"null", `null`, SentimentNeutral, 0, false},
		{"empty array", `[]`, SentimentNeutral, 0, false},
		{"object of arrays", `{"scores":[{"label":"positive","score":0.7}]}`, SentimentPositive, 0.7, true},
		{"wrapped object of arrays", `[{"a":[{"label":"NEGATIVE","score":0.8}]}]`, SentimentNegative, 0.8, true},
		{"mixed object", `{"a":[{"label":"POSITIVE","score":0.9}],"b":1}`, SentimentNeutral, 0, false},
		{"low confidence", `[[{"label":"POSITIVE","score":0.5}]]`, SentimentNeutral, 0.5, true},
		{"string score", `[{"label":"NEGATIVE","score":"0.75"}]`, SentimentNegative, 0.75, true},
		{"unknown label", `[{"label":"LABEL_1","score":0.99}]`, SentimentNeutral, 0.99, true},
		{"error body", `{"error":"Model is loading"}`, SentimentNeutral, 0, false},
		{"object keys in document order", `[{"b":[{"label":"POSITIVE","score":0.9}],"a":[{"label":"NEGATIVE","score":0.8}]}]`, SentimentPositive, 0.9, true},
		{"bare object keys in document order", `{"z":[{"label":"NEGATIVE","score":0.7}],"a":[{"label":"POSITIVE","score":0.9}]}`, SentimentNegative, 0.7, true},
		{"triple nested array", `[[[{"label":"POSITIVE","score":0.9}]]]`, SentimentPositive, 0.9, true},
		{"nested array of non-arrays", `[[1,[{"label":"POSITIVE","score":0.9}]]]`, SentimentNeutral, 0, false},
		{"numeric prefix score", `[{"label":"NEGATIVE","score":"0.75abc"}]`, SentimentNegative, 0.75, true},
		{"non-numeric score", `[{"label":"POSITIVE","score":"high"}]`, SentimentNeutral, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(json.RawMessage(tt.input))
			assert.Equal(t, tt.sentiment, got.Sentiment)
			assert.Equal(t, tt.scored, got.Scored)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
		})
	}
}

func TestInterpretNouns(t *testing.T) {
	th := Thresholds{MediumMin: 6, HighMin: 16}

	chunks := func(n int) json.RawMessage {
		items := make([]map[string]string, n)
		for i := range items {
			items[i] = map[string]string{"entity_group": "NP", "word": "thing"}
		}
		raw, err := json.Marshal(items)
		require.NoError(t, err)
		return raw
	}

	assert.Equal(t, NounLevelLow, InterpretNouns(chunks(5), th).Level)
	assert.Equal(t, NounLevelMedium, InterpretNouns(chunks(6), th).Level)
	assert.Equal(t, NounLevelMedium, InterpretNouns(chunks(15), th).Level)
	r := InterpretNouns(chunks(16), th)
	assert.Equal(t, NounLevelHigh, r.Level)
	assert.Equal(t, 16, r.Count)
	assert.True(t, r.Known)

	mixed := json.RawMessage(`[{"entity":"B-NP","word":"blender"},{"entity":"VERB","word":"broke"},{"entity":"NN","word":"week"}]`)
	r = InterpretNouns(mixed, th)
	assert.Equal(t, 2, r.Count)

	r = InterpretNouns(json.RawMessage(`[[{"label":"High","score":0.8}]]`), th)
	assert.Equal(t, NounLevelHigh, r.Level)
	assert.Equal(t, -1, r.Count)
	assert.True(t, r.Known)

	r = InterpretNouns(json.RawMessage(`[{"score":0.1,"token":2023,"token_str":"the"}]`), th)
	assert.Equal(t, NounLevelLow, r.Level)
	assert.False(t, r.Known)
}

func TestHuggingFace_Classify(t *testing.T) {
	var gotAuth, gotInputs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		gotInputs = body["inputs"]

		w.Write([]byte(`[[{"label":"POSITIVE","score":0.93},{"label":"NEGATIVE","score":0.07}]]`))
	}))
	defer srv.Close()

	hf := NewHuggingFace(srv.URL, "hf_secret", "", 0)
	res, err := hf.Classify(context.Background(), "works great")
	require.NoError(t, err)
	assert.Equal(t, SentimentPositive, res.Sentiment)
	assert.InDelta(t, 0.93, res.Score, 1e-9)
	assert.Equal(t, "Bearer hf_secret", gotAuth)
	assert.Equal(t, "works great", gotInputs)

	hf = NewHuggingFace(srv.URL, "", "Classify: ", 0)
	_, err = hf.Classify(context.Background(), "ok")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "Classify: ok", gotInputs)
}

func TestHuggingFace_RateLimited(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusPaymentRequired} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		_, err := NewHuggingFace(srv.URL, "", "", 0).Infer(context.Background(), "x")
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, "API rate limit exceeded or invalid token.", err.Error())

		var apiErr *APIError
		assert.False(t, errors.As(err, &apiErr))
		srv.Close()
	}
}

func TestHuggingFace_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	_, err := NewHuggingFace(srv.URL, "", "", 0).Infer(context.Background(), "x")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "API error: 503 Service Unavailable — Model is currently loading", err.Error())
	assert.NotErrorIs(t, err, ErrRateLimited)
}

func TestNouns_Level(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[{"label":"medium","score":0.6}]]`))
	}))
	defer srv.Close()

	n := NewNouns(NewHuggingFace(srv.URL, "", "Count: ", 0), Thresholds{MediumMin: 6, HighMin: 16})
	r, err := n.Level(context.Background(), "a review")
	require.NoError(t, err)
	assert.Equal(t, NounLevelMedium, r.Level)
}
