package classifier

import (
	"context"
	"encoding/json"
	"strings"
)

type NounLevel string

const (
	NounLevelLow    NounLevel = "low"
	NounLevelMedium NounLevel = "medium"
	NounLevelHigh   NounLevel = "high"
)

type NounResult struct {
	Level NounLevel `json:"level"`
	// Count is the number of noun chunks when the endpoint returned chunks,
	// -1 when the level came from a label.
	Count int  `json:"count"`
	Known bool `json:"known"`
}

type Thresholds struct {
	MediumMin int
	HighMin   int
}

func (t Thresholds) Bucket(count int) NounLevel {
	switch {
	case count >= t.HighMin:
		return NounLevelHigh
	case count >= t.MediumMin:
		return NounLevelMedium
	default:
		return NounLevelLow
	}
}

// Nouns sends review text to a noun-chunking endpoint and buckets the result.
type Nouns struct {
	client     *HuggingFace
	thresholds Thresholds
}

func NewNouns(client *HuggingFace, t Thresholds) *Nouns {
	return &Nouns{client: client, thresholds: t}
}

func (n *Nouns) Level(ctx context.Context, text string) (*NounResult, error) {
	data, err := n.client.Infer(ctx, text)
	if err != nil {
		return nil, err
	}
	r := InterpretNouns(data, n.thresholds)
	return &r, nil
}

// InterpretNouns accepts either a list of chunk objects (token
// classification output with entity_group/entity and word) or any response
// Interpret understands whose label is high, medium or low.
func InterpretNouns(raw json.RawMessage, t Thresholds) NounResult {
	var data any
	if json.Unmarshal(raw, &data) == nil {
		if count, ok := countNounChunks(data); ok {
			return NounResult{Level: t.Bucket(count), Count: count, Known: true}
		}
	}

	if c, ok := findCandidate(raw); ok {
		switch level := NounLevel(strings.ToLower(strings.TrimSpace(c.label))); level {
		case NounLevelLow, NounLevelMedium, NounLevelHigh:
			return NounResult{Level: level, Count: -1, Known: true}
		}
	}

	return NounResult{Level: NounLevelLow, Count: -1}
}

func countNounChunks(data any) (int, bool) {
	items, ok := data.([]any)
	if !ok {
		return 0, false
	}
	if len(items) > 0 {
		if nested, ok := items[0].([]any); ok && len(items) == 1 {
			items = nested
		}
	}
	if len(items) == 0 {
		return 0, false
	}

	count := 0
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return 0, false
		}
		if _, ok := obj["word"]; !ok {
			return 0, false
		}
		group, _ := obj["entity_group"].(string)
		if group == "" {
			group, _ = obj["entity"].(string)
		}
		if group == "" || isNounTag(group) {
			count++
		}
	}
	return count, true
}

func isNounTag(tag string) bool {
	tag = strings.ToUpper(strings.TrimPrefix(strings.TrimPrefix(tag, "B-"), "I-"))
	return tag == "NP" || tag == "NOUN" || tag == "PROPN" || strings.HasPrefix(tag, "NN")
}
