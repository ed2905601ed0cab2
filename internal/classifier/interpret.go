package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type candidate struct {
	label string
	score float64
}

// Interpret maps a raw inference response to a Result. It understands
// [[{label,score}]], [{label,score}] and {key: [{label,score}]} (bare or
// wrapped in a one-element array); anything else is neutral and unscored.
func Interpret(raw json.RawMessage) Result {
	c, ok := findCandidate(raw)
	if !ok {
		return Unknown()
	}

	label := strings.ToUpper(c.label)
	r := Result{Sentiment: SentimentNeutral, Label: label, Score: c.score, Scored: true}
	switch {
	case label == "POSITIVE" && c.score > 0.5:
		r.Sentiment = SentimentPositive
	case label == "NEGATIVE" && c.score > 0.5:
		r.Sentiment = SentimentNegative
	}
	return r
}

func findCandidate(raw json.RawMessage) (candidate, bool) {
	switch kind(raw) {
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil || len(items) == 0 {
			return candidate{}, false
		}
		return fromHead(items[0])
	case '{':
		return fromFirstValue(raw)
	}
	return candidate{}, false
}

// fromHead inspects the first element of a top-level array: a nested list
// whose first entry is a candidate, a candidate itself, or a container whose
// values are all arrays.
func fromHead(head json.RawMessage) (candidate, bool) {
	if kind(head) == '[' {
		var inner []json.RawMessage
		if json.Unmarshal(head, &inner) == nil && len(inner) > 0 {
			if c, ok := asCandidate(inner[0]); ok {
				return c, true
			}
		}
	}
	if c, ok := asCandidate(head); ok {
		return c, true
	}
	return fromFirstValue(head)
}

// fromFirstValue takes the first element of the first value of an object or
// array whose values are all arrays. Object values are taken in document
// order.
func fromFirstValue(raw json.RawMessage) (candidate, bool) {
	values, ok := containerValues(raw)
	if !ok || len(values) == 0 {
		return candidate{}, false
	}
	for _, v := range values {
		if kind(v) != '[' {
			return candidate{}, false
		}
	}

	var first []json.RawMessage
	if json.Unmarshal(values[0], &first) != nil || len(first) == 0 {
		return candidate{}, false
	}
	return asCandidate(first[0])
}

func containerValues(raw json.RawMessage) ([]json.RawMessage, bool) {
	switch kind(raw) {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false
		}
		return items, true
	case '{':
		dec := json.NewDecoder(bytes.NewReader(raw))
		if _, err := dec.Token(); err != nil {
			return nil, false
		}
		var values []json.RawMessage
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return nil, false
			}
			var v json.RawMessage
			if err := dec.Decode(&v); err != nil {
				return nil, false
			}
			values = append(values, v)
		}
		return values, true
	}
	return nil, false
}

func asCandidate(raw json.RawMessage) (candidate, bool) {
	if kind(raw) != '{' {
		return candidate{}, false
	}
	var obj map[string]any
	if json.Unmarshal(raw, &obj) != nil {
		return candidate{}, false
	}
	label, ok := obj["label"]
	if !ok || label == nil {
		return candidate{}, false
	}
	ls := fmt.Sprint(label)
	if ls == "" {
		return candidate{}, false
	}
	return candidate{label: ls, score: toScore(obj["score"])}, true
}

// kind returns the first significant byte of raw, or 0 when it is empty.
func kind(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// toScore reads numbers as-is and strings by their leading decimal number,
// so "0.75abc" scores 0.75. Anything else scores 0.
func toScore(v any) float64 {
	switch s := v.(type) {
	case float64:
		return s
	case string:
		m := numericPrefix.FindString(strings.TrimSpace(s))
		if m == "" {
			return 0
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
