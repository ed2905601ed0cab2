package domain

import "time"

type Event struct {
	Name      string         `json:"event"`
	Variant   string         `json:"variant"`
	ClientID  string         `json:"userId"`
	Timestamp time.Time      `json:"ts"`
	Meta      map[string]any `json:"meta,omitempty"`
}

const (
	EventCTAClick  = "cta_click"
	EventHeartbeat = "heartbeat"
)
