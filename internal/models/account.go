package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Network identifies a social network whose metrics are imported.
type Network string

const (
	NetworkFacebook  Network = "facebook"
	NetworkInstagram Network = "instagram"
	NetworkTwitter   Network = "twitter"
	NetworkYouTube   Network = "youtube"
)

// Account is one tracked actor of a network together with its metric history.
type Account struct {
	ID         string    `json:"id" bson:"_id"`
	Network    Network   `json:"network" bson:"network"`
	Name       string    `json:"name" bson:"name"`
	Username   string    `json:"username,omitempty" bson:"username,omitempty"`
	Link       string    `json:"link,omitempty" bson:"link,omitempty"`
	ChannelURL string    `json:"channelUrl,omitempty" bson:"channel_url,omitempty"`
	Category   string    `json:"category,omitempty" bson:"category,omitempty"`
	History    []Sample  `json:"history" bson:"history"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// Sample is one dated observation of an account. A metric missing from
// Metrics was not collected for that row.
type Sample struct {
	Date    *time.Time       `bson:"date,omitempty"`
	Metrics map[string]int64 `bson:",inline"`
}

// Value returns the metric value and whether it is present.
func (s Sample) Value(metric string) (int64, bool) {
	v, ok := s.Metrics[metric]
	return v, ok
}

// MarshalJSON flattens metrics next to the date: {"date": ..., "likes": 10}.
func (s Sample) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Metrics)+1)
	for k, v := range s.Metrics {
		out[k] = v
	}
	if s.Date != nil {
		out["date"] = s.Date.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Sample{}
	for key, value := range raw {
		if key == "date" {
			var d time.Time
			if err := json.Unmarshal(value, &d); err != nil {
				return fmt.Errorf("sample date: %w", err)
			}
			s.Date = &d
			continue
		}

		var n int64
		if err := json.Unmarshal(value, &n); err != nil {
			return fmt.Errorf("sample metric %s: %w", key, err)
		}
		if s.Metrics == nil {
			s.Metrics = make(map[string]int64)
		}
		s.Metrics[key] = n
	}
	return nil
}
