package models

import (
	"encoding/json"
	"time"
)

// Duration is a time.Duration that encodes as a Go duration string ("2s").
type Duration time.Duration

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return err
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// Config is the persisted console configuration.
type Config struct {
	APIURL         string   `json:"api_url,omitempty"`
	ActiveOrg      string   `json:"active_org,omitempty"`
	PollInterval   Duration `json:"poll_interval,omitempty"`
	RequestTimeout Duration `json:"request_timeout,omitempty"`
	SeenWelcome    bool     `json:"seen_welcome,omitempty"`
}
