// Package realtime consumes the platform event channel and fans events out
// to in-process listeners.
package realtime

import (
	"encoding/json"
	"strings"
	"time"
)

// Event is one notification received from the channel.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
	At   time.Time       `json:"at"`
}

// Entity returns the resource an event is about: the name segment before the
// first ':' or '.', e.g. "booking" for "booking:created".
func (e Event) Entity() string {
	name := strings.TrimSpace(e.Name)
	if i := strings.IndexAny(name, ":."); i >= 0 {
		return strings.ToLower(name[:i])
	}
	return strings.ToLower(name)
}

// Action returns the part of the name after the entity, or "" when absent.
func (e Event) Action() string {
	name := strings.TrimSpace(e.Name)
	if i := strings.IndexAny(name, ":."); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// Field extracts a top-level string field from Data. Numbers are returned in
// their JSON form.
func (e Event) Field(key string) string {
	if len(e.Data) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.Data, &fields); err != nil {
		return ""
	}
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// Listener receives events. Listeners run on the channel's read goroutine and
// must not block.
type Listener func(Event)
