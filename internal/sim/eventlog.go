package sim

import (
	"fmt"
	"strings"
)

// Event is one recorded occurrence during a run.
type Event struct {
	Tick     int
	Agent    string  // label e.g. "H3", or "--" for global events
	Category string  // status, move, rescue, hazard, vision
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the event as a fixed-width log line.
//
//	[T=042] H3   rescue  adopt   carrying H5
func (e Event) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-8s %-14s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// EventLog collects structured events during a run. It is unbounded and
// machine-readable; tests and the batch reporter query it rather than
// scraping process logs.
type EventLog struct {
	entries []Event
	verbose bool
}

// NewEventLog creates an EventLog. With verbose on, per-tick position and
// exposure entries are also recorded.
func NewEventLog(verbose bool) *EventLog {
	return &EventLog{verbose: verbose}
}

// Add records a new event.
func (el *EventLog) Add(tick int, agent, category, key, value string, numVal float64) {
	el.entries = append(el.entries, Event{
		Tick:     tick,
		Agent:    agent,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an event only when verbose mode is on.
func (el *EventLog) AddVerbose(tick int, agent, category, key, value string, numVal float64) {
	if !el.verbose {
		return
	}
	el.Add(tick, agent, category, key, value, numVal)
}

// Entries returns all recorded events.
func (el *EventLog) Entries() []Event {
	return el.entries
}

// Filter returns events matching category and/or key; empty string
// matches anything for that field.
func (el *EventLog) Filter(category, key string) []Event {
	var out []Event
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns events for a specific agent label.
func (el *EventLog) FilterAgent(label string) []Event {
	var out []Event
	for _, e := range el.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events match category and key.
func (el *EventLog) Count(category, key string) int {
	return len(el.Filter(category, key))
}

// FirstTick returns the tick of the first event matching category+key
// whose value contains contains, or -1.
func (el *EventLog) FirstTick(category, key, contains string) int {
	for _, e := range el.entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

// HasEvent reports whether at least one event matches category, key, and
// value substring.
func (el *EventLog) HasEvent(category, key, valueSubstr string) bool {
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as one string for t.Log output.
func (el *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range el.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
