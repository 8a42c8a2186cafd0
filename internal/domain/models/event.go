package models

// EventType names a notification on the execution channel.
type EventType string

const (
	EventStarted  EventType = "started"
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Terminal reports whether no further events follow an event of this type.
func (t EventType) Terminal() bool {
	return t == EventComplete || t == EventError
}

// Event is one notification of a run. Exactly one started event, zero or more
// progress events and exactly one terminal event are emitted, in that order.
type Event struct {
	Type     EventType `json:"type"`
	RunID    string    `json:"runId"`
	Progress int       `json:"progress,omitempty"`
	Results  []Path    `json:"results,omitempty"`
	Stats    *Stats    `json:"stats,omitempty"`
	Message  string    `json:"message,omitempty"`
}

func StartedEvent(runID string) Event {
	return Event{Type: EventStarted, RunID: runID}
}

func ProgressEvent(runID string, percent int) Event {
	return Event{Type: EventProgress, RunID: runID, Progress: percent}
}

func CompleteEvent(res *Result) Event {
	stats := res.Stats
	return Event{Type: EventComplete, RunID: res.RunID, Results: res.Paths, Stats: &stats}
}

func ErrorEvent(runID string, err error) Event {
	return Event{Type: EventError, RunID: runID, Message: err.Error()}
}
