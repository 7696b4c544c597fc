package core

import "fmt"

// EventType represents the type of change observed in a watched directory.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a file in a watched directory.
type Event struct {
	Type      EventType
	Path      string // relative to the watched root, slash separated
	Timestamp int64  // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Path)
}
