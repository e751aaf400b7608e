package domain

// EventType discriminates inbound events.
type EventType string

const (
	// EventDatasetUploaded carries a file the user sent.
	// Fields: Data, Format.
	EventDatasetUploaded EventType = "dataset_uploaded"

	// EventTextReceived carries a free-text message.
	// Fields: Text.
	EventTextReceived EventType = "text_received"

	// EventActionSelected carries the token of a pressed menu button.
	// Fields: Action.
	EventActionSelected EventType = "action_selected"
)

// Event is an inbound interaction delivered by a transport.
type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id"`
	Text   string    `json:"text,omitempty"`
	Action string    `json:"action,omitempty"`
	Data   []byte    `json:"data,omitempty"`
	// Format is the declared format of Data: an extension ("csv", ".json")
	// or a file name ("report.csv").
	Format string `json:"format,omitempty"`
}

// DatasetUploaded builds an upload event.
func DatasetUploaded(userID string, data []byte, format string) Event {
	return Event{Type: EventDatasetUploaded, UserID: userID, Data: data, Format: format}
}

// TextReceived builds a text event.
func TextReceived(userID, text string) Event {
	return Event{Type: EventTextReceived, UserID: userID, Text: text}
}

// ActionSelected builds a menu selection event.
func ActionSelected(userID, token string) Event {
	return Event{Type: EventActionSelected, UserID: userID, Action: token}
}
