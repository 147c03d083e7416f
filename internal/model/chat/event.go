package chat

// Stream event types emitted over the live channel to the browser.
// Each session sends exactly one start, any number of chunks, and then
// exactly one of end/error.
const (
	EventStart = "start"
	EventChunk = "chunk"
	EventEnd   = "end"
	EventError = "error"
)

// StreamEvent is one server-to-browser message of the live response channel.
type StreamEvent struct {
	Type      string `json:"type"`
	Emotion   string `json:"emotion,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Content   string `json:"content,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}
