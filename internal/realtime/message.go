package realtime

// Event names pushed to consultants over the realtime channel.
const (
	EventAssignmentCreated = "assignment.created"
	EventAssignmentRevoked = "assignment.revoked"
)

// Message is a single push to a consultant channel. Channel is the
// consultant id; delivery is best-effort with no guarantee.
type Message struct {
	Channel string         `json:"channel"`
	Event   string         `json:"event"`
	Data    map[string]any `json:"data,omitempty"`
}
