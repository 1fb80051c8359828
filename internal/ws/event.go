package ws

import "time"

// Event kinds pushed to subscribers.
const (
	EventNewMessage    = "new_message"
	EventUpdateMessage = "update_message"
	EventDeleteMessage = "delete_message"
)

// MessagePayload carries the message fields of an event. update_message
// events only fill id, text and is_edited.
type MessagePayload struct {
	ID        uint       `json:"id"`
	Text      string     `json:"text"`
	UserID    uint       `json:"user_id,omitempty"`
	Username  string     `json:"username,omitempty"`
	IsEdited  bool       `json:"is_edited"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Event is the single wire record pushed over a subscription, tagged by Kind.
type Event struct {
	Kind      string          `json:"kind"`
	Message   *MessagePayload `json:"message,omitempty"`
	MessageID uint            `json:"message_id,omitempty"`
}
