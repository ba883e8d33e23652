package event

import "github.com/udisondev/elemental/internal/element"

// TopicNotification is the topic of Notification.
const TopicNotification Topic = "notification"

// Notification is a human-readable banner for the notification UI.
type Notification struct {
	Text  string
	Color element.Color
}

func (Notification) Topic() Topic { return TopicNotification }
