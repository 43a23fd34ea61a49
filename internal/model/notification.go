package model

type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
)

// Notification is a user-visible outcome of a catalog action, pushed to
// connected clients over the websocket.
type Notification struct {
	Type        string            `json:"type"`
	Action      string            `json:"action"`
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
}
