package model

const NotificationSettingsKey = "notification-settings"

// NotificationSettings controls the side effects of incoming chat messages.
type NotificationSettings struct {
	EnableNotifications bool `json:"enableNotifications"`
	EnableMessageSounds bool `json:"enableMessageSounds"`
}
