package entities

// GuildSettings represents per-guild configuration settings
type GuildSettings struct {
	GuildID               int64  `db:"guild_id" json:"guild_id"`
	NotificationChannelID *int64 `db:"notification_channel_id" json:"notification_channel_id,omitempty"` // Nullable - channel for tier announcements
	DefaultTiersSeeded    bool   `db:"default_tiers_seeded" json:"default_tiers_seeded"`
}

// HasNotificationChannel checks if a notification channel is configured
func (gs *GuildSettings) HasNotificationChannel() bool {
	return gs.NotificationChannelID != nil && *gs.NotificationChannelID > 0
}

// SetNotificationChannel sets the notification channel ID; nil disables announcements
func (gs *GuildSettings) SetNotificationChannel(channelID *int64) {
	gs.NotificationChannelID = channelID
}
