package common

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// GetDisplayName returns the server-specific display name for a user
// Falls back to username if nickname is not set or if there's an error
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			if member.User.GlobalName != "" {
				return member.User.GlobalName
			}
			return member.User.Username
		}
	}

	return fmt.Sprintf("Пользователь (%s)", userID)
}

// GetDisplayNameInt64 is a convenience wrapper that accepts int64 user IDs
func GetDisplayNameInt64(s *discordgo.Session, guildID string, userID int64) string {
	return GetDisplayName(s, guildID, FormatID(userID))
}

// ParseID converts a Discord snowflake string to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatID converts an int64 snowflake to string
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatID(userID) + ">"
}

// HasAdminRole reports whether any of roleNames is one of adminRoles
func HasAdminRole(roleNames, adminRoles []string) bool {
	for _, name := range roleNames {
		for _, admin := range adminRoles {
			if name == admin {
				return true
			}
		}
	}
	return false
}

// IsUserAdmin checks for the Administrator permission or one of the configured admin roles
func IsUserAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, adminRoles []string) bool {
	if i.Member == nil {
		return false
	}

	// Interactions carry the member's computed permissions
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	roles, err := s.GuildRoles(i.GuildID)
	if err != nil {
		log.WithError(err).WithField("guildID", i.GuildID).Error("Failed to get guild roles")
		return false
	}

	held := make(map[string]bool, len(i.Member.Roles))
	for _, roleID := range i.Member.Roles {
		held[roleID] = true
	}

	var names []string
	for _, role := range roles {
		if held[role.ID] {
			if role.Permissions&discordgo.PermissionAdministrator != 0 {
				return true
			}
			names = append(names, role.Name)
		}
	}

	return HasAdminRole(names, adminRoles)
}

// RequireAdmin returns a user error when the invoker is not an admin
func RequireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, adminRoles []string) error {
	if IsUserAdmin(s, i, adminRoles) {
		return nil
	}
	return NewUserError("У вас нет прав для использования этой команды!", "Non-admin used an admin command")
}
