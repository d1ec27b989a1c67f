package entities

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultRoleColor is used when a tier has no valid colour
const DefaultRoleColor = "#3498db"

var hexColorPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// RoleThreshold maps a point threshold to a tier role within a guild
type RoleThreshold struct {
	GuildID        int64     `db:"guild_id" json:"guild_id"`
	PointsRequired int64     `db:"points_required" json:"points_required"`
	RoleName       string    `db:"role_name" json:"role_name"`
	RoleColor      string    `db:"role_color" json:"role_color"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ColorValue returns the role colour as the integer the Discord API expects
func (rt *RoleThreshold) ColorValue() int {
	value, err := strconv.ParseInt(strings.TrimPrefix(NormalizeRoleColor(rt.RoleColor), "#"), 16, 32)
	if err != nil {
		return 0
	}
	return int(value)
}

// NormalizeRoleColor lower-cases a "#rrggbb" colour, adding the leading '#'
// when missing. Anything else falls back to DefaultRoleColor.
func NormalizeRoleColor(color string) string {
	color = strings.ToLower(strings.TrimSpace(color))
	if color != "" && !strings.HasPrefix(color, "#") {
		color = "#" + color
	}
	if !hexColorPattern.MatchString(color) {
		return DefaultRoleColor
	}
	return color
}

// DefaultRoleThresholds returns the tiers seeded into a guild the first time it is seen
func DefaultRoleThresholds(guildID int64) []*RoleThreshold {
	return []*RoleThreshold{
		{GuildID: guildID, PointsRequired: 50, RoleName: "raider newgen", RoleColor: "#2ecc71"},
		{GuildID: guildID, PointsRequired: 100, RoleName: "raider scout", RoleColor: "#3498db"},
		{GuildID: guildID, PointsRequired: 150, RoleName: "raider striker", RoleColor: "#e67e22"},
		{GuildID: guildID, PointsRequired: 350, RoleName: "raider legend", RoleColor: "#9b59b6"},
		{GuildID: guildID, PointsRequired: 500, RoleName: "raider commander", RoleColor: "#f1c40f"},
	}
}

// RoleNames returns the role names of the given thresholds
func RoleNames(thresholds []*RoleThreshold) []string {
	names := make([]string, 0, len(thresholds))
	for _, t := range thresholds {
		names = append(names, t.RoleName)
	}
	return names
}
