package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"pointsbot/application"
	"pointsbot/bot/common"
	"pointsbot/domain"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// MaxMemberFetchLimit is the page size Discord allows when listing guild members
const MaxMemberFetchLimit = 1000

// discordAPI is the slice of the Discord session the role manager calls
type discordAPI interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordRoleManager grants and revokes tier roles by name through the Discord API
type DiscordRoleManager struct {
	api discordAPI
}

var (
	_ application.RoleManager   = (*DiscordRoleManager)(nil)
	_ application.TierAnnouncer = (*DiscordRoleManager)(nil)
)

// NewDiscordRoleManager creates a role manager on top of a Discord session
func NewDiscordRoleManager(session *discordgo.Session) *DiscordRoleManager {
	return &DiscordRoleManager{api: session}
}

// MemberRoleNames returns the names of every role the member holds
func (m *DiscordRoleManager) MemberRoleNames(ctx context.Context, guildID, userID int64) ([]string, error) {
	gid := common.FormatID(guildID)

	member, err := m.api.GuildMember(gid, common.FormatID(userID), discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownMember(err) {
			return nil, nil
		}
		return nil, classifyDiscordError(fmt.Errorf("failed to get member: %w", err))
	}

	roles, err := m.roleNamesByID(ctx, gid)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(member.Roles))
	for _, roleID := range member.Roles {
		if name, ok := roles[roleID]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// MembersWithRoles returns the members holding any of the named roles
func (m *DiscordRoleManager) MembersWithRoles(ctx context.Context, guildID int64, roleNames []string) ([]int64, error) {
	gid := common.FormatID(guildID)

	roles, err := m.roleNamesByID(ctx, gid)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(roleNames))
	for _, name := range roleNames {
		wanted[name] = true
	}
	wantedIDs := make(map[string]bool)
	for id, name := range roles {
		if wanted[name] {
			wantedIDs[id] = true
		}
	}
	if len(wantedIDs) == 0 {
		return nil, nil
	}

	var holders []int64
	after := ""
	for {
		members, err := m.api.GuildMembers(gid, after, MaxMemberFetchLimit, discordgo.WithContext(ctx))
		if err != nil {
			return nil, classifyDiscordError(fmt.Errorf("failed to list members: %w", err))
		}

		for _, member := range members {
			for _, roleID := range member.Roles {
				if wantedIDs[roleID] {
					userID, err := common.ParseID(member.User.ID)
					if err == nil {
						holders = append(holders, userID)
					}
					break
				}
			}
		}

		if len(members) < MaxMemberFetchLimit {
			break
		}
		after = members[len(members)-1].User.ID
	}

	return holders, nil
}

// EnsureRole returns the role's ID, creating the role if it is missing
func (m *DiscordRoleManager) EnsureRole(ctx context.Context, guildID int64, spec application.RoleSpec) (string, error) {
	gid := common.FormatID(guildID)

	roleID, err := m.findRoleID(ctx, gid, spec.Name)
	if err != nil {
		return "", err
	}
	if roleID != "" {
		return roleID, nil
	}

	color := spec.Color
	role, err := m.api.GuildRoleCreate(gid, &discordgo.RoleParams{
		Name:  spec.Name,
		Color: &color,
	}, discordgo.WithContext(ctx))
	if err != nil {
		err = classifyDiscordError(fmt.Errorf("failed to create role %q: %w", spec.Name, err))
		if errors.Is(err, domain.ErrRolePermission) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrRoleNotFound, err)
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"role":    spec.Name,
		"roleID":  role.ID,
	}).Info("Created tier role")

	return role.ID, nil
}

// Grant adds the named role to the member
func (m *DiscordRoleManager) Grant(ctx context.Context, guildID, userID int64, roleName string) error {
	gid := common.FormatID(guildID)

	roleID, err := m.findRoleID(ctx, gid, roleName)
	if err != nil {
		return err
	}
	if roleID == "" {
		return fmt.Errorf("role %q: %w", roleName, domain.ErrRoleNotFound)
	}

	if err := m.api.GuildMemberRoleAdd(gid, common.FormatID(userID), roleID, discordgo.WithContext(ctx)); err != nil {
		return classifyDiscordError(fmt.Errorf("failed to add role %q: %w", roleName, err))
	}
	return nil
}

// Revoke removes the named role from the member; a missing role is a no-op
func (m *DiscordRoleManager) Revoke(ctx context.Context, guildID, userID int64, roleName string) error {
	gid := common.FormatID(guildID)

	roleID, err := m.findRoleID(ctx, gid, roleName)
	if err != nil {
		return err
	}
	if roleID == "" {
		return nil
	}

	if err := m.api.GuildMemberRoleRemove(gid, common.FormatID(userID), roleID, discordgo.WithContext(ctx)); err != nil {
		return classifyDiscordError(fmt.Errorf("failed to remove role %q: %w", roleName, err))
	}
	return nil
}

// AnnounceTierChange posts a tier change to the guild's notification channel
func (m *DiscordRoleManager) AnnounceTierChange(ctx context.Context, channelID, guildID, userID int64, newTier string, promoted bool) error {
	embed := buildTierChangeEmbed(userID, newTier, promoted)
	if _, err := m.api.ChannelMessageSendEmbed(common.FormatID(channelID), embed, discordgo.WithContext(ctx)); err != nil {
		return classifyDiscordError(fmt.Errorf("failed to send announcement: %w", err))
	}
	return nil
}

func buildTierChangeEmbed(userID int64, newTier string, promoted bool) *discordgo.MessageEmbed {
	if promoted {
		return &discordgo.MessageEmbed{
			Title:       "🎉 Новая роль!",
			Description: fmt.Sprintf("%s получает роль **%s**!", common.GetUserMention(userID), newTier),
			Color:       common.ColorSuccess,
		}
	}
	return &discordgo.MessageEmbed{
		Title:       "📉 Роль изменена",
		Description: fmt.Sprintf("%s теперь **%s**", common.GetUserMention(userID), newTier),
		Color:       common.ColorWarning,
	}
}

func (m *DiscordRoleManager) roleNamesByID(ctx context.Context, guildID string) (map[string]string, error) {
	roles, err := m.api.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classifyDiscordError(fmt.Errorf("failed to get guild roles: %w", err))
	}

	names := make(map[string]string, len(roles))
	for _, role := range roles {
		names[role.ID] = role.Name
	}
	return names, nil
}

// findRoleID returns the ID of the first role named name, "" when there is none
func (m *DiscordRoleManager) findRoleID(ctx context.Context, guildID, name string) (string, error) {
	roles, err := m.api.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", classifyDiscordError(fmt.Errorf("failed to get guild roles: %w", err))
	}

	for _, role := range roles {
		if role.Name == name {
			return role.ID, nil
		}
	}
	return "", nil
}

// classifyDiscordError marks permission refusals with domain.ErrRolePermission
func classifyDiscordError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	forbidden := restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden
	missingPerms := restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeMissingPermissions
	if forbidden || missingPerms {
		return fmt.Errorf("%w: %w", domain.ErrRolePermission, err)
	}
	return err
}

func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMember
}
