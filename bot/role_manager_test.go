package bot

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"pointsbot/application"
	"pointsbot/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDiscord keeps guild roles and members in memory
type fakeDiscord struct {
	roles     []*discordgo.Role
	members   map[string]*discordgo.Member
	nextID    int
	createErr error
	addErr    error
	sent      []*discordgo.MessageEmbed
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{members: make(map[string]*discordgo.Member), nextID: 100}
}

func (f *fakeDiscord) addRole(name string) string {
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.roles = append(f.roles, &discordgo.Role{ID: id, Name: name})
	return id
}

func (f *fakeDiscord) addMember(userID string, roleIDs ...string) {
	f.members[userID] = &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: roleIDs}
}

func (f *fakeDiscord) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeDiscord) GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := f.addRole(data.Name)
	return &discordgo.Role{ID: id, Name: data.Name, Color: *data.Color}, nil
}

func (f *fakeDiscord) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	member, ok := f.members[userID]
	if !ok {
		return nil, &discordgo.RESTError{
			Response: &http.Response{StatusCode: http.StatusNotFound},
			Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMember},
		}
	}
	return member, nil
}

func (f *fakeDiscord) GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error) {
	members := make([]*discordgo.Member, 0, len(f.members))
	for _, m := range f.members {
		members = append(members, m)
	}
	return members, nil
}

func (f *fakeDiscord) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	if f.addErr != nil {
		return f.addErr
	}
	member := f.members[userID]
	member.Roles = append(member.Roles, roleID)
	return nil
}

func (f *fakeDiscord) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	member := f.members[userID]
	kept := member.Roles[:0]
	for _, id := range member.Roles {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	member.Roles = kept
	return nil
}

func (f *fakeDiscord) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, embed)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func forbidden() error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions, Message: "Missing Permissions"},
	}
}

func TestDiscordRoleManager_GrantRevoke(t *testing.T) {
	ctx := context.Background()
	api := newFakeDiscord()
	scout := api.addRole("raider scout")
	api.addRole("member")
	api.addMember("42")
	m := &DiscordRoleManager{api: api}

	require.NoError(t, m.Grant(ctx, 1, 42, "raider scout"))
	names, err := m.MemberRoleNames(ctx, 1, 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"raider scout"}, names)

	holders, err := m.MembersWithRoles(ctx, 1, []string{"raider scout", "raider legend"})
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, holders)

	require.NoError(t, m.Revoke(ctx, 1, 42, "raider scout"))
	assert.NotContains(t, api.members["42"].Roles, scout)

	// Revoking a role the guild does not have is a no-op
	assert.NoError(t, m.Revoke(ctx, 1, 42, "raider legend"))

	err = m.Grant(ctx, 1, 42, "raider legend")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestDiscordRoleManager_EnsureRole(t *testing.T) {
	ctx := context.Background()
	api := newFakeDiscord()
	existing := api.addRole("raider newgen")
	m := &DiscordRoleManager{api: api}

	id, err := m.EnsureRole(ctx, 1, application.RoleSpec{Name: "raider newgen", Color: 0x2ecc71})
	require.NoError(t, err)
	assert.Equal(t, existing, id)
	assert.Len(t, api.roles, 1)

	id, err = m.EnsureRole(ctx, 1, application.RoleSpec{Name: "raider legend", Color: 0x9b59b6})
	require.NoError(t, err)
	assert.NotEqual(t, existing, id)
	assert.Len(t, api.roles, 2)

	api.createErr = forbidden()
	_, err = m.EnsureRole(ctx, 1, application.RoleSpec{Name: "raider commander"})
	assert.ErrorIs(t, err, domain.ErrRolePermission)

	api.createErr = fmt.Errorf("role limit reached")
	_, err = m.EnsureRole(ctx, 1, application.RoleSpec{Name: "raider commander"})
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestDiscordRoleManager_PermissionErrors(t *testing.T) {
	ctx := context.Background()
	api := newFakeDiscord()
	api.addRole("raider scout")
	api.addMember("42")
	api.addErr = forbidden()
	m := &DiscordRoleManager{api: api}

	err := m.Grant(ctx, 1, 42, "raider scout")
	assert.ErrorIs(t, err, domain.ErrRolePermission)
	assert.NotErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestDiscordRoleManager_UnknownMember(t *testing.T) {
	m := &DiscordRoleManager{api: newFakeDiscord()}

	names, err := m.MemberRoleNames(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDiscordRoleManager_Announce(t *testing.T) {
	api := newFakeDiscord()
	m := &DiscordRoleManager{api: api}

	require.NoError(t, m.AnnounceTierChange(context.Background(), 555, 1, 42, "raider legend", true))
	require.NoError(t, m.AnnounceTierChange(context.Background(), 555, 1, 42, "raider scout", false))

	require.Len(t, api.sent, 2)
	assert.Contains(t, api.sent[0].Description, "<@42>")
	assert.Contains(t, api.sent[0].Description, "raider legend")
	assert.NotEqual(t, api.sent[0].Title, api.sent[1].Title)
}
