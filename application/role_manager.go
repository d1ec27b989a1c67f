package application

import "context"

// RoleSpec describes a tier role to create on the platform
type RoleSpec struct {
	Name  string
	Color int
}

// RoleManager is the platform capability the role reconciler drives. Implementations
// return domain.ErrRoleNotFound or domain.ErrRolePermission so callers can tell the
// two apart.
type RoleManager interface {
	// MemberRoleNames returns the names of every role the member holds
	MemberRoleNames(ctx context.Context, guildID, userID int64) ([]string, error)

	// MembersWithRoles returns the members holding any of the named roles
	MembersWithRoles(ctx context.Context, guildID int64, roleNames []string) ([]int64, error)

	// EnsureRole returns the role's platform ID, creating the role if it is missing
	EnsureRole(ctx context.Context, guildID int64, spec RoleSpec) (string, error)

	// Grant adds the named role to the member
	Grant(ctx context.Context, guildID, userID int64, roleName string) error

	// Revoke removes the named role from the member
	Revoke(ctx context.Context, guildID, userID int64, roleName string) error
}

// TierAnnouncer posts tier changes for a guild
type TierAnnouncer interface {
	AnnounceTierChange(ctx context.Context, channelID, guildID, userID int64, newTier string, promoted bool) error
}
