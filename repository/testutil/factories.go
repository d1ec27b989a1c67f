package testutil

import (
	"context"
	"testing"

	"pointsbot/database"
	"pointsbot/domain/entities"

	"github.com/stretchr/testify/require"
)

// CreateTestThreshold creates a role threshold with the default colour
func CreateTestThreshold(guildID, pointsRequired int64, roleName string) *entities.RoleThreshold {
	return &entities.RoleThreshold{
		GuildID:        guildID,
		PointsRequired: pointsRequired,
		RoleName:       roleName,
		RoleColor:      entities.DefaultRoleColor,
	}
}

// CreateTestTiers returns the four-tier table used across tests
func CreateTestTiers(guildID int64) []*entities.RoleThreshold {
	return []*entities.RoleThreshold{
		CreateTestThreshold(guildID, 50, "A"),
		CreateTestThreshold(guildID, 100, "B"),
		CreateTestThreshold(guildID, 150, "C"),
		CreateTestThreshold(guildID, 350, "D"),
	}
}

// InsertTestAccount writes an account row directly, bypassing the ledger
func InsertTestAccount(t *testing.T, db *database.DB, guildID, userID, points int64) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO accounts (guild_id, user_id, points) VALUES ($1, $2, $3)`,
		guildID, userID, points,
	)
	require.NoError(t, err)
}
