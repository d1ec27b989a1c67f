package repository

import (
	"context"
	"errors"
	"fmt"

	"pointsbot/database"
	"pointsbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// RoleThresholdRepository implements the RoleThresholdRepository interface
type RoleThresholdRepository struct {
	q       Queryable
	guildID int64
}

// NewRoleThresholdRepository creates a new role threshold repository scoped to a guild
func NewRoleThresholdRepository(db *database.DB, guildID int64) *RoleThresholdRepository {
	return &RoleThresholdRepository{q: db.Pool, guildID: guildID}
}

func newRoleThresholdRepository(q Queryable, guildID int64) *RoleThresholdRepository {
	return &RoleThresholdRepository{q: q, guildID: guildID}
}

// GetAll returns the guild's thresholds ordered by points ascending
func (r *RoleThresholdRepository) GetAll(ctx context.Context) ([]*entities.RoleThreshold, error) {
	query := `
		SELECT guild_id, points_required, role_name, role_color, created_at, updated_at
		FROM role_thresholds
		WHERE guild_id = $1
		ORDER BY points_required ASC
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, storageError("get role thresholds", err)
	}
	defer rows.Close()

	thresholds := make([]*entities.RoleThreshold, 0)
	for rows.Next() {
		var t entities.RoleThreshold
		if err := rows.Scan(&t.GuildID, &t.PointsRequired, &t.RoleName, &t.RoleColor, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, storageError("scan role threshold", err)
		}
		thresholds = append(thresholds, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate role thresholds", err)
	}

	return thresholds, nil
}

// GetByPoints retrieves the threshold at an exact point value
func (r *RoleThresholdRepository) GetByPoints(ctx context.Context, pointsRequired int64) (*entities.RoleThreshold, error) {
	query := `
		SELECT guild_id, points_required, role_name, role_color, created_at, updated_at
		FROM role_thresholds
		WHERE guild_id = $1 AND points_required = $2
	`

	var t entities.RoleThreshold
	err := r.q.QueryRow(ctx, query, r.guildID, pointsRequired).Scan(
		&t.GuildID, &t.PointsRequired, &t.RoleName, &t.RoleColor, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(fmt.Sprintf("get role threshold at %d points", pointsRequired), err)
	}

	return &t, nil
}

// Upsert creates the threshold or overwrites name and colour at that point value
func (r *RoleThresholdRepository) Upsert(ctx context.Context, threshold *entities.RoleThreshold) error {
	query := `
		INSERT INTO role_thresholds (guild_id, points_required, role_name, role_color)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, points_required) DO UPDATE
		SET role_name = EXCLUDED.role_name,
		    role_color = EXCLUDED.role_color,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	threshold.GuildID = r.guildID
	err := r.q.QueryRow(ctx, query,
		r.guildID,
		threshold.PointsRequired,
		threshold.RoleName,
		threshold.RoleColor,
	).Scan(&threshold.CreatedAt, &threshold.UpdatedAt)
	if err != nil {
		return storageError(fmt.Sprintf("upsert role threshold at %d points", threshold.PointsRequired), err)
	}

	return nil
}

// Delete removes the threshold at an exact point value, reporting whether one existed
func (r *RoleThresholdRepository) Delete(ctx context.Context, pointsRequired int64) (bool, error) {
	result, err := r.q.Exec(ctx,
		`DELETE FROM role_thresholds WHERE guild_id = $1 AND points_required = $2`,
		r.guildID, pointsRequired,
	)
	if err != nil {
		return false, storageError(fmt.Sprintf("delete role threshold at %d points", pointsRequired), err)
	}

	return result.RowsAffected() > 0, nil
}
