package entities

// GuildStats aggregates all accounts of a guild
type GuildStats struct {
	AccountCount  int64
	TotalPoints   int64
	AveragePoints float64 // 0 when the guild has no accounts
	MaxPoints     int64
}

// LeaderboardEntry is one row of the leaderboard
type LeaderboardEntry struct {
	Position int // 1-based position in the ordered list
	UserID   int64
	Points   int64
}

// ResetSummary reports what a guild reset removed
type ResetSummary struct {
	AccountsRemoved     int64
	TransactionsRemoved int64
}
