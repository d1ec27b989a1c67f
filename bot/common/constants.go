package common

import "time"

// Embed colors
const (
	ColorSuccess = 0x2ECC71 // Green
	ColorError   = 0xE74C3C // Red
	ColorInfo    = 0x3498DB // Blue
	ColorWarning = 0xE67E22 // Orange
	ColorPoints  = 0xF1C40F // Gold
	ColorAdmin   = 0x9B59B6 // Purple
)

// Listing limits
const (
	LeaderboardPageSize = 10
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 25
	StatsTopUsers       = 3
)

// ResetConfirmTimeout is how long the /resetpoints buttons stay usable
const ResetConfirmTimeout = 30 * time.Second
