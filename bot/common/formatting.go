package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatPoints formats a points amount with thousand separators
func FormatPoints(points int64) string {
	if points < 0 {
		return "-" + FormatPoints(-points)
	}

	str := fmt.Sprintf("%d", points)

	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatSignedPoints formats a transaction amount with an explicit sign
func FormatSignedPoints(amount int64) string {
	if amount > 0 {
		return "+" + FormatPoints(amount)
	}
	return FormatPoints(amount)
}

// FormatAverage formats an average with one decimal
func FormatAverage(avg float64) string {
	return fmt.Sprintf("%.1f", avg)
}

// FormatDate formats a transaction date the way history lists show it
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

var medals = []string{"🥇", "🥈", "🥉", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

// Medal returns the leaderboard marker for a 1-based position on its page
func Medal(position int) string {
	if position >= 1 && position <= len(medals) {
		return medals[position-1]
	}
	return fmt.Sprintf("%d.", position)
}

// TotalPages returns how many pages of pageSize are needed for count items, at least 1
func TotalPages(count int64, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 1
	}
	return int((count + int64(pageSize) - 1) / int64(pageSize))
}
