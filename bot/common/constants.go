package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287
	ColorDanger  = 0xED4245
	ColorWarning = 0xFEE75C
	ColorInfo    = 0x3498DB
	ColorMuted   = 0x99AAB5
)

// Leaderboard display limits
const (
	LeaderboardDefaultSize = 10
	LeaderboardMaxSize     = 25
)
