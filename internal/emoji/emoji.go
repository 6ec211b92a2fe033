package emoji

import "sync/atomic"

// EmojiMap holds emoji and fallback mappings
var emojiMap = map[string][2]string{
	// [emoji, fallback]
	"error":       {"❌", "[ERR]"},
	"warning":     {"⚠️", "[WRN]"},
	"info":        {"ℹ️", "[INF]"},
	"success":     {"✅", "[OK]"},
	"scan":        {"🩻", "[SCAN]"},
	"upload":      {"📤", "[UP]"},
	"file":        {"🖼️", "[IMG]"},
	"risk_high":   {"🔴", "[HIGH]"},
	"risk_medium": {"🟡", "[MED]"},
	"risk_low":    {"🟢", "[LOW]"},
	"confidence":  {"📈", "[CONF]"},
	"stethoscope": {"🩺", "[MD]"},
	"clipboard":   {"📋", "[NOTE]"},
	"hourglass":   {"⏳", "[...]"},
	"cancelled":   {"⏹️", "[STOP]"},
	"watch":       {"👀", "[WATCH]"},
	"help":        {"❓", "[?]"},
	"door":        {"🚪", "[EXIT]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled.Load() {
			return mapping[1] // fallback
		}
		return mapping[0] // emoji
	}
	return "[?]" // unknown key
}

// ForUrgency returns the traffic-light symbol for an urgency level
func ForUrgency(urgency string) string {
	switch urgency {
	case "High":
		return GetEmoji("risk_high")
	case "Medium":
		return GetEmoji("risk_medium")
	default:
		return GetEmoji("risk_low")
	}
}
