package utils

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// MessageType selects the color of a CLI message.
type MessageType int

const (
	DefaultMessage MessageType = iota
	SuccessMessage
	ErrorMessage
	StatusMessage
	WarningMessage
)

// ANSI escape sequences of the message colors.
const (
	DefaultColor = "\x1b[0m"
	StatusColor  = "\x1b[36m"
	SuccessColor = "\x1b[32m"
	ErrorColor   = "\x1b[31m"
	WarningColor = "\x1b[33m"
)

var messageColors = map[MessageType]string{
	DefaultMessage: DefaultColor,
	SuccessMessage: SuccessColor,
	ErrorMessage:   ErrorColor,
	StatusMessage:  StatusColor,
	WarningMessage: WarningColor,
}

// NoColor disables DecorateText. It starts out set when the NO_COLOR
// environment variable is present.
var NoColor = os.Getenv("NO_COLOR") != ""

// DecorateText wraps s in the color of msgType.
func DecorateText(s string, msgType MessageType) string {
	c, ok := messageColors[msgType]
	if !ok || NoColor {
		return s
	}
	return c + s + DefaultColor
}

// FormatTime renders d as days, hours, minutes and seconds, leaving out
// the leading units that are zero.
func FormatTime(d time.Duration) string {
	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int64(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute

	var parts []string
	switch {
	case days > 0:
		parts = append(parts, fmt.Sprintf("%dd", days))
		fallthrough
	case hours > 0:
		parts = append(parts, fmt.Sprintf("%dh", hours))
		fallthrough
	case minutes > 0:
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%.2fs", d.Seconds()))
	return strings.Join(parts, " ")
}
