package telegram

import (
	"fmt"
	"strings"

	"github.com/hypersec/hypersecretary/internal/model"
)

// formatItemLine renders one inbox item as a two-line list entry with
// an unread marker, type icon, date, source, and truncated title.
func formatItemLine(item model.InboxItem) string {
	marker := " "
	if !item.Read {
		marker = "🔵"
	}
	icon := model.IconFor(item.Type)
	date := item.ReceivedAt.Format("02 Jan 15:04")

	// Drop the instance part of fediverse handles like @user@example.com.
	source := item.Source
	if at := strings.LastIndex(source, "@"); at > 0 {
		source = source[:at]
	}
	source = truncateRunes(source, 20)
	title := truncateRunes(item.Title, 50)

	return fmt.Sprintf("%s%s %s | %s\n   %s", marker, icon, date, source, title)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
