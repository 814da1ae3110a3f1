// Package model defines the core domain types shared across the
// application: inbox items, notification types, and configuration.
package model

import (
	"strings"
	"time"
)

// ItemType classifies an inbox item by the kind of notification it
// carries.
type ItemType string

const (
	TypeEmail    ItemType = "email"
	TypeCalendar ItemType = "calendar"
	TypeAlert    ItemType = "alert"
	TypeTask     ItemType = "task"
	TypePayment  ItemType = "payment"
	TypeNews     ItemType = "news"
	TypeDeploy   ItemType = "deploy"
	TypeReminder ItemType = "reminder"
	TypeBluesky  ItemType = "bluesky"
	TypeMastodon ItemType = "mastodon"
	TypeOther    ItemType = "other"
)

// ItemTypes lists all recognized types in display order.
var ItemTypes = []ItemType{
	TypeEmail,
	TypeCalendar,
	TypeAlert,
	TypeTask,
	TypePayment,
	TypeNews,
	TypeDeploy,
	TypeReminder,
	TypeBluesky,
	TypeMastodon,
	TypeOther,
}

var typeIcons = map[ItemType]string{
	TypeEmail:    "📧",
	TypeCalendar: "📅",
	TypeAlert:    "🚨",
	TypeTask:     "✅",
	TypePayment:  "💰",
	TypeNews:     "📰",
	TypeDeploy:   "🚀",
	TypeReminder: "⏰",
	TypeBluesky:  "🦋",
	TypeMastodon: "🐘",
	TypeOther:    "📌",
}

// ValidType reports whether t is a recognized item type.
func ValidType(t ItemType) bool {
	_, ok := typeIcons[t]
	return ok
}

// NormalizeType maps a raw type string onto a recognized ItemType,
// falling back to TypeOther for anything unrecognized or empty.
func NormalizeType(raw string) ItemType {
	t := ItemType(strings.ToLower(strings.TrimSpace(raw)))
	if ValidType(t) {
		return t
	}
	return TypeOther
}

// IconFor returns the display icon for an item type.
func IconFor(t ItemType) string {
	if icon, ok := typeIcons[t]; ok {
		return icon
	}
	return typeIcons[TypeOther]
}

// InboxItem is one normalized notification record in the unified inbox.
// Items are immutable after ingestion except for the read flag.
type InboxItem struct {
	ID         int64          `json:"id"`
	ReceivedAt time.Time      `json:"received_at"`
	Type       ItemType       `json:"type"`
	Source     string         `json:"source"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Read       bool           `json:"read"`
}

// TypeCount aggregates totals for one item type.
type TypeCount struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}
