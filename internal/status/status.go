// Package status maps free-text backend statuses to presentation categories.
package status

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is a presentational bucket for a status string.
type Category int

const (
	Unknown Category = iota
	Positive
	Pending
	Negative
	InProgress
	Neutral
)

var categoryNames = map[Category]string{
	Unknown:    "unknown",
	Positive:   "positive",
	Pending:    "pending",
	Negative:   "negative",
	InProgress: "in-progress",
	Neutral:    "neutral",
}

// String returns the CSS-friendly name of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[Unknown]
}

// Each status belongs to at most one set; the backend guarantees it.
var membership = map[string]Category{
	"approved":    Positive,
	"active":      Positive,
	"completed":   Positive,
	"confirmed":   Positive,
	"paid":        Positive,
	"success":     Positive,
	"pending":     Pending,
	"submitted":   Pending,
	"upcoming":    Pending,
	"booked":      Pending,
	"rejected":    Negative,
	"blocked":     Negative,
	"cancelled":   Negative,
	"failed":      Negative,
	"processing":  InProgress,
	"in progress": InProgress,
}

// Classify maps s to a Category. Matching is case-insensitive and ignores
// surrounding whitespace. Empty input is Unknown; anything unlisted is Neutral.
func Classify(s string) Category {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return Unknown
	}
	if c, ok := membership[key]; ok {
		return c
	}
	return Neutral
}

// Badge is the rendered form of a status cell.
type Badge struct {
	Label    string
	Category Category
	Color    string
}

// Class returns the CSS class for the badge.
func (b Badge) Class() string {
	return "badge badge-" + b.Category.String()
}

var palette = map[Category]string{
	Unknown:    "#94a3b8",
	Positive:   "#16a34a",
	Pending:    "#d97706",
	Negative:   "#dc2626",
	InProgress: "#2563eb",
	Neutral:    "#475569",
}

// Color returns the hex color used for the category in charts and badges.
func Color(c Category) string {
	if color, ok := palette[c]; ok {
		return color
	}
	return palette[Unknown]
}

// BadgeFor classifies s and builds its badge.
func BadgeFor(s string) Badge {
	c := Classify(s)
	label := "—"
	if c != Unknown {
		// Casers keep state between calls, so each badge gets its own.
		label = cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s)))
	}
	return Badge{Label: label, Category: c, Color: Color(c)}
}
