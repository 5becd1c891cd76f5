package recommend

import "strings"

// Activity is one suggestion as returned by the model.
type Activity struct {
	Title              string `json:"title"`
	Location           string `json:"location"`
	WhyItWorks         string `json:"whyItWorks"`
	AccessibilityNotes string `json:"accessibilityNotes"`
}

var fallbackActivities = []string{
	"Board games in a quiet study room — Mills Library • Easy to coordinate and low-noise • Accessibility: pick well-lit seating",
	"Campus coffee chat — Starbucks (MUSC) • Low-pressure hangout • Accessibility: avoid peak rush times",
	"Walk + talk loop — McMaster campus trails • Casual and flexible • Accessibility: choose paved routes",
	"Study session — Thode Library • Productive and social • Accessibility: reserve a quieter area",
	"Lunch meetup — Student Centre food court • Simple and convenient • Accessibility: pick seating away from speakers",
	"Farmers Market trip — Hamilton Farmers’ Market • Great for conversation • Accessibility: go during quieter hours",
	"Pulse gym session — DBAC • Easy shared activity • Accessibility: choose quiet hours",
	"Cootes Paradise walk — Trails near campus • Relaxed + scenic • Accessibility: choose flatter trail sections",
}

// FallbackActivities returns up to limit canned suggestions.
func FallbackActivities(limit int) []string {
	if limit > len(fallbackActivities) {
		limit = len(fallbackActivities)
	}
	if limit < 0 {
		limit = 0
	}
	out := make([]string, limit)
	copy(out, fallbackActivities[:limit])
	return out
}

// Line renders the activity as a single display string, skipping empty parts.
// Untitled activities render as "".
func (a Activity) Line() string {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(title)
	if loc := strings.TrimSpace(a.Location); loc != "" {
		sb.WriteString(" — ")
		sb.WriteString(loc)
	}
	if why := strings.TrimSpace(a.WhyItWorks); why != "" {
		sb.WriteString(" • ")
		sb.WriteString(why)
	}
	if notes := strings.TrimSpace(a.AccessibilityNotes); notes != "" {
		sb.WriteString(" • Accessibility: ")
		sb.WriteString(notes)
	}
	return sb.String()
}

// formatActivities renders the first limit activities, dropping untitled ones.
func formatActivities(activities []Activity, limit int) []string {
	if len(activities) > limit {
		activities = activities[:limit]
	}
	out := make([]string, 0, len(activities))
	for _, a := range activities {
		if line := a.Line(); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// fillActivities tops lines up to limit from the canned list without repeating a line.
func fillActivities(lines []string, limit int) []string {
	if len(lines) >= limit {
		return lines[:limit]
	}
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		seen[l] = struct{}{}
	}
	for _, l := range fallbackActivities {
		if len(lines) >= limit {
			break
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		lines = append(lines, l)
	}
	return lines
}
