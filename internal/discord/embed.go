// Package discord renders entries as Discord embeds and delivers them to a
// webhook.
package discord

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"sweep_radar/internal/model"
)

// Discord limits.
const (
	MaxTitle       = 256
	MaxDescription = 1000
	MaxFieldValue  = 1024
	MaxFields      = 25
	MaxBatch       = 10
)

// DateLayout renders start and end dates.
const DateLayout = "Jan 02, 2006 03:04 PM MST"

const ellipsis = "…"

// Embed is a Discord rich embed.
type Embed struct {
	Title       string  `json:"title"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Image       *Image  `json:"image,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
}

// Field is one name/value row of an embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Image is an embed image.
type Image struct {
	URL string `json:"url"`
}

// Footer is the embed footer.
type Footer struct {
	Text string `json:"text"`
}

// EmbedOptions controls rendering.
type EmbedOptions struct {
	// Location is the display timezone for dates. Nil means UTC.
	Location *time.Location
	// Footer is the footer text, typically "<site name> Radar".
	Footer string
}

// BuildEmbed renders e. Fields appear in a fixed order and only when the
// entry has a value for them.
func BuildEmbed(e model.Entry, opts EmbedOptions) Embed {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	var fields []Field
	add := func(name, value string, inline bool) {
		if value == "" || len(fields) >= MaxFields {
			return
		}
		fields = append(fields, Field{Name: name, Value: Truncate(value, MaxFieldValue), Inline: inline})
	}
	add("Prize", e.PrizeSummary, false)
	add("Entry Frequency", e.EntryFrequency, true)
	add("Eligibility", e.Eligibility, false)
	add("Start Date", FormatDate(e.StartDate, loc), true)
	add("End Date", FormatDate(e.EndDate, loc), true)

	desc := fmt.Sprintf("[Open Post](%s)", e.Source)
	if e.EntryLink != "" {
		desc += fmt.Sprintf(" • [Enter Here](%s)", e.EntryLink)
	}
	if e.RulesLink != "" {
		desc += fmt.Sprintf(" • [Rules](%s)", e.RulesLink)
	}

	title := e.Title
	if strings.TrimSpace(title) == "" {
		title = "Sweepstakes"
	}

	embed := Embed{
		Title:       Truncate(title, MaxTitle),
		URL:         e.Source,
		Description: Truncate(desc, MaxDescription),
		Fields:      fields,
	}
	if opts.Footer != "" {
		embed.Footer = &Footer{Text: opts.Footer}
	}
	if isWebURL(e.ImageURL) {
		embed.Image = &Image{URL: e.ImageURL}
	}
	return embed
}

// Discord rejects the whole message when an embed image is not http(s).
func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// FormatDate renders t in loc, or "" for a nil date.
func FormatDate(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(DateLayout)
}

// Truncate caps s at n runes. A shortened value ends with an ellipsis that
// counts toward n.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	return string(r[:n-1]) + ellipsis
}
