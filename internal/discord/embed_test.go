package discord

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"sweep_radar/internal/model"
)

var cst = time.FixedZone("CST", -6*60*60)

func ptr(t time.Time) *time.Time { return &t }

func TestBuildEmbed(t *testing.T) {
	end := time.Date(2025, 10, 31, 23, 59, 0, 0, time.UTC)
	start := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		entry model.Entry
		want  Embed
	}{
		{
			name: "all fields",
			entry: model.Entry{
				Source:         "https://sweepstakesfanatics.com/win/",
				Title:          "Win a Trip",
				PrizeSummary:   "A trip for two",
				EntryFrequency: "Daily",
				Eligibility:    "US 18+",
				StartDate:      ptr(start),
				EndDate:        ptr(end),
				EntryLink:      "https://brand.example.com/enter",
				RulesLink:      "https://brand.example.com/rules",
				ImageURL:       "https://cdn.example.com/trip.jpg",
			},
			want: Embed{
				Title:       "Win a Trip",
				URL:         "https://sweepstakesfanatics.com/win/",
				Description: "[Open Post](https://sweepstakesfanatics.com/win/) • [Enter Here](https://brand.example.com/enter) • [Rules](https://brand.example.com/rules)",
				Fields: []Field{
					{Name: "Prize", Value: "A trip for two"},
					{Name: "Entry Frequency", Value: "Daily", Inline: true},
					{Name: "Eligibility", Value: "US 18+"},
					{Name: "Start Date", Value: "Oct 01, 2025 06:00 AM CST", Inline: true},
					{Name: "End Date", Value: "Oct 31, 2025 05:59 PM CST", Inline: true},
				},
				Image:  &Image{URL: "https://cdn.example.com/trip.jpg"},
				Footer: &Footer{Text: "SweepstakesFanatics Radar"},
			},
		},
		{
			name: "sparse entry",
			entry: model.Entry{
				Source: "https://www.freebieshark.com/x/",
				Title:  "Sweepstakes",
			},
			want: Embed{
				Title:       "Sweepstakes",
				URL:         "https://www.freebieshark.com/x/",
				Description: "[Open Post](https://www.freebieshark.com/x/)",
				Footer:      &Footer{Text: "SweepstakesFanatics Radar"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildEmbed(tt.entry, EmbedOptions{Location: cst, Footer: "SweepstakesFanatics Radar"})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildEmbed mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildEmbedEndDateField(t *testing.T) {
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	hasEnd := func(e Embed) bool {
		for _, f := range e.Fields {
			if f.Name == "End Date" {
				return true
			}
		}
		return false
	}

	if !hasEnd(BuildEmbed(model.Entry{Source: "u", Title: "t", EndDate: &end}, EmbedOptions{})) {
		t.Error("expected End Date field when end date is set")
	}
	if hasEnd(BuildEmbed(model.Entry{Source: "u", Title: "t"}, EmbedOptions{})) {
		t.Error("expected no End Date field without end date")
	}
}

func TestBuildEmbedImage(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want *Image
	}{
		{name: "https image", url: "https://cdn.example.com/a.jpg", want: &Image{URL: "https://cdn.example.com/a.jpg"}},
		{name: "data uri", url: "data:image/gif;base64,R0lGODlhAQABAAAAACw="},
		{name: "relative path", url: "/img/a.jpg"},
		{name: "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildEmbed(model.Entry{Source: "u", Title: "t", ImageURL: tt.url}, EmbedOptions{})
			if diff := cmp.Diff(tt.want, got.Image); diff != "" {
				t.Errorf("image mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildEmbedLengthCaps(t *testing.T) {
	e := model.Entry{
		Source:       "https://example.com/" + strings.Repeat("p", 1200),
		Title:        strings.Repeat("é", 300),
		PrizeSummary: strings.Repeat("x", 2000),
		Eligibility:  strings.Repeat("y", 1024),
	}
	got := BuildEmbed(e, EmbedOptions{})

	checks := []struct {
		name  string
		value string
		limit int
		cut   bool
	}{
		{name: "title", value: got.Title, limit: MaxTitle, cut: true},
		{name: "description", value: got.Description, limit: MaxDescription, cut: true},
		{name: "prize", value: got.Fields[0].Value, limit: MaxFieldValue, cut: true},
		{name: "eligibility at limit", value: got.Fields[1].Value, limit: MaxFieldValue},
	}
	for _, c := range checks {
		if diff := cmp.Diff(c.limit, utf8.RuneCountInString(c.value)); diff != "" {
			t.Errorf("%s length mismatch (-want +got):\n%s", c.name, diff)
		}
		if diff := cmp.Diff(c.cut, strings.HasSuffix(c.value, "…")); diff != "" {
			t.Errorf("%s truncation marker mismatch (-want +got):\n%s", c.name, diff)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "hello", n: 5, want: "hello"},
		{in: "hello", n: 4, want: "hel…"},
		{in: "héllo", n: 2, want: "h…"},
		{in: "hello", n: 0, want: ""},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Truncate(tt.in, tt.n)); diff != "" {
			t.Errorf("Truncate(%q, %d) mismatch (-want +got):\n%s", tt.in, tt.n, diff)
		}
	}
}
