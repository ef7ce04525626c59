package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sweep_radar/internal/model"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		entry   model.Entry
		filters []model.Filter
		want    bool
	}{
		{
			name:    "no filters passes everything",
			entry:   model.Entry{Title: "anything", PrizeSummary: "whatever"},
			filters: nil,
			want:    true,
		},
		{
			name:  "include word matches title",
			entry: model.Entry{Title: "Win a Trip to Hawaii", PrizeSummary: "Airfare for two"},
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeAll, Value: "trip"},
			},
			want: true,
		},
		{
			name:  "include word matches prize",
			entry: model.Entry{Title: "Summer Giveaway", PrizeSummary: "$500 gift card"},
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeAll, Value: "gift card"},
			},
			want: true,
		},
		{
			name:  "include word no match",
			entry: model.Entry{Title: "Summer Giveaway", PrizeSummary: "A grill"},
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeAll, Value: "cash"},
			},
			want: false,
		},
		{
			name:  "exclude word blocks match",
			entry: model.Entry{Title: "Instant Win Game", Eligibility: "Canada only"},
			filters: []model.Filter{
				{Kind: model.FilterExclude, Scope: model.ScopeAll, Value: "canada"},
			},
			want: false,
		},
		{
			name:  "title scope ignores content",
			entry: model.Entry{Title: "Car Sweepstakes", PrizeSummary: "cash"},
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeTitle, Value: "cash"},
			},
			want: false,
		},
		{
			name:  "content scope ignores title",
			entry: model.Entry{Title: "Cash Sweepstakes", PrizeSummary: "a boat"},
			filters: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeContent, Value: "cash"},
			},
			want: false,
		},
		{
			name:  "exclude regex",
			entry: model.Entry{Title: "Daily Instant Win", PrizeSummary: "coupon"},
			filters: []model.Filter{
				{Kind: model.FilterExcludeRe, Scope: model.ScopeAll, Value: `instant\s+win`},
			},
			want: false,
		},
		{
			name:  "invalid regex never matches",
			entry: model.Entry{Title: "Anything"},
			filters: []model.Filter{
				{Kind: model.FilterIncludeRe, Scope: model.ScopeAll, Value: "("},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.entry, tt.filters)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Match mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRules(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []model.Filter
		wantErr bool
	}{
		{
			name: "empty",
		},
		{
			name:    "words and regexes",
			include: []string{"cash", " re:gift\\s+card ", ""},
			exclude: []string{"canada"},
			want: []model.Filter{
				{Kind: model.FilterInclude, Scope: model.ScopeAll, Value: "cash"},
				{Kind: model.FilterIncludeRe, Scope: model.ScopeAll, Value: "gift\\s+card"},
				{Kind: model.FilterExclude, Scope: model.ScopeAll, Value: "canada"},
			},
		},
		{
			name:    "scoped rules",
			include: []string{"title:re:^win", "content: cash", "title:"},
			exclude: []string{"content:canada", "headline:car"},
			want: []model.Filter{
				{Kind: model.FilterIncludeRe, Scope: model.ScopeTitle, Value: "^win"},
				{Kind: model.FilterInclude, Scope: model.ScopeContent, Value: "cash"},
				{Kind: model.FilterExclude, Scope: model.ScopeContent, Value: "canada"},
				{Kind: model.FilterExclude, Scope: model.ScopeAll, Value: "headline:car"},
			},
		},
		{
			name:    "invalid scoped regex",
			include: []string{"title:re:["},
			wantErr: true,
		},
		{
			name:    "invalid regex",
			exclude: []string{"re:("},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRules(tt.include, tt.exclude)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseRules mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
