// Package model defines the domain types used across the application.
package model

import (
	"crypto/sha1" //nolint:gosec // content address, not a security boundary
	"encoding/hex"
	"time"
)

// Entry is one sweepstakes post extracted from a source page.
// Optional text fields are empty when the page did not provide them.
type Entry struct {
	ID             string
	Site           string
	Source         string
	Title          string
	PrizeSummary   string
	EntryFrequency string
	Eligibility    string
	StartDate      *time.Time
	EndDate        *time.Time
	EntryLink      string
	RulesLink      string
	ImageURL       string
}

// EntryID derives the stable identifier of an entry from its source URL.
func EntryID(source string) string {
	sum := sha1.Sum([]byte(source)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

// SeenRecord marks an entry identifier as already processed.
type SeenRecord struct {
	ID          string
	URL         string
	Title       string
	DeadlineUTC *time.Time
	RecordedAt  time.Time
}

// NewSeenRecord builds the record persisted for a freshly observed entry.
func NewSeenRecord(e Entry) SeenRecord {
	rec := SeenRecord{
		ID:    e.ID,
		URL:   e.Source,
		Title: e.Title,
	}
	if e.EndDate != nil {
		d := e.EndDate.UTC()
		rec.DeadlineUTC = &d
	}
	return rec
}

// FilterKind defines the type of filter rule.
type FilterKind string

// Supported filter kinds.
const (
	FilterInclude   FilterKind = "include"
	FilterExclude   FilterKind = "exclude"
	FilterIncludeRe FilterKind = "include_re"
	FilterExcludeRe FilterKind = "exclude_re"
)

// FilterScope defines which part of an entry a filter matches against.
type FilterScope string

// Supported filter scopes.
const (
	ScopeTitle   FilterScope = "title"
	ScopeContent FilterScope = "content"
	ScopeAll     FilterScope = "all"
)

// Filter is a keyword rule applied to entries before they are staged.
type Filter struct {
	Kind  FilterKind
	Scope FilterScope
	Value string
}
