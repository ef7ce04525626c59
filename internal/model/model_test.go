package model

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEntryID(t *testing.T) {
	const url = "https://sweepstakesfanatics.com/white-claw-friendsgiving-sweepstakes/"

	first := EntryID(url)
	for range 3 {
		if diff := cmp.Diff(first, EntryID(url)); diff != "" {
			t.Fatalf("id not stable (-want +got):\n%s", diff)
		}
	}
	if diff := cmp.Diff(40, len(first)); diff != "" {
		t.Errorf("id length mismatch (-want +got):\n%s", diff)
	}
	if EntryID(url+"?ref=1") == first {
		t.Error("different urls produced the same id")
	}
	// sha1("abc")
	if diff := cmp.Diff("a9993e364706816aba3e25717850c26c9cd0d89d", EntryID("abc")); diff != "" {
		t.Errorf("digest mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSeenRecord(t *testing.T) {
	chicago := time.FixedZone("CST", -6*3600)
	end := time.Date(2025, 12, 31, 23, 59, 0, 0, chicago)

	tests := []struct {
		name  string
		entry Entry
		want  SeenRecord
	}{
		{
			name:  "without deadline",
			entry: Entry{ID: "a", Source: "https://x.test/a", Title: "A"},
			want:  SeenRecord{ID: "a", URL: "https://x.test/a", Title: "A"},
		},
		{
			name:  "deadline converted to utc",
			entry: Entry{ID: "b", Source: "https://x.test/b", Title: "B", EndDate: &end},
			want: SeenRecord{
				ID: "b", URL: "https://x.test/b", Title: "B",
				DeadlineUTC: ptr(time.Date(2026, 1, 1, 5, 59, 0, 0, time.UTC)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSeenRecord(tt.entry)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NewSeenRecord mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
