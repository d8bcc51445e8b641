package history

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestNewRecord tests that new records get usable defaults.
func TestNewRecord(t *testing.T) {
	before := time.Now().UTC()
	rec := NewRecord(KindInference)
	after := time.Now().UTC()

	id, err := uuid.Parse(rec.ID)
	if err != nil {
		t.Fatalf("ID is not a valid UUID: %v", err)
	}
	if id.Version() != 7 {
		t.Errorf("Expected UUID version 7, got %d", id.Version())
	}

	if rec.Kind != KindInference {
		t.Errorf("Expected kind %q, got %q", KindInference, rec.Kind)
	}
	if rec.Status != StatusOK {
		t.Errorf("Expected status %q, got %q", StatusOK, rec.Status)
	}
	if rec.StartedAt.Before(before) || rec.StartedAt.After(after) {
		t.Errorf("StartedAt %v outside [%v, %v]", rec.StartedAt, before, after)
	}
	if !rec.RecordedAt.Equal(rec.StartedAt) {
		t.Errorf("Expected RecordedAt to equal StartedAt initially")
	}
}

// TestNewRecord_OrderedIDs tests that successive ids sort in creation order.
func TestNewRecord_OrderedIDs(t *testing.T) {
	prev := NewRecord(KindInference).ID
	for i := 0; i < 10; i++ {
		next := NewRecord(KindInference).ID
		if next <= prev {
			t.Fatalf("Expected ids to be monotonically increasing, got %s then %s", prev, next)
		}
		prev = next
	}
}

// TestRecord_TotalTokens tests token summation.
func TestRecord_TotalTokens(t *testing.T) {
	rec := &Record{InputTokens: 12, OutputTokens: 30}
	if got := rec.TotalTokens(); got != 42 {
		t.Errorf("Expected 42 total tokens, got %d", got)
	}
}

// TestQueryValidate_Valid tests that well-formed queries pass.
func TestQueryValidate_Valid(t *testing.T) {
	start := time.Now().Add(-time.Hour)
	end := time.Now()

	queries := []*Query{
		{},
		{Limit: 50, Offset: 10},
		{SortBy: "duration_ms", SortOrder: "asc"},
		{StartTime: &start, EndTime: &end},
		{Kind: KindFeedback, Status: StatusError},
	}

	for i, q := range queries {
		if err := q.Validate(); err != nil {
			t.Errorf("Query %d: unexpected error: %v", i, err)
		}
	}
}

// TestQueryValidate_Invalid tests that malformed queries are rejected.
func TestQueryValidate_Invalid(t *testing.T) {
	start := time.Now()
	end := start.Add(-time.Hour)

	queries := map[string]*Query{
		"negative limit":  {Limit: -1},
		"excessive limit": {Limit: MaxLimit + 1},
		"negative offset": {Offset: -5},
		"bad sort field":  {SortBy: "error; DROP TABLE history"},
		"bad sort order":  {SortOrder: "sideways"},
		"inverted range":  {StartTime: &start, EndTime: &end},
		"bad kind":        {Kind: "telemetry"},
		"bad status":      {Status: "maybe"},
	}

	for name, q := range queries {
		err := q.Validate()
		if err == nil {
			t.Errorf("%s: expected error, got nil", name)
			continue
		}

		var queryErr *QueryError
		if !errors.As(err, &queryErr) {
			t.Errorf("%s: expected *QueryError, got %T", name, err)
		}
	}
}

// TestQueryApplyDefaults tests default filling.
func TestQueryApplyDefaults(t *testing.T) {
	q := &Query{}
	q.ApplyDefaults()

	if q.Limit != DefaultLimit {
		t.Errorf("Expected limit %d, got %d", DefaultLimit, q.Limit)
	}
	if q.SortBy != "started_at" {
		t.Errorf("Expected sort field 'started_at', got %q", q.SortBy)
	}
	if q.SortOrder != "desc" {
		t.Errorf("Expected sort order 'desc', got %q", q.SortOrder)
	}

	// Explicit values survive.
	q = &Query{Limit: 7, SortBy: "duration_ms", SortOrder: "asc"}
	q.ApplyDefaults()
	if q.Limit != 7 || q.SortBy != "duration_ms" || q.SortOrder != "asc" {
		t.Errorf("ApplyDefaults overwrote explicit values: %+v", q)
	}
}
