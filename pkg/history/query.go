package history

import "fmt"

const (
	// DefaultLimit is the number of records returned when Limit is 0.
	DefaultLimit = 100

	// MaxLimit is the most records a single query may return.
	MaxLimit = 10000
)

// ValidSortFields contains the fields that can be used for sorting.
var ValidSortFields = map[string]bool{
	"started_at":  true,
	"recorded_at": true,
	"duration_ms": true,
}

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// Validate reports whether the query parameters are usable.
func (q *Query) Validate() error {
	if q.Limit < 0 {
		return NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}

	if q.Offset < 0 {
		return NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}

	if q.SortBy != "" && !ValidSortFields[q.SortBy] {
		return NewQueryError(q, fmt.Errorf("invalid sort field: %s", q.SortBy))
	}

	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	if q.StartTime != nil && q.EndTime != nil {
		if q.StartTime.After(*q.EndTime) {
			return NewQueryError(q, fmt.Errorf("start time must be before end time"))
		}
	}

	if q.Kind != "" && q.Kind != KindInference && q.Kind != KindFeedback {
		return NewQueryError(q, fmt.Errorf("invalid kind: %s (must be 'inference' or 'feedback')", q.Kind))
	}

	if q.Status != "" && q.Status != StatusOK && q.Status != StatusError {
		return NewQueryError(q, fmt.Errorf("invalid status: %s (must be 'ok' or 'error')", q.Status))
	}

	return nil
}

// ApplyDefaults fills the pagination and sorting fields the store would
// otherwise default internally, so callers can log the effective query.
func (q *Query) ApplyDefaults() {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = "started_at"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}
