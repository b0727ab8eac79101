package domain

import dErrors "medfund/pkg/domain-errors"

// UrgencyLevel ranks how quickly a case needs funding. Listing orders by
// urgency first (critical > high > medium > low), then recency.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// urgencyRank defines the sort order; higher is more urgent.
var urgencyRank = map[UrgencyLevel]int{
	UrgencyLow:      1,
	UrgencyMedium:   2,
	UrgencyHigh:     3,
	UrgencyCritical: 4,
}

// ParseUrgencyLevel constructs an UrgencyLevel from external input.
func ParseUrgencyLevel(s string) (UrgencyLevel, error) {
	u := UrgencyLevel(s)
	if !u.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown urgency level %q", s)
	}
	return u, nil
}

// IsValid reports whether the level is one of the supported values.
func (u UrgencyLevel) IsValid() bool {
	_, ok := urgencyRank[u]
	return ok
}

// Rank returns the numeric sort weight; unknown levels rank lowest.
func (u UrgencyLevel) Rank() int { return urgencyRank[u] }

func (u UrgencyLevel) String() string { return string(u) }
