package domain

import dErrors "medfund/pkg/domain-errors"

// CaseStatus is the lifecycle state of a sponsorship case.
//
// Invariants:
//   - Transitions happen only along edges in caseTransitions; there is no
//     generic setter that bypasses the table.
//   - completed and cancelled are terminal.
//   - funded never returns to active (donations keep flowing, the milestone
//     is crossed exactly once).
type CaseStatus string

const (
	// CaseStatusPendingVerification is the verification-gated entry state: a
	// doctor must verify the case before it accepts donations.
	CaseStatusPendingVerification CaseStatus = "pending_verification"
	// CaseStatusActive accepts donations and has not reached its goal.
	CaseStatusActive CaseStatus = "active"
	// CaseStatusFunded has reached or exceeded its goal and still accepts
	// donations (overage is uncapped).
	CaseStatusFunded CaseStatus = "funded"
	// CaseStatusCompleted is terminal: treatment concluded.
	CaseStatusCompleted CaseStatus = "completed"
	// CaseStatusCancelled is terminal: case withdrawn administratively.
	CaseStatusCancelled CaseStatus = "cancelled"
)

// caseTransitions is the single source of truth for allowed status edges.
var caseTransitions = map[CaseStatus]map[CaseStatus]bool{
	CaseStatusPendingVerification: {
		CaseStatusActive:    true,
		CaseStatusCancelled: true,
	},
	CaseStatusActive: {
		CaseStatusFunded:    true,
		CaseStatusCompleted: true,
		CaseStatusCancelled: true,
	},
	CaseStatusFunded: {
		CaseStatusCompleted: true,
		CaseStatusCancelled: true,
	},
	CaseStatusCompleted: {},
	CaseStatusCancelled: {},
}

// ParseCaseStatus constructs a CaseStatus from external input.
func ParseCaseStatus(s string) (CaseStatus, error) {
	cs := CaseStatus(s)
	if !cs.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown case status %q", s)
	}
	return cs, nil
}

// IsValid reports whether the status is a known lifecycle state.
func (s CaseStatus) IsValid() bool {
	_, ok := caseTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> next is allowed.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	return caseTransitions[s][next]
}

// IsTerminal reports whether the status has no outgoing edges.
func (s CaseStatus) IsTerminal() bool {
	return len(caseTransitions[s]) == 0 && s.IsValid()
}

// AcceptsDonations reports whether donations may be recorded against a case
// in this status. Funded cases continue to accept overage.
func (s CaseStatus) AcceptsDonations() bool {
	return s == CaseStatusActive || s == CaseStatusFunded
}

func (s CaseStatus) String() string { return string(s) }
