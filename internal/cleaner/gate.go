package cleaner

import "github.com/fenilsonani/stalesweep/internal/classifier"

// Skip reasons written to the audit log
const (
	ReasonWhatIf       = "WhatIf"
	ReasonNotConfirmed = "not confirmed"
	ReasonCancelled    = "cancelled"
)

// ConfirmFunc approves or declines deleting one candidate
type ConfirmFunc func(c classifier.Candidate) bool

// AlwaysApprove approves every candidate (--yes)
func AlwaysApprove(classifier.Candidate) bool { return true }

// AlwaysDecline declines every candidate (non-interactive without --yes)
func AlwaysDecline(classifier.Candidate) bool { return false }

// Gate decides whether a candidate may be deleted
type Gate struct {
	Confirm ConfirmFunc
	// WhatIf simulates the run: every candidate is skipped and Confirm is
	// never asked
	WhatIf bool
}

// Decide returns whether to delete c and, when not, the skip reason
func (g Gate) Decide(c classifier.Candidate) (bool, string) {
	if g.WhatIf {
		return false, ReasonWhatIf
	}
	if g.Confirm == nil || !g.Confirm(c) {
		return false, ReasonNotConfirmed
	}
	return true, ""
}
