package reconcile

import (
	"fmt"
	"time"
)

// Gate is the readiness state that decides whether a pass may write.
type Gate int

const (
	// GateLoading means no accounts snapshot has arrived and the grace period is running.
	GateLoading Gate = iota
	// GateEmpty means the accounts collection is empty, or never loaded within the grace period.
	GateEmpty
	// GateOpen means accounts are loaded and non-empty.
	GateOpen
)

func (g Gate) String() string {
	switch g {
	case GateLoading:
		return "loading"
	case GateEmpty:
		return "empty"
	case GateOpen:
		return "open"
	default:
		return fmt.Sprintf("gate(%d)", int(g))
	}
}

// Phase names one step of a pass.
type Phase string

const (
	PhaseCollapseAccounts Phase = "collapse-accounts"
	PhaseCollapseMembers  Phase = "collapse-members"
	PhaseBackfillHandles  Phase = "backfill-handles"
	PhaseCanonicalize     Phase = "canonicalize-assignments"
)

// Phases lists the phases in the order a pass runs them.
func Phases() []Phase {
	return []Phase{PhaseCollapseAccounts, PhaseCollapseMembers, PhaseBackfillHandles, PhaseCanonicalize}
}

// PhaseReport holds the writes one phase attempted. Skipped is set when the
// collections the phase needs were not loaded.
type PhaseReport struct {
	Phase   Phase
	Skipped bool
	Results []WriteResult
}

// PassReport describes one reconciliation pass.
type PassReport struct {
	Version  uint64
	Gate     Gate
	Skipped  bool
	Started  time.Time
	Finished time.Time
	Phases   []PhaseReport
}

// Results returns every write attempted, in order.
func (r PassReport) Results() []WriteResult {
	var all []WriteResult
	for _, p := range r.Phases {
		all = append(all, p.Results...)
	}
	return all
}

func (r PassReport) count(fn func(WriteResult) bool) int {
	n := 0
	for _, res := range r.Results() {
		if fn(res) {
			n++
		}
	}
	return n
}

// Deletes counts successful deletes.
func (r PassReport) Deletes() int {
	return r.count(func(w WriteResult) bool { return w.Op == OpDelete && w.OK() })
}

// Updates counts successful updates.
func (r PassReport) Updates() int {
	return r.count(func(w WriteResult) bool { return w.Op == OpUpdate && w.OK() })
}

// Failures counts failed writes other than records that were already gone.
func (r PassReport) Failures() int {
	return r.count(func(w WriteResult) bool { return !w.OK() && !w.Benign() })
}

// Writes counts every attempted write.
func (r PassReport) Writes() int { return len(r.Results()) }

// Phase returns the report for p, if it ran.
func (r PassReport) Phase(p Phase) (PhaseReport, bool) {
	for _, pr := range r.Phases {
		if pr.Phase == p {
			return pr, true
		}
	}
	return PhaseReport{}, false
}

func (r PassReport) Duration() time.Duration { return r.Finished.Sub(r.Started) }

func (r PassReport) Summary() string {
	if r.Skipped {
		return fmt.Sprintf("pass v%d skipped (gate %s)", r.Version, r.Gate)
	}
	return fmt.Sprintf("pass v%d: %d deleted, %d updated, %d failed", r.Version, r.Deletes(), r.Updates(), r.Failures())
}
