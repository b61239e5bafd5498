package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	PlanJobs Phase = iota
	DeliverJobs
)

func (p Phase) String() string {
	switch p {
	case PlanJobs:
		return "plan_jobs"
	case DeliverJobs:
		return "deliver_jobs"
	default:
		return ""
	}
}

// PlannedUpdate reports how many jobs a plan produced.
func PlannedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlanJobs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Planned %d reminders", total),
	}
}

func deliverStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeliverJobs,
		Step:    0,
		Total:   total,
		Message: "Delivering reminders...",
	}
}

func deliveredUpdate(step, total int, job Job) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeliverJobs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, job.Recipient, job.Reason),
		Data:    job,
	}
}

func deliverFailedUpdate(step, total int, job Job, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeliverJobs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s (%s): %v", step, total, job.Recipient, job.Reason, err),
		Data:    job,
	}
}
