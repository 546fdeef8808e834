package models

// CompletionState records the last completed local date.
type CompletionState struct {
	LastCompletionDate string `json:"last_completion_date,omitempty"` // YYYY-MM-DD, empty when never completed
	IsDayCompleted     bool   `json:"is_day_completed"`
}

// Phase is where today sits in the per-day state machine.
type Phase string

const (
	PhaseOpen        Phase = "open"
	PhaseCompletable Phase = "completable"
	PhaseClosed      Phase = "closed"
)

// PhaseOf derives the phase from the checklist and completion state.
func PhaseOf(h HabitSet, c CompletionState) Phase {
	if c.IsDayCompleted {
		return PhaseClosed
	}
	if h.MandatoryComplete() {
		return PhaseCompletable
	}
	return PhaseOpen
}
