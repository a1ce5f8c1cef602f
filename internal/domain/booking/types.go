package booking

// Status is the appointment lifecycle state. confirmed is the only
// non-terminal state; completed, canceled and no_show are terminal.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusNoShow    Status = "no_show"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusCanceled, StatusNoShow:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s.IsValid() && s != StatusConfirmed
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Terminal states permit nothing.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusConfirmed && next.IsTerminal()
}

// CountsTowardCapacity reports whether an appointment in this status consumes
// slot capacity. A completed appointment still occupied its interval, so it
// counts; canceled and no-show free the slot.
func (s Status) CountsTowardCapacity() bool {
	return s == StatusConfirmed || s == StatusCompleted
}
