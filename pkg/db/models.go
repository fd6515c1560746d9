package db

// Participant is a registry row. The registry is maintained outside the
// generation flow; the engine reads it as-is.
type Participant struct {
	ID       string
	Name     string
	Gender   string
	Type     string
	CopyType string
	Grade    string
	IsActive bool
}

// ScheduleSlot is one persisted time slot of a month's schedule.
type ScheduleSlot struct {
	ID          string
	Year        int
	Month       int
	Date        string // "2006-01-02"
	Time        string // "15:04"
	Type        string
	CategoryKey string
	Assigned    []string
	// AssignedNames mirrors Assigned by index.
	AssignedNames []string
	// Fixed marks externally pinned assignment positions.
	Fixed []bool
}

// AssignmentCount is one persisted per-participant category count.
type AssignmentCount struct {
	ID            string
	Year          int
	Month         int
	ParticipantID string
	CategoryKey   string
	Count         int
}

// Absence records that a participant was absent in a given month.
type Absence struct {
	ID            string
	ParticipantID string
	Year          int
	Month         int
}
