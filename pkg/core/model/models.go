package model

import "time"

// ParticipantType distinguishes the two service tracks. Slots carry the same
// type and only accept matching participants.
type ParticipantType string

const (
	TypeJunior ParticipantType = "junior"
	TypeSenior ParticipantType = "senior"
)

func (t ParticipantType) IsValid() bool {
	return t == TypeJunior || t == TypeSenior
}

// CopyType is a participant attribute that drives a pairing exclusion: two
// "small" participants may never share a slot.
type CopyType string

const (
	CopySmall CopyType = "small"
	CopyLarge CopyType = "large"
)

// CategoryKey groups slots by their recurring role (e.g. weekday early
// session) for fairness bucketing, independent of exact date and time.
type CategoryKey string

// TotalKey is the reserved ledger key holding a participant's total
// assignment count for the month.
const TotalKey CategoryKey = "total"

// Participant represents a registered service member. The registry owns
// the lifecycle; the roster engine treats participants as read-only.
type Participant struct {
	ID       string
	Name     string
	Gender   string
	Type     ParticipantType
	CopyType CopyType
	Grade    string
	IsActive bool
}

// TimeSlot is one service session on a given day. Assigned holds zero or
// exactly two participant IDs; a singleton assignment never persists.
type TimeSlot struct {
	Time          string // "15:04"
	Type          ParticipantType
	CategoryKey   CategoryKey
	Assigned      []string
	AssignedNames []string
	// Fixed marks externally pinned assignments, parallel to Assigned.
	// Engine-made assignments are always unfixed.
	Fixed []bool
}

// IsEmpty reports whether the slot has no assignment.
func (s *TimeSlot) IsEmpty() bool {
	return len(s.Assigned) == 0
}

// HasFixed reports whether any assigned index is externally pinned.
func (s *TimeSlot) HasFixed() bool {
	for _, f := range s.Fixed {
		if f {
			return true
		}
	}
	return false
}

// DaySchedule is one calendar day and its ordered time slots.
type DaySchedule struct {
	Date      string // "2006-01-02"
	TimeSlots []TimeSlot
}

// Weekday derives the day of week from the schedule date.
func (d *DaySchedule) Weekday() (time.Weekday, error) {
	t, err := time.Parse("2006-01-02", d.Date)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// WeekOfMonth returns the zero-based week bucket for a date, derived from
// day-of-month / 7. Used to cap repeat assignments within the same week.
func WeekOfMonth(t time.Time) int {
	return (t.Day() - 1) / 7
}
