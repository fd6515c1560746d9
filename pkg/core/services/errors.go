package services

import "errors"

var (
	// ErrNoConfirmedSchedule is returned when no schedule slots exist for
	// the requested month.
	ErrNoConfirmedSchedule = errors.New("no schedule found for the requested month")

	// ErrNoActiveParticipants is returned when the registry has no active
	// participants to assign.
	ErrNoActiveParticipants = errors.New("no active participants in the registry")

	// ErrScheduleConfirmed is returned when generation is blocked because
	// the month's schedule has already been confirmed.
	ErrScheduleConfirmed = errors.New("schedule for the requested month is already confirmed")
)
