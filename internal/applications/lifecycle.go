// Package applications implements the volunteer application lifecycle.
//
// The functions in this file are the state machine proper: they check only
// the current status and mutate the record in memory. Who may call them, and
// what the database does around them, is the service's concern.
package applications

import (
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/apperr"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
)

var edges = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.ApplicationPending:  {models.ApplicationAccepted, models.ApplicationRejected, models.ApplicationWithdrawn},
	models.ApplicationAccepted: {models.ApplicationAttended, models.ApplicationNoShow, models.ApplicationWithdrawn},
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to models.ApplicationStatus) bool {
	for _, s := range edges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s models.ApplicationStatus) bool {
	return len(edges[s]) == 0
}

func CanWithdraw(app *models.Application) bool {
	return CanTransition(app.Status, models.ApplicationWithdrawn)
}

func transition(app *models.Application, to models.ApplicationStatus) error {
	if !CanTransition(app.Status, to) {
		return apperr.Transition("application", string(app.Status), string(to))
	}
	app.Status = to
	return nil
}

func Approve(app *models.Application, notes string, now time.Time) error {
	if err := transition(app, models.ApplicationAccepted); err != nil {
		return err
	}
	app.OrganizerNotes = notes
	app.RespondedAt = &now
	return nil
}

func Reject(app *models.Application, notes string, now time.Time) error {
	if err := transition(app, models.ApplicationRejected); err != nil {
		return err
	}
	app.OrganizerNotes = notes
	app.RespondedAt = &now
	return nil
}

func MarkAttended(app *models.Application, hours float64, now time.Time) error {
	if err := transition(app, models.ApplicationAttended); err != nil {
		return err
	}
	app.HoursCompleted = hours
	app.CompletedAt = &now
	return nil
}

func MarkNoShow(app *models.Application, now time.Time) error {
	if err := transition(app, models.ApplicationNoShow); err != nil {
		return err
	}
	app.HoursCompleted = 0
	app.CompletedAt = &now
	return nil
}

func Withdraw(app *models.Application, now time.Time) error {
	if err := transition(app, models.ApplicationWithdrawn); err != nil {
		return err
	}
	app.WithdrawnAt = &now
	return nil
}
