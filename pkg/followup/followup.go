// Package followup decides whether an application has gone quiet long
// enough to deserve a follow-up.
package followup

import (
	"time"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
)

// DefaultThreshold is the number of days an applied application may sit
// without contact before it needs a follow-up.
const DefaultThreshold = 3

// NeedsFollowup reports whether an application in status, applied on
// appliedDate and last contacted at lastContactedAt, is stale on today.
//
// Only applications still in the applied stage with a known applied date
// can be stale. The most recent of the contact date and the applied date is
// the reference; it is stale once it is threshold days or more in the past.
// lastContactedAt is converted to today's location before taking its date.
func NeedsFollowup(status model.PipelineStatus, appliedDate *model.Date, lastContactedAt *time.Time, today time.Time, threshold int) bool {
	if status != model.StatusApplied || appliedDate == nil {
		return false
	}

	reference := *appliedDate
	if lastContactedAt != nil {
		reference = model.DateOf(lastContactedAt.In(today.Location()))
	}

	return !reference.After(Cutoff(today, threshold).Time)
}

// Cutoff returns the latest reference date that counts as stale on today.
func Cutoff(today time.Time, threshold int) model.Date {
	return model.DateOf(today).AddDays(-threshold)
}

// Calculator binds a threshold, a zone and a clock. A nil Location means
// UTC and a nil Now means time.Now.
type Calculator struct {
	Threshold int
	Location  *time.Location
	Now       func() time.Time
}

// NewCalculator returns a calculator for the given threshold and zone.
func NewCalculator(threshold int, loc *time.Location) Calculator {
	return Calculator{Threshold: threshold, Location: loc, Now: time.Now}
}

// Today returns the current time in the calculator's location.
func (c Calculator) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// For evaluates NeedsFollowup for app as of now.
func (c Calculator) For(app *model.JobApplication) bool {
	return NeedsFollowup(app.CurrentStatus, app.AppliedDate, app.LastContactedAt, c.Today(), c.Threshold)
}

// Cutoff returns the stale cutoff as of now.
func (c Calculator) Cutoff() model.Date {
	return Cutoff(c.Today(), c.Threshold)
}

