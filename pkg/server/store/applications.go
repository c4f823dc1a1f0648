package store

import (
	"context"
	"errors"
	"time"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
)

// ErrApplicationNotFound is returned when an application doesn't exist or
// is outside the caller's scope
var ErrApplicationNotFound = errors.New("application not found")

// Nullable is a patch value that tells "leave alone" (Set == false) apart
// from "clear" (Set with nil Value).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Null returns a Nullable that clears the field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// Value returns a Nullable that sets the field to v.
func Value[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// ApplicationPatch holds the fields of an update. Nil pointers and unset
// Nullables leave the stored value untouched. The owner is not patchable.
type ApplicationPatch struct {
	CompanyName     *string
	Position        *string
	Location        *string
	AppliedDate     Nullable[model.Date]
	LastContactedAt Nullable[time.Time]
	CurrentStatus   *model.PipelineStatus
	ContactName     *string
	ContactEmail    *string
	Notes           *string
}

// Apply copies the set fields of p onto app.
func (p ApplicationPatch) Apply(app *model.JobApplication) {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&app.CompanyName, p.CompanyName)
	setString(&app.Position, p.Position)
	setString(&app.Location, p.Location)
	setString(&app.ContactName, p.ContactName)
	setString(&app.ContactEmail, p.ContactEmail)
	setString(&app.Notes, p.Notes)

	if p.AppliedDate.Set {
		app.AppliedDate = p.AppliedDate.Value
	}
	if p.LastContactedAt.Set {
		app.LastContactedAt = p.LastContactedAt.Value
	}
	if p.CurrentStatus != nil {
		app.CurrentStatus = *p.CurrentStatus
	}
}

// ApplicationFilter narrows a listing. Zero values do not filter.
type ApplicationFilter struct {
	// Statuses matches any of the listed statuses
	Statuses []model.PipelineStatus

	// StaleCutoff, when set, keeps only applied applications whose most
	// recent contact (or applied date) is on or before the cutoff
	StaleCutoff *model.Date

	// AppliedFrom and AppliedBefore bound applied_date to [from, before)
	AppliedFrom   *model.Date
	AppliedBefore *model.Date
}

// Page selects a window of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows before the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// StatusCount is one row of the dashboard breakdown.
type StatusCount struct {
	CurrentStatus model.PipelineStatus `json:"current_status"`
	Count         int64                `json:"count"`
}

// ApplicationsStore abstracts job application storage
type ApplicationsStore interface {
	// ListApplications returns the page of applications in scope matching
	// filter, ordered by applied_date descending (nulls last) then id, and
	// the total number of matches.
	ListApplications(ctx context.Context, scope Scope, filter ApplicationFilter, page Page) ([]model.JobApplication, int64, error)

	// FetchApplication returns an application with its audits.
	// Returns ErrApplicationNotFound if it is missing or out of scope.
	FetchApplication(ctx context.Context, scope Scope, id int64) (*model.JobApplication, error)

	// CreateApplication inserts app. No audit row is written.
	CreateApplication(ctx context.Context, app *model.JobApplication) error

	// UpdateApplication applies patch in one transaction holding a row
	// lock, and records an audit row when the status changes. actorID is
	// the user performing the change.
	UpdateApplication(ctx context.Context, scope Scope, id int64, patch ApplicationPatch, actorID int64) (*model.JobApplication, *model.ApplicationStatusAudit, error)

	// DeleteApplication removes an application and, by cascade, its audits.
	DeleteApplication(ctx context.Context, scope Scope, id int64) error

	// MarkFollowupSent sets last_contacted_at to at.
	MarkFollowupSent(ctx context.Context, scope Scope, id int64, at time.Time) (*model.JobApplication, error)

	// ListAudits returns the status history of an application, oldest first.
	ListAudits(ctx context.Context, scope Scope, id int64) ([]model.ApplicationStatusAudit, error)

	// StatusCounts groups the applications in scope by status.
	StatusCounts(ctx context.Context, scope Scope) ([]StatusCount, error)

	// CountNeedingFollowup counts applications in scope that are stale at cutoff.
	CountNeedingFollowup(ctx context.Context, scope Scope, cutoff model.Date) (int64, error)
}
