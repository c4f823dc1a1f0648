package endpoints

import (
	"time"

	"github.com/doodlesbykumbi/jobtracker/pkg/followup"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
)

// ApplicationResponse is the JSON form of a job application
type ApplicationResponse struct {
	ID                   int64                `json:"id"`
	User                 int64                `json:"user"`
	CompanyName          string               `json:"company_name"`
	Position             string               `json:"position"`
	Location             string               `json:"location"`
	AppliedDate          *model.Date          `json:"applied_date"`
	LastContactedAt      *time.Time           `json:"last_contacted_at"`
	CurrentStatus        model.PipelineStatus `json:"current_status"`
	CurrentStatusDisplay string               `json:"current_status_display"`
	ContactName          string               `json:"contact_name"`
	ContactEmail         string               `json:"contact_email"`
	Notes                string               `json:"notes"`
	NeedsFollowup        bool                 `json:"needs_followup"`
	Audits               *[]AuditResponse     `json:"audits,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// AuditResponse is the JSON form of a status change
type AuditResponse struct {
	ID             int64                `json:"id"`
	Application    int64                `json:"application"`
	PreviousStatus model.PipelineStatus `json:"previous_status"`
	NewStatus      model.PipelineStatus `json:"new_status"`
	ChangedAt      time.Time            `json:"changed_at"`
	ChangedBy      *int64               `json:"changed_by"`
}

// ListResponse is a page of applications
type ListResponse struct {
	Count    int64                 `json:"count"`
	Next     *string               `json:"next"`
	Previous *string               `json:"previous"`
	Results  []ApplicationResponse `json:"results"`
}

// serializeApplication renders app. Audits are included when withAudits
// is set, as an empty list if there are none.
func serializeApplication(app *model.JobApplication, calc followup.Calculator, withAudits bool) ApplicationResponse {
	resp := ApplicationResponse{
		ID:                   app.ID,
		User:                 app.UserID,
		CompanyName:          app.CompanyName,
		Position:             app.Position,
		Location:             app.Location,
		AppliedDate:          app.AppliedDate,
		LastContactedAt:      app.LastContactedAt,
		CurrentStatus:        app.CurrentStatus,
		CurrentStatusDisplay: app.CurrentStatus.Label(),
		ContactName:          app.ContactName,
		ContactEmail:         app.ContactEmail,
		Notes:                app.Notes,
		NeedsFollowup:        calc.For(app),
		CreatedAt:            app.CreatedAt,
		UpdatedAt:            app.UpdatedAt,
	}
	if withAudits {
		audits := serializeAudits(app.Audits)
		resp.Audits = &audits
	}
	return resp
}

func serializeAudits(audits []model.ApplicationStatusAudit) []AuditResponse {
	out := make([]AuditResponse, 0, len(audits))
	for _, a := range audits {
		out = append(out, AuditResponse{
			ID:             a.ID,
			Application:    a.ApplicationID,
			PreviousStatus: a.PreviousStatus,
			NewStatus:      a.NewStatus,
			ChangedAt:      a.ChangedAt,
			ChangedBy:      a.ChangedBy,
		})
	}
	return out
}
