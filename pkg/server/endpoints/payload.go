package endpoints

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	"github.com/doodlesbykumbi/jobtracker/pkg/validation"
)

const (
	maxCharLength  = 255
	maxEmailLength = 254
)

// applicationPayload reads the writable fields of an application body.
// Read-only fields (id, user, needs_followup, audits, ...) are ignored.
type applicationPayload struct {
	fields  map[string]json.RawMessage
	partial bool
	result  validation.Result
}

// parseApplicationPayload validates body. With partial unset the required
// fields must be present, as for create and full update.
func parseApplicationPayload(body map[string]json.RawMessage, partial bool) (store.ApplicationPatch, error) {
	p := &applicationPayload{fields: body, partial: partial}

	patch := store.ApplicationPatch{
		CompanyName:   p.text("company_name", true, maxCharLength),
		Position:      p.text("position", true, maxCharLength),
		Location:      p.text("location", false, maxCharLength),
		ContactName:   p.text("contact_name", false, maxCharLength),
		ContactEmail:  p.email("contact_email"),
		Notes:         p.text("notes", false, 0),
		CurrentStatus: p.status("current_status"),
	}
	patch.AppliedDate = p.date("applied_date")
	patch.LastContactedAt = p.timestamp("last_contacted_at")

	if err := p.result.Err(); err != nil {
		return store.ApplicationPatch{}, err
	}
	return patch, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// lookup returns the raw value of name, recording a missing required field.
func (p *applicationPayload) lookup(name string, required bool) (json.RawMessage, bool) {
	raw, ok := p.fields[name]
	if !ok {
		if required && !p.partial {
			p.result.Add(name, "This field is required.")
		}
		return nil, false
	}
	return raw, true
}

func (p *applicationPayload) text(name string, required bool, maxLen int) *string {
	raw, ok := p.lookup(name, required)
	if !ok {
		return nil
	}
	if isNull(raw) {
		p.result.Add(name, "This field may not be null.")
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		p.result.Add(name, "Not a valid string.")
		return nil
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		p.result.Add(name, "This field may not be blank.")
		return nil
	}
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		p.result.Add(name, fmt.Sprintf("Ensure this field has no more than %d characters.", maxLen))
		return nil
	}
	return &s
}

func (p *applicationPayload) email(name string) *string {
	s := p.text(name, false, maxEmailLength)
	if s == nil || *s == "" {
		return s
	}
	addr, err := mail.ParseAddress(*s)
	if err != nil || addr.Address != *s {
		p.result.Add(name, "Enter a valid email address.")
		return nil
	}
	return s
}

func (p *applicationPayload) status(name string) *model.PipelineStatus {
	raw, ok := p.lookup(name, true)
	if !ok {
		return nil
	}
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		p.result.Add(name, "This field may not be null.")
		return nil
	}
	st, err := model.PipelineStatusString(s)
	if err != nil {
		p.result.Add(name, fmt.Sprintf("%q is not a valid choice.", s))
		return nil
	}
	return &st
}

func (p *applicationPayload) date(name string) store.Nullable[model.Date] {
	raw, ok := p.lookup(name, false)
	if !ok {
		return store.Nullable[model.Date]{}
	}
	if isNull(raw) {
		return store.Null[model.Date]()
	}
	var d model.Date
	if err := json.Unmarshal(raw, &d); err != nil {
		p.result.Add(name, "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		return store.Nullable[model.Date]{}
	}
	return store.Value(d)
}

func (p *applicationPayload) timestamp(name string) store.Nullable[time.Time] {
	raw, ok := p.lookup(name, false)
	if !ok {
		return store.Nullable[time.Time]{}
	}
	if isNull(raw) {
		return store.Null[time.Time]()
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		p.result.Add(name, "Datetime has wrong format. Use RFC 3339.")
		return store.Nullable[time.Time]{}
	}
	return store.Value(t)
}
