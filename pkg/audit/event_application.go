package audit

import (
	"fmt"
	"strconv"
)

// ApplicationEvent represents a change to a job application
type ApplicationEvent struct {
	User          string
	ClientIP      string
	ApplicationID int64
	Operation     string // "create", "update", "delete", "mark-followup-sent"
	Success       bool
	ErrorMessage  string
}

func (e ApplicationEvent) MessageID() string {
	return "application"
}

func (e ApplicationEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s performed %s on application %d", e.User, e.Operation, e.ApplicationID)
	}
	msg := fmt.Sprintf("%s tried to %s application %d", e.User, e.Operation, e.ApplicationID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ApplicationEvent) Severity() Severity {
	return severity(e.Success)
}

func (e ApplicationEvent) Facility() int {
	return FacilityUser
}

func (e ApplicationEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"application": strconv.FormatInt(e.ApplicationID, 10),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
}

// StatusChangeEvent mirrors an application status audit row
type StatusChangeEvent struct {
	User           string
	ApplicationID  int64
	PreviousStatus string
	NewStatus      string
}

func (e StatusChangeEvent) MessageID() string {
	return "status-change"
}

func (e StatusChangeEvent) Message() string {
	return fmt.Sprintf("%s moved application %d from %s to %s", e.User, e.ApplicationID, e.PreviousStatus, e.NewStatus)
}

func (e StatusChangeEvent) Severity() Severity {
	return SeverityNotice
}

func (e StatusChangeEvent) Facility() int {
	return FacilityUser
}

func (e StatusChangeEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"application": strconv.FormatInt(e.ApplicationID, 10),
			"from":        e.PreviousStatus,
			"to":          e.NewStatus,
		},
	}
}
