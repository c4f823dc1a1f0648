package audit

import "fmt"

// AuthenticateEvent represents a login attempt
type AuthenticateEvent struct {
	Username          string
	ClientIP          string
	AuthenticatorName string
	Success           bool
	ErrorMessage      string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated with authenticator %s", e.Username, e.AuthenticatorName)
	}
	msg := fmt.Sprintf("%s failed to authenticate with authenticator %s", e.Username, e.AuthenticatorName)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AuthenticateEvent) Severity() Severity {
	return severity(e.Success)
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"authenticator": e.AuthenticatorName,
			"user":          e.Username,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "authenticate",
			"result":    result(e.Success),
		},
	}
}

// TokenRefreshEvent represents a refresh token exchange. Reused is set
// when an already rotated token was presented.
type TokenRefreshEvent struct {
	UserID       string
	ClientIP     string
	Success      bool
	Reused       bool
	ErrorMessage string
}

func (e TokenRefreshEvent) MessageID() string {
	return "token-refresh"
}

func (e TokenRefreshEvent) Message() string {
	switch {
	case e.Success:
		return fmt.Sprintf("user %s refreshed their tokens", e.UserID)
	case e.Reused:
		return fmt.Sprintf("user %s presented a revoked refresh token; all of their refresh tokens were revoked", e.UserID)
	}
	msg := "refresh token rejected"
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e TokenRefreshEvent) Severity() Severity {
	if e.Reused {
		return SeverityAlert
	}
	return severity(e.Success)
}

func (e TokenRefreshEvent) Facility() int {
	return FacilityAuthPriv
}

func (e TokenRefreshEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "refresh",
			"result":    result(e.Success),
		},
	}
	if e.UserID != "" {
		sd[SDIDAuth] = map[string]string{"user": e.UserID}
	}
	return sd
}

// RegisterEvent represents a self-service account creation
type RegisterEvent struct {
	Username     string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e RegisterEvent) MessageID() string {
	return "register"
}

func (e RegisterEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s registered", e.Username)
	}
	msg := fmt.Sprintf("registration of %s failed", e.Username)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e RegisterEvent) Severity() Severity {
	return severity(e.Success)
}

func (e RegisterEvent) Facility() int {
	return FacilityAuthPriv
}

func (e RegisterEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"user": e.Username,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "register",
			"result":    result(e.Success),
		},
	}
}

// UserAdminEvent represents an account change made with the CLI
type UserAdminEvent struct {
	Username  string
	Operation string // "create", "set-role", "set-password"
	Detail    string
	Success   bool
}

func (e UserAdminEvent) MessageID() string {
	return "user"
}

func (e UserAdminEvent) Message() string {
	msg := fmt.Sprintf("%s %s", e.Operation, e.Username)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if !e.Success {
		msg += " failed"
	}
	return msg
}

func (e UserAdminEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e UserAdminEvent) Facility() int {
	return FacilityAuthPriv
}

func (e UserAdminEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"user": e.Username,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
}
