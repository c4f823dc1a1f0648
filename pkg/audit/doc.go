// Package audit provides audit logging for security-relevant operations.
//
// Events follow the RFC5424 model: each has a message id, a severity, a
// facility and structured data grouped by SD-ID. They are written as zap
// entries under the "audit" logger rather than as raw syslog lines, so
// they travel with the rest of the service's structured logs.
//
// # Event Types
//
//   - Login attempts and refresh token exchanges (authn, token-refresh)
//   - Account registration and CLI account changes (register, user)
//   - Job application changes (application) and status transitions (status-change)
//
// # Usage
//
//	auditLog := audit.NewLogger(logger, cfg.IsAuditEnabled())
//	auditLog.Log(audit.AuthenticateEvent{Username: "ada", AuthenticatorName: "password", Success: true})
package audit
