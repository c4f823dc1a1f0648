package audit

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(enabled bool) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewLogger(zap.New(core), enabled), logs
}

func TestLoggerWritesEvent(t *testing.T) {
	logger, logs := newObserved(true)

	logger.Log(AuthenticateEvent{
		Username:          "ada",
		ClientIP:          "192.168.1.1",
		AuthenticatorName: "password",
		Success:           true,
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	if entry.LoggerName != "audit" {
		t.Errorf("LoggerName = %q, want audit", entry.LoggerName)
	}
	if entry.Level != zapcore.InfoLevel {
		t.Errorf("Level = %v, want info", entry.Level)
	}
	if !strings.Contains(entry.Message, "successfully authenticated") {
		t.Errorf("Message = %q", entry.Message)
	}

	fields := entry.ContextMap()
	if fields["msgid"] != "authn" {
		t.Errorf("msgid = %v, want authn", fields["msgid"])
	}
	if fields["pri"] != int64(FacilityAuthPriv*8+int(SeverityInfo)) {
		t.Errorf("pri = %v", fields["pri"])
	}
	sd, ok := fields["sd"].(map[string]interface{})
	if !ok {
		t.Fatalf("sd = %#v, want object", fields["sd"])
	}
	client, _ := sd[SDIDClient].(map[string]interface{})
	if client["ip"] != "192.168.1.1" {
		t.Errorf("client ip = %v", client["ip"])
	}
}

func TestLoggerDisabled(t *testing.T) {
	logger, logs := newObserved(false)
	logger.Log(RegisterEvent{Username: "ada", Success: true})

	if logs.Len() != 0 {
		t.Errorf("expected no entries from a disabled logger, got %d", logs.Len())
	}

	var nilLogger *Logger
	nilLogger.Log(RegisterEvent{Username: "ada"})
	Nop().Log(RegisterEvent{Username: "ada"})
}

func TestSeverityLevels(t *testing.T) {
	tests := []struct {
		sev  Severity
		want zapcore.Level
	}{
		{SeverityAlert, zapcore.ErrorLevel},
		{SeverityError, zapcore.ErrorLevel},
		{SeverityWarning, zapcore.WarnLevel},
		{SeverityNotice, zapcore.InfoLevel},
		{SeverityInfo, zapcore.InfoLevel},
		{SeverityDebug, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		if got := tt.sev.level(); got != tt.want {
			t.Errorf("%v.level() = %v, want %v", tt.sev, got, tt.want)
		}
	}
	if Severity(42).String() != "unknown" {
		t.Errorf("out of range severity should be unknown")
	}
}

func TestAuthenticateEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     AuthenticateEvent
		wantMsg   string
		wantSev   Severity
		wantFac   int
		wantMsgID string
	}{
		{
			name: "successful authentication",
			event: AuthenticateEvent{
				Username:          "ada",
				ClientIP:          "10.0.0.1",
				AuthenticatorName: "password",
				Success:           true,
			},
			wantMsg:   "successfully authenticated",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "authn",
		},
		{
			name: "failed authentication",
			event: AuthenticateEvent{
				Username:          "ada",
				ClientIP:          "10.0.0.1",
				AuthenticatorName: "google",
				Success:           false,
				ErrorMessage:      "invalid audience",
			},
			wantMsg:   "failed to authenticate with authenticator google: invalid audience",
			wantSev:   SeverityWarning,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "authn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.event.Message(), tt.wantMsg) {
				t.Errorf("Message() = %q, want to contain %q", tt.event.Message(), tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.Facility() != tt.wantFac {
				t.Errorf("Facility() = %v, want %v", tt.event.Facility(), tt.wantFac)
			}
			if tt.event.MessageID() != tt.wantMsgID {
				t.Errorf("MessageID() = %v, want %v", tt.event.MessageID(), tt.wantMsgID)
			}
		})
	}
}

func TestTokenRefreshEvent(t *testing.T) {
	reused := TokenRefreshEvent{UserID: "7", Reused: true}
	if reused.Severity() != SeverityAlert {
		t.Errorf("reuse Severity() = %v, want alert", reused.Severity())
	}
	if !strings.Contains(reused.Message(), "revoked") {
		t.Errorf("Message() = %q", reused.Message())
	}

	anonymous := TokenRefreshEvent{ErrorMessage: "token is expired"}
	if _, ok := anonymous.StructuredData()[SDIDAuth]; ok {
		t.Errorf("failed refresh without a user should not carry auth data")
	}
}

func TestApplicationEvents(t *testing.T) {
	event := ApplicationEvent{User: "ada", ApplicationID: 12, Operation: "delete", Success: true}
	if event.MessageID() != "application" {
		t.Errorf("MessageID() = %v", event.MessageID())
	}
	if got := event.StructuredData()[SDIDSubject]["application"]; got != "12" {
		t.Errorf("application = %q, want 12", got)
	}

	change := StatusChangeEvent{User: "ada", ApplicationID: 12, PreviousStatus: "applied", NewStatus: "phone_screen"}
	if change.Message() != "ada moved application 12 from applied to phone_screen" {
		t.Errorf("Message() = %q", change.Message())
	}
}
