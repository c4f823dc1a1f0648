package audit

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SDID constants for structured data IDs (RFC5424). 32473 is the private
// enterprise number reserved for documentation (RFC5612).
const (
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
)

// Syslog facility constants
const (
	FacilityUser     = 1  // LOG_USER - user-level messages
	FacilityAuthPriv = 10 // LOG_AUTHPRIV - security/authorization messages (private)
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

var severityNames = [...]string{"emergency", "alert", "critical", "error", "warning", "notice", "info", "debug"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

func (s Severity) level() zapcore.Level {
	switch {
	case s <= SeverityError:
		return zapcore.ErrorLevel
	case s == SeverityWarning:
		return zapcore.WarnLevel
	case s == SeverityDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger writes audit events as structured log entries
type Logger struct {
	logger  *zap.Logger
	enabled bool
}

// NewLogger creates an audit logger writing under the "audit" name of l.
// A disabled logger drops every event.
func NewLogger(l *zap.Logger, enabled bool) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{logger: l.Named("audit"), enabled: enabled}
}

// Nop returns a Logger that drops every event.
func Nop() *Logger {
	return NewLogger(nil, false)
}

// Enabled reports whether events are written.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Log writes event. The PRI value is facility * 8 + severity.
func (l *Logger) Log(event Event) {
	if !l.Enabled() {
		return
	}

	fields := []zap.Field{
		zap.String("msgid", event.MessageID()),
		zap.Int("pri", event.Facility()*8+int(event.Severity())),
		zap.Stringer("severity", event.Severity()),
	}
	if sd := event.StructuredData(); len(sd) > 0 {
		fields = append(fields, zap.Object("sd", structuredData(sd)))
	}

	if ce := l.logger.Check(event.Severity().level(), event.Message()); ce != nil {
		ce.Write(fields...)
	}
}

type structuredData map[string]map[string]string

func (sd structuredData) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, sdid := range sortedKeys(sd) {
		params := sd[sdid]
		err := enc.AddObject(sdid, zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
			for _, k := range sortedKeys(params) {
				enc.AddString(k, params[k])
			}
			return nil
		}))
		if err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func severity(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}
