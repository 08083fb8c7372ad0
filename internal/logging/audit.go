package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names one kind of audit event.
type AuditEventType string

const (
	// Session lifecycle
	AuditSessionStart AuditEventType = "session_start"
	AuditSessionEnd   AuditEventType = "session_end"

	// Root selection
	AuditSourceMount AuditEventType = "source_mount"
	AuditPickerError AuditEventType = "picker_error"

	// Tree and file access
	AuditDirList  AuditEventType = "dir_list"
	AuditFileRead AuditEventType = "file_read"

	// Model calls
	AuditAnalysis AuditEventType = "analysis"
)

// =============================================================================
// AUDIT EVENT STRUCTURE
// =============================================================================

// AuditEvent is one JSON line in the audit log.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"` // Unix milliseconds
	EventType  AuditEventType         `json:"event"`
	Category   string                 `json:"cat"`
	SessionID  string                 `json:"session,omitempty"`
	RequestID  string                 `json:"req,omitempty"`
	Target     string                 `json:"target"`
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
	Summary    string                 `json:"summary"` // event(target, ...) one-liner for grep
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile    *os.File
	auditMu      sync.Mutex
	auditSession string
)

// AuditLogger writes audit events. The zero value logs under the global
// session with no category.
type AuditLogger struct {
	category Category
}

// InitAudit opens the audit log in the configured log directory. It is a
// no-op outside debug mode.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	optsMu.RLock()
	dir := opts.Dir
	optsMu.RUnlock()

	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(dir, fmt.Sprintf("%s_audit.log", date))
	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file
	return nil
}

// CloseAudit closes the audit log file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
	auditSession = ""
}

// SetAuditSession tags every following event with sessionID.
func SetAuditSession(sessionID string) {
	auditMu.Lock()
	auditSession = sessionID
	auditMu.Unlock()
}

// Audit returns an audit logger for category.
func Audit(category Category) *AuditLogger {
	return &AuditLogger{category: category}
}

// Log writes an audit event. Nothing is written unless InitAudit succeeded.
func (a *AuditLogger) Log(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" {
		event.SessionID = auditSession
	}
	if event.Category == "" {
		event.Category = string(a.category)
	}
	event.Summary = summarize(event)

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.Write(append(data, '\n'))
	}
}

// summarize renders event(target, success[, error]) with quoted strings.
func summarize(e AuditEvent) string {
	var b strings.Builder
	b.WriteString(string(e.EventType))
	b.WriteByte('(')
	b.WriteString(strconv.Quote(e.Target))
	b.WriteString(", ")
	b.WriteString(strconv.FormatBool(e.Success))
	if e.Error != "" {
		b.WriteString(", ")
		b.WriteString(strconv.Quote(e.Error))
	}
	b.WriteByte(')')
	return b.String()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// =============================================================================
// CONVENIENCE EVENTS
// =============================================================================

// SessionStart records the start of one invocation.
func (a *AuditLogger) SessionStart(command string) {
	a.Log(AuditEvent{EventType: AuditSessionStart, Target: command, Success: true})
}

// SessionEnd records the end of one invocation.
func (a *AuditLogger) SessionEnd(command string, durationMs int64) {
	a.Log(AuditEvent{EventType: AuditSessionEnd, Target: command, Success: true, DurationMs: durationMs})
}

// SourceMount records a new root.
func (a *AuditLogger) SourceMount(mode, name string) {
	a.Log(AuditEvent{
		EventType: AuditSourceMount,
		Target:    name,
		Success:   true,
		Fields:    map[string]interface{}{"mode": mode},
	})
}

// PickerError records a directory selection failure shown to the user.
func (a *AuditLogger) PickerError(err error) {
	a.Log(AuditEvent{EventType: AuditPickerError, Target: "picker", Error: errString(err)})
}

// DirList records one directory listing.
func (a *AuditLogger) DirList(path string, entries int, err error) {
	a.Log(AuditEvent{
		EventType: AuditDirList,
		Target:    path,
		Success:   err == nil,
		Error:     errString(err),
		Fields:    map[string]interface{}{"entries": entries},
	})
}

// FileRead records a file read and the size of what will be displayed.
func (a *AuditLogger) FileRead(path string, size int, err error) {
	a.Log(AuditEvent{
		EventType: AuditFileRead,
		Target:    path,
		Success:   err == nil,
		Error:     errString(err),
		Fields:    map[string]interface{}{"size": size},
	})
}

// Analysis records one model call.
func (a *AuditLogger) Analysis(requestID, model string, promptLen int, durationMs int64, err error) {
	a.Log(AuditEvent{
		EventType:  AuditAnalysis,
		RequestID:  requestID,
		Target:     model,
		Success:    err == nil,
		DurationMs: durationMs,
		Error:      errString(err),
		Fields:     map[string]interface{}{"prompt_len": promptLen},
	})
}
