package domain

import (
	"encoding/json"
	"time"
)

type LogLevel string

const (
	LogLevelDebug    LogLevel = "debug"
	LogLevelInfo     LogLevel = "info"
	LogLevelWarning  LogLevel = "warning"
	LogLevelError    LogLevel = "error"
	LogLevelCritical LogLevel = "critical"
)

func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelCritical:
		return true
	}
	return false
}

// IsSevere reports whether entries at this level should be mirrored into the
// backend error log.
func (l LogLevel) IsSevere() bool {
	return l == LogLevelError || l == LogLevelCritical
}

// FrontendLog is a single diagnostic record ingested from the browser client.
type FrontendLog struct {
	ID           int64
	Level        LogLevel
	Message      string
	ErrorType    *string
	ErrorMessage *string
	StackTrace   *string
	URL          *string
	UserAgent    *string
	Context      json.RawMessage
	UserID       *int64
	SessionID    *string
	IPAddress    *string
	RequestID    *string
	LoggedAt     time.Time
	CreatedAt    time.Time
	IsResolved   bool
	IsIgnored    bool
}

// LogStats summarizes ingested frontend logs over a window.
type LogStats struct {
	PeriodHours      int
	CountsByLevel    map[LogLevel]int
	UnresolvedErrors int
	Total            int
}
