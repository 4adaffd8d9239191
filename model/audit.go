package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records debug API actions and event command failures.
type AuditLog struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID    string         `gorm:"index:idx_audit_trace;size:36" json:"trace_id"`
	Action     string         `gorm:"size:64;not null" json:"action"`
	EventType  string         `gorm:"size:32" json:"event_type"`
	EventID    int            `json:"event_id"`
	MapID      int            `json:"map_id"`
	Request    datatypes.JSON `json:"request"`
	Response   datatypes.JSON `json:"response"`
	Error      string         `gorm:"type:text" json:"error"`
	IP         string         `gorm:"size:45" json:"ip"`
	DurationMs int            `json:"duration_ms"`
	CreatedAt  time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
