package audit

import (
	"time"
)

type ActionType string

const (
	ActionCreate  ActionType = "CREATE"
	ActionUpdate  ActionType = "UPDATE"
	ActionDelete  ActionType = "DELETE"
	ActionRestore ActionType = "RESTORE"
	ActionLogin   ActionType = "LOGIN"
	ActionLogout  ActionType = "LOGOUT"
	ActionExport  ActionType = "EXPORT"
	ActionCleanup ActionType = "CLEANUP"
)

var validActions = map[ActionType]bool{
	ActionCreate:  true,
	ActionUpdate:  true,
	ActionDelete:  true,
	ActionRestore: true,
	ActionLogin:   true,
	ActionLogout:  true,
	ActionExport:  true,
	ActionCleanup: true,
}

func IsValidAction(a ActionType) bool {
	return validActions[a]
}

// Audit is one row per mutation or security event.
type Audit struct {
	AuditID    uint       `gorm:"column:audit_id;primaryKey"`
	EmpID      string     `gorm:"column:emp_id;size:100;not null;index"`
	OccurredAt time.Time  `gorm:"column:occurred_at;not null;index"`
	Status     string     `gorm:"column:status;type:text"`
	Table      string     `gorm:"column:table_name;size:64;not null;index:idx_audit_record,priority:1"`
	RecordID   string     `gorm:"column:record_id;size:64;index:idx_audit_record,priority:2"`
	ActionType ActionType `gorm:"column:action_type;size:20;not null;index"`
	OldValues  *string    `gorm:"column:old_values;type:text"`
	NewValues  *string    `gorm:"column:new_values;type:text"`
	IPAddress  string     `gorm:"column:ip_address;size:64"`
	UserAgent  string     `gorm:"column:user_agent;type:text"`
	SessionID  string     `gorm:"column:session_id;size:64"`
}

func (Audit) TableName() string {
	return "audit"
}

// OutboxMessage is written in the same transaction as its Audit row and
// removed from the pending set once a publisher accepted it.
type OutboxMessage struct {
	ID           uint       `gorm:"primaryKey"`
	AuditID      uint       `gorm:"column:audit_id;not null;index"`
	Topic        string     `gorm:"size:255;not null"`
	Payload      string     `gorm:"type:text;not null"`
	CreatedAt    time.Time  `gorm:"not null"`
	DispatchedAt *time.Time `gorm:"column:dispatched_at;index"`
	Attempts     int        `gorm:"not null;default:0"`
	LastError    string     `gorm:"column:last_error;type:text"`
}

func (OutboxMessage) TableName() string {
	return "audit_outbox"
}

// Actor identifies who performed an operation and from where.
type Actor struct {
	EmpID     string
	IPAddress string
	UserAgent string
	SessionID string
}

type Entry struct {
	Actor
	TableName string
	RecordID  string
	Action    ActionType
	Status    string
	OldValues any
	NewValues any
}

func (e Entry) toModel(now time.Time) Audit {
	empID := e.EmpID
	if empID == "" {
		empID = "anonymous"
	}
	return Audit{
		EmpID:      empID,
		OccurredAt: now,
		Status:     e.Status,
		Table:      e.TableName,
		RecordID:   e.RecordID,
		ActionType: e.Action,
		OldValues:  SerializeData(e.OldValues),
		NewValues:  SerializeData(e.NewValues),
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		SessionID:  e.SessionID,
	}
}

// Event is the payload published for every audit row.
type Event struct {
	AuditID    uint       `json:"audit_id"`
	EmpID      string     `json:"emp_id"`
	OccurredAt time.Time  `json:"date"`
	Status     string     `json:"status"`
	TableName  string     `json:"table_name"`
	RecordID   string     `json:"record_id"`
	ActionType ActionType `json:"action_type"`
	OldValues  *string    `json:"old_values,omitempty"`
	NewValues  *string    `json:"new_values,omitempty"`
	SessionID  string     `json:"session_id,omitempty"`
}

func eventFrom(a Audit) Event {
	return Event{
		AuditID:    a.AuditID,
		EmpID:      a.EmpID,
		OccurredAt: a.OccurredAt,
		Status:     a.Status,
		TableName:  a.Table,
		RecordID:   a.RecordID,
		ActionType: a.ActionType,
		OldValues:  a.OldValues,
		NewValues:  a.NewValues,
		SessionID:  a.SessionID,
	}
}
