package audit

import "encoding/json"

type ListRequest struct {
	TableName  string `form:"table_name"`
	ActionType string `form:"action_type" binding:"omitempty,oneof_fold=CREATE UPDATE DELETE RESTORE LOGIN LOGOUT EXPORT CLEANUP"`
	EmpID      string `form:"emp_id"`
	RecordID   string `form:"record_id"`
	Search     string `form:"search"`
	From       string `form:"from"`
	To         string `form:"to"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int    `form:"offset" binding:"omitempty,min=0"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=audit_id date occurred_at emp_id table_name action_type"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

type CreateRequest struct {
	TableName  string          `json:"table_name" binding:"required,max=64"`
	RecordID   string          `json:"record_id" binding:"max=64"`
	ActionType ActionType      `json:"action_type" binding:"required,oneof_fold=CREATE UPDATE DELETE RESTORE LOGIN LOGOUT EXPORT CLEANUP"`
	Status     string          `json:"status" binding:"max=1000"`
	OldValues  json.RawMessage `json:"old_values"`
	NewValues  json.RawMessage `json:"new_values"`
}

type CleanupRequest struct {
	RetentionDays int `form:"retention_days" binding:"required,min=1"`
}
