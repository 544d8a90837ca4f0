package audit

import (
	"encoding/json"
	"time"
)

type AuditResponse struct {
	AuditID    uint            `json:"audit_id"`
	EmpID      string          `json:"emp_id"`
	Date       time.Time       `json:"date"`
	Status     string          `json:"status"`
	TableName  string          `json:"table_name"`
	RecordID   string          `json:"record_id"`
	ActionType ActionType      `json:"action_type"`
	OldValues  json.RawMessage `json:"old_values"`
	NewValues  json.RawMessage `json:"new_values"`
	IPAddress  string          `json:"ip_address,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

type ListResponse struct {
	Logs       []AuditResponse `json:"logs"`
	Pagination Pagination      `json:"pagination"`
}

func toResponse(a Audit) AuditResponse {
	return AuditResponse{
		AuditID:    a.AuditID,
		EmpID:      a.EmpID,
		Date:       a.OccurredAt.UTC(),
		Status:     a.Status,
		TableName:  a.Table,
		RecordID:   a.RecordID,
		ActionType: a.ActionType,
		OldValues:  rawJSON(a.OldValues),
		NewValues:  rawJSON(a.NewValues),
		IPAddress:  a.IPAddress,
		UserAgent:  a.UserAgent,
		SessionID:  a.SessionID,
	}
}

func toResponses(rows []Audit) []AuditResponse {
	out := make([]AuditResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, toResponse(a))
	}
	return out
}

func toListResponse(p Page) ListResponse {
	return ListResponse{
		Logs: toResponses(p.Logs),
		Pagination: Pagination{
			Total:   p.Total,
			Limit:   p.Limit,
			Offset:  p.Offset,
			HasMore: int64(p.Offset+len(p.Logs)) < p.Total,
		},
	}
}

// rawJSON passes stored snapshots through untouched; non-JSON text is sent as a string.
func rawJSON(s *string) json.RawMessage {
	if s == nil {
		return json.RawMessage("null")
	}
	if json.Valid([]byte(*s)) {
		return json.RawMessage(*s)
	}
	quoted, _ := json.Marshal(*s)
	return quoted
}
