package audit

import (
	"context"
	"encoding/csv"
	"io"
)

// DisplayLayout is how the date column is rendered for people (CSV export).
const DisplayLayout = "15:04:05 / Jan 02, 2006"

var exportHeader = []string{
	"audit_id", "date", "emp_id", "table_name", "record_id", "action_type",
	"status", "ip_address", "user_agent", "session_id", "old_values", "new_values",
}

// Export writes the rows selected by q as CSV and returns how many were written.
func (s *Service) Export(ctx context.Context, q Query, w io.Writer) (int, error) {
	if q.Limit <= 0 {
		q.Limit = s.exportLimit
	}
	q = q.normalize(s.exportLimit)

	rows, _, err := s.repo.List(ctx, q)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}
	for _, a := range rows {
		record := []string{
			RecordID(a.AuditID),
			a.OccurredAt.UTC().Format(DisplayLayout),
			a.EmpID,
			a.Table,
			a.RecordID,
			string(a.ActionType),
			a.Status,
			a.IPAddress,
			a.UserAgent,
			a.SessionID,
			deref(a.OldValues),
			deref(a.NewValues),
		}
		if err := cw.Write(record); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(rows), cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
