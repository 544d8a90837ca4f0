package audit

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"garaadka-laundry/internal/pkg/dbquery"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// sortColumns maps accepted sort keys to columns; anything else falls back to the event time.
var sortColumns = map[string]string{
	"audit_id":    "audit_id",
	"date":        "occurred_at",
	"occurred_at": "occurred_at",
	"emp_id":      "emp_id",
	"table_name":  "table_name",
	"action_type": "action_type",
}

type Query struct {
	TableName  string
	ActionType ActionType
	EmpID      string
	RecordID   string
	Search     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  string
}

func (q Query) normalize(maxLimit int) Query {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if _, ok := sortColumns[q.SortBy]; !ok {
		q.SortBy = "date"
	}
	if strings.EqualFold(q.SortOrder, "asc") {
		q.SortOrder = "ASC"
	} else {
		q.SortOrder = "DESC"
	}
	return q
}

// orderClause always ends on audit_id so equal sort keys page deterministically.
func (q Query) orderClause() string {
	col := sortColumns[q.SortBy]
	if col == "audit_id" {
		return "audit_id " + q.SortOrder
	}
	return fmt.Sprintf("%s %s, audit_id %s", col, q.SortOrder, q.SortOrder)
}

func (q Query) apply(db *gorm.DB) *gorm.DB {
	if q.TableName != "" {
		db = db.Where("table_name = ?", q.TableName)
	}
	if q.ActionType != "" {
		db = db.Where("action_type = ?", q.ActionType)
	}
	if q.EmpID != "" {
		db = db.Where("emp_id = ?", q.EmpID)
	}
	if q.RecordID != "" {
		db = db.Where("record_id = ?", q.RecordID)
	}
	if q.From != nil {
		db = db.Where("occurred_at >= ?", q.From.UTC())
	}
	if q.To != nil {
		db = db.Where("occurred_at < ?", q.To.UTC())
	}
	if q.Search != "" {
		like := dbquery.Contains(q.Search)
		db = db.Where("(LOWER(emp_id) LIKE ? "+dbquery.Escape+" OR LOWER(status) LIKE ? "+dbquery.Escape+" OR LOWER(table_name) LIKE ? "+dbquery.Escape+")", like, like, like)
	}
	return db
}
