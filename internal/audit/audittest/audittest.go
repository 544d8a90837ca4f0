// Package audittest wires a real audit service for other packages' tests.
package audittest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/audit"
)

// Models lists the audit tables to pass to dbtest.New.
func Models() []any {
	return []any{&audit.Audit{}, &audit.OutboxMessage{}}
}

func NewService(db *gorm.DB) *audit.Service {
	return audit.NewService(db, audit.NewRepository(db), zap.NewNop(), audit.Options{Topic: "test.audit"})
}

// Rows returns audit rows for table, oldest first.
func Rows(t testing.TB, db *gorm.DB, table string) []audit.Audit {
	t.Helper()
	var rows []audit.Audit
	require.NoError(t, db.Where("table_name = ?", table).Order("audit_id").Find(&rows).Error)
	return rows
}

// OutboxCount returns how many outbox messages exist.
func OutboxCount(t testing.TB, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&audit.OutboxMessage{}).Count(&n).Error)
	return n
}
