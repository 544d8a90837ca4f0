package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/infra/database/dbtest"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t, &Audit{}, &OutboxMessage{})
	svc := NewService(db, NewRepository(db), zap.NewNop(), Options{Topic: "test.audit", ExportLimit: 100})
	return svc, db
}

func seed(t *testing.T, db *gorm.DB, rows ...Audit) {
	t.Helper()
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
}

func TestRecord_WritesAuditAndOutboxInTransaction(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Record(ctx, tx, Entry{
			Actor:     Actor{EmpID: "clerk", IPAddress: "10.0.0.1", SessionID: "s-1"},
			TableName: "customers",
			RecordID:  "7",
			Action:    ActionCreate,
			Status:    "Customer created: Amina Yusuf",
			NewValues: map[string]any{"customer_name": "Amina Yusuf"},
		})
	})
	require.NoError(t, err)

	var rows []Audit
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "customers", rows[0].Table)
	assert.Equal(t, "7", rows[0].RecordID)
	assert.Equal(t, ActionCreate, rows[0].ActionType)
	assert.Nil(t, rows[0].OldValues)
	require.NotNil(t, rows[0].NewValues)
	assert.JSONEq(t, `{"customer_name":"Amina Yusuf"}`, *rows[0].NewValues)

	var msgs []OutboxMessage
	require.NoError(t, db.Find(&msgs).Error)
	require.Len(t, msgs, 1)
	assert.Equal(t, rows[0].AuditID, msgs[0].AuditID)
	assert.Equal(t, "test.audit", msgs[0].Topic)
	assert.Nil(t, msgs[0].DispatchedAt)
	assert.Contains(t, msgs[0].Payload, `"table_name":"customers"`)
}

func TestRecord_RollsBackWithCaller(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	boom := errors.New("business failure")

	err := db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, svc.Record(ctx, tx, Entry{TableName: "orders", RecordID: "1", Action: ActionUpdate}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	var audits, msgs int64
	db.Model(&Audit{}).Count(&audits)
	db.Model(&OutboxMessage{}).Count(&msgs)
	assert.Zero(t, audits)
	assert.Zero(t, msgs)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Entry{Action: ActionCreate})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = svc.Create(ctx, Entry{TableName: "customers", Action: "SELECT"})
	assert.ErrorIs(t, err, ErrInvalidAction)

	id, err := svc.Create(ctx, Entry{TableName: "customers", Action: ActionDelete})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestCreate_DefaultsAnonymousActor(t *testing.T) {
	svc, db := setupService(t)

	id, err := svc.Create(context.Background(), Entry{TableName: "register", Action: ActionCreate})
	require.NoError(t, err)

	var row Audit
	require.NoError(t, db.First(&row, id).Error)
	assert.Equal(t, "anonymous", row.EmpID)
}

func TestList_PaginationIsDisjoint(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	rows := make([]Audit, 0, 25)
	for i := 0; i < 25; i++ {
		rows = append(rows, Audit{
			EmpID:      "clerk",
			OccurredAt: base.Add(time.Duration(i%5) * time.Minute),
			Table:      "orders",
			RecordID:   fmt.Sprint(i),
			ActionType: ActionUpdate,
		})
	}
	seed(t, db, rows...)

	for _, sortBy := range []string{"audit_id", "date", "emp_id"} {
		t.Run(sortBy, func(t *testing.T) {
			first, err := svc.List(ctx, Query{Limit: 10, Offset: 0, SortBy: sortBy, SortOrder: "asc"})
			require.NoError(t, err)
			second, err := svc.List(ctx, Query{Limit: 10, Offset: 10, SortBy: sortBy, SortOrder: "asc"})
			require.NoError(t, err)
			top, err := svc.List(ctx, Query{Limit: 20, SortBy: sortBy, SortOrder: "asc"})
			require.NoError(t, err)

			assert.EqualValues(t, 25, first.Total)
			seen := map[uint]bool{}
			var union []uint
			for _, a := range append(first.Logs, second.Logs...) {
				assert.False(t, seen[a.AuditID], "audit %d returned twice", a.AuditID)
				seen[a.AuditID] = true
				union = append(union, a.AuditID)
			}

			var expected []uint
			for _, a := range top.Logs {
				expected = append(expected, a.AuditID)
			}
			assert.Equal(t, expected, union)
		})
	}
}

func TestList_Filters(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	seed(t, db,
		Audit{EmpID: "amina", OccurredAt: day.Add(time.Hour), Table: "customers", RecordID: "1", ActionType: ActionCreate, Status: "Customer created"},
		Audit{EmpID: "omar", OccurredAt: day.Add(2 * time.Hour), Table: "orders", RecordID: "1", ActionType: ActionUpdate, Status: "Order status changed"},
		Audit{EmpID: "amina", OccurredAt: day.AddDate(0, 0, 2), Table: "orders", RecordID: "2", ActionType: ActionDelete, Status: "Order deleted"},
	)

	page, err := svc.List(ctx, Query{TableName: "orders"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.List(ctx, Query{EmpID: "amina", ActionType: ActionCreate})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	to := day.AddDate(0, 0, 1)
	page, err = svc.List(ctx, Query{From: &day, To: &to})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.List(ctx, Query{Search: "STATUS"})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, "omar", page.Logs[0].EmpID)

	page, err = svc.List(ctx, Query{Limit: 10000, SortBy: "password; DROP TABLE audit"})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, page.Limit)
	assert.Len(t, page.Logs, 3)
	assert.Equal(t, "orders", page.Logs[0].Table, "unknown sort key falls back to newest first")
}

func TestList_SearchMatchesWildcardsLiterally(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seed(t, db,
		Audit{EmpID: "amina", OccurredAt: now, Table: "orders", RecordID: "1", ActionType: ActionUpdate, Status: "Discount 10% applied"},
		Audit{EmpID: "omar", OccurredAt: now, Table: "daily_cash_close", RecordID: "2", ActionType: ActionCreate, Status: "Cash closed"},
		Audit{EmpID: "hodan", OccurredAt: now, Table: "customers", RecordID: "3", ActionType: ActionCreate, Status: "Customer created"},
	)

	page, err := svc.List(ctx, Query{Search: "%"})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, "amina", page.Logs[0].EmpID)

	page, err = svc.List(ctx, Query{Search: "_"})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, "omar", page.Logs[0].EmpID)
}

func TestRecordHistoryAndUserActivity(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	seed(t, db,
		Audit{EmpID: "amina", OccurredAt: base.Add(2 * time.Minute), Table: "customers", RecordID: "5", ActionType: ActionUpdate},
		Audit{EmpID: "omar", OccurredAt: base, Table: "customers", RecordID: "5", ActionType: ActionCreate},
		Audit{EmpID: "amina", OccurredAt: base.Add(time.Minute), Table: "customers", RecordID: "6", ActionType: ActionCreate},
	)

	history, err := svc.RecordHistory(ctx, "customers", "5")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ActionCreate, history[0].ActionType)
	assert.Equal(t, ActionUpdate, history[1].ActionType)

	activity, err := svc.UserActivity(ctx, "amina", nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, activity.Logs, 2)
	assert.Equal(t, "5", activity.Logs[0].RecordID)
}

func TestStats(t *testing.T) {
	svc, db := setupService(t)
	// Wednesday
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seed(t, db,
		Audit{EmpID: "amina", OccurredAt: now.Add(-time.Hour), Table: "orders", ActionType: ActionCreate},
		Audit{EmpID: "amina", OccurredAt: now.Add(-2 * time.Hour), Table: "orders", ActionType: ActionUpdate},
		Audit{EmpID: "omar", OccurredAt: now.AddDate(0, 0, -2), Table: "customers", ActionType: ActionCreate},
		Audit{EmpID: "omar", OccurredAt: now.AddDate(0, 0, -10), Table: "customers", ActionType: ActionCreate},
		Audit{EmpID: "omar", OccurredAt: now.AddDate(0, -2, 0), Table: "register", ActionType: ActionDelete},
	)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 5, st.Total)
	assert.EqualValues(t, 2, st.Today)
	assert.EqualValues(t, 3, st.ThisWeek)
	assert.EqualValues(t, 4, st.ThisMonth)

	require.NotEmpty(t, st.ByAction)
	assert.Equal(t, Bucket{Key: "CREATE", Count: 3}, st.ByAction[0])
	assert.Len(t, st.ByTable, 3)
	assert.Equal(t, Bucket{Key: "omar", Count: 3}, st.TopUsers[0])

	require.Len(t, st.Hourly, 24)
	assert.EqualValues(t, 1, st.Hourly[10].Count)
	assert.EqualValues(t, 1, st.Hourly[11].Count)
	assert.EqualValues(t, 1, st.Hourly[12].Count)
	require.Len(t, st.Daily, 7)
	assert.Equal(t, "2024-05-13", st.Daily[0].Date)
	assert.EqualValues(t, 1, st.Daily[0].Count)
	assert.EqualValues(t, 2, st.Daily[2].Count)
}

func TestExport_CSVQuoting(t *testing.T) {
	svc, db := setupService(t)
	old := `{"customer_name":"Old"}`
	seed(t, db, Audit{
		EmpID:      "amina",
		OccurredAt: time.Date(2024, 5, 1, 14, 3, 9, 0, time.UTC),
		Table:      "customers",
		RecordID:   "9",
		ActionType: ActionUpdate,
		Status:     `Renamed "Old", now "New"`,
		UserAgent:  "curl/8.0, test",
		OldValues:  &old,
	})

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), Query{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "14:03:09 / May 01, 2024", records[1][1])
	assert.Equal(t, `Renamed "Old", now "New"`, records[1][6])
	assert.Equal(t, "curl/8.0, test", records[1][8])
	assert.Equal(t, old, records[1][10])
	assert.Equal(t, "", records[1][11])
}

func TestCleanup(t *testing.T) {
	svc, db := setupService(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seed(t, db,
		Audit{EmpID: "a", OccurredAt: now.AddDate(0, 0, -100), Table: "orders", ActionType: ActionCreate},
		Audit{EmpID: "a", OccurredAt: now.AddDate(0, 0, -91), Table: "orders", ActionType: ActionUpdate},
		Audit{EmpID: "a", OccurredAt: now.AddDate(0, 0, -10), Table: "orders", ActionType: ActionUpdate},
	)

	_, err := svc.Cleanup(context.Background(), Actor{EmpID: "admin"}, 0)
	assert.ErrorIs(t, err, ErrInvalidRetention)

	deleted, err := svc.Cleanup(context.Background(), Actor{EmpID: "admin"}, 90)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var remaining []Audit
	require.NoError(t, db.Order("audit_id").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, ActionUpdate, remaining[0].ActionType)
	assert.Equal(t, ActionCleanup, remaining[1].ActionType)
	assert.Equal(t, "admin", remaining[1].EmpID)
}

func TestSerializeData(t *testing.T) {
	assert.Nil(t, SerializeData(nil))
	assert.Nil(t, SerializeData([]byte(nil)))
	assert.Equal(t, `{"a":1}`, *SerializeData(map[string]int{"a": 1}))
	assert.NotNil(t, SerializeData(make(chan int)), "unmarshalable values fall back to fmt")
}
