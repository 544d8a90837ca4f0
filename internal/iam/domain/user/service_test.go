package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/audit/audittest"
	"garaadka-laundry/internal/infra/database/dbtest"
	"garaadka-laundry/internal/pkg/util"
)

var admin = audit.Actor{EmpID: "boss", IPAddress: "127.0.0.1"}

func setupService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t, append(audittest.Models(), &User{})...)
	svc := NewService(db, NewRepository(db), audittest.NewService(db), util.NewArgon2Password(util.WithCost(1024, 1)), zap.NewNop())
	return svc, db
}

func TestCreate_HashesAndAudits(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, admin, User{Username: " hodan ", FullName: "Hodan Ali"}, "password1")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "hodan", u.Username)
	assert.Equal(t, PositionEmployee, u.Position)
	assert.True(t, u.Active)
	assert.NotEqual(t, "password1", u.Password)
	assert.Equal(t, "boss", u.CreatedBy)

	rows := audittest.Rows(t, db, "users")
	require.Len(t, rows, 1)
	assert.Equal(t, audit.ActionCreate, rows[0].ActionType)
	require.NotNil(t, rows[0].NewValues)
	assert.NotContains(t, *rows[0].NewValues, u.Password, "hash must not leak into the audit trail")
	assert.Equal(t, int64(1), audittest.OutboxCount(t, db))
}

func TestCreate_DuplicateUsername(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, User{Username: "hodan", FullName: "Hodan Ali"}, "password1")
	require.NoError(t, err)

	_, err = svc.Create(ctx, admin, User{Username: "hodan", FullName: "Other"}, "password1")
	assert.ErrorIs(t, err, ErrUsernameDuplicated)
	assert.Len(t, audittest.Rows(t, db, "users"), 1)
}

func TestCreate_RejectsBadInput(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, User{Username: ""}, "password1")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, admin, User{Username: "x", Position: "owner"}, "password1")
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestUpdate(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, admin, User{Username: "hodan", FullName: "Hodan Ali"}, "password1")
	require.NoError(t, err)

	pos := PositionManager
	active := false
	name := "Hodan Abdi"
	updated, err := svc.Update(ctx, admin, u.ID, UpdateInput{FullName: &name, Position: &pos, Active: &active})
	require.NoError(t, err)
	assert.Equal(t, "Hodan Abdi", updated.FullName)
	assert.Equal(t, PositionManager, updated.Position)
	assert.False(t, updated.Active)

	rows := audittest.Rows(t, db, "users")
	require.Len(t, rows, 2)
	assert.Equal(t, audit.ActionUpdate, rows[1].ActionType)
	assert.NotNil(t, rows[1].OldValues)
	assert.NotNil(t, rows[1].NewValues)

	_, err = svc.Update(ctx, admin, u.ID, UpdateInput{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	_, err = svc.Update(ctx, admin, 999, UpdateInput{FullName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_SoftDeletesAndFreesUsername(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, admin, User{Username: "hodan", FullName: "Hodan Ali"}, "password1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, admin, u.ID))

	_, err = svc.Read(ctx, User{ID: u.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	var raw User
	require.NoError(t, db.Unscoped().First(&raw, u.ID).Error)
	assert.True(t, raw.DeletedAt.Valid)
	require.NotNil(t, raw.DeletedBy)
	assert.Equal(t, "boss", *raw.DeletedBy)

	_, err = svc.Create(ctx, admin, User{Username: "hodan", FullName: "Hodan Again"}, "password1")
	assert.NoError(t, err, "username is unique among live rows only")

	assert.ErrorIs(t, svc.Delete(ctx, admin, u.ID), ErrNotFound)
}

func TestDelete_Self(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, admin, User{Username: "boss", FullName: "The Boss", Position: PositionAdmin}, "password1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, admin, u.ID), ErrCannotDeleteSelf)
}

func TestListAndCount(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"a1", "b2", "c3"} {
		_, err := svc.Create(ctx, admin, User{Username: name, FullName: name}, "password1")
		require.NoError(t, err)
	}

	users, total, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)

	n, err := svc.CountLive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
