package admin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garaadka-laundry/internal/config"
	"garaadka-laundry/internal/infra/database/dbtest"
)

type widget struct {
	ID   uint
	Name string
}

type part struct {
	ID       uint
	WidgetID uint
	Widget   widget
}

func TestCheckAndDeleteAll(t *testing.T) {
	db := dbtest.New(t, &widget{}, &part{})
	ctx := context.Background()

	st, err := Check(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", st.Driver)
	assert.Contains(t, st.Tables, "widgets")
	assert.Contains(t, st.Tables, "parts")

	require.NoError(t, DeleteAll(ctx, db))

	st, err = Check(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, st.Tables)
}

func TestBackup_SQLite(t *testing.T) {
	db := dbtest.New(t, &widget{})
	require.NoError(t, db.Create(&widget{Name: "iron"}).Error)

	dest := filepath.Join(t.TempDir(), "backups", "laundry.db")
	out, err := Backup(context.Background(), db, config.Databases{Driver: "sqlite"}, BackupOptions{Destination: dest})
	require.NoError(t, err)
	assert.Equal(t, dest, out)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestBackup_RequiresDestination(t *testing.T) {
	_, err := Backup(context.Background(), nil, config.Databases{Driver: "sqlite"}, BackupOptions{})
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "p", detectFormat("dump.SQL"))
	assert.Equal(t, "t", detectFormat("dump.tar"))
	assert.Equal(t, "c", detectFormat("dump.backup"))
}
