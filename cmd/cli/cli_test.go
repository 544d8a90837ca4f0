package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"--migration-seed", "--db-check"})
	require.NoError(t, err)
	assert.True(t, opts.Seed)
	assert.True(t, opts.DBCheck)
	assert.False(t, opts.Start)
	assert.True(t, opts.requiresDatabase())
	assert.True(t, opts.anyOperation())
}

func TestParseOptions_Backup(t *testing.T) {
	_, err := parseOptions([]string{"--db-backup"})
	assert.Error(t, err)

	opts, err := parseOptions([]string{"--db-backup", "--local=backups/laundry.dump"})
	require.NoError(t, err)
	assert.Equal(t, "backups/laundry.dump", opts.BackupDestination)
}

func TestParseOptions_AuditCleanup(t *testing.T) {
	opts, err := parseOptions([]string{"--audit-cleanup", "--retention-days", "30"})
	require.NoError(t, err)
	assert.True(t, opts.AuditCleanup)
	assert.Equal(t, 30, opts.RetentionDays)

	_, err = parseOptions([]string{"--audit-cleanup", "--retention-days", "-1"})
	assert.Error(t, err)
}

func TestParseOptions_StartOnlyNeedsNoMaintenance(t *testing.T) {
	opts, err := parseOptions([]string{"--start"})
	require.NoError(t, err)
	assert.True(t, opts.anyOperation())
	assert.False(t, opts.requiresDatabase())
}

func TestParseOptions_Unknown(t *testing.T) {
	_, err := parseOptions([]string{"--nope"})
	assert.Error(t, err)
}

func TestParseOptions_None(t *testing.T) {
	opts, err := parseOptions(nil)
	require.NoError(t, err)
	assert.False(t, opts.anyOperation())
}
