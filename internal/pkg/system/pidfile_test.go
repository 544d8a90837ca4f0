package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFile(t *testing.T) {
	p := PIDFile{Path: filepath.Join(t.TempDir(), "run", "server.pid")}

	require.NoError(t, p.Write(4242))
	assert.ErrorIs(t, p.Write(1), ErrAlreadyRunning)

	pid, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	p.Remove()
	_, err = os.Stat(p.Path)
	assert.True(t, os.IsNotExist(err))

	_, err = p.Read()
	assert.Error(t, err)
}

func TestPIDFile_Garbage(t *testing.T) {
	p := PIDFile{Path: filepath.Join(t.TempDir(), "server.pid")}
	require.NoError(t, os.WriteFile(p.Path, []byte("not-a-pid"), 0o644))

	_, err := p.Read()
	assert.Error(t, err)
}
