package otpstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := New(time.Minute)

	_, ok := s.Get("a@x.com")
	assert.False(t, ok)

	s.Save("a@x.com", "123456")
	code, ok := s.Get("a@x.com")
	require.True(t, ok)
	assert.Equal(t, "123456", code)

	s.Delete("a@x.com")
	_, ok = s.Get("a@x.com")
	assert.False(t, ok)
}

func TestStore_Expires(t *testing.T) {
	s := New(20 * time.Millisecond)
	s.Save("a@x.com", "123456")
	time.Sleep(40 * time.Millisecond)
	_, ok := s.Get("a@x.com")
	assert.False(t, ok)
}

func TestGenerate(t *testing.T) {
	code, err := Generate(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^[0-9]{6}$`, code)
}
