package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(SMTPConfig{Host: "smtp.local"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingConfig)

	svc, err := New(SMTPConfig{
		Host: "smtp.local", Port: "587", Username: "u", Password: "p", Address: "noreply@garaadka.local",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("from@x", "to@y", "Hello", "<p>hi</p>"))
	assert.Contains(t, msg, "From: from@x\r\n")
	assert.Contains(t, msg, "To: to@y\r\n")
	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, "\r\n\r\n<p>hi</p>")
}

func TestRender_EscapesData(t *testing.T) {
	out, err := Render(`<b>{{.Name}}</b>`, map[string]string{"Name": "<script>"})
	require.NoError(t, err)
	assert.Equal(t, "<b>&lt;script&gt;</b>", out)
}

func TestLoginAuth(t *testing.T) {
	a := LoginAuth("user", "pw")
	mech, _, err := a.Start(nil)
	require.NoError(t, err)
	assert.Equal(t, "LOGIN", mech)

	resp, err := a.Next([]byte("Username:"), true)
	require.NoError(t, err)
	assert.Equal(t, "user", string(resp))

	resp, err = a.Next([]byte("Password:"), true)
	require.NoError(t, err)
	assert.Equal(t, "pw", string(resp))

	_, err = a.Next([]byte("Other:"), true)
	assert.Error(t, err)
}
