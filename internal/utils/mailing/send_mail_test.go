package mailing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcomeEscapesInput(t *testing.T) {
	body, err := RenderWelcome("Recipes", "http://localhost", "<script>", "alice")
	require.NoError(t, err)
	assert.Contains(t, body, "@alice")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestDisabledMailerIsNoop(t *testing.T) {
	m := NewMailer(MailConfig{})
	assert.False(t, m.Enabled())
	assert.NoError(t, m.SendWelcome("a@x.com", "A", "alice"))
}
