package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inConfigDir runs LoadConfig from a scratch directory holding the given
// config.yaml and restores the global config afterwards.
func inConfigDir(t *testing.T, yaml string) error {
	t.Helper()

	saved := config
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() {
		config = saved
		require.NoError(t, os.Chdir(wd))
	})

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	require.NoError(t, os.Chdir(dir))
	return LoadConfig()
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads config.yaml", func(t *testing.T) {
		require.NoError(t, inConfigDir(t, "SMTP_SENDER_NAME: Recipe Team\n"))
		if _, ok := os.LookupEnv("SMTP_SENDER_NAME"); !ok {
			assert.Equal(t, "Recipe Team", GetConfig("SMTP_SENDER_NAME"))
		}
	})

	t.Run("reports a malformed file", func(t *testing.T) {
		err := inConfigDir(t, "APP_NAME: [unclosed\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config.yaml")
	})

	t.Run("environment still wins after a bad file", func(t *testing.T) {
		t.Setenv("SMTP_HOST", "smtp.example.com")
		require.Error(t, inConfigDir(t, "SMTP_HOST: {broken\n"))
		assert.Equal(t, "smtp.example.com", GetConfig("SMTP_HOST"))
	})
}
