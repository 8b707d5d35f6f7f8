package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := ValidateFilePath("")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("rejects dangerous shell characters", func(t *testing.T) {
		for _, char := range dangerousChars {
			_, err := ValidateFilePath("/tmp/focusflow" + char + ".db")
			assert.Error(t, err, "expected error for character %q", char)
			assert.Contains(t, err.Error(), "forbidden character")
		}
	})

	t.Run("keeps a file that does not exist yet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sub", "..", "focusflow.db")

		result, err := ValidateFilePath(path)
		require.NoError(t, err)
		assert.Equal(t, filepath.Clean(path), result)
	})

	t.Run("converts relative path to absolute", func(t *testing.T) {
		result, err := ValidateFilePath("focusflow.db")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(result))
	})

	t.Run("resolves symlinks", func(t *testing.T) {
		tmpDir := t.TempDir()
		realFile := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(realFile, []byte("log_level: debug\n"), 0o600))

		linkFile := filepath.Join(tmpDir, "link.yaml")
		require.NoError(t, os.Symlink(realFile, linkFile))

		result, err := ValidateFilePath(linkFile)
		require.NoError(t, err)

		// On macOS, /var is a symlink to /private/var
		expected, _ := filepath.EvalSymlinks(realFile)
		assert.Equal(t, expected, result)
	})
}

func TestSafeReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("focus_minutes: 50\n"), 0o600))

	content, err := SafeReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "focus_minutes: 50\n", string(content))

	_, err = SafeReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))

	_, err = SafeReadFile("config;rm.yaml")
	assert.Error(t, err)
}
