package testutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ngetahun/bugzilla-mcp/internal/testutils"

	"github.com/stretchr/testify/assert"
)

// TestMustWriteFile ensures that MustWriteFile creates files and parent directories correctly.
func TestMustWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("creates file with content", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "subdir", "testfile.txt")
		expected := "hello, world"

		testutils.MustWriteFile(t, filePath, expected)

		data, err := os.ReadFile(filePath)
		assert.NoError(t, err)
		assert.Equal(t, expected, string(data))
	})
}

func TestMustReadFile(t *testing.T) {
	t.Parallel()

	t.Run("reads back written content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "data.json")
		testutils.MustWriteFile(t, path, `{"ok":true}`)

		assert.Equal(t, []byte(`{"ok":true}`), testutils.MustReadFile(t, path))
	})
}
