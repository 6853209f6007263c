package local

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "handwriting.jpg")
	require.NoError(t, SaveFile(strings.NewReader("first"), path))
	require.NoError(t, SaveFile(strings.NewReader("2nd"), path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "2nd", string(b))
}
