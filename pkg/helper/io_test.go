package helper

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, WriteFile(filename, []byte(`{"keys":[]}`), 0644))

	got, err := ReadFile(filename)
	require.NoError(t, err)
	require.Equal(t, `{"keys":[]}`, string(got))

	require.Error(t, WriteFile(filepath.Join(t.TempDir(), "missing", "report.json"), nil, 0644))
}
