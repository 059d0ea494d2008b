package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFileType(t *testing.T) {
	require.True(t, ValidateFileType("application/pdf", "chart.pdf"))
	require.True(t, ValidateFileType("", "hymn.mp3"))
	require.True(t, ValidateFileType("IMAGE/PNG", "logo.bin"))
	require.False(t, ValidateFileType("application/zip", "archive.zip"))
	require.False(t, ValidateFileType("", "noextension"))
}

func TestFileKey(t *testing.T) {
	require.Equal(t, "files/3/score.pdf", FileKey(3, "score.pdf"))
	// path traversal in the name is stripped to its base
	require.Equal(t, "files/3/score.pdf", FileKey(3, "../../score.pdf"))
}
