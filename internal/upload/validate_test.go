package upload_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obielum/doctrack/constants"
	"github.com/obielum/doctrack/internal/common"
	"github.com/obielum/doctrack/internal/upload"
)

func TestValidateFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		info     upload.FileInfo
		maxBytes int64
		wantCode string
	}{
		{
			name: "pdf within limit",
			info: upload.FileInfo{Name: "report.pdf", Size: 2 * 1024 * 1024},
		},
		{
			name: "uppercase extension",
			info: upload.FileInfo{Name: "NOTES.TXT", Size: 10},
		},
		{
			name:     "unsupported extension",
			info:     upload.FileInfo{Name: "malware.exe", Size: 10},
			wantCode: common.CodeUnsupportedType,
		},
		{
			name:     "no name",
			info:     upload.FileInfo{Name: "   ", Size: 10},
			wantCode: common.CodeUnsupportedType,
		},
		{
			name:     "no extension and no MIME",
			info:     upload.FileInfo{Name: "README", Size: 10},
			wantCode: common.CodeUnsupportedType,
		},
		{
			name: "no extension but known MIME",
			info: upload.FileInfo{Name: "scan", Size: 10, MIME: "application/pdf"},
		},
		{
			name: "misreported MIME is tolerated when extension is allowed",
			info: upload.FileInfo{Name: "report.pdf", Size: 10, MIME: "application/octet-stream"},
		},
		{
			name:     "over default limit",
			info:     upload.FileInfo{Name: "huge.pdf", Size: 60 * 1024 * 1024},
			wantCode: common.CodeTooLarge,
		},
		{
			name:     "over custom limit",
			info:     upload.FileInfo{Name: "small.txt", Size: 101},
			maxBytes: 100,
			wantCode: common.CodeTooLarge,
		},
		{
			name:     "exactly at limit",
			info:     upload.FileInfo{Name: "small.txt", Size: 100},
			maxBytes: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := upload.ValidateFile(tt.info, tt.maxBytes)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, tt.wantCode, common.ErrorCode(err))
		})
	}
}

func TestValidateFileTooLargeNamesLimit(t *testing.T) {
	t.Parallel()

	err := upload.ValidateFile(upload.FileInfo{Name: "huge.pdf", Size: 60 * 1024 * 1024}, constants.MaxUploadBytes)
	require.Error(t, err)
	require.Contains(t, err.Error(), "50.0 MB")
}

func TestValidateFileUnsupportedNamesAllowedSet(t *testing.T) {
	t.Parallel()

	err := upload.ValidateFile(upload.FileInfo{Name: "archive.zip", Size: 10}, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "pdf")
	require.Contains(t, err.Error(), "txt")
}
