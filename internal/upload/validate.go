package upload

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/obielum/doctrack/constants"
	"github.com/obielum/doctrack/internal/common"
)

// FileInfo describes a candidate file before any network activity.
type FileInfo struct {
	Name string
	Size int64
	MIME string
}

// mimeExts maps well-known MIME types to an extension, used only as a
// fallback when the filename itself carries no usable extension. Operating
// systems and browsers report MIME types inconsistently, so the extension
// stays authoritative.
var mimeExts = map[string]string{
	"application/pdf": "pdf",
	"text/plain":      "txt",
	"text/markdown":   "md",
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// ValidateFile checks type and size constraints. It is pure: no side effects,
// safe to call repeatedly and concurrently.
func ValidateFile(info FileInfo, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = constants.MaxUploadBytes
	}

	name := strings.TrimSpace(info.Name)
	if name == "" {
		return common.NewAppError(common.CodeUnsupportedType,
			fmt.Sprintf("file has no name; allowed types: %s", strings.Join(constants.ExtensionList(), ", ")),
			common.ErrValidation)
	}

	ext := constants.NormalizeExt(filepath.Ext(name))
	if ext == "" {
		// Best-effort fallback: trust the reported MIME type when the name
		// gives us nothing to go on.
		ext = mimeExts[strings.ToLower(strings.TrimSpace(info.MIME))]
	}
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return common.NewAppError(common.CodeUnsupportedType,
			fmt.Sprintf("unsupported file type %q; allowed types: %s", ext, strings.Join(constants.ExtensionList(), ", ")),
			common.ErrValidation)
	}

	if info.Size > maxBytes {
		return common.NewAppError(common.CodeTooLarge,
			fmt.Sprintf("file exceeds the maximum size of %s", common.FormatBytes(maxBytes)),
			common.ErrValidation)
	}
	return nil
}
