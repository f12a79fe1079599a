package constants

import (
	"sort"
	"strings"
)

// Display file types for tracked documents.
const (
	FileTypePDF   = "PDF"
	FileTypeImage = "IMAGE"
	FileTypeText  = "TXT"
	FileTypeDocx  = "DOCX"
)

// AllowedExtensions holds the default allowed file extensions for uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"md":   {},
	"docx": {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// MaxUploadBytes is the default upload size ceiling (50 MB).
const MaxUploadBytes int64 = 50 * 1024 * 1024

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// TypeForExt maps an extension to its display file type. Unknown extensions
// come back uppercased as-is.
func TypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return FileTypePDF
	case "jpg", "jpeg", "png":
		return FileTypeImage
	case "txt", "md":
		return FileTypeText
	case "docx":
		return FileTypeDocx
	}
	return strings.ToUpper(NormalizeExt(ext))
}

// ExtensionList returns the allowed extensions sorted for display in errors.
func ExtensionList() []string {
	out := make([]string, 0, len(AllowedExtensions))
	for ext := range AllowedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
