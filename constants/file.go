package constants

import "strings"

// AllowedExtensions holds the document extensions a layout provider exists for:
// PDFs with embedded text and pre-extracted JSON layout dumps.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
