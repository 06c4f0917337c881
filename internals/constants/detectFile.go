package constants

import (
	"path/filepath"
	"strings"
)

const (
	FileTypeVideo   = 1
	FileTypeUnknown = 99
)

var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
	".ogv":  "video/ogg",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
}

func DetectFileTypeFromExt(filename string) int {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := videoContentTypes[ext]; ok {
		return FileTypeVideo
	}
	return FileTypeUnknown // Tidak diketahui
}

// VideoContentType returns the stored content type for an accepted video, or "".
func VideoContentType(filename string) string {
	return videoContentTypes[strings.ToLower(filepath.Ext(filename))]
}
