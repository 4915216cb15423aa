package httpengine

import (
	"path/filepath"
	"strings"
)

// extMap is a fixed extension-to-content-type table used for static file
// serving. Unknown extensions fall back to octet-stream.
var extMap = map[string]string{
	".json": "application/json",
	".pdf":  "application/pdf",
	".zip":  "application/x-zip-compressed",
	".gz":   "application/x-gzip",
	".tar":  "application/x-tar",

	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/x-flac",

	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",

	".css":  "text/css; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
	".csv":  "text/plain; charset=utf-8",
	".xml":  "text/xml; charset=utf-8",

	".mp4":  "video/mp4",
	".webm": "video/webm",
	".avi":  "video/avi",
}

// guessType maps a file path's extension to a content type, defaulting to
// application/octet-stream for anything not in extMap.
func guessType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := extMap[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
