// Package mediatype reconciles a file's declared MIME type, its
// name-derived extension, and its actual byte content into one canonical
// (extension, MIME type) pair. A mismatch between the three is the dominant
// cause of broken remote previews, so everything entering the pipeline goes
// through Normalize exactly once.
package mediatype

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// DefaultExtension and DefaultMime are used when no input is recognized.
	DefaultExtension = "jpg"
	DefaultMime      = "image/jpeg"
)

var extensionByMime = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

var mimeByExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

/*
Normalize picks the canonical pair. Precedence when inputs disagree:

 1. the declared MIME type, if allow-listed
 2. the sniffed byte content, if allow-listed
 3. the filename extension, if allow-listed
 4. jpg/image/jpeg

The result is always one of jpg, png, gif or webp with its matching MIME
type.
*/
func Normalize(filename, declaredMime string, data []byte) (string, string) {
	if ext, ok := extensionByMime[canonicalMime(declaredMime)]; ok {
		return ext, canonicalMime(declaredMime)
	}

	if len(data) > 0 {
		sniffed := mimetype.Detect(data).String()
		if ext, ok := extensionByMime[canonicalMime(sniffed)]; ok {
			return ext, canonicalMime(sniffed)
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if mime, ok := mimeByExtension[ext]; ok {
		return extensionByMime[mime], mime
	}

	return DefaultExtension, DefaultMime
}

// IsImageMime reports whether a declared content type claims to be an image
// at all. The file-selection path rejects anything else before normalizing.
func IsImageMime(declaredMime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(declaredMime)), "image/")
}

func canonicalMime(raw string) string {
	mime := strings.ToLower(strings.TrimSpace(raw))
	// Strip parameters like "; charset=binary" that sniffers append.
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}
