package mediatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		description  string
		filename     string
		declaredMime string
		data         []byte
		wantExt      string
		wantMime     string
	}{
		{"declared mime wins over filename extension", "IMG.JPG", "image/png", nil, "png", "image/png"},
		{"declared jpeg", "photo.jpg", "image/jpeg", nil, "jpg", "image/jpeg"},
		{"jpeg alias extension maps to jpg", "photo.JPEG", "", nil, "jpg", "image/jpeg"},
		{"declared webp", "pic", "image/webp", nil, "webp", "image/webp"},
		{"declared gif with params", "a.bin", "image/gif; charset=binary", nil, "gif", "image/gif"},
		{"unrecognized declared mime falls back to sniffed bytes", "whatever.bin", "application/octet-stream", pngHeader, "png", "image/png"},
		{"filename extension used when mime and bytes are useless", "lot-front.png", "", nil, "png", "image/png"},
		{"nothing recognizable defaults to jpg", "mystery.heic", "image/heic", nil, "jpg", "image/jpeg"},
		{"empty everything defaults to jpg", "", "", nil, "jpg", "image/jpeg"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			ext, mime := Normalize(tc.filename, tc.declaredMime, tc.data)
			assert.Equal(t, tc.wantExt, ext)
			assert.Equal(t, tc.wantMime, mime)
		})
	}
}

func TestNormalizeAlwaysYieldsAllowListedPair(t *testing.T) {
	inputs := []struct{ filename, mime string }{
		{"a.svg", "image/svg+xml"},
		{"b.pdf", "application/pdf"},
		{"c.mp4", "video/mp4"},
		{"d", ""},
	}
	allowed := map[string]string{
		"jpg": "image/jpeg", "png": "image/png", "gif": "image/gif", "webp": "image/webp",
	}
	for _, in := range inputs {
		ext, mime := Normalize(in.filename, in.mime, nil)
		assert.Equal(t, allowed[ext], mime, "input %q/%q produced a pair outside the allow-list", in.filename, in.mime)
	}
}

func TestIsImageMime(t *testing.T) {
	assert.True(t, IsImageMime("image/png"))
	assert.True(t, IsImageMime(" IMAGE/JPEG "))
	assert.False(t, IsImageMime("application/pdf"))
	assert.False(t, IsImageMime(""))
}
