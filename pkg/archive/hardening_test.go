package archive

import (
	"archive/zip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnsafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"ok/file.txt", false},
		{"../evil.txt", true},
		{"a/../../evil.txt", true},
		{"/etc/passwd", true},
		{"", true},
		{"nested/ok/path.txt", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isUnsafePath(tt.name), tt.name)
	}
}

func TestCompressionRatio(t *testing.T) {
	f := &zip.File{FileHeader: zip.FileHeader{
		UncompressedSize64: 1000,
		CompressedSize64:   10,
	}}
	assert.Equal(t, float64(100), compressionRatio(f))
}

func TestCompressionRatio_ZeroCompressedTreatedAsOne(t *testing.T) {
	f := &zip.File{FileHeader: zip.FileHeader{
		UncompressedSize64: 50,
		CompressedSize64:   0,
	}}
	assert.Equal(t, float64(50), compressionRatio(f))
}
