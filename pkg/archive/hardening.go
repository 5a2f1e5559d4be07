package archive

import (
	"archive/zip"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// sortedMembers returns zr.File sorted into byte-lexicographic order of
// Name, the iteration order §4.5 requires for reproducible reports.
func sortedMembers(files []*zip.File) []*zip.File {
	sorted := make([]*zip.File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

// isUnsafePath reports whether name is absolute, contains `..`
// components, or would normalize outside the archive root. It cross
// checks the naive join against securejoin.SecureJoin, which clamps
// any escaping path back inside root; a mismatch between the two means
// the raw name tried to escape.
func isUnsafePath(name string) bool {
	if name == "" {
		return true
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return true
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return true
		}
	}

	const root = "/sandbox"
	safe, err := securejoin.SecureJoin(root, name)
	if err != nil {
		return true
	}
	naive := filepath.Join(root, name)
	return safe != naive
}

// isSymlink reports whether f's external attributes mark it as a
// POSIX symlink (Unix mode bits stored in the upper 16 bits of
// ExternalAttrs, which archive/zip surfaces through Mode()).
func isSymlink(f *zip.File) bool {
	return f.Mode()&fs.ModeSymlink != 0
}

// isEncrypted reports whether general-purpose bit 0 is set, per §4.5.
func isEncrypted(f *zip.File) bool {
	return f.Flags&0x1 != 0
}

// compressionRatio computes uncompressed/max(compressed,1) from
// central-directory metadata, evaluated before any decompression.
func compressionRatio(f *zip.File) float64 {
	compressed := f.CompressedSize64
	if compressed == 0 {
		compressed = 1
	}
	return float64(f.UncompressedSize64) / float64(compressed)
}
