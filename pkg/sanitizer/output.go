package sanitizer

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// namer resolves a sanitized item's relative path to its final
// location under the output root, applying --flat's "one directory,
// numeric disambiguation on collision" contract when enabled.
type namer struct {
	mu   sync.Mutex
	root string
	flat bool
	used map[string]bool
}

func newNamer(root string, flat bool) *namer {
	return &namer{root: root, flat: flat, used: make(map[string]bool)}
}

// path returns the output path for relPath, registering the name it
// picked so a later collision on the same basename gets the next
// counter.
func (n *namer) path(relPath string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.flat {
		candidate := filepath.FromSlash(relPath)
		n.used[candidate] = true
		return filepath.Join(n.root, candidate)
	}

	base := filepath.Base(relPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	candidate := base
	for i := 1; n.used[candidate]; i++ {
		candidate = fmt.Sprintf("%s(%d)%s", stem, i, ext)
	}
	n.used[candidate] = true
	return filepath.Join(n.root, candidate)
}
