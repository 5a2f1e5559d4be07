package traverse

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/sanitize/pkg/model"
)

func echoProcess(_ context.Context, item model.InputItem, data []byte) model.Record {
	return model.NewRecord(item.Path, nil, model.ActionCopied, nil, nil)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func paths(recs []model.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.InputPath
	}
	return out
}

func TestWalk_SortedOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.txt", "b")
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "sub/c.txt", "c")

	res, err := Walk(context.Background(), Options{Root: root}, echoProcess)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "sub/c.txt"}, paths(res.Records))
}

func TestWalk_ExcludePrunesDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.txt", "keep")
	writeFile(t, root, "vendor/dep.txt", "dep")

	res, err := Walk(context.Background(), Options{Root: root, Excludes: []string{"vendor"}}, echoProcess)
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "keep.txt", res.Records[0].InputPath)
	assert.Equal(t, model.ActionCopied, res.Records[0].Action)
	assert.Equal(t, "vendor", res.Records[1].InputPath)
	assert.Equal(t, model.ActionExcluded, res.Records[1].Action)
}

func TestWalk_ExcludeMatchesFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.txt", "keep")
	writeFile(t, root, "secret.log", "shh")

	res, err := Walk(context.Background(), Options{Root: root, Excludes: []string{"*.log"}}, echoProcess)
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, model.ActionExcluded, res.Records[1].Action)
}

func TestWalk_MaxFilesTruncates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "b.txt", "b")
	writeFile(t, root, "c.txt", "c")

	res, err := Walk(context.Background(), Options{Root: root, MaxFiles: 2}, echoProcess)
	require.NoError(t, err)

	assert.True(t, res.Truncated)
	require.Len(t, res.Records, 3)
	assert.Equal(t, model.ActionTruncated, res.Records[2].Action)
	assert.Equal(t, []string{"a.txt", "b.txt"}, paths(res.Records[:2]))
}

func TestWalk_MaxBytesTruncates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "aaaaaaaaaa")
	writeFile(t, root, "b.txt", "bbbbbbbbbb")

	res, err := Walk(context.Background(), Options{Root: root, MaxBytes: 10}, echoProcess)
	require.NoError(t, err)

	assert.True(t, res.Truncated)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "a.txt", res.Records[0].InputPath)
	assert.Equal(t, model.ActionTruncated, res.Records[1].Action)
}

func TestWalk_AllowlistSkipsUndeclaredTypes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "note.txt", "plain text content")

	res, err := Walk(context.Background(), Options{
		Root:       root,
		AllowTypes: map[model.ContentType]bool{model.TypePDF: true},
	}, echoProcess)
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, model.ActionSkipped, res.Records[0].Action)
	require.Len(t, res.Records[0].Warnings, 1)
	assert.Equal(t, model.WarnAllowlistSkipped, res.Records[0].Warnings[0].Code)
}

func TestWalk_ConcurrentProcessingPreservesOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"} {
		writeFile(t, root, name, name)
	}

	var concurrent int32
	var maxConcurrent int32
	process := func(_ context.Context, item model.InputItem, data []byte) model.Record {
		n := atomic.AddInt32(&concurrent, 1)
		defer atomic.AddInt32(&concurrent, -1)
		for {
			old := atomic.LoadInt32(&maxConcurrent)
			if n <= old || atomic.CompareAndSwapInt32(&maxConcurrent, old, n) {
				break
			}
		}
		return model.NewRecord(item.Path, nil, model.ActionCopied, nil, nil)
	}

	res, err := Walk(context.Background(), Options{Root: root, Concurrency: 4}, process)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}, paths(res.Records))
	assert.LessOrEqual(t, atomic.LoadInt32(&maxConcurrent), int32(4))
}

func TestWalk_NoConcurrencyOptionRunsSequentially(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "b.txt", "b")

	res, err := Walk(context.Background(), Options{Root: root}, echoProcess)
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
}
