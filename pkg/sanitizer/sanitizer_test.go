package sanitizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/sanitize/pkg/model"
	"github.com/praetorian-inc/sanitize/pkg/policy"
)

// minimalPDF builds a tiny, syntactically valid one-page PDF so
// ledongthuc/pdf can open it; extraCatalogEntries injects the
// dictionary keys a test wants to exercise the risk scan against.
func minimalPDF(extraCatalogEntries string) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 0, 4)

	write := func(s string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(s)
	}

	buf.WriteString("%PDF-1.4\n")
	write(fmt.Sprintf("1 0 obj\n<< /Type /Catalog /Pages 2 0 R %s >>\nendobj\n", extraCatalogEntries))
	write("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	write("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1))
	for _, off := range offsets {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets)+1, xrefOffset))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func readRecords(t *testing.T, raw []byte) []model.Record {
	t.Helper()
	var records []model.Record
	dec := json.NewDecoder(bytes.NewReader(raw))
	for dec.More() {
		var rec model.Record
		require.NoError(t, dec.Decode(&rec))
		records = append(records, rec)
	}
	return records
}

func TestRun_SanitizesDirectoryOfImages(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.jpg"), jpegBytes(t), 0o644))

	opts := DefaultOptions()
	opts.Input = inDir
	opts.Out = outDir
	opts.Report = filepath.Join(t.TempDir(), "report.jsonl")
	opts.ToolVersion = "test"

	code, err := Run(context.Background(), opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(opts.Report)
	require.NoError(t, err)
	records := readRecords(t, data)
	require.Len(t, records, 1)
	assert.Equal(t, model.ActionImageSanitized, records[0].Action)
	require.NotNil(t, records[0].OutputPath)
	_, statErr := os.Stat(*records[0].OutputPath)
	assert.NoError(t, statErr)
}

func TestRun_DryRunWritesNoOutput(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.jpg"), jpegBytes(t), 0o644))

	opts := DefaultOptions()
	opts.Input = inDir
	opts.Out = outDir
	opts.Report = filepath.Join(t.TempDir(), "report.jsonl")
	opts.DryRun = true

	code, err := Run(context.Background(), opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	data, err := os.ReadFile(opts.Report)
	require.NoError(t, err)
	records := readRecords(t, data)
	require.Len(t, records, 1)
	assert.Equal(t, model.ActionWouldImageSanitize, records[0].Action)
}

func TestRun_NoOverwriteSkipsExistingOutput(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.jpg"), jpegBytes(t), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "a.jpg"), []byte("existing"), 0o644))

	opts := DefaultOptions()
	opts.Input = inDir
	opts.Out = outDir
	opts.Report = filepath.Join(t.TempDir(), "report.jsonl")
	opts.Overwrite = false

	_, err := Run(context.Background(), opts, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(opts.Report)
	require.NoError(t, err)
	records := readRecords(t, data)
	require.Len(t, records, 1)
	assert.Equal(t, model.ActionSkipped, records[0].Action)

	out, err := os.ReadFile(filepath.Join(outDir, "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(out))
}

func TestRun_FlatModeDisambiguatesCollisions(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(inDir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.jpg"), jpegBytes(t), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "sub", "a.jpg"), jpegBytes(t), 0o644))

	opts := DefaultOptions()
	opts.Input = inDir
	opts.Out = outDir
	opts.Report = filepath.Join(t.TempDir(), "report.jsonl")
	opts.Flat = true

	code, err := Run(context.Background(), opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.ElementsMatch(t, []string{"a.jpg", "a(1).jpg"}, names)
}

func TestRun_RiskyPolicyBlockSuppressesOutput(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	pdfWithJS := minimalPDF("/OpenAction << /Type /Action /S /JavaScript /JS (app.alert(1)) >>")
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.pdf"), pdfWithJS, 0o644))

	opts := DefaultOptions()
	opts.Input = inDir
	opts.Out = outDir
	opts.Report = filepath.Join(t.TempDir(), "report.jsonl")
	opts.RiskyPolicy = policy.ModeBlock

	code, err := Run(context.Background(), opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, code)

	data, err := os.ReadFile(opts.Report)
	require.NoError(t, err)
	records := readRecords(t, data)
	require.Len(t, records, 1)
	assert.Equal(t, model.ActionBlocked, records[0].Action)
	assert.Nil(t, records[0].OutputPath)
}

func TestRun_ReportSummaryAppendsTerminalRecord(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.jpg"), jpegBytes(t), 0o644))

	opts := DefaultOptions()
	opts.Input = inDir
	opts.Out = outDir
	opts.Report = filepath.Join(t.TempDir(), "report.jsonl")
	opts.ReportSummary = true
	opts.ToolVersion = "test"

	_, err := Run(context.Background(), opts, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(opts.Report)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 2)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[1], &summary))
	assert.Equal(t, "summary", summary["type"])
	assert.Equal(t, "test", summary["tool_version"])
}

func TestRun_FailOnWarningsBumpsExitCode(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	// mismatched extension triggers a content_type_mismatch warning
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "note.pdf"), []byte("plain text, not a pdf"), 0o644))

	opts := DefaultOptions()
	opts.Input = inDir
	opts.Out = outDir
	opts.Report = filepath.Join(t.TempDir(), "report.jsonl")
	opts.FailOnWarnings = true

	code, err := Run(context.Background(), opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}
