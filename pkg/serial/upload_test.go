package serial

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ahmes-go/pkg/errors"
)

func writeTempScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.gwl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp script: %v", err)
	}
	return path
}

func TestUpload(t *testing.T) {
	content := "LaserPower 50\nScanSpeed 100000\nwrite\n"
	path := writeTempScript(t, content)

	var buf bytes.Buffer
	var gotSent, gotTotal int64
	err := Upload(&buf, path, func(sent, total int64) {
		gotSent, gotTotal = sent, total
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if buf.String() != content {
		t.Errorf("uploaded %q, want %q", buf.String(), content)
	}
	if gotSent != int64(len(content)) || gotTotal != int64(len(content)) {
		t.Errorf("progress sent=%d total=%d, want %d", gotSent, gotTotal, len(content))
	}
}

func TestUploadLargeScript(t *testing.T) {
	// More than one chunk
	content := strings.Repeat("MoveStageX 1\nwrite\n", 1000)
	path := writeTempScript(t, content)

	var buf bytes.Buffer
	calls := 0
	if err := Upload(&buf, path, func(sent, total int64) { calls++ }); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if buf.Len() != len(content) {
		t.Errorf("uploaded %d bytes, want %d", buf.Len(), len(content))
	}
	if calls < 2 {
		t.Errorf("expected multiple progress callbacks, got %d", calls)
	}
}

// shortWriter accepts at most 3 bytes per call.
type shortWriter struct {
	buf bytes.Buffer
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > 3 {
		p = p[:3]
	}
	return w.buf.Write(p)
}

func TestUploadPartialWrites(t *testing.T) {
	content := "GlobalGotoX 100\nGlobalGotoY 50\ninclude job.gwl\n"
	path := writeTempScript(t, content)

	w := &shortWriter{}
	if err := Upload(w, path, nil); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if w.buf.String() != content {
		t.Errorf("uploaded %q, want %q", w.buf.String(), content)
	}
}

type timeoutWriter struct{}

func (timeoutWriter) Write(p []byte) (int, error) { return 0, ErrTimeout }

func TestUploadTimeout(t *testing.T) {
	path := writeTempScript(t, "write\n")
	err := Upload(timeoutWriter{}, path, nil)
	if !errors.Is(err, errors.ErrSerialTimeout) {
		t.Errorf("got %v, want SERIAL_TIMEOUT", err)
	}
}

func TestUploadMissingFile(t *testing.T) {
	err := Upload(&bytes.Buffer{}, "/nonexistent/path.gwl", nil)
	if !errors.Is(err, errors.ErrSerial) {
		t.Errorf("got %v, want SERIAL", err)
	}
}
