package recordings

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type fakeDownloader struct {
	payload []byte
	err     error
}

func (f fakeDownloader) DownloadRecording(ctx context.Context, url string, w io.Writer) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := w.Write(f.payload)
	return int64(n), err
}

func TestDownload_WritesFile(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(fakeDownloader{payload: []byte("fake-wav")}, dir, nil)

	path, err := svc.Download(context.Background(), "c1", "https://example.test/rec/c1.wav")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected file under %s, got %s", dir, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(raw) != "fake-wav" {
		t.Fatalf("unexpected file content %q", raw)
	}
}

func TestDownload_CleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(fakeDownloader{err: errors.New("boom")}, dir, nil)

	if _, err := svc.Download(context.Background(), "c1", "https://example.test/rec.wav"); err == nil {
		t.Fatalf("expected download error")
	}
	if _, err := os.Stat(filepath.Join(dir, "c1.wav")); !os.IsNotExist(err) {
		t.Fatalf("partial file must be removed, stat err=%v", err)
	}
}

func TestDownload_SanitizesCallID(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(fakeDownloader{payload: []byte("x")}, dir, nil)

	path, err := svc.Download(context.Background(), "../evil/run", "https://example.test/r.wav")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("path traversal in call id must not escape the dir: %s", path)
	}
}

func TestDownload_ValidatesArguments(t *testing.T) {
	svc := NewService(fakeDownloader{}, t.TempDir(), nil)
	if _, err := svc.Download(context.Background(), "", "u"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.Download(context.Background(), "c1", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
