// Package recordings downloads call recordings from the platform into a
// local directory. Retention and serving of stored files is out of scope.
package recordings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidArgument = errors.New("recordings: invalid argument")

// Downloader is the slice of the platform client this service needs.
type Downloader interface {
	DownloadRecording(ctx context.Context, url string, w io.Writer) (int64, error)
}

type Service struct {
	client Downloader
	dir    string
	log    *slog.Logger
}

func NewService(client Downloader, dir string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{client: client, dir: dir, log: log}
}

// Download fetches a call's recording to <dir>/<callID>.wav and returns the
// stored path. Partial files are removed on failure.
func (s *Service) Download(ctx context.Context, callID, recordingURL string) (string, error) {
	if callID == "" || recordingURL == "" {
		return "", ErrInvalidArgument
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("recordings: create dir: %w", err)
	}

	path := filepath.Join(s.dir, sanitize(callID)+".wav")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("recordings: create file: %w", err)
	}

	n, err := s.client.DownloadRecording(ctx, recordingURL, f)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("recordings: download %s: %w", callID, err)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("recordings: close file: %w", closeErr)
	}

	s.log.Info("recording stored", "call_id", callID, "path", path, "bytes", n)
	return path, nil
}

// sanitize keeps the filename to a safe charset; call ids are opaque.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
