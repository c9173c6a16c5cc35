package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DownloadRecording streams a recording into w. The url comes from a call
// snapshot and may live on a different host than the API, so the request is
// issued as-is with only the auth header attached.
func (c *Client) DownloadRecording(ctx context.Context, recordingURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("platform: download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("download recording: %w", ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &APIError{StatusCode: resp.StatusCode}
	}
	return io.Copy(w, resp.Body)
}
