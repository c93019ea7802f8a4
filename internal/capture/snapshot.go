package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// SnapshotSource reads frames from an HTTP snapshot camera: every NextFrame
// call fetches one still image from the camera's snapshot endpoint.
type SnapshotSource struct {
	url     string
	client  *http.Client
	maxSize int
}

// NewSnapshotSource creates a frame source over a camera snapshot URL.
// Frames whose longer side exceeds maxSize pixels are downscaled before
// being handed out; maxSize <= 0 disables downscaling.
func NewSnapshotSource(url string, maxSize int) *SnapshotSource {
	return &SnapshotSource{
		url:     url,
		client:  &http.Client{},
		maxSize: maxSize,
	}
}

// NextFrame fetches one frame. Any camera failure is reported as wrapping
// ErrNoFrame so the caller can terminate its loop.
func (s *SnapshotSource) NextFrame(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating snapshot request: %v", ErrNoFrame, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: camera returned status %d", ErrNoFrame, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading snapshot: %v", ErrNoFrame, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: camera returned empty body", ErrNoFrame)
	}

	if s.maxSize > 0 {
		scaled, err := downscale(data, s.maxSize)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding snapshot: %v", ErrNoFrame, err)
		}
		data = scaled
	}
	return data, nil
}

// Close releases the source. Snapshot cameras are stateless per frame, so
// there is nothing to tear down beyond idle connections.
func (s *SnapshotSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
