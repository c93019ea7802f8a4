package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aaka8h/face-attend/internal/capture"
	"github.com/aaka8h/face-attend/internal/config"
)

// openDevices builds the camera frame source and the face detector client
// from the configuration.
func openDevices(cfg *config.Config) (capture.FrameSource, capture.FaceDetector, error) {
	if cfg.Camera.SnapshotURL == "" {
		return nil, nil, errors.New("CAMERA_URL environment variable is required")
	}
	src := capture.NewSnapshotSource(cfg.Camera.SnapshotURL, cfg.Camera.MaxFrameSize)
	det := capture.NewClient(cfg.Detector.URL)
	return src, det, nil
}

// promptLine prints a label and reads one trimmed line of input.
func promptLine(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
