// Package capture abstracts the two host-provided devices the kiosk needs:
// a frame source (camera) and a face detector (detection + embedding
// service). Both are interfaces so the session loops can run against
// deterministic fakes in tests.
package capture

import (
	"context"
	"errors"
)

// ErrNoFrame indicates the camera produced no usable frame. A failed read
// terminates the consuming loop; there are no retries.
var ErrNoFrame = errors.New("no frame available")

// FaceDetection is one detected face: its bounding box in frame pixels
// ([x1, y1, x2, y2]), the embedding vector, and the detector's own score.
type FaceDetection struct {
	FaceIndex int       `json:"face_index"`
	BBox      []float64 `json:"bbox"`
	Embedding []float32 `json:"embedding"`
	DetScore  float64   `json:"det_score"`
	Dim       int       `json:"dim"`
}

// FaceDetector finds faces in an encoded image frame and returns their
// bounding boxes and embeddings, aligned by index.
type FaceDetector interface {
	DetectFaces(ctx context.Context, frame []byte) ([]FaceDetection, error)
}

// FrameSource produces encoded image frames on demand.
type FrameSource interface {
	// NextFrame returns the next frame, or an error wrapping ErrNoFrame
	// when the device cannot produce one.
	NextFrame(ctx context.Context) ([]byte, error)

	// Close releases the device.
	Close() error
}
