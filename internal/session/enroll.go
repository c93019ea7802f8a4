// Package session drives the two interactive camera loops: enrollment
// sample capture and live attendance verification. Both run strictly
// sequentially and stop on context cancellation or camera failure.
package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/aaka8h/face-attend/internal/capture"
)

// sampleDelay spaces out accepted samples so consecutive captures come from
// slightly different poses.
const sampleDelay = 500 * time.Millisecond

// CaptureSamples collects the requested number of embedding samples from
// the camera. A frame contributes a sample only when exactly one face is
// detected; frames with zero or multiple faces are reported and skipped.
// Progress is rendered to out. The camera stays open for the whole capture
// and is not closed here; the caller owns it.
func CaptureSamples(ctx context.Context, src capture.FrameSource, det capture.FaceDetector, samples int, out io.Writer) ([][]float32, error) {
	bar := progressbar.NewOptions(samples,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Capturing samples"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
	)

	embeddings := make([][]float32, 0, samples)
	for len(embeddings) < samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := src.NextFrame(ctx)
		if err != nil {
			return nil, fmt.Errorf("camera read failed: %w", err)
		}

		faces, err := det.DetectFaces(ctx, frame)
		if err != nil {
			return nil, fmt.Errorf("face detection failed: %w", err)
		}

		switch len(faces) {
		case 0:
			fmt.Fprintln(out, "No face detected, adjust position")
		case 1:
			embeddings = append(embeddings, faces[0].Embedding)
			bar.Add(1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(sampleDelay):
			}
		default:
			fmt.Fprintln(out, "Multiple faces detected, show only one face")
		}
	}
	return embeddings, nil
}
