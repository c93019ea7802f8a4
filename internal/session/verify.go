package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aaka8h/face-attend/internal/capture"
	"github.com/aaka8h/face-attend/internal/facematch"
	"github.com/aaka8h/face-attend/internal/policy"
)

// Verifier runs the live verification loop: read a frame, detect faces,
// match against the gallery, and feed matches to the policy engine.
type Verifier struct {
	Source   capture.FrameSource
	Detector capture.FaceDetector
	Gallery  *facematch.Gallery
	Engine   *policy.Engine
	Cooldown *policy.CooldownFilter
	Renderer Renderer
	Log      *zap.Logger
}

// Run processes frames until the context is cancelled or the camera fails.
// Cancellation is a normal exit; a failed camera read terminates the loop
// with an error and is not retried. Detection runs on every other frame;
// skipped frames reuse the previous frame's detections to keep the loop
// responsive while detection is expensive.
func (v *Verifier) Run(ctx context.Context) error {
	log := v.Log
	if log == nil {
		log = zap.NewNop()
	}

	processThisFrame := true
	var faces []capture.FaceDetection

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := v.Source.NextFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("camera read failed: %w", err)
		}

		if processThisFrame {
			faces, err = v.Detector.DetectFaces(ctx, frame)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("face detection failed: %w", err)
			}
		}
		processThisFrame = !processThisFrame

		for i := range faces {
			if err := v.handleFace(&faces[i], log); err != nil {
				return err
			}
		}
	}
}

func (v *Verifier) handleFace(face *capture.FaceDetection, log *zap.Logger) error {
	m, err := v.Gallery.Match(face.Embedding)
	if err != nil {
		return fmt.Errorf("matching face: %w", err)
	}
	if m == nil {
		v.Renderer.Unknown()
		return nil
	}

	// A face that just sits in front of the camera is re-detected every
	// frame; the cooldown keeps it from spamming the console.
	if v.Cooldown != nil && !v.Cooldown.ShouldProcess(m.UserID) {
		return nil
	}

	out, err := v.Engine.Evaluate(m.UserID, m.Name, m.Confidence)
	if err != nil {
		return err
	}

	switch out.Decision {
	case policy.Marked:
		v.Renderer.Marked(m, out.Event)
		log.Info("attendance marked",
			zap.String("user_id", m.UserID),
			zap.String("name", m.Name),
			zap.Float64("confidence", m.Confidence),
			zap.Float64("distance", m.Distance),
		)
	case policy.AlreadyAttended:
		v.Renderer.AlreadyAttended(m)
		log.Info("already attended",
			zap.String("user_id", m.UserID),
			zap.Float64("confidence", m.Confidence),
		)
	}
	return nil
}

// IsDeviceError reports whether the loop ended because the camera could not
// produce a frame.
func IsDeviceError(err error) bool {
	return errors.Is(err, capture.ErrNoFrame)
}
