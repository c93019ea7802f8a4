package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aaka8h/face-attend/internal/capture"
	"github.com/aaka8h/face-attend/internal/facematch"
	"github.com/aaka8h/face-attend/internal/ledger"
	"github.com/aaka8h/face-attend/internal/policy"
)

// fakeSource hands out a fixed number of frames, advancing the shared
// clock per frame, and cancels the loop's context when it runs out.
type fakeSource struct {
	frames  int
	step    time.Duration
	clock   *time.Time
	cancel  context.CancelFunc
	failErr error
	reads   int
}

func (s *fakeSource) NextFrame(ctx context.Context) ([]byte, error) {
	if s.reads >= s.frames {
		if s.failErr != nil {
			return nil, s.failErr
		}
		s.cancel()
		return nil, fmt.Errorf("%w: source exhausted", capture.ErrNoFrame)
	}
	if s.reads > 0 && s.clock != nil {
		*s.clock = s.clock.Add(s.step)
	}
	s.reads++
	return []byte{0xFF, 0xD8, 0xFF, byte(s.reads)}, nil
}

func (s *fakeSource) Close() error { return nil }

// fakeDetector returns one scripted detection list per call.
type fakeDetector struct {
	script [][]capture.FaceDetection
	calls  int
	err    error
}

func (d *fakeDetector) DetectFaces(ctx context.Context, frame []byte) ([]capture.FaceDetection, error) {
	if d.err != nil {
		return nil, d.err
	}
	i := d.calls
	d.calls++
	if i >= len(d.script) {
		return nil, nil
	}
	return d.script[i], nil
}

func face(embedding []float32) capture.FaceDetection {
	return capture.FaceDetection{Embedding: embedding, DetScore: 0.95, Dim: len(embedding)}
}

// fakeRenderer records outcome calls in order.
type fakeRenderer struct {
	calls []string
}

func (r *fakeRenderer) Marked(m *facematch.Match, ev *ledger.Event) {
	r.calls = append(r.calls, "marked:"+m.UserID)
}

func (r *fakeRenderer) AlreadyAttended(m *facematch.Match) {
	r.calls = append(r.calls, "already:"+m.UserID)
}

func (r *fakeRenderer) Unknown() {
	r.calls = append(r.calls, "unknown")
}

type noopRecorder struct{}

func (noopRecorder) RecordAttendance(id string, ts time.Time) error { return nil }

func newVerifierFixture(t *testing.T, clock *time.Time) (*policy.Engine, *policy.CooldownFilter) {
	t.Helper()
	now := func() time.Time { return *clock }
	led, err := ledger.New(t.TempDir(), now)
	if err != nil {
		t.Fatalf("ledger.New() failed: %v", err)
	}
	engine, err := policy.NewEngine(led, noopRecorder{}, now)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return engine, policy.NewCooldownFilter(3*time.Second, now)
}

func TestVerifier_MarkCooldownThenAlreadyAttended(t *testing.T) {
	clockT := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	engine, cooldown := newVerifierFixture(t, &clockT)

	gallery := facematch.NewGallery(0.6)
	gallery.Add("u1", "Alice", [][]float32{{1, 0, 0, 0}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice := face([]float32{1, 0, 0, 0})
	// Detection runs on frames 1, 3, 5; frames 2, 4, 6 reuse cached faces.
	// The clock advances 1s per frame, so Alice's re-detections fall
	// inside the cooldown window until frame 4 (+3s).
	src := &fakeSource{frames: 6, step: time.Second, clock: &clockT, cancel: cancel}
	det := &fakeDetector{script: [][]capture.FaceDetection{
		{alice}, {alice}, {alice},
	}}
	rend := &fakeRenderer{}

	v := &Verifier{
		Source:   src,
		Detector: det,
		Gallery:  gallery,
		Engine:   engine,
		Cooldown: cooldown,
		Renderer: rend,
	}
	if err := v.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	// Frame 1: marked. Frames 2-3: suppressed. Frame 4 (+3s): the dedup
	// engine answers. Frames 5-6: suppressed again.
	want := []string{"marked:u1", "already:u1"}
	if len(rend.calls) != len(want) {
		t.Fatalf("renderer calls = %v, want %v", rend.calls, want)
	}
	for i := range want {
		if rend.calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, rend.calls[i], want[i])
		}
	}
	if engine.AttendedCount() != 1 {
		t.Errorf("AttendedCount() = %d, want 1", engine.AttendedCount())
	}
}

func TestVerifier_UnknownFace(t *testing.T) {
	clockT := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	engine, cooldown := newVerifierFixture(t, &clockT)

	gallery := facematch.NewGallery(0.6)
	gallery.Add("u1", "Alice", [][]float32{{1, 0, 0, 0}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{frames: 1, clock: &clockT, cancel: cancel}
	det := &fakeDetector{script: [][]capture.FaceDetection{
		{face([]float32{0, 0, 0, 1})},
	}}
	rend := &fakeRenderer{}

	v := &Verifier{Source: src, Detector: det, Gallery: gallery, Engine: engine, Cooldown: cooldown, Renderer: rend}
	if err := v.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(rend.calls) != 1 || rend.calls[0] != "unknown" {
		t.Errorf("renderer calls = %v, want [unknown]", rend.calls)
	}
	if engine.AttendedCount() != 0 {
		t.Errorf("AttendedCount() = %d, want 0", engine.AttendedCount())
	}
}

func TestVerifier_DetectsEveryOtherFrame(t *testing.T) {
	clockT := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	engine, cooldown := newVerifierFixture(t, &clockT)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{frames: 6, clock: &clockT, cancel: cancel}
	det := &fakeDetector{}

	v := &Verifier{
		Source:   src,
		Detector: det,
		Gallery:  facematch.NewGallery(0.6),
		Engine:   engine,
		Cooldown: cooldown,
		Renderer: &fakeRenderer{},
	}
	if err := v.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if det.calls != 3 {
		t.Errorf("detector called %d times for 6 frames, want 3", det.calls)
	}
}

func TestVerifier_CameraFailure(t *testing.T) {
	clockT := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	engine, cooldown := newVerifierFixture(t, &clockT)

	src := &fakeSource{
		frames:  0,
		failErr: fmt.Errorf("%w: device gone", capture.ErrNoFrame),
	}

	v := &Verifier{
		Source:   src,
		Detector: &fakeDetector{},
		Gallery:  facematch.NewGallery(0.6),
		Engine:   engine,
		Cooldown: cooldown,
		Renderer: &fakeRenderer{},
	}
	err := v.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error when the camera fails")
	}
	if !IsDeviceError(err) {
		t.Errorf("IsDeviceError(%v) = false, want true", err)
	}
}

func TestCaptureSamples(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{frames: 10, cancel: cancel}
	det := &fakeDetector{script: [][]capture.FaceDetection{
		{}, // no face, skipped
		{face([]float32{9, 9}), face([]float32{8, 8})}, // two faces, skipped
		{face([]float32{0.1, 0.2})},
		{face([]float32{0.3, 0.4})},
		{face([]float32{0.5, 0.6})},
	}}

	var out bytes.Buffer
	samples, err := CaptureSamples(ctx, src, det, 3, &out)
	if err != nil {
		t.Fatalf("CaptureSamples() failed: %v", err)
	}

	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	if samples[0][0] != 0.1 || samples[2][1] != 0.6 {
		t.Errorf("samples out of order: %v", samples)
	}
	if !bytes.Contains(out.Bytes(), []byte("No face detected")) {
		t.Error("expected a no-face notice in the output")
	}
	if !bytes.Contains(out.Bytes(), []byte("Multiple faces detected")) {
		t.Error("expected a multiple-faces notice in the output")
	}
}

func TestCaptureSamples_CameraFailure(t *testing.T) {
	src := &fakeSource{
		frames:  0,
		failErr: fmt.Errorf("%w: device gone", capture.ErrNoFrame),
	}
	var out bytes.Buffer
	_, err := CaptureSamples(context.Background(), src, &fakeDetector{}, 3, &out)
	if !errors.Is(err, capture.ErrNoFrame) {
		t.Errorf("CaptureSamples() error = %v, want ErrNoFrame", err)
	}
}

func TestCaptureSamples_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{frames: 10, cancel: func() {}}
	var out bytes.Buffer
	_, err := CaptureSamples(ctx, src, &fakeDetector{}, 3, &out)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("CaptureSamples() error = %v, want context.Canceled", err)
	}
}

func TestConsoleRenderer(t *testing.T) {
	var out bytes.Buffer
	r := &ConsoleRenderer{Out: &out}

	m := &facematch.Match{UserID: "u1", Name: "Alice", Distance: 0.2, Confidence: 80}
	r.Marked(m, &ledger.Event{
		Timestamp:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local),
		UserID:     "u1",
		Name:       "Alice",
		Confidence: 80,
	})
	got := out.String()
	for _, want := range []string{"ATTENDANCE MARKED", "Alice", "u1", "80.00%", "9:30AM"} {
		if !bytes.Contains([]byte(got), []byte(want)) {
			t.Errorf("Marked output missing %q:\n%s", want, got)
		}
	}

	out.Reset()
	r.AlreadyAttended(m)
	if got := out.String(); got != "Alice (ID: u1) - already attended today\n" {
		t.Errorf("AlreadyAttended output = %q", got)
	}

	out.Reset()
	r.Unknown()
	if got := out.String(); got != "Unknown face detected\n" {
		t.Errorf("Unknown output = %q", got)
	}
}
