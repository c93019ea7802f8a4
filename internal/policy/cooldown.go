package policy

import "time"

// DefaultCooldown is the re-detection suppression window.
const DefaultCooldown = 3 * time.Second

// CooldownFilter throttles repeat detections of the same user. It is a pure
// UI rate limit sitting in front of the engine: suppressed detections are
// not evaluated at all, so neither Marked nor AlreadyAttended is re-emitted
// for a face that just sits in front of the camera. It has no bearing on
// the daily-dedup state and is never persisted.
type CooldownFilter struct {
	window   time.Duration
	now      func() time.Time
	lastSeen map[string]time.Time
}

// NewCooldownFilter creates a filter with the given window. A non-positive
// window falls back to DefaultCooldown; a nil clock defaults to time.Now.
func NewCooldownFilter(window time.Duration, now func() time.Time) *CooldownFilter {
	if window <= 0 {
		window = DefaultCooldown
	}
	if now == nil {
		now = time.Now
	}
	return &CooldownFilter{
		window:   window,
		now:      now,
		lastSeen: make(map[string]time.Time),
	}
}

// ShouldProcess reports whether a detection of the user should be evaluated.
// Detections within the window of the last processed one return false. The
// window is anchored at the last processed detection, so a stationary face
// re-evaluates once per window rather than never.
func (f *CooldownFilter) ShouldProcess(userID string) bool {
	now := f.now()
	if last, ok := f.lastSeen[userID]; ok && now.Sub(last) < f.window {
		return false
	}
	f.lastSeen[userID] = now
	return true
}

// Window returns the configured suppression window.
func (f *CooldownFilter) Window() time.Duration {
	return f.window
}
