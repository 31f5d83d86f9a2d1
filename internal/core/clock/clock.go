// Package clock implements the fixed frame-time pacing loop, grounded on
// the original engine's FrameRateTargetControl: a busy-wait tail bounds the
// sub-millisecond timing error that a sleep-based wait cannot guarantee on
// platforms with coarse scheduler granularity.
package clock

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// TargetFPS restricts frame-rate selection to the engine's supported set.
type TargetFPS int

const (
	FPS60  TargetFPS = 60
	FPS75  TargetFPS = 75
	FPS120 TargetFPS = 120
	FPS144 TargetFPS = 144
	FPS165 TargetFPS = 165
	FPS180 TargetFPS = 180
	FPS240 TargetFPS = 240
	FPS360 TargetFPS = 360
)

// DefaultTargetFPS is the clock's startup target, matching the original's
// constructor default.
const DefaultTargetFPS = FPS60

var supportedFPS = map[TargetFPS]bool{
	FPS60: true, FPS75: true, FPS120: true, FPS144: true,
	FPS165: true, FPS180: true, FPS240: true, FPS360: true,
}

// Valid reports whether fps belongs to the engine's supported rate set.
func (fps TargetFPS) Valid() bool { return supportedFPS[fps] }

// GameClock paces the frame loop to a target frame time and tracks a
// 1-second-windowed FPS figure. It also supports a debug step mode where
// ShouldAdvance reports false until RequestStep arms a single step, letting a
// tool pause the simulation and single-step it frame by frame.
type GameClock struct {
	now func() time.Time
	log zerolog.Logger

	targetFrameTime time.Duration
	frameStart      time.Time

	frameCount         int
	timeSinceFPSUpdate time.Duration
	currentFPS         float64
	lastFrameDuration  time.Duration

	stepMode      bool
	stepRequested bool
}

// New creates a GameClock targeting DefaultTargetFPS.
func New(log zerolog.Logger) *GameClock {
	c := &GameClock{now: time.Now, log: log}
	_ = c.SetTargetFPS(DefaultTargetFPS)
	return c
}

// SetTargetFPS changes the pacing target. Returns an error for any value
// outside the engine's supported set instead of silently clamping it.
func (c *GameClock) SetTargetFPS(fps TargetFPS) error {
	if !fps.Valid() {
		return fmt.Errorf("clock: unsupported target fps %d", fps)
	}
	c.targetFrameTime = time.Second / time.Duration(fps)
	c.log.Debug().Int("targetFPS", int(fps)).Msg("target frame rate changed")
	return nil
}

// BeginFrame records the frame's start timestamp.
func (c *GameClock) BeginFrame() {
	c.frameStart = c.now()
}

// EndFrame updates the running FPS figure and busy-waits until the target
// frame time has elapsed since BeginFrame.
func (c *GameClock) EndFrame() {
	c.frameCount++
	elapsed := c.now().Sub(c.frameStart)
	c.timeSinceFPSUpdate += elapsed

	if c.timeSinceFPSUpdate >= time.Second {
		c.currentFPS = float64(c.frameCount) / c.timeSinceFPSUpdate.Seconds()
		c.frameCount = 0
		c.timeSinceFPSUpdate = 0
	}

	for c.now().Sub(c.frameStart) < c.targetFrameTime {
		// busy-wait tail: bounded and predictable where sleep granularity
		// is too coarse for sub-millisecond frame pacing.
	}

	c.lastFrameDuration = c.now().Sub(c.frameStart)
}

// FPS returns the most recently computed frames-per-second figure.
func (c *GameClock) FPS() float64 { return c.currentFPS }

// LastFrameDuration returns the wall-clock duration of the most recently
// ended frame, including the busy-wait tail.
func (c *GameClock) LastFrameDuration() time.Duration { return c.lastFrameDuration }

// SetStepMode toggles debug single-stepping. Enabling it while a step was
// already pending leaves the pending step intact.
func (c *GameClock) SetStepMode(enabled bool) { c.stepMode = enabled }

// StepMode reports whether the clock is in debug single-step mode.
func (c *GameClock) StepMode() bool { return c.stepMode }

// RequestStep arms a single step to be consumed by the next ShouldAdvance
// call. A no-op when not in step mode.
func (c *GameClock) RequestStep() {
	if c.stepMode {
		c.stepRequested = true
	}
}

// ShouldAdvance reports whether the frame loop should run its next
// iteration: always true outside step mode, and true exactly once per
// RequestStep call while in step mode.
func (c *GameClock) ShouldAdvance() bool {
	if !c.stepMode {
		return true
	}
	if !c.stepRequested {
		return false
	}
	c.stepRequested = false
	return true
}
