package overlay

import "time"

// FPSCounter averages frames over one second windows.
type FPSCounter struct {
	frames int
	since  time.Time
	fps    float64
}

// Frame records a frame drawn at now.
func (c *FPSCounter) Frame(now time.Time) {
	if c.since.IsZero() {
		c.since = now
	}
	c.frames++
	if elapsed := now.Sub(c.since); elapsed >= time.Second {
		c.fps = float64(c.frames) / elapsed.Seconds()
		c.frames = 0
		c.since = now
	}
}

// FPS returns the rate measured over the last full window.
func (c *FPSCounter) FPS() float64 { return c.fps }
