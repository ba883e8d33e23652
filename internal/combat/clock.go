package combat

// Clock is the run's simulation time in seconds. Pausing freezes every
// engine's tick scheduling since all of them read Now from here.
type Clock struct {
	now    float64
	paused bool
}

func (c *Clock) Now() float64 {
	return c.now
}

// Advance adds dt unless paused. Non-positive deltas are ignored.
func (c *Clock) Advance(dt float64) float64 {
	if c.paused || dt <= 0 {
		return c.now
	}
	c.now += dt
	return c.now
}

func (c *Clock) Pause()       { c.paused = true }
func (c *Clock) Resume()      { c.paused = false }
func (c *Clock) Paused() bool { return c.paused }
