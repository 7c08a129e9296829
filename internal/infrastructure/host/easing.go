package host

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Easing creates the interpolation curve for one tween.
type Easing interface {
	Start(from, to float64, duration time.Duration) Curve
}

// Curve yields successive tween values. done is true on the final value,
// which always equals the tween's target.
type Curve interface {
	Step(dt time.Duration) (value float64, done bool)
}

// Linear interpolates at constant speed.
type Linear struct{}

// Start implements Easing.
func (Linear) Start(from, to float64, duration time.Duration) Curve {
	return &linearCurve{from: from, to: to, duration: duration}
}

type linearCurve struct {
	from, to float64
	duration time.Duration
	elapsed  time.Duration
}

func (c *linearCurve) Step(dt time.Duration) (float64, bool) {
	c.elapsed += dt
	if c.duration <= 0 || c.elapsed >= c.duration {
		return c.to, true
	}
	frac := float64(c.elapsed) / float64(c.duration)
	return c.from + (c.to-c.from)*frac, false
}

// Spring animates with a damped harmonic oscillator. The tween duration caps
// the animation: whatever the spring has not settled by then snaps to the
// target.
type Spring struct {
	// FPS is the frame rate the host ticks at.
	FPS int
	// Frequency is the spring's angular frequency; higher is snappier.
	Frequency float64
	// Damping is the damping ratio; 1 is critically damped.
	Damping float64
}

// DefaultSpring is a critically damped spring tuned for ~150ms transitions at 60fps.
func DefaultSpring() Spring {
	return Spring{FPS: 60, Frequency: 6.0, Damping: 1.0}
}

// Start implements Easing.
func (s Spring) Start(from, to float64, duration time.Duration) Curve {
	fps := s.FPS
	if fps <= 0 {
		fps = 60
	}
	return &springCurve{
		spring:   harmonica.NewSpring(harmonica.FPS(fps), s.Frequency, s.Damping),
		from:     from,
		to:       to,
		duration: duration,
	}
}

const springSettle = 0.001

type springCurve struct {
	spring   harmonica.Spring
	from, to float64
	duration time.Duration
	elapsed  time.Duration
	// pos runs from 0 to 1 and is mapped onto [from, to].
	pos, vel float64
}

func (c *springCurve) Step(dt time.Duration) (float64, bool) {
	c.elapsed += dt
	if c.duration <= 0 || c.elapsed >= c.duration {
		return c.to, true
	}
	c.pos, c.vel = c.spring.Update(c.pos, c.vel, 1)
	if math.Abs(1-c.pos) < springSettle && math.Abs(c.vel) < springSettle {
		return c.to, true
	}
	return c.from + (c.to-c.from)*c.pos, false
}
