package anim

import "time"

// milestone is a one-shot progress trigger
type milestone struct {
	at    float32
	fn    func()
	fired bool
}

// Animation is an explicit record advanced by the frame loop
// A single float value is interpolated from From to To and handed to the apply callback
type Animation struct {
	Name     string
	Start    time.Time
	Duration time.Duration
	From     float32
	To       float32
	Easing   Easing

	apply      func(float32)
	milestones []milestone
	onComplete func()

	value     float32
	done      bool
	cancelled bool
}

// New creates an animation starting at start; apply may be nil
func New(name string, start time.Time, duration time.Duration, from, to float32, easing Easing, apply func(float32)) *Animation {
	return &Animation{
		Name:     name,
		Start:    start,
		Duration: duration,
		From:     from,
		To:       to,
		Easing:   easing,
		apply:    apply,
		value:    from,
	}
}

// At registers fn to run once when progress first reaches p
func (a *Animation) At(p float32, fn func()) *Animation {
	a.milestones = append(a.milestones, milestone{at: Clamp01(p), fn: fn})
	return a
}

// OnComplete registers the completion callback, replacing any previous one
func (a *Animation) OnComplete(fn func()) *Animation {
	a.onComplete = fn
	return a
}

// Progress returns linear progress in [0,1] at now
func (a *Animation) Progress(now time.Time) float32 {
	if a.Duration <= 0 {
		return 1
	}
	elapsed := now.Sub(a.Start)
	return Clamp01(float32(elapsed.Seconds() / a.Duration.Seconds()))
}

// ValueAt returns the interpolated value at linear progress p without advancing state
func (a *Animation) ValueAt(p float32) float32 {
	p = Clamp01(p)
	if p >= 1 {
		return a.To
	}
	return Lerp(a.From, a.To, a.Easing.Apply(p))
}

// Update advances the animation to now, applying the value and firing crossed milestones
// Completion fires exactly once, after any milestones of the same frame
func (a *Animation) Update(now time.Time) (float32, bool) {
	if a.done || a.cancelled {
		return a.value, true
	}

	p := a.Progress(now)
	a.value = a.ValueAt(p)
	if a.apply != nil {
		a.apply(a.value)
	}

	for i := range a.milestones {
		m := &a.milestones[i]
		if !m.fired && p >= m.at {
			m.fired = true
			if m.fn != nil {
				m.fn()
			}
		}
		// A milestone callback may cancel the animation
		if a.cancelled {
			return a.value, true
		}
	}

	if p >= 1 {
		a.done = true
		if a.onComplete != nil {
			a.onComplete()
		}
	}
	return a.value, a.done
}

// Cancel stops the animation without firing pending milestones or completion
// Cancelling a completed animation is a no-op
func (a *Animation) Cancel() {
	if !a.done {
		a.cancelled = true
	}
}

// Value returns the last applied value
func (a *Animation) Value() float32 { return a.value }

// Done reports whether the animation completed or was cancelled
func (a *Animation) Done() bool { return a.done || a.cancelled }

// Cancelled reports whether Cancel was called before completion
func (a *Animation) Cancelled() bool { return a.cancelled }
