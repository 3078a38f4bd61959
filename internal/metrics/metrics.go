// Package metrics accumulates summary quantities over a trajectory as it is
// recorded: energy removed by the eddy currents, the peak braking load, and
// the time at which the motion settles.
package metrics

import "math"

// Metric observes recorded samples and reduces them to a single value.
type Metric interface {
	Name() string
	OnSample(t, q, v, drive, drag float64)
	Value() float64
	Reset()
}

// DissipatedEnergy integrates -drag * v dt, the work extracted from the
// plate by the induced eddy currents (always non-negative).
type DissipatedEnergy struct {
	prevT   float64
	prevP   float64 // previous -drag*v
	started bool
	total   float64
}

func NewDissipatedEnergy() *DissipatedEnergy { return &DissipatedEnergy{} }

func (d *DissipatedEnergy) Name() string { return "dissipated_energy" }

func (d *DissipatedEnergy) OnSample(t, q, v, drive, drag float64) {
	p := -drag * v
	if d.started {
		// Trapezoidal accumulation between samples.
		d.total += 0.5 * (p + d.prevP) * (t - d.prevT)
	}
	d.prevT, d.prevP = t, p
	d.started = true
}

func (d *DissipatedEnergy) Value() float64 { return d.total }

func (d *DissipatedEnergy) Reset() {
	d.prevT, d.prevP, d.total = 0, 0, 0
	d.started = false
}

// PeakDrag tracks the largest braking force or torque magnitude seen.
type PeakDrag struct {
	peak float64
}

func NewPeakDrag() *PeakDrag { return &PeakDrag{} }

func (p *PeakDrag) Name() string { return "peak_drag" }

func (p *PeakDrag) OnSample(t, q, v, drive, drag float64) {
	if m := math.Abs(drag); m > p.peak {
		p.peak = m
	}
}

func (p *PeakDrag) Value() float64 { return p.peak }

func (p *PeakDrag) Reset() { p.peak = 0 }

// SettleTime reports the earliest time after which |v| never exceeded the
// threshold again. Returns -1 if the motion never settled.
type SettleTime struct {
	threshold float64
	settledAt float64
	settled   bool
}

func NewSettleTime(threshold float64) *SettleTime {
	return &SettleTime{threshold: threshold}
}

func (s *SettleTime) Name() string { return "settle_time" }

func (s *SettleTime) OnSample(t, q, v, drive, drag float64) {
	if math.Abs(v) < s.threshold {
		if !s.settled {
			s.settledAt = t
			s.settled = true
		}
	} else {
		s.settled = false
	}
}

func (s *SettleTime) Value() float64 {
	if !s.settled {
		return -1
	}
	return s.settledAt
}

func (s *SettleTime) Reset() {
	s.settledAt = 0
	s.settled = false
}
