package sim

import "fmt"

// TerminationReason reports why an integration run ended. Every successful
// run carries exactly one reason; failures are reported as errors instead.
type TerminationReason int

const (
	TerminationUnknown TerminationReason = iota
	// BoundReached: the pose hit a configured geometric bound (e.g. the
	// plate reached the bore).
	BoundReached
	// QuasiSteady: the velocity stayed below tolerance for the configured
	// settle window.
	QuasiSteady
	// HorizonExhausted: the time horizon ran out first.
	HorizonExhausted
)

func (r TerminationReason) String() string {
	switch r {
	case BoundReached:
		return "bound-reached"
	case QuasiSteady:
		return "quasi-steady"
	case HorizonExhausted:
		return "horizon-exhausted"
	}
	return fmt.Sprintf("TerminationReason(%d)", int(r))
}

// Trajectory is the recorded solution: parallel slices indexed by sample.
// Append-only while the run is in progress, immutable afterwards. Drive
// and Drag hold the instantaneous forcing and Lenz terms at each sample,
// in physical units (N or N m).
type Trajectory struct {
	Times  []float64
	Poses  []float64
	Vels   []float64
	Drive  []float64
	Drag   []float64
	Reason TerminationReason
}

func newTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		Times: make([]float64, 0, capacity),
		Poses: make([]float64, 0, capacity),
		Vels:  make([]float64, 0, capacity),
		Drive: make([]float64, 0, capacity),
		Drag:  make([]float64, 0, capacity),
	}
}

func (tr *Trajectory) append(t, q, v, drive, drag float64) {
	tr.Times = append(tr.Times, t)
	tr.Poses = append(tr.Poses, q)
	tr.Vels = append(tr.Vels, v)
	tr.Drive = append(tr.Drive, drive)
	tr.Drag = append(tr.Drag, drag)
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Final returns the last recorded sample.
func (tr *Trajectory) Final() (t, q, v float64) {
	n := tr.Len()
	if n == 0 {
		return 0, 0, 0
	}
	return tr.Times[n-1], tr.Poses[n-1], tr.Vels[n-1]
}
