// Package sweep runs one scenario repeatedly over a range of a single
// parameter. Each point builds its own pipeline, so points run in
// parallel across the available cores.
package sweep

import (
	"context"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/alessandroarduino/lenz-effect/internal/metrics"
	"github.com/alessandroarduino/lenz-effect/internal/scenario"
	"github.com/alessandroarduino/lenz-effect/internal/sim"
)

// Apply writes one parameter value into a scenario config copy.
type Apply func(cfg *scenario.Config, value float64)

// Point is the outcome of one sweep value.
type Point struct {
	Value   float64
	Reason  sim.TerminationReason
	EndTime float64
	EndPose float64
	Energy  float64
	Err     error
}

// Values builds an inclusive linear range.
func Values(from, to float64, steps int) []float64 {
	if steps < 2 {
		return []float64{from}
	}
	out := make([]float64, steps)
	d := (to - from) / float64(steps-1)
	for i := range out {
		out[i] = from + float64(i)*d
	}
	return out
}

// Run evaluates every value and returns the points in input order. A
// failed point carries its error; the others still complete.
func Run(ctx context.Context, base *scenario.Config, apply Apply, values []float64) []Point {
	points := make([]Point, len(values))

	workers := runtime.NumCPU()
	if workers > len(values) {
		workers = len(values)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				points[i] = evaluate(ctx, base, apply, values[i])
			}
		}()
	}

	for i := range values {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return points
}

func evaluate(ctx context.Context, base *scenario.Config, apply Apply, value float64) Point {
	cfg := *base
	apply(&cfg, value)

	pt := Point{Value: value}

	p, err := scenario.NewRegistry().Build(&cfg)
	if err != nil {
		pt.Err = err
		return pt
	}

	energy := metrics.NewDissipatedEnergy()
	p.Integrator.AddObserver(energy)

	traj, err := p.Integrator.Run(ctx, p.Q0, p.V0, p.SimCfg)
	if err != nil {
		pt.Err = err
		return pt
	}

	pt.Reason = traj.Reason
	pt.EndTime, pt.EndPose, _ = traj.Final()
	pt.Energy = energy.Value()

	log.WithFields(log.Fields{
		"value":  value,
		"reason": traj.Reason,
		"t_end":  pt.EndTime,
	}).Debug("sweep point done")
	return pt
}
