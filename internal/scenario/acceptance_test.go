package scenario_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/alessandroarduino/lenz-effect/internal/scenario"
	"github.com/alessandroarduino/lenz-effect/internal/sim"
)

func runPreset(name string, mutate func(*scenario.Config)) (*scenario.Pipeline, *sim.Trajectory) {
	cfg := scenario.Preset(name)
	Expect(cfg).NotTo(BeNil())
	if mutate != nil {
		mutate(cfg)
	}

	p, err := scenario.NewRegistry().Build(cfg)
	Expect(err).NotTo(HaveOccurred())

	traj, err := p.Integrator.Run(context.Background(), p.Q0, p.V0, p.SimCfg)
	Expect(err).NotTo(HaveOccurred())
	return p, traj
}

var _ = Describe("rotating plate", func() {
	It("settles to the low-field-energy pose and reports quasi-steady", func() {
		_, traj := runPreset("rotating-disc", nil)

		Expect(traj.Reason).To(Equal(sim.QuasiSteady))
		t, q, v := traj.Final()
		Expect(t).To(BeNumerically("<", 120))
		Expect(math.Abs(q)).To(BeNumerically("<", 0.05))
		Expect(math.Abs(v)).To(BeNumerically("<=", 1e-4))
	})

	It("never gains energy over the initial release", func() {
		_, traj := runPreset("rotating-square", nil)

		q0 := traj.Poses[0]
		for _, q := range traj.Poses {
			Expect(math.Abs(q)).To(BeNumerically("<=", math.Abs(q0)+1e-9))
		}
	})

	It("swings forever without the magnet", func() {
		_, traj := runPreset("rotating-square", func(cfg *scenario.Config) {
			cfg.NoMagnet = true
			cfg.Eddy = scenario.EddyConfig{}
			cfg.Horizon = 5
		})

		Expect(traj.Reason).To(Equal(sim.HorizonExhausted))
		for _, d := range traj.Drag {
			Expect(d).To(BeZero())
		}
	})
})

var _ = Describe("translating plate", func() {
	It("reaches the bore entrance and stops on the bound", func() {
		_, traj := runPreset("translating-square-0", nil)

		Expect(traj.Reason).To(Equal(sim.BoundReached))
		_, q, v := traj.Final()
		Expect(q).To(BeNumerically("~", 1.2, 1e-3))
		Expect(v).To(BeNumerically(">", 0))
	})

	It("arrives faster at 300 mm lateral offset", func() {
		_, traj0 := runPreset("translating-square-0", nil)
		_, traj300 := runPreset("translating-square-300", nil)

		Expect(traj300.Reason).To(Equal(sim.BoundReached))
		t0, _, _ := traj0.Final()
		t300, _, _ := traj300.Final()
		Expect(t300).To(BeNumerically("<", t0))
	})

	It("creeps at the drive/drag balance inside the fringe", func() {
		p, traj := runPreset("translating-square-0", nil)

		checked := 0
		for i, q := range traj.Poses {
			if q < 1.0 || q > 1.15 {
				continue
			}
			checked++

			// Force balance: the residual accelerating force is a small
			// fraction of the drive once the plate is overdamped.
			Expect(math.Abs(traj.Drive[i] + traj.Drag[i])).To(
				BeNumerically("<", 0.01*math.Abs(traj.Drive[i])))

			// The recorded drag matches the coefficient map.
			c, err := p.Damper.Coefficient(q)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Drag[i]).To(BeNumerically("~", -c*traj.Vels[i], 1e-9))
		}
		Expect(checked).To(BeNumerically(">", 10))
	})
})

var _ = Describe("reproducibility", func() {
	It("produces identical trajectories on repeated runs", func() {
		_, a := runPreset("translating-square-0", nil)
		_, b := runPreset("translating-square-0", nil)

		Expect(b.Len()).To(Equal(a.Len()))
		Expect(b.Reason).To(Equal(a.Reason))
		for i := range a.Times {
			Expect(b.Times[i]).To(Equal(a.Times[i]))
			Expect(b.Poses[i]).To(Equal(a.Poses[i]))
			Expect(b.Vels[i]).To(Equal(a.Vels[i]))
		}
	})
})
