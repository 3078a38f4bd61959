package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alessandroarduino/lenz-effect/internal/metrics"
	"github.com/alessandroarduino/lenz-effect/internal/scenario"
	"github.com/alessandroarduino/lenz-effect/internal/sim"
	"github.com/alessandroarduino/lenz-effect/internal/store"
	"github.com/alessandroarduino/lenz-effect/internal/sweep"
	"github.com/alessandroarduino/lenz-effect/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	presetName string
	dt         float64
	horizon    float64
	integrator string
	q0         float64
	v0         float64
	tol        float64
	noMagnet   bool
	fieldTable string
	eddyTable  string
	outFile    string
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lenzsim",
		Short: "Lenz effect dynamics of conductive plates near an MRI magnet",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lenzsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	runCmd.Flags().StringVar(&presetName, "preset", "", "scenario preset (same as positional name)")
	runCmd.Flags().Float64Var(&dt, "dt", scenario.DefaultDt, "output sampling step")
	runCmd.Flags().Float64Var(&horizon, "time", scenario.DefaultHorizon, "time horizon")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator")
	runCmd.Flags().Float64Var(&q0, "q0", 0, "initial pose")
	runCmd.Flags().Float64Var(&v0, "v0", 0, "initial velocity")
	runCmd.Flags().Float64Var(&tol, "tol", scenario.DefaultTol, "adaptive error tolerance")
	runCmd.Flags().BoolVar(&noMagnet, "no-magnet", false, "disable the Lenz term for a reference run")
	runCmd.Flags().StringVar(&fieldTable, "field-table", "", "override the field model with a tabulated map")
	runCmd.Flags().StringVar(&eddyTable, "eddy-table", "", "override the eddy coefficient map")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  phaseRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "output file (stdout if empty)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run in the post-processing CSV layout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSVRun,
	}
	exportCSVCmd.Flags().StringVar(&outFile, "out", "", "output file (stdout if empty)")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario and replay it in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	liveCmd.Flags().BoolVar(&noMagnet, "no-magnet", false, "disable the Lenz term")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the measured scenario presets",
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scenario] [integrator...]",
		Short: "run one scenario under several integrators",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "sweep one parameter over a range",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "angle", "parameter to sweep (angle, v0, b0, conductivity)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "range start")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0, "range end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of points")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, exportCmd,
		exportCSVCmd, liveCmd, presetsCmd, compareCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// resolveConfig builds the scenario config from, in increasing precedence:
// the named preset, the config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, args []string) (*scenario.Config, error) {
	var cfg *scenario.Config

	name := presetName
	if len(args) == 1 {
		name = args[0]
	}
	if name != "" {
		cfg = scenario.Preset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown scenario: %s (available: %v)", name, scenario.ListScenarios())
		}
	}

	if configFile != "" {
		loaded, err := scenario.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cfg == nil {
		return nil, fmt.Errorf("a scenario name or --config is required")
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Horizon = horizon
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("q0") {
		cfg.Q0 = q0
	}
	if cmd.Flags().Changed("v0") {
		cfg.V0 = v0
	}
	if cmd.Flags().Changed("tol") {
		cfg.Tol = tol
	}
	if cmd.Flags().Changed("no-magnet") {
		cfg.NoMagnet = noMagnet
	}
	if cmd.Flags().Changed("field-table") {
		cfg.Field.Kind = "table"
		cfg.Field.Path = fieldTable
	}
	if cmd.Flags().Changed("eddy-table") {
		cfg.Eddy.Builtin = ""
		cfg.Eddy.Path = eddyTable
	}

	return cfg, nil
}

// execute builds the pipeline, attaches the standard metrics and runs the
// scenario to termination.
func execute(cfg *scenario.Config) (*scenario.Pipeline, *sim.Trajectory, []metrics.Metric, error) {
	p, err := scenario.NewRegistry().Build(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	ms := []metrics.Metric{
		metrics.NewDissipatedEnergy(),
		metrics.NewPeakDrag(),
		metrics.NewSettleTime(cfg.VelTol),
	}
	for _, m := range ms {
		p.Integrator.AddObserver(m)
	}

	traj, err := p.Integrator.Run(context.Background(), p.Q0, p.V0, p.SimCfg)
	if err != nil {
		return p, traj, ms, err
	}
	return p, traj, ms, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	p, traj, ms, err := execute(cfg)
	if err != nil {
		if traj != nil && traj.Len() > 0 {
			fmt.Printf("integration failed after %d samples\n", traj.Len())
		}
		return err
	}

	mvals := make(map[string]float64, len(ms))
	for _, m := range ms {
		mvals[m.Name()] = m.Value()
	}

	runID, err := st.Save(store.RunMetadata{
		Scenario:   cfg.Scenario,
		Dt:         cfg.Dt,
		Horizon:    cfg.Horizon,
		Integrator: cfg.Integrator,
		Rotational: p.Rotational,
		NoMagnet:   cfg.NoMagnet,
		Metrics:    mvals,
	}, traj)
	if err != nil {
		return err
	}

	tf, qf, vf := traj.Final()
	fmt.Printf("run: %s\n", runID)
	fmt.Printf("terminated: %s at t=%.4fs\n", traj.Reason, tf)
	fmt.Printf("final pose: %.6g  velocity: %.6g\n", qf, vf)
	for _, m := range ms {
		fmt.Printf("%s: %.6g\n", m.Name(), m.Value())
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDT\tINTEG\tREASON")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4fs\t%s\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dt,
			run.Integrator,
			run.Reason,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", traj.Len())

	poseCaption := "position (m)"
	velCaption := "velocity (m/s)"
	if meta.Rotational {
		poseCaption = "angle (rad)"
		velCaption = "angular velocity (rad/s)"
	}

	fmt.Println(viz.Series(traj.Poses, poseCaption))
	fmt.Println()
	fmt.Println(viz.Series(traj.Vels, velCaption))
	fmt.Println()
	fmt.Println(viz.Series(traj.Drag, "lenz force"))
	return nil
}

func phaseRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(viz.PhasePortrait(traj.Poses, traj.Vels, 80, 24))
	fmt.Println("pose (x) vs velocity (y)")
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return store.ExportJSONStdout(*meta, traj)
	}
	return store.ExportJSON(outFile, *meta, traj)
}

func exportCSVRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return store.WriteCSV(out, traj, meta.Rotational)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	p, traj, _, err := execute(cfg)
	if err != nil {
		return err
	}

	model := viz.NewModel(traj, cfg.Scenario, p.Rotational, cfg.QMin, cfg.QMax)
	_, err = tea.NewProgram(model).Run()
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tMOTION\tPLATE\tDRIVE\tHORIZON")
	for _, name := range scenario.ListScenarios() {
		cfg := scenario.Preset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0fs\n",
			name, cfg.Motion, cfg.Plate.Shape, cfg.Drive.Kind, cfg.Horizon)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg := scenario.Preset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown scenario: %s (available: %v)", args[0], scenario.ListScenarios())
	}

	apply, ok := sweepAppliers[sweepParam]
	if !ok {
		return fmt.Errorf("unknown sweep parameter: %s", sweepParam)
	}

	points := sweep.Run(context.Background(), cfg, apply,
		sweep.Values(sweepFrom, sweepTo, sweepSteps))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tREASON\tT_END\tQ_END\tENERGY\n", sweepParam)
	for _, pt := range points {
		if pt.Err != nil {
			fmt.Fprintf(w, "%.6g\tfailed: %v\t\t\t\n", pt.Value, pt.Err)
			continue
		}
		fmt.Fprintf(w, "%.6g\t%s\t%.4f\t%.6g\t%.6g\n",
			pt.Value, pt.Reason, pt.EndTime, pt.EndPose, pt.Energy)
	}
	return w.Flush()
}

var sweepAppliers = map[string]sweep.Apply{
	"angle":        func(cfg *scenario.Config, v float64) { cfg.Drive.Angle = v },
	"v0":           func(cfg *scenario.Config, v float64) { cfg.V0 = v },
	"b0":           func(cfg *scenario.Config, v float64) { cfg.Field.B0 = v },
	"conductivity": func(cfg *scenario.Config, v float64) { cfg.Plate.Conductivity = v },
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := scenario.Preset(name)
	if cfg == nil {
		return fmt.Errorf("unknown scenario: %s (available: %v)", name, scenario.ListScenarios())
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tREASON\tT_END\tQ_END\tV_END\tENERGY")

	for _, integ := range args[1:] {
		cfg := scenario.Preset(name)
		cfg.Integrator = integ

		_, traj, ms, err := execute(cfg)
		if err != nil {
			fmt.Fprintf(w, "%s\tfailed: %v\t\t\t\t\n", integ, err)
			continue
		}

		tf, qf, vf := traj.Final()
		var energy float64
		for _, m := range ms {
			if m.Name() == "dissipated_energy" {
				energy = m.Value()
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.6g\t%.6g\t%.6g\n",
			integ, traj.Reason, tf, qf, vf, energy)
	}
	return w.Flush()
}
