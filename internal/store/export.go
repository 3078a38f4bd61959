package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/alessandroarduino/lenz-effect/internal/sim"
)

const (
	radToDeg = 180.0 / math.Pi
	degToRad = math.Pi / 180.0
)

// csvHeader matches the layout of the measurement post-processing scripts.
var csvHeader = []string{"time", "dof", "velocity", "ext_force", "lenz_force"}

// WriteCSV writes a trajectory in the post-processing column layout.
// Rotational runs are exported in degrees and deg/s.
func WriteCSV(out io.Writer, traj *sim.Trajectory, rotational bool) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for i := range traj.Times {
		q, v := traj.Poses[i], traj.Vels[i]
		if rotational {
			q *= radToDeg
			v *= radToDeg
		}
		row := []string{
			strconv.FormatFloat(traj.Times[i], 'g', -1, 64),
			strconv.FormatFloat(q, 'g', -1, 64),
			strconv.FormatFloat(v, 'g', -1, 64),
			strconv.FormatFloat(traj.Drive[i], 'g', -1, 64),
			strconv.FormatFloat(traj.Drag[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// ExportData is the self-contained JSON form of a run.
type ExportData struct {
	RunMetadata
	Steps int       `json:"steps"`
	Times []float64 `json:"times"`
	Poses []float64 `json:"poses"`
	Vels  []float64 `json:"velocities"`
	Drive []float64 `json:"ext_force"`
	Drag  []float64 `json:"lenz_force"`
}

func exportData(meta RunMetadata, traj *sim.Trajectory) ExportData {
	meta.Reason = traj.Reason.String()
	return ExportData{
		RunMetadata: meta,
		Steps:       traj.Len(),
		Times:       traj.Times,
		Poses:       traj.Poses,
		Vels:        traj.Vels,
		Drive:       traj.Drive,
		Drag:        traj.Drag,
	}
}

func ExportJSON(path string, meta RunMetadata, traj *sim.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, meta, traj)
}

func ExportJSONStdout(meta RunMetadata, traj *sim.Trajectory) error {
	return writeJSON(os.Stdout, meta, traj)
}

func writeJSON(out io.Writer, meta RunMetadata, traj *sim.Trajectory) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData(meta, traj))
}
