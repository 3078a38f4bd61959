package lenz

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/alessandroarduino/lenz-effect/internal/field"
)

// LoadEddyCoefficient reads a coefficient map from a simulation export.
// Column 0 holds the degree of freedom; col selects the relevant force or
// torque component evaluated at unit velocity. Exports store the signed
// dissipative coefficient (non-positive); a mixed-sign column means the
// wrong component was selected and is rejected.
func LoadEddyCoefficient(path string, col int, policy field.EdgePolicy) (*EddyCoefficient, error) {
	rows, err := field.ReadColumns(path)
	if err != nil {
		return nil, err
	}
	qs, err := field.Column(rows, 0)
	if err != nil {
		return nil, err
	}
	cs, err := field.Column(rows, col)
	if err != nil {
		return nil, err
	}

	pos, neg := 0, 0
	for _, c := range cs {
		if c > 0 {
			pos++
		} else if c < 0 {
			neg++
		}
	}
	if pos > 0 && neg > 0 {
		return nil, fmt.Errorf("%w: column %d mixes signs (%d positive, %d negative)", field.ErrBadTable, col, pos, neg)
	}

	mags := make([]float64, len(cs))
	for i, c := range cs {
		mags[i] = math.Abs(c)
	}

	log.WithFields(log.Fields{
		"path":    path,
		"column":  col,
		"samples": len(qs),
	}).Debug("loaded eddy coefficient map")

	return NewEddyCoefficient(qs, mags, policy)
}
