package field

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ReadColumns parses a whitespace-separated numeric table. Blank lines and
// lines starting with '#' or '%' are skipped (both appear in simulation
// exports). Every data row must have the same number of columns. The file
// is closed before returning.
func ReadColumns(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]float64
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}

		fields := strings.Fields(line)
		row := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %q", ErrBadTable, path, lineNo, field)
			}
			row[i] = v
		}

		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%w: %s:%d: %d columns, want %d", ErrBadTable, path, lineNo, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: no data rows", ErrBadTable, path)
	}

	log.WithFields(log.Fields{
		"path": path,
		"rows": len(rows),
		"cols": len(rows[0]),
	}).Debug("loaded numeric table")

	return rows, nil
}

// Column extracts a single column from parsed rows.
func Column(rows [][]float64, col int) ([]float64, error) {
	if col < 0 || col >= len(rows[0]) {
		return nil, fmt.Errorf("%w: column %d out of range (table has %d)", ErrBadTable, col, len(rows[0]))
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[col]
	}
	return out, nil
}

// LoadTable builds a 1-D field model from a column of a tabulated file.
// Column 0 holds the coordinate; col selects the field component.
func LoadTable(path string, col int, policy EdgePolicy) (*Table, error) {
	rows, err := ReadColumns(path)
	if err != nil {
		return nil, err
	}
	xs, err := Column(rows, 0)
	if err != nil {
		return nil, err
	}
	bs, err := Column(rows, col)
	if err != nil {
		return nil, err
	}
	return NewTable(xs, bs, policy)
}

// LoadGrid builds a 2-D fringe-field map. The first data row lists the
// lateral offsets (its leading cell is a placeholder and is ignored); each
// following row holds the axial position followed by one flux density per
// offset.
func LoadGrid(path string, policy EdgePolicy) (*Grid, error) {
	rows, err := ReadColumns(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 3 {
		return nil, fmt.Errorf("%w: %s: grid needs an offset row and at least 2 data rows", ErrBadTable, path)
	}

	ys := rows[0][1:]
	xs := make([]float64, len(rows)-1)
	vals := make([][]float64, len(rows)-1)
	for i, row := range rows[1:] {
		xs[i] = row[0]
		vals[i] = row[1:]
	}
	return NewGrid(xs, ys, vals, policy)
}
