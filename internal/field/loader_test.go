package field

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadColumns(t *testing.T) {
	path := writeFile(t, "table.txt", `# exported force table
0.00  -0.10  0.00  0.00
0.10  -0.25  0.01  0.00

0.20  -0.40  0.02  0.00
`)

	rows, err := ReadColumns(path)
	if err != nil {
		t.Fatalf("ReadColumns: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][1] != -0.25 {
		t.Errorf("rows[1][1] = %g, want -0.25", rows[1][1])
	}
}

func TestReadColumns_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"non-numeric", "0.0 abc\n"},
		{"ragged", "0.0 1.0\n0.1 2.0 3.0\n"},
		{"empty", "# only comments\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.txt", tt.content)
			if _, err := ReadColumns(path); !errors.Is(err, ErrBadTable) {
				t.Errorf("expected ErrBadTable, got %v", err)
			}
		})
	}
}

func TestLoadTable_SelectsColumn(t *testing.T) {
	path := writeFile(t, "field.txt", `0.0 3.00 9.0
0.1 2.50 9.1
0.2 1.60 9.2
0.3 0.80 9.3
`)

	tab, err := LoadTable(path, 1, Reject)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	b, err := tab.B(0.1)
	if err != nil {
		t.Fatalf("B: %v", err)
	}
	if math.Abs(b-2.5) > 1e-12 {
		t.Errorf("B(0.1) = %g, want 2.5", b)
	}

	if _, err := LoadTable(path, 7, Reject); !errors.Is(err, ErrBadTable) {
		t.Errorf("expected ErrBadTable for out-of-range column, got %v", err)
	}
}

func TestLoadGrid(t *testing.T) {
	path := writeFile(t, "grid.txt", `0.0  0.0 0.3
0.0  3.0 2.8
1.0  2.0 1.9
2.0  1.0 0.9
`)

	g, err := LoadGrid(path, Reject)
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	v, err := g.At(1.0, 0.0)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if math.Abs(v-2.0) > 1e-12 {
		t.Errorf("At(1,0) = %g, want 2.0", v)
	}
}

func TestLoadTable_MissingFile(t *testing.T) {
	if _, err := LoadTable("/nonexistent/field.txt", 1, Reject); err == nil {
		t.Error("expected error for missing file")
	}
}
