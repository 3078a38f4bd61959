package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/alessandroarduino/lenz-effect/internal/sim"
)

const (
	canvasW = 64
	canvasH = 18
)

type TickMsg time.Time

// Model replays a computed trajectory in the terminal. The playback clock
// is decoupled from the sample index so runs can be slowed down or sped up.
type Model struct {
	traj       *sim.Trajectory
	scenario   string
	rotational bool
	qMin, qMax float64

	idx     int
	speed   float64
	running bool
	done    bool
}

func NewModel(traj *sim.Trajectory, scenario string, rotational bool, qMin, qMax float64) Model {
	return Model{
		traj:       traj,
		scenario:   scenario,
		rotational: rotational,
		qMin:       qMin,
		qMax:       qMax,
		speed:      1.0,
		running:    true,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.idx = 0
			m.done = false
			m.running = true
		case "[":
			m.seek(-m.samplesPerTick() * 10)
		case "]":
			m.seek(m.samplesPerTick() * 10)
		case "+", "=":
			if m.speed < 16 {
				m.speed *= 2
			}
		case "-":
			if m.speed > 0.25 {
				m.speed /= 2
			}
		}
		return m, nil

	case TickMsg:
		if m.running && !m.done {
			m.seek(m.samplesPerTick())
		}
		return m, tick()
	}
	return m, nil
}

// samplesPerTick converts the 30 Hz UI clock into trajectory samples at
// the current playback speed.
func (m Model) samplesPerTick() int {
	if m.traj.Len() < 2 {
		return 1
	}
	dt := m.traj.Times[1] - m.traj.Times[0]
	n := int(m.speed / (30 * dt))
	if n < 1 {
		n = 1
	}
	return n
}

func (m *Model) seek(delta int) {
	m.idx += delta
	if m.idx >= m.traj.Len()-1 {
		m.idx = m.traj.Len() - 1
		m.done = true
		m.running = false
	}
	if m.idx < 0 {
		m.idx = 0
		m.done = false
	}
}

func (m Model) View() string {
	if m.traj.Len() == 0 {
		return "empty trajectory\n"
	}

	canvas := newCanvas(canvasW, canvasH)
	q := m.traj.Poses[m.idx]
	if m.rotational {
		drawPendulum(canvas, q)
	} else {
		drawSlider(canvas, q, m.qMin, m.qMax)
	}

	left := canvasStyle.Render(canvas.String())
	right := statsStyle.Render(m.stats())

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	graph := graphStyle.Render(m.sparkline())
	help := helpStyle.Render("space pause  [/] scrub  +/- speed  r restart  q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(m.scenario), body, graph, help) + "\n"
}

func (m Model) stats() string {
	line := func(label string, format string, args ...any) string {
		return labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(format, args...))
	}

	pose := m.traj.Poses[m.idx]
	vel := m.traj.Vels[m.idx]
	poseUnit, velUnit := "m", "m/s"
	if m.rotational {
		pose *= 180 / math.Pi
		vel *= 180 / math.Pi
		poseUnit, velUnit = "deg", "deg/s"
	}

	rows := []string{
		line("time", "%8.3f s", m.traj.Times[m.idx]),
		line("pose", "%8.3f %s", pose, poseUnit),
		line("velocity", "%8.3f %s", vel, velUnit),
		line("drive", "%8.4f N", m.traj.Drive[m.idx]),
		line("lenz", "%8.4f N", m.traj.Drag[m.idx]),
		line("speed", "%8.2fx", m.speed),
	}
	if m.done {
		rows = append(rows, doneStyle.Render(m.traj.Reason.String()))
	}
	return strings.Join(rows, "\n")
}

// sparkline shows the velocity history up to the playhead.
func (m Model) sparkline() string {
	if m.idx < 2 {
		return ""
	}
	return asciigraph.Plot(downsample(m.traj.Vels[:m.idx+1], 100),
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Caption("velocity"))
}

type canvasGrid struct {
	cells [][]rune
	w, h  int
}

func newCanvas(w, h int) *canvasGrid {
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = make([]rune, w)
		for j := range cells[i] {
			cells[i][j] = ' '
		}
	}
	return &canvasGrid{cells: cells, w: w, h: h}
}

func (c *canvasGrid) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

func (c *canvasGrid) line(x1, y1, x2, y2 int, r rune) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *canvasGrid) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// drawPendulum renders the tilted plate hanging from its pivot. q = 0 is
// straight down, along the bore axis gradient.
func drawPendulum(c *canvasGrid, q float64) {
	px, py := canvasW/2, 2
	length := 12.0
	bx := px + int(length*math.Sin(q))
	by := py + int(length*math.Cos(q))

	c.set(px, py, '+')
	c.line(px, py, bx, by, '|')
	c.set(bx, by, 'O')
}

// drawSlider renders the plate on its guide with the bore entrance at the
// upper bound.
func drawSlider(c *canvasGrid, q, qMin, qMax float64) {
	gy := canvasH / 2
	for x := 2; x < canvasW-2; x++ {
		c.set(x, gy+1, '=')
	}

	span := qMax - qMin
	if span <= 0 {
		span = 1
	}
	frac := (q - qMin) / span
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	px := 2 + int(frac*float64(canvasW-5))

	// Bore entrance marker.
	for y := gy - 3; y <= gy; y++ {
		c.set(canvasW-3, y, '!')
	}

	for dx := -1; dx <= 1; dx++ {
		c.set(px+dx, gy, '#')
		c.set(px+dx, gy-1, '#')
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
