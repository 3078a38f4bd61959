// Package viz renders trajectories in the terminal: static line plots,
// phase portraits and a live replay of the plate motion.
package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"
)

// Series plots one sampled quantity over time.
func Series(data []float64, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(downsample(data, 160),
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption))
}

// downsample thins a series so the plot width stays readable on long runs.
func downsample(data []float64, max int) []float64 {
	if len(data) <= max {
		return data
	}
	out := make([]float64, 0, max)
	stride := float64(len(data)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		out = append(out, data[int(float64(i)*stride)])
	}
	return out
}

// PhasePortrait scatters velocity against pose. The spiral toward the
// origin is the signature of the Lenz braking.
func PhasePortrait(poses, vels []float64, width, height int) string {
	if len(poses) == 0 || len(poses) != len(vels) {
		return ""
	}

	minX, maxX := bounds(poses)
	minY, maxY := bounds(vels)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i := range poses {
		col := int((poses[i] - minX) / rangeX * float64(width-1))
		row := height - 1 - int((vels[i]-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Axes, where they cross the window.
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var b strings.Builder
	for _, row := range canvas {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func bounds(data []float64) (lo, hi float64) {
	lo, hi = data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
