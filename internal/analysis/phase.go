package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/phnet/internal/integrators"
)

type Point struct{ X, Y float64 }

// PhasePortrait is the trajectory projected onto two components.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

func NewPhasePortrait(samples []integrators.Sample, xIdx, yIdx int) (*PhasePortrait, error) {
	if len(samples) == 0 {
		return nil, ErrTooShort
	}
	n := len(samples[0].X)
	if xIdx < 0 || yIdx < 0 || xIdx >= n || yIdx >= n {
		return nil, fmt.Errorf("analysis: phase axes (%d, %d) outside state of size %d", xIdx, yIdx, n)
	}

	p := &PhasePortrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, 0, len(samples))}
	for _, s := range samples {
		p.Points = append(p.Points, Point{X: s.X[xIdx], Y: s.X[yIdx]})
	}
	return p, nil
}

// ASCII plots the points on a width x height grid with axes through the
// origin when it is visible.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	// 10% padding
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

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
