package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/phnet/internal/analysis"
)

// SVG draws every set Braille dot as a circle; scale is the dot pitch in
// pixels.
func (c *Canvas) SVG(scale float64) string {
	width := float64(c.Width) * scale * 2
	height := float64(c.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	r := scale * 0.4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			cell := c.Grid[row][col]
			if cell <= brailleBlank {
				continue
			}
			pattern := cell - brailleBlank
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type bounds struct{ minX, minY, rangeX, rangeY float64 }

// padBounds fits the points with 10% padding on each side.
func padBounds(points []analysis.Point) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return bounds{
		minX:   minX - rangeX*0.1,
		minY:   minY - rangeY*0.1,
		rangeX: rangeX * 1.2,
		rangeY: rangeY * 1.2,
	}
}

// PhaseSVG renders a phase portrait as one polyline.
func PhaseSVG(p *analysis.PhasePortrait, width, height int, stroke string) string {
	if p == nil || len(p.Points) < 2 {
		return ""
	}
	b := padBounds(p.Points)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, stroke)

	for i, pt := range p.Points {
		x := (pt.X - b.minX) / b.rangeX * float64(width)
		y := float64(height) - (pt.Y-b.minY)/b.rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// PhaseCanvas draws a phase portrait on a Braille canvas of w x h cells,
// joining consecutive points.
func PhaseCanvas(p *analysis.PhasePortrait, w, h int) *Canvas {
	c := NewCanvas(w, h)
	if p == nil || len(p.Points) == 0 {
		return c
	}
	b := padBounds(p.Points)
	dotsW, dotsH := w*2, h*4

	toDots := func(pt analysis.Point) (int, int) {
		x := int((pt.X - b.minX) / b.rangeX * float64(dotsW-1))
		y := dotsH - 1 - int((pt.Y-b.minY)/b.rangeY*float64(dotsH-1))
		return x, y
	}
	px, py := toDots(p.Points[0])
	c.Set(px, py)
	for _, pt := range p.Points[1:] {
		x, y := toDots(pt)
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
	return c
}
