package parser

import (
	"fmt"
	"math"

	"github.com/svg2pptx/svg2pptx/coordspace"
	"github.com/svg2pptx/svg2pptx/ir"
)

// bakePath parses `d` and bakes it into IR segments through space,
// baking the current transformation matrix into every emitted
// coordinate per spec §4.5 ("no stored transform on IR nodes").
// Quadratic Beziers are promoted to cubic and elliptical arcs are
// decomposed into cubic Bezier segments before baking, per spec §3.2.
func bakePath(d string, space *coordspace.Space) ([]ir.Segment, error) {
	cmds, err := parsePathCommands(d)
	if err != nil {
		return nil, fmt.Errorf("parser: malformed path data: %w", err)
	}

	var (
		segs                              []ir.Segment
		cur, start                        pathPoint
		prevCubicCP, prevQuadCP           pathPoint
		havePrevCubic, havePrevQuad       bool
	)

	emitMove := func(p pathPoint) {
		x, y := space.Apply(p.X, p.Y)
		segs = append(segs, ir.Segment{Kind: ir.SegMoveTo, To: ir.Point{X: x, Y: y}})
	}
	emitLine := func(p pathPoint) {
		x, y := space.Apply(p.X, p.Y)
		segs = append(segs, ir.Segment{Kind: ir.SegLineTo, To: ir.Point{X: x, Y: y}})
	}
	emitCubic := func(c1, c2, to pathPoint) {
		x1, y1 := space.Apply(c1.X, c1.Y)
		x2, y2 := space.Apply(c2.X, c2.Y)
		x, y := space.Apply(to.X, to.Y)
		segs = append(segs, ir.Segment{
			Kind: ir.SegCubicBezier,
			To:   ir.Point{X: x, Y: y},
			CP1:  ir.Point{X: x1, Y: y1},
			CP2:  ir.Point{X: x2, Y: y2},
		})
	}
	emitClose := func() {
		segs = append(segs, ir.Segment{Kind: ir.SegClose})
	}

	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case *cmdMoveTo:
			havePrevCubic, havePrevQuad = false, false
			for i, p := range c.Points {
				abs := resolvePoint(p, cur, c.IsAbsolute)
				if i == 0 {
					cur, start = abs, abs
					emitMove(abs)
				} else {
					cur = abs
					emitLine(abs)
				}
			}

		case *cmdClosePath:
			emitClose()
			cur = start
			havePrevCubic, havePrevQuad = false, false

		case *cmdLineTo:
			havePrevCubic, havePrevQuad = false, false
			for _, p := range c.Points {
				abs := resolveAxisPoint(p, cur, c.IsAbsolute)
				cur = abs
				emitLine(abs)
			}

		case *cmdCubicBezier:
			for _, coord := range c.Coordinates {
				to := resolvePoint(coord.pathPoint, cur, c.IsAbsolute)
				var c1, c2 pathPoint
				if c.IsSmooth {
					if havePrevCubic {
						c1 = pathPoint{X: 2*cur.X - prevCubicCP.X, Y: 2*cur.Y - prevCubicCP.Y}
					} else {
						c1 = cur
					}
					c2 = resolvePoint(pathPoint{X: coord.X2, Y: coord.Y2}, cur, c.IsAbsolute)
				} else {
					c1 = resolvePoint(pathPoint{X: coord.X1, Y: coord.Y1}, cur, c.IsAbsolute)
					c2 = resolvePoint(pathPoint{X: coord.X2, Y: coord.Y2}, cur, c.IsAbsolute)
				}
				emitCubic(c1, c2, to)
				prevCubicCP, havePrevCubic = c2, true
				havePrevQuad = false
				cur = to
			}

		case *cmdQuadraticBezier:
			for _, coord := range c.Coordinates {
				to := resolvePoint(coord.pathPoint, cur, c.IsAbsolute)
				var qc pathPoint
				switch {
				case havePrevQuad:
					qc = pathPoint{X: 2*cur.X - prevQuadCP.X, Y: 2*cur.Y - prevQuadCP.Y}
				case c.IsSmooth:
					qc = cur
				default:
					qc = resolvePoint(pathPoint{X: coord.X1, Y: coord.Y1}, cur, c.IsAbsolute)
				}
				c1, c2 := quadToCubicControls(cur, qc, to)
				emitCubic(c1, c2, to)
				prevQuadCP, havePrevQuad = qc, true
				havePrevCubic = false
				cur = to
			}

		case *cmdEllipticalArc:
			for _, coord := range c.Coordinates {
				to := resolvePoint(coord.pathPoint, cur, c.IsAbsolute)
				for _, seg := range arcToCubics(cur, to, coord.Rx, coord.Ry, coord.XAxisRotation, coord.LargeArc, coord.Sweep) {
					emitCubic(seg.c1, seg.c2, seg.to)
				}
				cur = to
				havePrevCubic, havePrevQuad = false, false
			}
		}
	}

	return segs, nil
}

func resolvePoint(p, cur pathPoint, isAbsolute bool) pathPoint {
	if isAbsolute {
		return p
	}
	return pathPoint{X: cur.X + p.X, Y: cur.Y + p.Y}
}

// resolveAxisPoint handles H/V lineto's NaN-masked single-axis points.
func resolveAxisPoint(p, cur pathPoint, isAbsolute bool) pathPoint {
	switch {
	case math.IsNaN(p.Y): // horizontal
		x := p.X
		if !isAbsolute {
			x = cur.X + p.X
		}
		return pathPoint{X: x, Y: cur.Y}
	case math.IsNaN(p.X): // vertical
		y := p.Y
		if !isAbsolute {
			y = cur.Y + p.Y
		}
		return pathPoint{X: cur.X, Y: y}
	default:
		return resolvePoint(p, cur, isAbsolute)
	}
}

// quadToCubicControls raises a quadratic Bezier (cur, qc, to) to the
// equivalent cubic per the standard degree-elevation formula.
func quadToCubicControls(cur, qc, to pathPoint) (c1, c2 pathPoint) {
	c1 = pathPoint{X: cur.X + 2.0/3.0*(qc.X-cur.X), Y: cur.Y + 2.0/3.0*(qc.Y-cur.Y)}
	c2 = pathPoint{X: to.X + 2.0/3.0*(qc.X-to.X), Y: to.Y + 2.0/3.0*(qc.Y-to.Y)}
	return c1, c2
}

type cubicSeg struct {
	c1, c2, to pathPoint
}

// arcToCubics decomposes an SVG elliptical arc into a sequence of
// cubic Bezier segments via the endpoint-to-center parameterization
// from the SVG spec, splitting into at most 90-degree sweeps per
// Bezier segment for visual fidelity.
func arcToCubics(from, to pathPoint, rx, ry, xAxisRotationDeg float64, largeArc, sweep bool) []cubicSeg {
	if from == to {
		return nil
	}
	if rx == 0 || ry == 0 {
		return []cubicSeg{{c1: from, c2: to, to: to}}
	}

	rx, ry = math.Abs(rx), math.Abs(ry)
	phi := xAxisRotationDeg * math.Pi / 180
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)

	dx2, dy2 := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}

	sign := 1.0
	if largeArc == sweep {
		sign = -1.0
	}
	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	co := 0.0
	if den != 0 && num > 0 {
		co = sign * math.Sqrt(num/den)
	}
	cxp := co * (rx * y1p / ry)
	cyp := co * -(ry * x1p / rx)

	cx := cosPhi*cxp - sinPhi*cyp + (from.X+to.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + (from.Y+to.Y)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		dot := ux*vx + uy*vy
		lenProd := math.Hypot(ux, uy) * math.Hypot(vx, vy)
		a := math.Acos(clamp(dot/lenProd, -1, 1))
		if ux*vy-uy*vx < 0 {
			a = -a
		}
		return a
	}

	theta1 := angle(1, 0, (x1p-cxp)/rx, (y1p-cyp)/ry)
	dtheta := angle((x1p-cxp)/rx, (y1p-cyp)/ry, (-x1p-cxp)/rx, (-y1p-cyp)/ry)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	numSegs := int(math.Ceil(math.Abs(dtheta) / (math.Pi / 2)))
	if numSegs < 1 {
		numSegs = 1
	}
	delta := dtheta / float64(numSegs)
	t := 4.0 / 3.0 * math.Tan(delta/4)

	segs := make([]cubicSeg, 0, numSegs)
	theta := theta1
	ellipsePoint := func(th float64) pathPoint {
		x := cx + rx*math.Cos(th)*cosPhi - ry*math.Sin(th)*sinPhi
		y := cy + rx*math.Cos(th)*sinPhi + ry*math.Sin(th)*cosPhi
		return pathPoint{X: x, Y: y}
	}
	ellipseTangent := func(th float64) (dx, dy float64) {
		dx = -rx*math.Sin(th)*cosPhi - ry*math.Cos(th)*sinPhi
		dy = -rx*math.Sin(th)*sinPhi + ry*math.Cos(th)*cosPhi
		return
	}

	p0 := ellipsePoint(theta)
	for i := 0; i < numSegs; i++ {
		theta2 := theta + delta
		p3 := ellipsePoint(theta2)
		d0x, d0y := ellipseTangent(theta)
		d3x, d3y := ellipseTangent(theta2)

		c1 := pathPoint{X: p0.X + t*d0x, Y: p0.Y + t*d0y}
		c2 := pathPoint{X: p3.X - t*d3x, Y: p3.Y - t*d3y}

		segs = append(segs, cubicSeg{c1: c1, c2: c2, to: p3})
		theta, p0 = theta2, p3
	}
	if n := len(segs); n > 0 {
		segs[n-1].to = to
	}
	return segs
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
