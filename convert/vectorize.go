package convert

import "github.com/svg2pptx/svg2pptx/ir"

// kappa is the standard cubic-bezier constant for approximating a
// quarter-circle arc (4/3*tan(pi/8)), used to flatten Circle/Ellipse
// into a PathShape.
const kappa = 0.5522847498

// flattenToPaths walks node, converting every shape it finds into an
// ir.PathShape, for the Filter Pipeline's VectorFallback tier (spec
// §4.8 step 4: the EMF embedding needs path geometry, not the mapper's
// own <a:prstGeom> shorthand). TextRun and Image have no path
// equivalent and are skipped; a filtered group containing only text or
// images yields no paths, which the caller treats as a signal to
// escalate straight to Raster.
func flattenToPaths(node ir.Node) []*ir.PathShape {
	switch n := node.(type) {
	case *ir.Circle:
		return []*ir.PathShape{circleToPath(n.Center, n.Radius, n.Radius, n.Paint, n.Stroke, n.Opacity)}
	case *ir.Ellipse:
		return []*ir.PathShape{circleToPath(n.Center, n.RX, n.RY, n.Paint, n.Stroke, n.Opacity)}
	case *ir.Rectangle:
		return []*ir.PathShape{rectToPath(n)}
	case *ir.PathShape:
		return []*ir.PathShape{n}
	case *ir.Group:
		var out []*ir.PathShape
		for _, c := range n.Children {
			out = append(out, flattenToPaths(c)...)
		}
		return out
	default:
		return nil
	}
}

func rectToPath(r *ir.Rectangle) *ir.PathShape {
	b := r.Bounds
	segs := []ir.Segment{
		{Kind: ir.SegMoveTo, To: ir.Point{X: b.X, Y: b.Y}},
		{Kind: ir.SegLineTo, To: ir.Point{X: b.X + b.Width, Y: b.Y}},
		{Kind: ir.SegLineTo, To: ir.Point{X: b.X + b.Width, Y: b.Y + b.Height}},
		{Kind: ir.SegLineTo, To: ir.Point{X: b.X, Y: b.Y + b.Height}},
		{Kind: ir.SegClose},
	}
	return &ir.PathShape{Segments: segs, Paint: r.Paint, Stroke: r.Stroke, Opacity: r.Opacity}
}

// circleToPath approximates an ellipse centered at c with radii rx/ry
// using four cubic Bezier quarter-arcs, the same kappa construction
// parser.bakeRoundedRectPath uses for rounded-rect corners.
func circleToPath(c ir.Point, rx, ry float64, paint ir.Paint, stroke *ir.Stroke, opacity float64) *ir.PathShape {
	ox, oy := rx*kappa, ry*kappa
	segs := []ir.Segment{
		{Kind: ir.SegMoveTo, To: ir.Point{X: c.X + rx, Y: c.Y}},
		{Kind: ir.SegCubicBezier, CP1: ir.Point{X: c.X + rx, Y: c.Y + oy}, CP2: ir.Point{X: c.X + ox, Y: c.Y + ry}, To: ir.Point{X: c.X, Y: c.Y + ry}},
		{Kind: ir.SegCubicBezier, CP1: ir.Point{X: c.X - ox, Y: c.Y + ry}, CP2: ir.Point{X: c.X - rx, Y: c.Y + oy}, To: ir.Point{X: c.X - rx, Y: c.Y}},
		{Kind: ir.SegCubicBezier, CP1: ir.Point{X: c.X - rx, Y: c.Y - oy}, CP2: ir.Point{X: c.X - ox, Y: c.Y - ry}, To: ir.Point{X: c.X, Y: c.Y - ry}},
		{Kind: ir.SegCubicBezier, CP1: ir.Point{X: c.X + ox, Y: c.Y - ry}, CP2: ir.Point{X: c.X + rx, Y: c.Y - oy}, To: ir.Point{X: c.X + rx, Y: c.Y}},
		{Kind: ir.SegClose},
	}
	return &ir.PathShape{Segments: segs, Paint: paint, Stroke: stroke, Opacity: opacity}
}
