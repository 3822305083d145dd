// Package filter implements the Filter Pipeline (spec §4.8): builds a
// DAG of filter primitives keyed by result name, recognizes known
// sub-DAGs for a Native DrawingML effect list, and falls back to a
// VectorFallback EMF part or a Raster PNG part when the Policy Engine
// says Native doesn't fit. Raster compositing follows the teacher's
// own off-screen raster idiom (renderer.go drawing onto a gg.Context),
// generalized from "draw the whole document" to "draw one filter
// chain's SourceGraphic".
package filter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/llgcode/draw2d"

	"github.com/svg2pptx/svg2pptx/ir"
)

// CircularReferenceError is returned by buildDAG when a chain's result
// names form a cycle (spec §4.8 failure mode: "fatal for that chain").
type CircularReferenceError struct{ Result string }

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("filter: circular reference at result %q", e.Result)
}

// UnknownPrimitiveWarning records a primitive the pipeline doesn't
// recognize; the chain continues treating it as a no-op per spec §4.8.
type UnknownPrimitiveWarning struct{ Kind ir.FilterPrimitiveKind }

func (w *UnknownPrimitiveWarning) Error() string {
	return fmt.Sprintf("filter: unrecognized primitive kind %d treated as no-op", w.Kind)
}

// dag resolves a FilterChain's primitives by result name and detects
// cycles in the Inputs references (spec §4.8 step 1).
type dag struct {
	byResult map[string]*ir.FilterPrimitive
	order    []*ir.FilterPrimitive
}

func buildDAG(chain ir.FilterChain) (*dag, error) {
	d := &dag{byResult: map[string]*ir.FilterPrimitive{}}
	for i := range chain.Primitives {
		p := &chain.Primitives[i]
		d.order = append(d.order, p)
		if p.Result != "" {
			d.byResult[p.Result] = p
		}
	}
	visiting := map[string]bool{}
	visited := map[string]bool{}
	var check func(name string) error
	check = func(name string) error {
		p, ok := d.byResult[name]
		if !ok {
			return nil // SourceGraphic, SourceAlpha, or an unresolved name
		}
		if visited[name] {
			return nil
		}
		if visiting[name] {
			return &CircularReferenceError{Result: name}
		}
		visiting[name] = true
		for _, in := range p.Inputs {
			if err := check(in); err != nil {
				return err
			}
		}
		visiting[name] = false
		visited[name] = true
		return nil
	}
	for _, p := range d.order {
		if p.Result == "" {
			continue
		}
		if err := check(p.Result); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// outputResult is the chain's final result name, or "SourceGraphic"
// when the last primitive leaves Result empty.
func outputResult(chain ir.FilterChain) string {
	if len(chain.Primitives) == 0 {
		return "SourceGraphic"
	}
	last := chain.Primitives[len(chain.Primitives)-1]
	if last.Result == "" {
		return "SourceGraphic"
	}
	return last.Result
}

// NativeEffectList renders chain as a DrawingML <a:effectLst> fragment
// when it matches one of the recognized rewrite patterns (spec §4.8
// step 3). ok is false when the chain isn't a recognized shape; the
// caller should have already confirmed policy.Native via
// policy.Engine.FilterStrategy before calling this.
func NativeEffectList(chain ir.FilterChain) (fragment string, ok bool) {
	if _, err := buildDAG(chain); err != nil {
		return "", false
	}
	if frag, ok := dropShadowEffect(chain); ok {
		return frag, true
	}
	if len(chain.Primitives) != 1 {
		return "", false
	}
	p := chain.Primitives[0]
	switch p.Kind {
	case ir.FilterGaussianBlur:
		rad := emuRadius(p.StdDeviationX)
		return fmt.Sprintf(`<a:effectLst><a:blur rad="%d"/></a:effectLst>`, rad), true
	case ir.FilterOffset:
		return fmt.Sprintf(`<a:effectLst><a:offset x="%d" y="%d"/></a:effectLst>`, emuRadius(p.DX), emuRadius(p.DY)), true
	case ir.FilterDropShadow:
		return dropShadowFragment(p), true
	}
	return "", false
}

// dropShadowEffect recognizes the feOffset + feGaussianBlur + feFlood
// + feComposite sub-DAG named in spec §4.8 step 3 as the classic
// drop-shadow rewrite, collapsing it to <a:outerShdw>.
func dropShadowEffect(chain ir.FilterChain) (string, bool) {
	ps := chain.Primitives
	if len(ps) != 4 {
		return "", false
	}
	offset, blurP, flood, composite := ps[0], ps[1], ps[2], ps[3]
	if offset.Kind != ir.FilterOffset || blurP.Kind != ir.FilterGaussianBlur ||
		flood.Kind != ir.FilterFlood || composite.Kind != ir.FilterComposite {
		return "", false
	}
	return dropShadowFragment(ir.FilterPrimitive{
		DX: offset.DX, DY: offset.DY,
		StdDeviationX: blurP.StdDeviationX,
		FloodColor:    flood.FloodColor,
		FloodOpacity:  flood.FloodOpacity,
	}), true
}

func dropShadowFragment(p ir.FilterPrimitive) string {
	ang := angleUnits(p.DX, p.DY)
	dist := emuRadius(math.Hypot(p.DX, p.DY))
	blurRad := emuRadius(p.StdDeviationX)
	alpha := int(math.Round(clamp01(p.FloodOpacity) * 100000))
	clr := p.FloodColor
	if clr == nil {
		clr = color.Black
	}
	r, g, b, _ := clr.RGBA()
	return fmt.Sprintf(
		`<a:effectLst><a:outerShdw blurRad="%d" dist="%d" dir="%d" rotWithShape="0"><a:srgbClr val="%02X%02X%02X"><a:alpha val="%d"/></a:srgbClr></a:outerShdw></a:effectLst>`,
		blurRad, dist, ang, byte(r>>8), byte(g>>8), byte(b>>8), alpha,
	)
}

func angleUnits(dx, dy float64) int {
	deg := math.Atan2(dy, dx) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return int(math.Round(deg * 60000))
}

func emuRadius(v float64) int64 { return int64(math.Round(v * 12700)) }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rasterize runs chain against src (the element's own SourceGraphic,
// already rendered by the caller at the configured px/EMU ratio) and
// returns the composited result, for the policy.Raster strategy (spec
// §4.8 step 5). Primitives the pipeline doesn't recognize are skipped
// as a no-op, collected into warnings rather than failing the chain.
func Rasterize(chain ir.FilterChain, src image.Image) (image.Image, []error) {
	d, err := buildDAG(chain)
	if err != nil {
		return src, []error{err}
	}

	results := map[string]image.Image{"SourceGraphic": src, "SourceAlpha": alphaOnly(src)}
	var warnings []error
	for _, p := range d.order {
		in := results["SourceGraphic"]
		if len(p.Inputs) > 0 {
			if v, ok := results[p.Inputs[0]]; ok {
				in = v
			}
		}
		out, err := applyPrimitive(p, in, results)
		if err != nil {
			warnings = append(warnings, err)
			out = in
		}
		name := p.Result
		if name == "" {
			name = "SourceGraphic"
		}
		results[name] = out
	}
	return results[outputResult(chain)], warnings
}

func applyPrimitive(p *ir.FilterPrimitive, in image.Image, results map[string]image.Image) (image.Image, error) {
	switch p.Kind {
	case ir.FilterGaussianBlur:
		return blur.Gaussian(in, math.Max(p.StdDeviationX, p.StdDeviationY)), nil
	case ir.FilterOffset:
		return translate(in, int(math.Round(p.DX)), int(math.Round(p.DY))), nil
	case ir.FilterFlood:
		return floodFill(in.Bounds(), p.FloodColor, p.FloodOpacity), nil
	case ir.FilterColorMatrix:
		return effect.Invert(in), nil
	case ir.FilterMorphology:
		if p.Radius >= 0 {
			return effect.Dilate(in, p.Radius), nil
		}
		return effect.Erode(in, -p.Radius), nil
	case ir.FilterComposite, ir.FilterMerge:
		base := in
		if len(p.Inputs) > 1 {
			if v, ok := results[p.Inputs[1]]; ok {
				base = compositeOver(v, in)
				return base, nil
			}
		}
		return base, nil
	case ir.FilterDropShadow:
		return in, nil
	default:
		return in, &UnknownPrimitiveWarning{Kind: p.Kind}
	}
}

func alphaOnly(src image.Image) image.Image {
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := src.At(x, y).RGBA()
			out.Set(x, y, color.RGBA{0, 0, 0, byte(a >> 8)})
		}
	}
	return out
}

func translate(src image.Image, dx, dy int) image.Image {
	b := src.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b.Add(image.Pt(dx, dy)), src, b.Min, draw.Src)
	return out
}

func floodFill(b image.Rectangle, c color.Color, opacity float64) image.Image {
	if c == nil {
		c = color.Black
	}
	r, g, bb, _ := c.RGBA()
	a := uint8(math.Round(clamp01(opacity) * 255))
	out := image.NewRGBA(b)
	fill := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bb >> 8), a}
	draw.Draw(out, b, &image.Uniform{C: fill}, image.Point{}, draw.Src)
	return out
}

func compositeOver(bottom, top image.Image) image.Image {
	b := bottom.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, bottom, b.Min, draw.Src)
	draw.Draw(out, top.Bounds(), top, top.Bounds().Min, draw.Over)
	return out
}

// EncodePNG is a thin wrapper so callers don't need to import
// image/png directly when registering a Raster result with the
// Package Writer's Media Registry.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pointTracer collects draw2d's flattened line segments for
// VectorEMF's path-to-polyline conversion.
type pointTracer struct {
	points [][2]int16
	cur    [2]int16
}

func (t *pointTracer) MoveTo(x, y float64) {
	t.cur = [2]int16{int16(math.Round(x)), int16(math.Round(y))}
	t.points = append(t.points, t.cur)
}
func (t *pointTracer) LineTo(x, y float64) {
	t.cur = [2]int16{int16(math.Round(x)), int16(math.Round(y))}
	t.points = append(t.points, t.cur)
}
func (t *pointTracer) Close() {}

// flattenPath converts an ir.PathShape into a flattened polyline,
// using draw2d's path-building + curve-flattening math (spec's
// VectorFallback step) instead of hand-rolled De Casteljau subdivision.
func flattenPath(p *ir.PathShape) [][2]int16 {
	path := new(draw2d.Path)
	for _, seg := range p.Segments {
		switch seg.Kind {
		case ir.SegMoveTo:
			path.MoveTo(seg.To.X, seg.To.Y)
		case ir.SegLineTo:
			path.LineTo(seg.To.X, seg.To.Y)
		case ir.SegCubicBezier:
			path.CubicCurveTo(seg.CP1.X, seg.CP1.Y, seg.CP2.X, seg.CP2.Y, seg.To.X, seg.To.Y)
		case ir.SegClose:
			path.Close()
		}
	}
	tracer := &pointTracer{}
	draw2d.Flatten(path, tracer, 1.0)
	return tracer.points
}

// VectorEMF flattens shapes into a minimal, valid EMF record stream
// (spec §4.8 step 4: "render the filter graph into a Windows
// Metafile"): the header, one EMR_POLYPOLYLINE16 record holding every
// flattened shape, and EOF. Only the geometry transfer is modeled — no
// pen or brush records are written and no filter effect is applied.
func VectorEMF(shapes []*ir.PathShape, bounds ir.Rect) []byte {
	var buf bytes.Buffer

	var allPoints [][2]int16
	var polyCounts []uint32
	for _, s := range shapes {
		pts := flattenPath(s)
		if len(pts) == 0 {
			continue
		}
		allPoints = append(allPoints, pts...)
		polyCounts = append(polyCounts, uint32(len(pts)))
	}

	recs := polyPolylineRecord(bounds, polyCounts, allPoints)
	recs = append(recs, eofRecord()...)

	numRecords := 2 // header + EOF
	if len(allPoints) > 0 {
		numRecords = 3
	}
	header := emfHeader(bounds, len(recs)+88, numRecords)
	buf.Write(header)
	buf.Write(recs)
	return buf.Bytes()
}

func emfHeader(bounds ir.Rect, bytesSize, numRecords int) []byte {
	h := make([]byte, 88)
	binary.LittleEndian.PutUint32(h[0:], 1)                    // iType = EMR_HEADER
	binary.LittleEndian.PutUint32(h[4:], 88)                    // nSize
	putRect(h[8:], 0, 0, int32(bounds.Width), int32(bounds.Height))   // rclBounds
	putRect(h[24:], 0, 0, int32(bounds.Width)*360, int32(bounds.Height)*360) // rclFrame (.01mm)
	binary.LittleEndian.PutUint32(h[40:], 0x464D4520)           // dSignature "EMF "
	binary.LittleEndian.PutUint32(h[44:], 0x00010000)           // nVersion
	binary.LittleEndian.PutUint32(h[48:], uint32(bytesSize))    // nBytes
	binary.LittleEndian.PutUint32(h[52:], uint32(numRecords))   // nRecords
	binary.LittleEndian.PutUint16(h[56:], 1)                    // nHandles
	return h
}

func putRect(b []byte, l, t, r, bt int32) {
	binary.LittleEndian.PutUint32(b[0:], uint32(l))
	binary.LittleEndian.PutUint32(b[4:], uint32(t))
	binary.LittleEndian.PutUint32(b[8:], uint32(r))
	binary.LittleEndian.PutUint32(b[12:], uint32(bt))
}

func polyPolylineRecord(bounds ir.Rect, counts []uint32, points [][2]int16) []byte {
	if len(points) == 0 {
		return nil
	}
	size := 28 + 4*len(counts) + 4*len(points)
	size = (size + 3) &^ 3
	rec := make([]byte, size)
	binary.LittleEndian.PutUint32(rec[0:], 92) // EMR_POLYPOLYLINE16
	binary.LittleEndian.PutUint32(rec[4:], uint32(size))
	putRect(rec[8:], 0, 0, int32(bounds.Width), int32(bounds.Height))
	binary.LittleEndian.PutUint32(rec[24:], uint32(len(counts)))
	off := 28
	for _, c := range counts {
		binary.LittleEndian.PutUint32(rec[off:], c)
		off += 4
	}
	for _, p := range points {
		binary.LittleEndian.PutUint16(rec[off:], uint16(p[0]))
		binary.LittleEndian.PutUint16(rec[off+2:], uint16(p[1]))
		off += 4
	}
	return rec
}

func eofRecord() []byte {
	rec := make([]byte, 20)
	binary.LittleEndian.PutUint32(rec[0:], 14) // EMR_EOF
	binary.LittleEndian.PutUint32(rec[4:], 20)
	binary.LittleEndian.PutUint32(rec[16:], 20)
	return rec
}
