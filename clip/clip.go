// Package clip implements the Clipping Adapter (spec §4.9): a
// three-tier ladder mirroring the Filter Pipeline's Native/Vector/
// Raster strategy, translating a baked ir.ClipPath into a native
// rectangular clip, a custGeom mask, or an alpha-mask PNG. Rectangle
// detection and the custGeom derivation reuse the same baked-path
// math the mapper package uses for PathShape, and the raster-mask
// tier follows the teacher's renderPath's ctx.ClipPreserve() idiom of
// using a path as a clip mask, generalized from "clip the live canvas"
// to "render the mask to its own off-screen image".
package clip

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/fogleman/gg"

	"github.com/svg2pptx/svg2pptx/ir"
	"github.com/svg2pptx/svg2pptx/policy"
)

// Geometry summarizes a baked ClipPath's shape for policy decisions
// and is also what this package needs to emit the chosen tier.
type Geometry struct {
	AxisAlignedRect bool
	Rect            ir.Rect // valid when AxisAlignedRect
	Paths           []*ir.PathShape
}

// Analyze inspects a resolved ir.ClipPath's shapes (ClipRef must
// already be resolved to ClipShapes by the caller) and reports the
// geometry classification plus the segment count the Policy Engine's
// ClipStrategy needs.
func Analyze(cp ir.ClipPath) (Geometry, policy.ClipGeometry) {
	var g Geometry
	segCount := 0
	if len(cp.Shapes) == 1 {
		if r, ok := cp.Shapes[0].(*ir.Rectangle); ok && r.CornerRadius == 0 {
			g.AxisAlignedRect = true
			g.Rect = r.Bounds
			return g, policy.ClipGeometry{AxisAlignedRect: true, SegmentCount: 4}
		}
	}
	for _, shape := range cp.Shapes {
		if p, ok := shape.(*ir.PathShape); ok {
			g.Paths = append(g.Paths, p)
			segCount += len(p.Segments)
		}
	}
	return g, policy.ClipGeometry{AxisAlignedRect: false, SegmentCount: segCount}
}

// NativeRect emits the DrawingML shape-bounds clip: for an
// axis-aligned rectangular clip, the containing shape's own `xfrm` is
// simply intersected with the rect, so no clip element is needed at
// all — returning the rect tells the mapper stage to shrink the
// shape's bounding box instead of emitting a mask.
func NativeRect(g Geometry) (ir.Rect, bool) {
	return g.Rect, g.AxisAlignedRect
}

// CustGeom emits a <a:clipPath><a:custGeom>... fragment covering g's
// path shapes, normalized into the 0-21600 local unit space the same
// way mapper normalizes PathShape geometry.
func CustGeom(g Geometry, fillRule ir.FillRule) string {
	var b []byte
	b = append(b, []byte(`<a:clipPath><a:custGeom><a:avLst/><a:gdLst/><a:ahLst/><a:cxnLst/><a:rect l="0" t="0" r="21600" b="21600"/>`)...)
	b = append(b, []byte(pathListXML(g, fillRule))...)
	b = append(b, []byte(`</a:custGeom></a:clipPath>`)...)
	return string(b)
}

// PathListXML exposes the bare `<a:pathLst>...</a:pathLst>` fragment
// for g, without the enclosing `<a:clipPath><a:custGeom>`. The convert
// package's Clip Native/CustGeom tier splices this directly into a
// clipped shape's own `<a:custGeom>` (via mapper.CustGeomShape) to
// replace its outline with the clip geometry, rather than wrapping it
// as a separate clip element.
func PathListXML(g Geometry, fillRule ir.FillRule) string {
	return pathListXML(g, fillRule)
}

func pathListXML(g Geometry, fillRule ir.FillRule) string {
	bounds := unionBounds(g.Paths)
	w, h := bounds.Width, bounds.Height
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	norm := func(p ir.Point) (int, int) {
		return int(math.Round((p.X - bounds.X) / w * 21600)),
			int(math.Round((p.Y - bounds.Y) / h * 21600))
	}

	fill := "nonZero"
	if fillRule == ir.EvenOdd {
		fill = "evenOdd"
	}

	var b []byte
	b = append(b, []byte(`<a:pathLst>`)...)
	for _, p := range g.Paths {
		b = append(b, []byte(`<a:path w="21600" h="21600" fill="`+fill+`">`)...)
		for _, seg := range p.Segments {
			switch seg.Kind {
			case ir.SegMoveTo:
				x, y := norm(seg.To)
				b = append(b, []byte(fmtMoveTo(x, y))...)
			case ir.SegLineTo:
				x, y := norm(seg.To)
				b = append(b, []byte(fmtLineTo(x, y))...)
			case ir.SegCubicBezier:
				x1, y1 := norm(seg.CP1)
				x2, y2 := norm(seg.CP2)
				x, y := norm(seg.To)
				b = append(b, []byte(fmtCubicTo(x1, y1, x2, y2, x, y))...)
			case ir.SegClose:
				b = append(b, []byte(`<a:close/>`)...)
			}
		}
		b = append(b, []byte(`</a:path>`)...)
	}
	b = append(b, []byte(`</a:pathLst>`)...)
	return string(b)
}

func unionBounds(paths []*ir.PathShape) ir.Rect {
	first := true
	var minX, minY, maxX, maxY float64
	consider := func(p ir.Point) {
		if first {
			minX, maxX, minY, maxY, first = p.X, p.X, p.Y, p.Y, false
			return
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	for _, p := range paths {
		for _, seg := range p.Segments {
			consider(seg.To)
			if seg.Kind == ir.SegCubicBezier {
				consider(seg.CP1)
				consider(seg.CP2)
			}
		}
	}
	if first {
		return ir.Rect{}
	}
	return ir.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// RasterMask renders g's path shapes into an alpha-only PNG-ready
// image.Image sized to bounds, using gg.Context the same way the
// teacher's renderPath builds a clip path on the live canvas, except
// the mask is rendered to its own off-screen context and the result
// is read back as a standalone alpha image instead of used in place.
func RasterMask(g Geometry, bounds ir.Rect, fillRule ir.FillRule) image.Image {
	w, h := int(math.Ceil(bounds.Width)), int(math.Ceil(bounds.Height))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	ctx := gg.NewContext(w, h)
	ctx.SetRGBA(0, 0, 0, 0)
	ctx.Clear()
	ctx.Translate(-bounds.X, -bounds.Y)
	ctx.SetRGBA(1, 1, 1, 1)

	if g.AxisAlignedRect {
		ctx.DrawRectangle(g.Rect.X, g.Rect.Y, g.Rect.Width, g.Rect.Height)
	}
	for _, p := range g.Paths {
		ctx.NewSubPath()
		for _, seg := range p.Segments {
			switch seg.Kind {
			case ir.SegMoveTo:
				ctx.MoveTo(seg.To.X, seg.To.Y)
			case ir.SegLineTo:
				ctx.LineTo(seg.To.X, seg.To.Y)
			case ir.SegCubicBezier:
				ctx.CubicTo(seg.CP1.X, seg.CP1.Y, seg.CP2.X, seg.CP2.Y, seg.To.X, seg.To.Y)
			case ir.SegClose:
				ctx.ClosePath()
			}
		}
	}
	if fillRule == ir.EvenOdd {
		ctx.SetFillRule(gg.FillRuleEvenOdd)
	} else {
		ctx.SetFillRule(gg.FillRuleWinding)
	}
	ctx.Fill()

	return alphaImage(ctx.Image())
}

// alphaImage flattens src's luminance+alpha into a plain alpha mask,
// matching the OOXML `<a:alphaModFix>`-free raster-mask convention of
// an 8-bit grayscale PNG where pixel value encodes opacity.
func alphaImage(src image.Image) image.Image {
	b := src.Bounds()
	out := image.NewGray(b)
	draw.Draw(out, b, src, b.Min, draw.Src)
	return out
}

func fmtMoveTo(x, y int) string { return sprintfPt("moveTo", x, y) }
func fmtLineTo(x, y int) string { return sprintfPt("lnTo", x, y) }

func fmtCubicTo(x1, y1, x2, y2, x, y int) string {
	return fmt.Sprintf("<a:cubicBezTo>%s%s%s</a:cubicBezTo>", ptTag(x1, y1), ptTag(x2, y2), ptTag(x, y))
}

func sprintfPt(tag string, x, y int) string {
	return fmt.Sprintf("<a:%s>%s</a:%s>", tag, ptTag(x, y), tag)
}

func ptTag(x, y int) string {
	return fmt.Sprintf(`<a:pt x="%d" y="%d"/>`, x, y)
}
