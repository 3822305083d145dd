package convert

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/fogleman/gg"

	"github.com/svg2pptx/svg2pptx/ir"
)

// rasterizeNode renders node (and any descendants, if node is a Group)
// into an off-screen RGBA image sized to bounds, generalizing the same
// gg.Context idiom the Clipping Adapter's RasterMask uses from "render
// a mask" to "render the node's own paint", for the Filter Pipeline's
// and Clipping Adapter's Raster tiers.
func rasterizeNode(node ir.Node, bounds ir.Rect) image.Image {
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
	drawNode(ctx, node)
	return ctx.Image()
}

// drawNode issues gg draw calls for node, recursing into Group
// children. TextRun is approximated by its first span's fill color
// over the run's bbox: full glyph rasterization would require a
// second font-rendering path distinct from the Font Service's
// HarfBuzz-level shaping, which is out of scope for a fallback tier
// that only exists because the Native/Vector tiers couldn't apply.
func drawNode(ctx *gg.Context, node ir.Node) {
	switch n := node.(type) {
	case *ir.Circle:
		ctx.DrawCircle(n.Center.X, n.Center.Y, n.Radius)
		fillStroke(ctx, n.Paint, n.Stroke, n.Opacity)
	case *ir.Ellipse:
		ctx.DrawEllipse(n.Center.X, n.Center.Y, n.RX, n.RY)
		fillStroke(ctx, n.Paint, n.Stroke, n.Opacity)
	case *ir.Rectangle:
		if n.CornerRadius > 0 {
			ctx.DrawRoundedRectangle(n.Bounds.X, n.Bounds.Y, n.Bounds.Width, n.Bounds.Height, n.CornerRadius)
		} else {
			ctx.DrawRectangle(n.Bounds.X, n.Bounds.Y, n.Bounds.Width, n.Bounds.Height)
		}
		fillStroke(ctx, n.Paint, n.Stroke, n.Opacity)
	case *ir.PathShape:
		ctx.NewSubPath()
		for _, seg := range n.Segments {
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
		if n.FillRule == ir.EvenOdd {
			ctx.SetFillRule(gg.FillRuleEvenOdd)
		} else {
			ctx.SetFillRule(gg.FillRuleWinding)
		}
		fillStroke(ctx, n.Paint, n.Stroke, n.Opacity)
	case *ir.TextRun:
		if len(n.Runs) == 0 {
			return
		}
		ctx.DrawRectangle(n.Position.X, n.Position.Y, n.BBox.Width, n.BBox.Height)
		ctx.SetColor(paintColor(n.Runs[0].Fill, 1))
		ctx.Fill()
	case *ir.Image:
		if img, err := decodeRasterImage(n.Source); err == nil {
			cx := n.Bounds.X + n.Bounds.Width/2
			cy := n.Bounds.Y + n.Bounds.Height/2
			ctx.DrawImageAnchored(img, int(math.Round(cx)), int(math.Round(cy)), 0.5, 0.5)
		}
	case *ir.Group:
		for _, c := range n.Children {
			drawNode(ctx, c)
		}
	}
}

func decodeRasterImage(src ir.ImageSource) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(src.Data))
	return img, err
}

// fillStroke applies paint as this path's fill (when Kind != PaintNone)
// and stroke as its outline, mirroring mapper's fill-then-stroke
// ordering for DrawingML shapes.
func fillStroke(ctx *gg.Context, paint ir.Paint, stroke *ir.Stroke, opacity float64) {
	if paint.Kind != ir.PaintNone {
		ctx.SetColor(paintColor(paint, opacity))
		if stroke != nil {
			ctx.FillPreserve()
		} else {
			ctx.Fill()
		}
	}
	if stroke != nil {
		ctx.SetLineWidth(stroke.Width)
		ctx.SetColor(paintColor(stroke.Color, opacity))
		ctx.Stroke()
	}
}

// paintColor reduces a Paint to a single representative color: solid
// paints map directly, gradients fall back to their first stop. Gradient
// rendering isn't attempted in the raster fallback tiers since it is
// always also available natively via mapper's gradFill for any element
// that never needed to reach this path.
func paintColor(paint ir.Paint, opacity float64) color.Color {
	switch paint.Kind {
	case ir.PaintSolid:
		return withOpacity(paint.Solid, opacity)
	case ir.PaintLinearGradient, ir.PaintRadialGradient:
		if len(paint.Stops) > 0 {
			s := paint.Stops[0]
			return withOpacity(s.Color, opacity*s.Opacity)
		}
	}
	return color.Black
}

func withOpacity(c color.Color, opacity float64) color.Color {
	r, g, b, a := c.RGBA()
	o := clamp01(opacity)
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(float64(a>>8) * o)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// nodeBounds computes node's axis-aligned bounding rect, recursing into
// Group children, for the Filter/Clip Raster tiers' off-screen canvas
// sizing.
func nodeBounds(node ir.Node) ir.Rect {
	switch n := node.(type) {
	case *ir.Circle:
		return ir.Rect{X: n.Center.X - n.Radius, Y: n.Center.Y - n.Radius, Width: 2 * n.Radius, Height: 2 * n.Radius}
	case *ir.Ellipse:
		return ir.Rect{X: n.Center.X - n.RX, Y: n.Center.Y - n.RY, Width: 2 * n.RX, Height: 2 * n.RY}
	case *ir.Rectangle:
		return n.Bounds
	case *ir.PathShape:
		return segmentsBounds(n.Segments)
	case *ir.TextRun:
		return ir.Rect{X: n.Position.X, Y: n.Position.Y, Width: n.BBox.Width, Height: n.BBox.Height}
	case *ir.Image:
		return n.Bounds
	case *ir.Group:
		var u ir.Rect
		first := true
		for _, c := range n.Children {
			b := nodeBounds(c)
			if first {
				u, first = b, false
				continue
			}
			u = unionRect(u, b)
		}
		return u
	}
	return ir.Rect{}
}

func segmentsBounds(segs []ir.Segment) ir.Rect {
	if len(segs) == 0 {
		return ir.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	consider := func(p ir.Point) {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	for _, s := range segs {
		consider(s.To)
		if s.Kind == ir.SegCubicBezier {
			consider(s.CP1)
			consider(s.CP2)
		}
	}
	return ir.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func unionRect(a, b ir.Rect) ir.Rect {
	x0, y0 := math.Min(a.X, b.X), math.Min(a.Y, b.Y)
	x1, y1 := math.Max(a.X+a.Width, b.X+b.Width), math.Max(a.Y+a.Height, b.Y+b.Height)
	return ir.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// intersectRect clips a to b; used by the Clipping Adapter's Native-
// rect tier to shrink a clipped shape's own bounds instead of emitting
// a separate clip element.
func intersectRect(a, b ir.Rect) ir.Rect {
	x0, y0 := math.Max(a.X, b.X), math.Max(a.Y, b.Y)
	x1, y1 := math.Min(a.X+a.Width, b.X+b.Width), math.Min(a.Y+a.Height, b.Y+b.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return ir.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// applyAlphaMask composites content's premultiplied color channels
// against mask's gray value, for the Clipping Adapter's Raster tier
// and the combined filter+clip path: the mask's pixel value (an 8-bit
// grayscale encoding of clip coverage, per clip.RasterMask) scales down
// content's own alpha rather than replacing it, so a partially-
// transparent filtered result stays partially transparent outside the
// clip region too.
func applyAlphaMask(content, mask image.Image) image.Image {
	b := content.Bounds()
	out := image.NewRGBA64(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, ca := content.At(x, y).RGBA()
			mv, _, _, _ := mask.At(x, y).RGBA()
			factor := mv
			nr := uint32(cr) * factor / 0xffff
			ng := uint32(cg) * factor / 0xffff
			nb := uint32(cb) * factor / 0xffff
			na := uint32(ca) * factor / 0xffff
			out.Set(x, y, color.RGBA64{R: uint16(nr), G: uint16(ng), B: uint16(nb), A: uint16(na)})
		}
	}
	return out
}
