package parser

import (
	"image/color"
	"strings"

	"github.com/svg2pptx/svg2pptx/attrtypes"
	"github.com/svg2pptx/svg2pptx/ir"
)

// computedStyle is the inherited presentation-attribute state visible
// at one point in the traversal. Unlike the teacher's renderer_style.go
// (which re-walks a stack of *element on every get*Attr call), this
// package folds inheritance eagerly into a new computedStyle at each
// push, since the parser's traversal is already building baked IR and
// has no reason to keep the ancestor chain alive afterward.
type computedStyle struct {
	fill        attrtypes.Paint
	fillSet     bool
	fillOpacity float64
	fillRule    ir.FillRule

	strokePaint      attrtypes.Paint
	strokeSet        bool
	strokeWidth      float64
	strokeOpacity    float64
	strokeDasharray  []float64
	strokeLinecap    ir.LineCap
	strokeLinejoin   ir.LineJoin
	strokeMiterlimit float64

	opacity float64

	fontFamily string
	fontSizePt float64
	bold       bool
	italic     bool
}

func defaultStyle() computedStyle {
	return computedStyle{
		fill:             attrtypes.Paint{Color: color.Black},
		fillSet:          true,
		fillOpacity:      1,
		fillRule:         ir.NonZero,
		strokeSet:        false,
		strokeOpacity:    1,
		strokeLinecap:    ir.CapButt,
		strokeLinejoin:   ir.JoinMiter,
		strokeMiterlimit: 4,
		opacity:          1,
		fontFamily:       "sans-serif",
		fontSizePt:       12,
	}
}

// derive produces the style visible to a, inheriting from s except
// where a's attributes override it. Opacity is NOT inherited (SVG
// group opacity composes multiplicatively at paint time, modeled here
// as a per-node Group.Opacity instead), matching spec §3.2's Group
// opacity field.
func (s computedStyle) derive(a *elementAttributes) computedStyle {
	out := s

	if a.Fill != nil {
		out.fill, out.fillSet = *a.Fill, true
	}
	if a.FillOpacity != nil {
		out.fillOpacity = *a.FillOpacity
	}
	switch a.FillRule {
	case "evenodd":
		out.fillRule = ir.EvenOdd
	case "nonzero":
		out.fillRule = ir.NonZero
	}

	if a.Stroke != nil {
		out.strokePaint, out.strokeSet = *a.Stroke, a.Stroke.Color != nil || a.Stroke.URL != "" || a.Stroke.Context != ""
	}
	if a.StrokeWidth != nil {
		out.strokeWidth = resolveLengthPercentageScalar(*a.StrokeWidth)
	}
	if a.StrokeOpacity != nil {
		out.strokeOpacity = *a.StrokeOpacity
	}
	if a.StrokeDasharray != nil {
		dashes := make([]float64, len(a.StrokeDasharray.Values))
		for i, v := range a.StrokeDasharray.Values {
			dashes[i] = resolveLengthPercentageScalar(v)
		}
		out.strokeDasharray = dashes
	}
	switch a.StrokeLinecap {
	case "round":
		out.strokeLinecap = ir.CapRound
	case "square":
		out.strokeLinecap = ir.CapSquare
	case "butt":
		out.strokeLinecap = ir.CapButt
	}
	switch a.StrokeLinejoin {
	case "round":
		out.strokeLinejoin = ir.JoinRound
	case "bevel":
		out.strokeLinejoin = ir.JoinBevel
	case "miter":
		out.strokeLinejoin = ir.JoinMiter
	}
	if a.StrokeMiterlimit != nil {
		out.strokeMiterlimit = *a.StrokeMiterlimit
	}

	if a.FontFamily != nil && len(a.FontFamily.Values) > 0 {
		out.fontFamily = a.FontFamily.Values[0]
	}
	if a.FontSize != nil {
		out.fontSizePt = resolveLengthPercentageScalar(*a.FontSize)
	}
	switch a.FontWeight {
	case "bold", "700", "800", "900":
		out.bold = true
	case "normal", "400":
		out.bold = false
	}
	switch a.FontStyle {
	case "italic", "oblique":
		out.italic = true
	case "normal":
		out.italic = false
	}

	return out
}

func resolveLengthPercentageScalar(lp attrtypes.LengthPercentage) float64 {
	if lp.Percentage != 0 {
		return lp.Percentage
	}
	return lp.Length.Value
}

// resolvePaint turns an attrtypes.Paint plus the current style's fill-
// or stroke-opacity into an ir.Paint. url() references are resolved
// against the scene's gradient table; unresolvable references fall
// back to PaintNone (no fill) per spec §7's graceful-degradation
// stance on unresolvable paint servers.
func (p *parserState) resolvePaint(paint attrtypes.Paint, opacity float64) ir.Paint {
	if paint.URL != "" {
		ref := strings.TrimPrefix(paint.URL, "#")
		if g, ok := p.gradients[ref]; ok {
			return g
		}
		return ir.Paint{Kind: ir.PaintNone}
	}
	if paint.Color == nil {
		return ir.Paint{Kind: ir.PaintSolid, Solid: color.Black}
	}
	r, g, b, a := paint.Color.RGBA()
	if a == 0 {
		return ir.Paint{Kind: ir.PaintNone}
	}
	_ = r
	_ = g
	_ = b
	return ir.Paint{Kind: ir.PaintSolid, Solid: scaleAlpha(paint.Color, opacity)}
}

func scaleAlpha(c color.Color, opacity float64) color.Color {
	r, g, b, a := c.RGBA()
	scaled := uint8(float64(a>>8) * clamp(opacity, 0, 1))
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: scaled}
}

func (s computedStyle) strokeIR(st *parserState) *ir.Stroke {
	if !s.strokeSet || s.strokeWidth == 0 {
		return nil
	}
	return &ir.Stroke{
		Color:      st.resolvePaint(s.strokePaint, s.strokeOpacity),
		Width:      s.strokeWidth,
		Dash:       s.strokeDasharray,
		Cap:        s.strokeLinecap,
		Join:       s.strokeLinejoin,
		MiterLimit: s.strokeMiterlimit,
	}
}
