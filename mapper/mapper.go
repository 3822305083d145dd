// Package mapper translates baked IR nodes into DrawingML XML fragments
// (spec §4.7). Each mapper function consumes one ir.Node plus the
// slide's shape-id counter and returns the `<p:sp>`/`<p:grpSp>`/
// `<p:pic>` fragment for that node, registering any media bytes it
// needs through the Registry collaborator.
package mapper

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/svg2pptx/svg2pptx/ir"
)

// Registry is the Media Registry collaborator (spec §4.11): content-
// addressed storage for image/EMF bytes a mapper needs embedded in the
// package. RegisterMedia returns the relationship id the mapper should
// reference from its fragment.
type Registry interface {
	RegisterMedia(data []byte, mime string) (relID string)
}

// IDs hands out sequential, stable shape ids within one slide: DrawingML
// requires every `<p:sp>`/`<p:grpSp>`/`<p:pic>` to carry a unique
// non-placeholder id.
type IDs struct{ next int }

// Next returns the next shape id, starting at 2 (1 is reserved for the
// slide's own group shape, matching the OOXML convention every
// generated presentation.xml slide layout follows).
func (ids *IDs) Next() int {
	if ids.next == 0 {
		ids.next = 2
	}
	id := ids.next
	ids.next++
	return id
}

// degPerEMUUnit is DrawingML's angle unit: 1/60000 of a degree.
const degPerEMUUnit = 60000.0

// angleUnits converts a direction vector (dx, dy; atan2 convention, y-down) to
// DrawingML's clockwise-from-3-o'clock, 1/60000-degree unit.
func angleUnits(dx, dy float64) int {
	deg := math.Atan2(dy, dx) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return int(math.Round(deg * degPerEMUUnit))
}

// alphaVal converts an opacity in [0,1] to DrawingML's 0-100000 alpha scale.
func alphaVal(opacity float64) int {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return int(math.Round(opacity * 100000))
}

func emu(v float64) int64 { return int64(math.Round(v)) }

// Node maps one IR node, recursing into Groups. shapeIDs is shared
// across the whole slide so ids stay unique; reg registers any image
// bytes the node (or a descendant) needs embedded.
func Node(node ir.Node, shapeIDs *IDs, reg Registry) (string, error) {
	switch n := node.(type) {
	case *ir.Circle:
		return circle(n, shapeIDs), nil
	case *ir.Ellipse:
		return ellipse(n, shapeIDs), nil
	case *ir.Rectangle:
		return rectangle(n, shapeIDs), nil
	case *ir.PathShape:
		return pathShape(n, shapeIDs), nil
	case *ir.TextRun:
		return textRun(n, shapeIDs), nil
	case *ir.Image:
		return image(n, shapeIDs, reg)
	case *ir.Group:
		return group(n, shapeIDs, reg)
	default:
		return "", fmt.Errorf("mapper: unhandled node type %T", node)
	}
}

func xfrm(x, y, w, h float64) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
		emu(x), emu(y), emu(w), emu(h))
}

// circle emits `<a:prstGeom prst="ellipse">` per spec §4.7.
func circle(c *ir.Circle, ids *IDs) string {
	x, y := c.Center.X-c.Radius, c.Center.Y-c.Radius
	w, h := 2*c.Radius, 2*c.Radius
	return presetShape(ids.Next(), "Circle", "ellipse", x, y, w, h, c.Paint, c.Stroke, c.Opacity)
}

// ellipse emits `<a:prstGeom prst="ellipse">` from the bounding rect of
// a non-uniform-radius ellipse.
func ellipse(e *ir.Ellipse, ids *IDs) string {
	x, y := e.Center.X-e.RX, e.Center.Y-e.RY
	w, h := 2*e.RX, 2*e.RY
	return presetShape(ids.Next(), "Ellipse", "ellipse", x, y, w, h, e.Paint, e.Stroke, e.Opacity)
}

// rectangle emits `<a:prstGeom prst="rect">`, or "roundRect" with an
// `<a:avLst>` adjustment when CornerRadius > 0, per spec §4.7.
func rectangle(r *ir.Rectangle, ids *IDs) string {
	prst := "rect"
	adj := ""
	if r.CornerRadius > 0 {
		prst = "roundRect"
		maxDim := math.Max(r.Bounds.Width, r.Bounds.Height)
		if maxDim > 0 {
			frac := r.CornerRadius / maxDim * 2
			adj = fmt.Sprintf(`<a:avLst><a:gd name="adj" fmla="val %d"/></a:avLst>`, int(math.Round(frac*100000)))
		}
	}
	id := ids.Next()
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Rectangle %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr>`, id, id)
	b.WriteString(xfrm(r.Bounds.X, r.Bounds.Y, r.Bounds.Width, r.Bounds.Height))
	fmt.Fprintf(&b, `<a:prstGeom prst="%s">%s</a:prstGeom>`, prst, adj)
	b.WriteString(paintFillOpacity(r.Paint, r.Opacity))
	b.WriteString(strokeXML(r.Stroke))
	b.WriteString(`</p:spPr></p:sp>`)
	return b.String()
}

func presetShape(id int, name, prst string, x, y, w, h float64, paint ir.Paint, stroke *ir.Stroke, opacity float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr>`, id, name, id)
	b.WriteString(xfrm(x, y, w, h))
	fmt.Fprintf(&b, `<a:prstGeom prst="%s"><a:avLst/></a:prstGeom>`, prst)
	b.WriteString(paintFillOpacity(paint, opacity))
	b.WriteString(strokeXML(stroke))
	b.WriteString(`</p:spPr></p:sp>`)
	return b.String()
}

// pathShape emits `<a:custGeom>` with coordinates normalized into the
// path's own 0-21600 local system, per spec §4.7.
func pathShape(p *ir.PathShape, ids *IDs) string {
	id := ids.Next()
	bounds := pathBounds(p.Segments)
	scaleX, scaleY := 0.0, 0.0
	if bounds.Width > 0 {
		scaleX = 21600 / bounds.Width
	}
	if bounds.Height > 0 {
		scaleY = 21600 / bounds.Height
	}

	var path strings.Builder
	path.WriteString(`<a:path w="21600" h="21600">`)
	norm := func(pt ir.Point) (int64, int64) {
		return emu((pt.X - bounds.X) * scaleX), emu((pt.Y - bounds.Y) * scaleY)
	}
	for _, seg := range p.Segments {
		switch seg.Kind {
		case ir.SegMoveTo:
			x, y := norm(seg.To)
			fmt.Fprintf(&path, `<a:moveTo><a:pt x="%d" y="%d"/></a:moveTo>`, x, y)
		case ir.SegLineTo:
			x, y := norm(seg.To)
			fmt.Fprintf(&path, `<a:lnTo><a:pt x="%d" y="%d"/></a:lnTo>`, x, y)
		case ir.SegCubicBezier:
			x1, y1 := norm(seg.CP1)
			x2, y2 := norm(seg.CP2)
			x3, y3 := norm(seg.To)
			fmt.Fprintf(&path, `<a:cubicBezTo><a:pt x="%d" y="%d"/><a:pt x="%d" y="%d"/><a:pt x="%d" y="%d"/></a:cubicBezTo>`,
				x1, y1, x2, y2, x3, y3)
		case ir.SegClose:
			path.WriteString(`<a:close/>`)
		}
	}
	path.WriteString(`</a:path>`)

	fillRule := "nonZero"
	if p.FillRule == ir.EvenOdd {
		fillRule = "evenOdd"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Path %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr>`, id, id)
	b.WriteString(xfrm(bounds.X, bounds.Y, bounds.Width, bounds.Height))
	fmt.Fprintf(&b, `<a:custGeom><a:avLst/><a:gdLst/><a:ahLst/><a:cxnLst/><a:rect l="0" t="0" r="21600" b="21600"/><a:pathLst fill="%s">%s</a:pathLst></a:custGeom>`,
		fillRule, path.String())
	b.WriteString(paintFillOpacity(p.Paint, p.Opacity))
	b.WriteString(strokeXML(p.Stroke))
	b.WriteString(`</p:spPr></p:sp>`)
	return b.String()
}

func pathBounds(segs []ir.Segment) ir.Rect {
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

// textRun emits `<a:txBody>` with one `<a:p>` containing one `<a:r>`
// per span, per spec §4.7. Font resolution/outline fallback is the
// Font Service's job; this mapper only lays out what the parser/font
// stage already resolved onto TextSpan.
func textRun(t *ir.TextRun, ids *IDs) string {
	id := ids.Next()
	var runs strings.Builder
	for _, span := range t.Runs {
		bold, italic := "0", "0"
		if span.Bold {
			bold = "1"
		}
		if span.Italic {
			italic = "1"
		}
		fmt.Fprintf(&runs, `<a:r><a:rPr sz="%d" b="%s" i="%s">%s</a:rPr><a:t>%s</a:t></a:r>`,
			int(math.Round(span.SizePt*100)), bold, italic, fillRunProps(span.Fill), escapeXML(span.Text))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextRun %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr><p:spPr>`, id, id)
	b.WriteString(xfrm(t.Position.X, t.Position.Y, t.BBox.Width, t.BBox.Height))
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`)
	fmt.Fprintf(&b, `<p:txBody><a:bodyPr wrap="none"/><a:lstStyle/><a:p>%s</a:p></p:txBody></p:sp>`, runs.String())
	return b.String()
}

func fillRunProps(fill ir.Paint) string {
	if fill.Kind != ir.PaintSolid {
		return ""
	}
	return fmt.Sprintf(`<a:solidFill>%s</a:solidFill>`, srgbClr(fill.Solid, 1))
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// image registers the raster bytes in the Media Registry and emits
// `<p:pic>` referencing the returned relationship id, per spec §4.7.
func image(img *ir.Image, ids *IDs, reg Registry) (string, error) {
	if img.Source.Kind != ir.ImageEmbedded {
		return "", fmt.Errorf("mapper: image source kind %v requires resolution to bytes before mapping", img.Source.Kind)
	}
	relID := reg.RegisterMedia(img.Source.Data, img.Source.Mime)
	return Picture("Image", img.Bounds, ids, relID), nil
}

// Picture emits a `<p:pic>` referencing an already-registered media or
// embedding relationship id. Unlike image, the caller has already
// produced the part (via Registry.RegisterMedia or the Package
// Writer's AddEmbedding) out of band, which is how the Filter
// Pipeline's Vector/Raster tiers and the Clipping Adapter's Raster
// tier each place their rendered output into the slide.
func Picture(name string, bounds ir.Rect, ids *IDs, relID string) string {
	id := ids.Next()
	var b strings.Builder
	fmt.Fprintf(&b, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s %d"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`, id, name, id)
	fmt.Fprintf(&b, `<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, relID)
	b.WriteString(`<p:spPr>`)
	b.WriteString(xfrm(bounds.X, bounds.Y, bounds.Width, bounds.Height))
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`)
	return b.String()
}

// group emits `<p:grpSp>` when none of its children require
// rasterization to resolve a filter/clip (the caller is expected to
// have already rasterized FilterRef/ClipRef groups requiring Raster
// strategy and replaced them with an ir.Image before calling Node; this
// mapper handles the still-vector case).
func group(g *ir.Group, ids *IDs, reg Registry) (string, error) {
	if len(g.Children) == 1 && g.ClipRef == "" && g.FilterRef == "" && g.Opacity == 1 {
		// Degenerate identity-wrapping group (spec §8 Testable Property
		// 1): collapse straight to the sole child's fragment.
		return Node(g.Children[0], ids, reg)
	}

	var children []string
	for _, c := range g.Children {
		frag, err := Node(c, ids, reg)
		if err != nil {
			return "", err
		}
		children = append(children, frag)
	}
	return AssembleGroup(ids, "", children), nil
}

// AssembleGroup wraps already-rendered child fragments in a
// `<p:grpSp>`, splicing extraProps (an `<a:effectLst>` from the Filter
// Pipeline's Native tier, for instance) into `<p:grpSpPr>`. The convert
// package's group walk uses this directly once it has resolved a
// group's own FilterRef/ClipRef, instead of going through Node/group,
// so that a resolved effect/clip isn't re-derived for nested groups.
func AssembleGroup(ids *IDs, extraProps string, children []string) string {
	gid := ids.Next()
	var b strings.Builder
	fmt.Fprintf(&b, `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="%d" name="Group %d"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr>`, gid, gid)
	b.WriteString(`<a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm>`)
	b.WriteString(extraProps)
	b.WriteString(`</p:grpSpPr>`)
	for _, c := range children {
		b.WriteString(c)
	}
	b.WriteString(`</p:grpSp>`)
	return b.String()
}

// CustGeomShape emits a `<p:sp>` whose outline is pathLst (an already-
// normalized `<a:pathLst>` fragment), used by the Clipping Adapter's
// CustGeom tier to replace a clipped shape's own outline with the
// clip path's geometry instead of its native one.
func CustGeomShape(bounds ir.Rect, pathLst string, paint ir.Paint, stroke *ir.Stroke, opacity float64, ids *IDs) string {
	id := ids.Next()
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Clip %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr>`, id, id)
	b.WriteString(xfrm(bounds.X, bounds.Y, bounds.Width, bounds.Height))
	fmt.Fprintf(&b, `<a:custGeom><a:avLst/><a:gdLst/><a:ahLst/><a:cxnLst/><a:rect l="0" t="0" r="21600" b="21600"/>%s</a:custGeom>`, pathLst)
	b.WriteString(paintFillOpacity(paint, opacity))
	b.WriteString(strokeXML(stroke))
	b.WriteString(`</p:spPr></p:sp>`)
	return b.String()
}

func strokeXML(s *ir.Stroke) string {
	if s == nil {
		return ""
	}
	capAttr := map[ir.LineCap]string{ir.CapButt: "flat", ir.CapRound: "rnd", ir.CapSquare: "sq"}[s.Cap]
	joinTag := map[ir.LineJoin]string{ir.JoinRound: "<a:round/>", ir.JoinBevel: "<a:bevel/>"}[s.Join]
	if joinTag == "" {
		joinTag = fmt.Sprintf(`<a:miter lim="%d"/>`, int(math.Round(s.MiterLimit*1000)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<a:ln w="%d" cap="%s">`, emu(s.Width), capAttr)
	b.WriteString(paintFill(s.Color))
	if len(s.Dash) > 0 {
		b.WriteString(`<a:prstDash val="dash"/>`)
	}
	b.WriteString(joinTag)
	b.WriteString(`</a:ln>`)
	return b.String()
}

// paintFill renders the `<a:noFill/>`/`<a:solidFill>`/`<a:gradFill>`
// element for paint at full opacity (used for stroke paints, whose
// alpha is already folded in by the style-resolution stage).
func paintFill(paint ir.Paint) string {
	return paintFillOpacity(paint, 1)
}

// paintFillOpacity is paintFill with an additional element-level
// opacity folded into a solid color's alpha, since DrawingML has no
// separate group-opacity operator a single shape can lean on. Linear
// and radial gradients map to <a:gradFill> with their stops' own
// opacity only; the element-level opacity is not applied to them.
// Pattern fills and any other paint kind fall back to noFill.
func paintFillOpacity(paint ir.Paint, opacity float64) string {
	switch paint.Kind {
	case ir.PaintNone:
		return `<a:noFill/>`
	case ir.PaintSolid:
		return fmt.Sprintf(`<a:solidFill>%s</a:solidFill>`, srgbClr(paint.Solid, opacity))
	case ir.PaintLinearGradient:
		return linearGradFill(paint)
	case ir.PaintRadialGradient:
		return radialGradFill(paint)
	default:
		return `<a:noFill/>`
	}
}

func srgbClr(c interface {
	RGBA() (r, g, b, a uint32)
}, opacity float64) string {
	r, g, b, a := c.RGBA()
	hex := fmt.Sprintf("%02X%02X%02X", r>>8, g>>8, b>>8)
	alpha := alphaVal(float64(a>>8) / 255 * opacity)
	return fmt.Sprintf(`<a:srgbClr val="%s"><a:alpha val="%d"/></a:srgbClr>`, hex, alpha)
}

func gsLst(stops []ir.GradientStop) string {
	sorted := append([]ir.GradientStop(nil), stops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	var b strings.Builder
	b.WriteString(`<a:gsLst>`)
	for _, s := range sorted {
		pos := int(math.Round(clamp01(s.Offset) * 100000))
		fmt.Fprintf(&b, `<a:gs pos="%d">%s</a:gs>`, pos, srgbClr(s.Color, s.Opacity))
	}
	b.WriteString(`</a:gsLst>`)
	return b.String()
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

// linearGradFill computes the DrawingML angle (atan2 normalized
// clockwise-from-3-o'clock, 1/60000-degree units) per spec §4.7.
// DrawingML's <a:lin> has no Reflect/Repeat spread attribute of its
// own; only Pad maps natively, so Reflect/Repeat gradients are left to
// the policy-selected VectorFallback path upstream of this mapper.
func linearGradFill(paint ir.Paint) string {
	dx := paint.P1.X - paint.P0.X
	dy := paint.P1.Y - paint.P0.Y
	ang := angleUnits(dx, dy)
	return fmt.Sprintf(`<a:gradFill>%s<a:lin ang="%d" scaled="1"/></a:gradFill>`, gsLst(paint.Stops), ang)
}

// radialGradFill emits `<a:path path="circle">` with focus offsets per
// spec §4.7. The focus offset is expressed as a fillToRect whose edges
// move opposite the focal point's displacement from the circle center.
func radialGradFill(paint ir.Paint) string {
	l, t, r, b := 50000, 50000, 50000, 50000
	if paint.Radius > 0 {
		dx := (paint.Focal.X - paint.Center.X) / paint.Radius
		dy := (paint.Focal.Y - paint.Center.Y) / paint.Radius
		l = int(math.Round(50000 - dx*50000))
		t = int(math.Round(50000 - dy*50000))
		r, b = 100000-l, 100000-t
	}
	return fmt.Sprintf(`<a:gradFill>%s<a:path path="circle"><a:fillToRect l="%d" t="%d" r="%d" b="%d"/></a:path></a:gradFill>`,
		gsLst(paint.Stops), l, t, r, b)
}
