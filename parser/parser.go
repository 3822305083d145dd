package parser

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/ianaindex"
	xtransform "golang.org/x/text/transform"

	"github.com/svg2pptx/svg2pptx/coordspace"
	"github.com/svg2pptx/svg2pptx/ir"
	"github.com/svg2pptx/svg2pptx/matrix"
	"github.com/svg2pptx/svg2pptx/transform"
	"github.com/svg2pptx/svg2pptx/viewport"
)

// Warning is a non-fatal condition raised while parsing, carried
// through to the top-level convert package's ConversionResult.
type Warning struct {
	Code    string
	Message string
}

// Error is a fatal parse failure, tagged with the spec §7 error kind
// it corresponds to.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("parser: %s: %s", e.Kind, e.Message) }

// parserState threads the tables and bookkeeping that accumulate
// across one document's traversal: named paint servers, clip-paths,
// filter chains, the id→element index backing <use>, and cycle
// detection for <use> chains (spec §4.5's "fatal ParseError on cycle").
type parserState struct {
	byID      map[string]*docElement
	gradients map[string]ir.Paint
	clips     map[string]ir.ClipPath
	filters   map[string]ir.FilterChain
	rules     []styleRule

	useStack []string
	warnings []Warning
}

// Parse decodes svgBytes and bakes it into an ir.Scene per spec §4.5,
// resolving the root viewport against the target slide dimensions.
func Parse(svgBytes []byte, slideWidthEMU, slideHeightEMU float64) (*ir.Scene, []Warning, error) {
	var doc document
	dec := xml.NewDecoder(bytes.NewReader(svgBytes))
	dec.CharsetReader = charsetReader
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, &Error{Kind: "ParseError", Message: err.Error()}
	}

	st := &parserState{
		byID:      map[string]*docElement{},
		gradients: map[string]ir.Paint{},
		clips:     map[string]ir.ClipPath{},
		filters:   map[string]ir.FilterChain{},
	}
	indexIDs(doc.Children, st.byID)

	widthPx := parsePixelDimension(doc.Width)
	heightPx := parsePixelDimension(doc.Height)

	box, hasBox := viewport.ParseBox(doc.ViewBox)
	par := viewport.ParsePreserveAspectRatio(doc.PreserveAspectRatio)
	rootMatrix, degenerate := viewport.Resolve(box, hasBox, widthPx, heightPx, slideWidthEMU, slideHeightEMU, par)
	if degenerate {
		st.warnings = append(st.warnings, Warning{Code: "DegenerateViewBox", Message: "viewBox has zero width or height; using identity viewport"})
	}

	st.collectGradients(doc.Children, matrix.Identity)
	st.rules = collectStylesheets(doc.Children)

	space := coordspace.New(rootMatrix)
	root := &ir.Group{Opacity: 1}
	style := defaultStyle()

	for _, child := range doc.Children {
		node, err := st.parseElement(child.X, space, style)
		if err != nil {
			return nil, st.warnings, err
		}
		if node != nil {
			root.Children = append(root.Children, node)
		}
	}

	return &ir.Scene{Root: root, Clips: st.clips, Filters: st.filters}, st.warnings, nil
}

// charsetReader resolves the encoding named in an SVG document's XML
// declaration (spec §6.2: "character encoding is detected from the XML
// declaration; default UTF-8") to a decoding io.Reader via the IANA
// charset registry, so documents saved as e.g. ISO-8859-1 or
// Shift_JIS decode the same as any other encoding/xml consumer would.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("parser: unsupported character encoding %q", charset)
	}
	return xtransform.NewReader(input, enc.NewDecoder()), nil
}

func parsePixelDimension(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 300
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 300
	}
	return v
}

func indexIDs(children []docElement, byID map[string]*docElement) {
	for i := range children {
		c := &children[i]
		if id := c.X.id(); id != "" {
			byID[id] = c
		}
		switch e := c.X.(type) {
		case *gGroup:
			indexIDs(e.Children, byID)
		case *gDefs:
			indexIDs(e.Children, byID)
		}
	}
}

// collectGradients walks def-bearing containers collecting gradient
// definitions before the main traversal, since a shape may reference a
// gradient defined anywhere in the document (forward or backward).
func (st *parserState) collectGradients(children []docElement, ctm matrix.Matrix) {
	for _, c := range children {
		switch e := c.X.(type) {
		case *gLinearGradient:
			st.gradients[e.ID] = buildLinearGradient(e)
		case *gRadialGradient:
			st.gradients[e.ID] = buildRadialGradient(e)
		case *gGroup:
			st.collectGradients(e.Children, ctm)
		case *gDefs:
			st.collectGradients(e.Children, ctm)
		}
	}
}

// collectStylesheets walks def-bearing containers gathering <style>
// rules before the main traversal, same rationale as collectGradients:
// a rule's selectors should apply regardless of where in the document
// the <style> element itself sits.
func collectStylesheets(children []docElement) []styleRule {
	var rules []styleRule
	for _, c := range children {
		switch e := c.X.(type) {
		case *gStyle:
			rules = append(rules, parseStylesheet(e.Content)...)
		case *gGroup:
			rules = append(rules, collectStylesheets(e.Children)...)
		case *gDefs:
			rules = append(rules, collectStylesheets(e.Children)...)
		}
	}
	return rules
}

func gradientStops(raw []gStop) []ir.GradientStop {
	stops := make([]ir.GradientStop, 0, len(raw))
	for _, s := range raw {
		offset := s.Offset.Percentage
		if offset == 0 {
			offset = s.Offset.Length.Value
		}
		if offset < 0 {
			offset = 0
		}
		if offset > 1 {
			offset = 1
		}
		c := color.Color(color.Black)
		if s.Color != nil {
			c = s.Color.Value
		}
		opacity := 1.0
		if s.Opacity != nil {
			opacity = *s.Opacity
		}
		stops = append(stops, ir.GradientStop{Offset: offset, Color: c, Opacity: opacity})
	}
	for i := 1; i < len(stops); i++ {
		for j := i; j > 0 && stops[j].Offset < stops[j-1].Offset; j-- {
			stops[j], stops[j-1] = stops[j-1], stops[j]
		}
	}
	return stops
}

func buildLinearGradient(e *gLinearGradient) ir.Paint {
	p0, p1 := ir.Point{X: 0, Y: 0}, ir.Point{X: 1, Y: 0}
	if e.X1 != nil {
		p0.X = resolveLengthPercentageScalar(*e.X1)
	}
	if e.Y1 != nil {
		p0.Y = resolveLengthPercentageScalar(*e.Y1)
	}
	if e.X2 != nil {
		p1.X = resolveLengthPercentageScalar(*e.X2)
	}
	if e.Y2 != nil {
		p1.Y = resolveLengthPercentageScalar(*e.Y2)
	}
	return ir.Paint{Kind: ir.PaintLinearGradient, P0: p0, P1: p1, Stops: gradientStops(e.Stops)}
}

func buildRadialGradient(e *gRadialGradient) ir.Paint {
	center := ir.Point{X: 0.5, Y: 0.5}
	radius := 0.5
	if e.CX != nil {
		center.X = resolveLengthPercentageScalar(*e.CX)
	}
	if e.CY != nil {
		center.Y = resolveLengthPercentageScalar(*e.CY)
	}
	if e.R != nil {
		radius = resolveLengthPercentageScalar(*e.R)
	}
	focal := center
	if e.FX != nil {
		focal.X = resolveLengthPercentageScalar(*e.FX)
	}
	if e.FY != nil {
		focal.Y = resolveLengthPercentageScalar(*e.FY)
	}
	return ir.Paint{Kind: ir.PaintRadialGradient, Center: center, Focal: focal, Radius: radius, Stops: gradientStops(e.Stops)}
}

// parseElement dispatches on concrete DOM type, pushing the element's
// own transform onto space and folding its attributes into style
// before recursing, then popping on return. This mirrors the shape of
// the teacher's renderElement/renderGrouping push/pop pairing in
// renderer.go, but builds baked IR nodes instead of issuing draw calls.
func (st *parserState) parseElement(el element, space *coordspace.Space, style computedStyle) (ir.Node, error) {
	attrs := el.attrs()
	if len(st.rules) > 0 {
		attrs = mergeStyleOverrides(attrs, stylesheetOverrides(st.rules, el))
	}

	m := matrix.Identity
	if attrs.Transform != "" {
		parsed, err := transform.Parse(attrs.Transform)
		if err != nil {
			return nil, &Error{Kind: "MalformedTransform", Message: err.Error()}
		}
		m = parsed
	}
	space.Push(m)
	defer space.Pop()

	style = style.derive(attrs)

	var node ir.Node
	var err error
	switch e := el.(type) {
	case *gGroup:
		node, err = st.parseGroup(e.Children, space, style, attrs)
	case *gDefs:
		return nil, nil
	case *gUse:
		node, err = st.parseUse(e, space, style)
	case *gCircle:
		node = st.parseCircle(e, space, style)
	case *gEllipse:
		node = st.parseEllipse(e, space, style)
	case *gRect:
		node = st.parseRect(e, space, style)
	case *gLine:
		node, err = st.parseLine(e, space, style)
	case *gPolyline:
		node, err = st.parsePolyline(e.Points, space, style, false)
	case *gPolygon:
		node, err = st.parsePolyline(e.Points, space, style, true)
	case *gPath:
		node, err = st.parsePath(e, space, style)
	case *gText:
		node = st.parseText(e, space, style)
	case *gImage:
		node, err = st.parseImage(e, space)
	case *gLinearGradient, *gRadialGradient, *gStyle:
		return nil, nil
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}

	return st.wrapClipFilter(node, attrs), nil
}

// wrapClipFilter wraps a leaf shape in a singleton Group carrying its
// clip-path/filter reference, since ir.Node's ClipRef/FilterRef fields
// live only on Group per spec §3.2.
func (st *parserState) wrapClipFilter(node ir.Node, attrs *elementAttributes) ir.Node {
	clipRef, filterRef := "", ""
	if attrs.ClipPath != nil {
		clipRef = attrs.ClipPath.Ref
	}
	if attrs.Filter != nil {
		filterRef = attrs.Filter.Ref
	}
	if clipRef == "" && filterRef == "" {
		return node
	}
	return &ir.Group{Children: []ir.Node{node}, ClipRef: clipRef, FilterRef: filterRef, Opacity: 1}
}

func (st *parserState) parseGroup(children []docElement, space *coordspace.Space, style computedStyle, attrs *elementAttributes) (ir.Node, error) {
	group := &ir.Group{Opacity: 1}
	if attrs.Opacity != nil {
		group.Opacity = *attrs.Opacity
	}
	for _, c := range children {
		node, err := st.parseElement(c.X, space, style)
		if err != nil {
			return nil, err
		}
		if node != nil {
			group.Children = append(group.Children, node)
		}
	}
	return group, nil
}

func (st *parserState) parseUse(e *gUse, space *coordspace.Space, style computedStyle) (ir.Node, error) {
	ref := strings.TrimPrefix(e.Href, "#")
	if ref == "" {
		return nil, nil
	}
	for _, seen := range st.useStack {
		if seen == ref {
			return nil, &Error{Kind: "ParseError", Message: "cycle in <use> reference chain at #" + ref}
		}
	}
	target, ok := st.byID[ref]
	if !ok {
		st.warnings = append(st.warnings, Warning{Code: "UnresolvedUse", Message: "no element with id #" + ref})
		return nil, nil
	}

	st.useStack = append(st.useStack, ref)
	defer func() { st.useStack = st.useStack[:len(st.useStack)-1] }()

	x := resolveLengthPercentageScalar(e.X)
	y := resolveLengthPercentageScalar(e.Y)
	if x != 0 || y != 0 {
		space.Push(matrix.Translation(x, y))
		defer space.Pop()
	}

	return st.parseElement(target.X, space, style)
}

func paintWithFillStyle(st *parserState, style computedStyle) ir.Paint {
	return st.resolvePaint(style.fill, style.fillOpacity)
}

func (st *parserState) parseCircle(e *gCircle, space *coordspace.Space, style computedStyle) ir.Node {
	cx, cy := resolveLengthPercentageScalar(e.CX), resolveLengthPercentageScalar(e.CY)
	r := resolveLengthPercentageScalar(e.R)
	x, y := space.Apply(cx, cy)

	vx0, vy0 := space.ApplyVector(1, 0)
	vx1, vy1 := space.ApplyVector(0, 1)
	scaleX, scaleY := math.Hypot(vx0, vy0), math.Hypot(vx1, vy1)
	if approxEqual(scaleX, scaleY) {
		return &ir.Circle{Center: ir.Point{X: x, Y: y}, Radius: r * scaleX, Paint: paintWithFillStyle(st, style), Stroke: style.strokeIR(st), Opacity: style.opacity}
	}
	return &ir.Ellipse{Center: ir.Point{X: x, Y: y}, RX: r * scaleX, RY: r * scaleY, Paint: paintWithFillStyle(st, style), Stroke: style.strokeIR(st), Opacity: style.opacity}
}

func approxEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}

func (st *parserState) parseEllipse(e *gEllipse, space *coordspace.Space, style computedStyle) ir.Node {
	cx, cy := resolveLengthPercentageScalar(e.CX), resolveLengthPercentageScalar(e.CY)
	rx, ry := resolveLengthPercentageScalar(e.RX), resolveLengthPercentageScalar(e.RY)
	x, y := space.Apply(cx, cy)
	vx0, vy0 := space.ApplyVector(1, 0)
	vx1, vy1 := space.ApplyVector(0, 1)
	sx, sy := math.Hypot(vx0, vy0), math.Hypot(vx1, vy1)
	return &ir.Ellipse{Center: ir.Point{X: x, Y: y}, RX: rx * sx, RY: ry * sy, Paint: paintWithFillStyle(st, style), Stroke: style.strokeIR(st), Opacity: style.opacity}
}

// spaceHasRotation reports whether the current CTM carries any rotation
// or skew, i.e. its basis vectors are no longer axis-aligned. A plain
// axis-aligned rect stays an ir.Rectangle; a rotated/skewed one must be
// demoted to a PathShape so its corners bake correctly (spec §4.5).
func spaceHasRotation(space *coordspace.Space) bool {
	_, vy0 := space.ApplyVector(1, 0)
	vx1, _ := space.ApplyVector(0, 1)
	return math.Abs(vy0) > 1e-6 || math.Abs(vx1) > 1e-6
}

func (st *parserState) parseRect(e *gRect, space *coordspace.Space, style computedStyle) ir.Node {
	x, y := resolveLengthPercentageScalar(e.X), resolveLengthPercentageScalar(e.Y)
	w, h := resolveLengthPercentageScalar(e.Width), resolveLengthPercentageScalar(e.Height)
	rx := 0.0
	if e.RX != nil {
		rx = resolveLengthPercentageScalar(*e.RX)
	}

	if spaceHasRotation(space) {
		segs := bakeRoundedRectPath(x, y, w, h, rx, space)
		return &ir.PathShape{Segments: segs, Paint: paintWithFillStyle(st, style), Stroke: style.strokeIR(st), Opacity: style.opacity, FillRule: style.fillRule}
	}

	x0, y0 := space.Apply(x, y)
	x1, y1 := space.Apply(x+w, y+h)
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}

	bounds := ir.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	return &ir.Rectangle{Bounds: bounds, CornerRadius: rx, Paint: paintWithFillStyle(st, style), Stroke: style.strokeIR(st), Opacity: style.opacity}
}

// bakeRoundedRectPath builds a rounded rect in the shape's own local
// coordinates, then bakes every point through space so it comes out
// correctly rotated/skewed; corners become cubic Bezier quarter-arcs
// using the same 4/3*tan(pi/8) control-point constant as arcToCubics.
func bakeRoundedRectPath(x, y, w, h, rx float64, space *coordspace.Space) []ir.Segment {
	if rx <= 0 {
		apply := func(px, py float64) ir.Point {
			ax, ay := space.Apply(px, py)
			return ir.Point{X: ax, Y: ay}
		}
		return []ir.Segment{
			{Kind: ir.SegMoveTo, To: apply(x, y)},
			{Kind: ir.SegLineTo, To: apply(x+w, y)},
			{Kind: ir.SegLineTo, To: apply(x+w, y+h)},
			{Kind: ir.SegLineTo, To: apply(x, y+h)},
			{Kind: ir.SegClose},
		}
	}

	if rx > w/2 {
		rx = w / 2
	}
	if rx > h/2 {
		rx = h / 2
	}
	const k = 0.5523 // 4/3*tan(pi/8), the standard circle-to-cubic constant

	apply := func(px, py float64) ir.Point {
		ax, ay := space.Apply(px, py)
		return ir.Point{X: ax, Y: ay}
	}

	return []ir.Segment{
		{Kind: ir.SegMoveTo, To: apply(x+rx, y)},
		{Kind: ir.SegLineTo, To: apply(x+w-rx, y)},
		{Kind: ir.SegCubicBezier, CP1: apply(x+w-rx+rx*k, y), CP2: apply(x+w, y+rx-rx*k), To: apply(x+w, y+rx)},
		{Kind: ir.SegLineTo, To: apply(x+w, y+h-rx)},
		{Kind: ir.SegCubicBezier, CP1: apply(x+w, y+h-rx+rx*k), CP2: apply(x+w-rx+rx*k, y+h), To: apply(x+w-rx, y+h)},
		{Kind: ir.SegLineTo, To: apply(x+rx, y+h)},
		{Kind: ir.SegCubicBezier, CP1: apply(x+rx-rx*k, y+h), CP2: apply(x, y+h-rx+rx*k), To: apply(x, y+h-rx)},
		{Kind: ir.SegLineTo, To: apply(x, y+rx)},
		{Kind: ir.SegCubicBezier, CP1: apply(x, y+rx-rx*k), CP2: apply(x+rx-rx*k, y), To: apply(x+rx, y)},
		{Kind: ir.SegClose},
	}
}

func (st *parserState) parseLine(e *gLine, space *coordspace.Space, style computedStyle) (ir.Node, error) {
	x1, y1 := space.Apply(resolveLengthPercentageScalar(e.X1), resolveLengthPercentageScalar(e.Y1))
	x2, y2 := space.Apply(resolveLengthPercentageScalar(e.X2), resolveLengthPercentageScalar(e.Y2))
	segs := []ir.Segment{
		{Kind: ir.SegMoveTo, To: ir.Point{X: x1, Y: y1}},
		{Kind: ir.SegLineTo, To: ir.Point{X: x2, Y: y2}},
	}
	return &ir.PathShape{Segments: segs, Paint: ir.Paint{Kind: ir.PaintNone}, Stroke: style.strokeIR(st), Opacity: style.opacity, FillRule: style.fillRule}, nil
}

func (st *parserState) parsePolyline(points string, space *coordspace.Space, style computedStyle, closed bool) (ir.Node, error) {
	pts, err := parsePoints(points)
	if err != nil {
		return nil, &Error{Kind: "MalformedPath", Message: err.Error()}
	}
	if len(pts) == 0 {
		return nil, nil
	}
	segs := make([]ir.Segment, 0, len(pts)+1)
	for i, p := range pts {
		x, y := space.Apply(p.X, p.Y)
		kind := ir.SegLineTo
		if i == 0 {
			kind = ir.SegMoveTo
		}
		segs = append(segs, ir.Segment{Kind: kind, To: ir.Point{X: x, Y: y}})
	}
	if closed {
		segs = append(segs, ir.Segment{Kind: ir.SegClose})
	}
	return &ir.PathShape{Segments: segs, Paint: paintWithFillStyle(st, style), Stroke: style.strokeIR(st), Opacity: style.opacity, FillRule: style.fillRule}, nil
}

func parsePoints(s string) ([]pathPoint, error) {
	r := bufio.NewReader(strings.NewReader(s))
	if err := skipPathWhitespace(r); err != nil {
		return nil, err
	}
	coords, err := parsePathCoordinateSequence(r)
	if err != nil {
		return nil, err
	}
	if len(coords)%2 != 0 {
		return nil, fmt.Errorf("points list has an odd number of coordinates")
	}
	pts := make([]pathPoint, len(coords)/2)
	for i := range pts {
		pts[i] = pathPoint{X: coords[2*i], Y: coords[2*i+1]}
	}
	return pts, nil
}

func (st *parserState) parsePath(e *gPath, space *coordspace.Space, style computedStyle) (ir.Node, error) {
	segs, err := bakePath(e.D, space)
	if err != nil {
		return nil, err
	}
	return &ir.PathShape{Segments: segs, Paint: paintWithFillStyle(st, style), Stroke: style.strokeIR(st), Opacity: style.opacity, FillRule: style.fillRule}, nil
}

func (st *parserState) parseText(e *gText, space *coordspace.Space, style computedStyle) ir.Node {
	x, y := space.Apply(resolveLengthPercentageScalar(e.X), resolveLengthPercentageScalar(e.Y))
	weight := 400
	if style.bold {
		weight = 700
	}
	content := strings.TrimSpace(e.Content)
	run := ir.TextSpan{
		Text:        content,
		FontVariant: ir.FontVariant{Family: style.fontFamily, Weight: weight, Italic: style.italic},
		SizePt:      style.fontSizePt,
		Fill:        paintWithFillStyle(st, style),
		Bold:        style.bold,
		Italic:      style.italic,
	}
	return &ir.TextRun{Position: ir.Point{X: x, Y: y}, Runs: []ir.TextSpan{run}}
}

// parseImage bakes a <image> element's placement rect and resolves its
// href to embedded bytes (spec §3.2's ImageSource union); only data:
// URIs are resolved inline, matching the parser's no-network-fetch
// scope (spec §6.2) — external http(s) hrefs are carried through as
// ir.ImageDataURI for the caller to fetch, if it chooses to.
func (st *parserState) parseImage(e *gImage, space *coordspace.Space) (ir.Node, error) {
	x, y := resolveLengthPercentageScalar(e.X), resolveLengthPercentageScalar(e.Y)
	w, h := resolveLengthPercentageScalar(e.Width), resolveLengthPercentageScalar(e.Height)
	x0, y0 := space.Apply(x, y)
	x1, y1 := space.Apply(x+w, y+h)
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	bounds := ir.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}

	src, err := decodeImageHref(e.Href)
	if err != nil {
		st.warnings = append(st.warnings, Warning{Code: "UnresolvedImage", Message: err.Error()})
		return nil, nil
	}

	preserve := e.PreserveAspectRatio == "" || !strings.HasPrefix(e.PreserveAspectRatio, "none")
	return &ir.Image{Bounds: bounds, Source: src, PreserveAspect: preserve}, nil
}

// decodeImageHref resolves an <image> href into an ir.ImageSource. A
// data: URI is decoded inline and MIME-sniffed via mimetype when its
// declared media type is empty or has no "/"; a well-formed declared
// type is kept as given. Any other href (http(s), bare
// filename) is passed through as ImageDataURI for the caller to fetch.
func decodeImageHref(href string) (ir.ImageSource, error) {
	if !strings.HasPrefix(href, "data:") {
		return ir.ImageSource{Kind: ir.ImageDataURI, URI: href}, nil
	}

	rest := strings.TrimPrefix(href, "data:")
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return ir.ImageSource{}, fmt.Errorf("parser: malformed data URI")
	}
	meta, payload := rest[:comma], rest[comma+1:]

	declaredMime := ""
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		declaredMime = meta[:semi]
	} else if meta != "" {
		declaredMime = meta
	}

	var data []byte
	var err error
	if strings.Contains(meta, "base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var unescaped string
		unescaped, err = url.QueryUnescape(payload)
		data = []byte(unescaped)
	}
	if err != nil {
		return ir.ImageSource{}, fmt.Errorf("parser: decoding data URI payload: %w", err)
	}

	mime := declaredMime
	if mime == "" || !strings.Contains(mime, "/") {
		mime = mimetype.Detect(data).String()
	}
	return ir.ImageSource{Kind: ir.ImageEmbedded, Mime: mime, Data: data}, nil
}
