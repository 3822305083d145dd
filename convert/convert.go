// Package convert is the top-level library API (spec §6.3): it wires
// the Parser, Policy Engine, Mappers, Filter Pipeline, Clipping
// Adapter, Font Service, and Package Writer into one
// Convert(svgBytes, Config) call. The single top-level entry point
// shape — build the pipeline inline, return one result struct —
// follows the teacher's image.go Decode function, scaled up from one
// decode step to a multi-stage pipeline.
package convert

import (
	"errors"
	"fmt"
	"time"

	"github.com/svg2pptx/svg2pptx/clip"
	"github.com/svg2pptx/svg2pptx/filter"
	"github.com/svg2pptx/svg2pptx/font"
	"github.com/svg2pptx/svg2pptx/ir"
	"github.com/svg2pptx/svg2pptx/mapper"
	"github.com/svg2pptx/svg2pptx/parser"
	"github.com/svg2pptx/svg2pptx/policy"
	"github.com/svg2pptx/svg2pptx/pptx"
)

// PrecisionMode selects the EMU rounding quantum (spec §3.1).
type PrecisionMode int

const (
	Standard PrecisionMode = iota
	Subpixel
	High
	Ultra
)

// FontMissingPolicy mirrors font.MissingPolicy at the API boundary so
// callers of this package don't need to import font directly just to
// build a Config.
type FontMissingPolicy = font.MissingPolicy

const (
	FontFallbackFamily = font.PolicyFallbackFamily
	FontError          = font.PolicyError
	FontOutline        = font.PolicyOutline
)

// Logger is the observability hook named in spec §6.4: "Logger.warn(code,
// message, element_path)". A nil Logger in Config means warnings are
// only collected into ConversionResult.Warnings, not also surfaced live.
type Logger interface {
	Warn(code, message, elementPath string)
}

// discardLogger discards; it exists so Convert never nil-checks twice.
type discardLogger struct{}

func (discardLogger) Warn(string, string, string) {}

// Config is the caller-facing conversion configuration (spec §6.3);
// every field is optional with the documented default applied by
// Convert when the zero value is seen.
type Config struct {
	OutputTarget   policy.OutputTarget
	PrecisionMode  PrecisionMode
	SlideWidthEMU  int64
	SlideHeightEMU int64
	DefaultDPI     float64

	FontMissing        FontMissingPolicy
	FallbackFontFamily string
	FontSources        []font.FontSource

	MaxFilterComplexity int
	MaxGradientStops    int
	MaxClipSegments     int

	Logger Logger
}

// withDefaults fills spec §6.3's documented defaults: Balanced target,
// Standard precision, a 10 x 7.5 inch slide (9,144,000 x 6,858,000
// EMU), 96 DPI, FallbackFamily("Arial").
func (c Config) withDefaults() Config {
	if c.SlideWidthEMU == 0 {
		c.SlideWidthEMU = 9144000
	}
	if c.SlideHeightEMU == 0 {
		c.SlideHeightEMU = 6858000
	}
	if c.DefaultDPI == 0 {
		c.DefaultDPI = 96
	}
	if c.FallbackFontFamily == "" {
		c.FallbackFontFamily = "Arial"
	}
	if c.Logger == nil {
		c.Logger = discardLogger{}
	}
	return c
}

// Metrics carries the simple per-conversion counters spec §6.3 asks
// ConversionResult to report.
type Metrics struct {
	SlideCount        int
	ElementCount      int
	FilterEscalations int
	ClipEscalations   int
	Duration          time.Duration
}

// ConversionResult is the value Convert returns on success (spec §6.3).
type ConversionResult struct {
	PPTXBytes []byte
	Warnings  []parser.Warning
	Metrics   Metrics
	Errors    []error // recoverable diagnostics collected, not raised
}

// Convert runs the full pipeline over one SVG document and returns a
// single-slide PPTX package. Fatal errors (spec §7: ParseError,
// PackageWriteError, Timeout) are returned as the error value and no
// partial PPTX is ever returned alongside a non-nil error.
func Convert(svgBytes []byte, cfg Config) (ConversionResult, error) {
	start := time.Now()
	cfg = cfg.withDefaults()

	scene, warnings, err := parser.Parse(svgBytes, float64(cfg.SlideWidthEMU), float64(cfg.SlideHeightEMU))
	if err != nil {
		return ConversionResult{}, fmt.Errorf("convert: parse failed: %w", err)
	}

	eng := policy.New(cfg.OutputTarget, policy.Thresholds{
		MaxGradientStops:    cfg.MaxGradientStops,
		MaxFilterComplexity: cfg.MaxFilterComplexity,
		MaxClipSegments:     cfg.MaxClipSegments,
	})

	writer := pptx.New(cfg.SlideWidthEMU, cfg.SlideHeightEMU)
	reg := writer.Registry()

	subsetCache := font.NewSubsetCache()
	defer subsetCache.Close()

	c := &converter{
		scene:       scene,
		engine:      eng,
		reg:         reg,
		writer:      writer,
		logger:      cfg.Logger,
		fonts:       font.New(cfg.FontMissing, cfg.FallbackFontFamily, cfg.FontSources),
		subsetCache: subsetCache,
	}
	bodyXML, mediaRelIDs, recErrs := c.renderSlide()

	writer.AddSlide(bodyXML, mediaRelIDs)

	data, err := writer.Build()
	if err != nil {
		return ConversionResult{}, fmt.Errorf("convert: package write failed: %w", err)
	}

	return ConversionResult{
		PPTXBytes: data,
		Warnings:  warnings,
		Errors:    recErrs,
		Metrics: Metrics{
			SlideCount:        1,
			ElementCount:      c.elementCount,
			FilterEscalations: c.filterEscalations,
			ClipEscalations:   c.clipEscalations,
			Duration:          time.Since(start),
		},
	}, nil
}

// converter threads the per-document collaborators through one
// recursive mapper pass over the scene's shape tree, collecting
// mapper-stage errors as recoverable diagnostics rather than failing
// the whole conversion (spec §7: "the conversion succeeds as long as
// at least one slide is produced").
type converter struct {
	scene  *ir.Scene
	engine *policy.Engine
	reg    mapper.Registry
	writer *pptx.Writer
	logger Logger

	fonts       *font.Service
	subsetCache *font.SubsetCache

	ids               mapper.IDs
	elementCount      int
	filterEscalations int
	clipEscalations   int

	glyphHandles map[string]*font.Handle
	glyphSets    map[string]map[uint32]bool
}

func (c *converter) renderSlide() (string, []string, []error) {
	if c.scene == nil || c.scene.Root == nil {
		return "", nil, nil
	}

	errs := c.resolveFonts(c.scene.Root)

	var mediaRelIDs []string
	fragment, err := c.renderNode(c.scene.Root, &mediaRelIDs)
	if err != nil {
		errs = append(errs, err)
		c.logger.Warn("RenderError", err.Error(), "/svg")
	}
	mediaRelIDs = append(mediaRelIDs, c.embedFontSubsets()...)
	return fragment, mediaRelIDs, errs
}

// renderNode maps one IR node, routing Groups through renderGroup so
// FilterRef/ClipRef can be resolved against the Filter Pipeline and
// Clipping Adapter before the fragment is emitted; every other node
// kind is a mapper leaf with no policy decision of its own.
func (c *converter) renderNode(node ir.Node, mediaRelIDs *[]string) (string, error) {
	c.elementCount++
	if g, ok := node.(*ir.Group); ok {
		return c.renderGroup(g, mediaRelIDs)
	}
	return mapper.Node(node, &c.ids, mediaRegistryAdapter{c, mediaRelIDs})
}

func (c *converter) renderChildren(g *ir.Group, mediaRelIDs *[]string) ([]string, error) {
	var children []string
	for _, child := range g.Children {
		frag, err := c.renderNode(child, mediaRelIDs)
		if err != nil {
			return nil, err
		}
		children = append(children, frag)
	}
	return children, nil
}

func (c *converter) renderPlainChildren(g *ir.Group, mediaRelIDs *[]string) (string, error) {
	children, err := c.renderChildren(g, mediaRelIDs)
	if err != nil {
		return "", err
	}
	return mapper.AssembleGroup(&c.ids, "", children), nil
}

// renderGroup dispatches a Group to the Filter Pipeline and/or Clipping
// Adapter when it carries FilterRef/ClipRef, per spec §4.8/§4.9; a
// plain group collapses to its sole child when it adds nothing (spec
// §8 Testable Property 1), matching mapper.group's own shortcut.
func (c *converter) renderGroup(g *ir.Group, mediaRelIDs *[]string) (string, error) {
	switch {
	case g.FilterRef != "" && g.ClipRef != "":
		return c.renderFilteredAndClipped(g, mediaRelIDs)
	case g.FilterRef != "":
		return c.renderFilteredGroup(g, mediaRelIDs)
	case g.ClipRef != "":
		return c.renderClippedGroup(g, mediaRelIDs)
	}

	if len(g.Children) == 1 && g.Opacity == 1 {
		return c.renderNode(g.Children[0], mediaRelIDs)
	}
	return c.renderPlainChildren(g, mediaRelIDs)
}

// renderFilteredGroup applies the Filter Pipeline's Native/Vector/
// Raster ladder (spec §4.8) to g's rendered content.
func (c *converter) renderFilteredGroup(g *ir.Group, mediaRelIDs *[]string) (string, error) {
	chain, ok := c.scene.Filters[g.FilterRef]
	if !ok {
		return c.renderPlainChildren(g, mediaRelIDs)
	}

	strategy := c.engine.FilterStrategy(chain)
	if strategy != policy.Native {
		c.filterEscalations++
	}

	if strategy == policy.Native {
		if frag, ok := filter.NativeEffectList(chain); ok {
			children, err := c.renderChildren(g, mediaRelIDs)
			if err != nil {
				return "", err
			}
			return mapper.AssembleGroup(&c.ids, frag, children), nil
		}
		strategy = policy.EscalateFilter(strategy)
	}

	if strategy == policy.VectorFallback {
		if paths := flattenToPaths(g); len(paths) > 0 {
			bounds := nodeBounds(g)
			emf := filter.VectorEMF(paths, bounds)
			relID := c.writer.AddEmbedding(emf)
			*mediaRelIDs = append(*mediaRelIDs, relID)
			return mapper.Picture("Filter", bounds, &c.ids, relID), nil
		}
		strategy = policy.EscalateFilter(strategy)
	}

	bounds := nodeBounds(g)
	src := rasterizeNode(g, bounds)
	out, _ := filter.Rasterize(chain, src)
	data, err := filter.EncodePNG(out)
	if err != nil {
		return "", err
	}
	relID := c.reg.RegisterMedia(data, "image/png")
	*mediaRelIDs = append(*mediaRelIDs, relID)
	return mapper.Picture("Filter", bounds, &c.ids, relID), nil
}

// renderClippedGroup applies the Clipping Adapter's strategy ladder
// (spec §4.9). The Policy Engine's ClipStrategy only distinguishes
// Native from Raster; within Native, the axis-aligned-rect vs. polygon
// split (NativeRect's bounds-shrink vs. CustGeom's outline-replacement)
// is the clip package's own classification, and both only apply to a
// clipped group with exactly one child: a rect clip shrinks a Rectangle
// or Image child, a polygon clip replaces the outline of a Rectangle,
// Circle, Ellipse or PathShape child. Anything else (multiple children,
// a nested Group, text, or a child kind the tier does not handle)
// escalates straight to the Raster mask-composite path.
func (c *converter) renderClippedGroup(g *ir.Group, mediaRelIDs *[]string) (string, error) {
	cp, ok := c.resolveClipPath(g.ClipRef)
	if !ok {
		return c.renderPlainChildren(g, mediaRelIDs)
	}

	geom, policyGeom := clip.Analyze(cp)
	strategy := c.engine.ClipStrategy(policyGeom)
	if strategy != policy.Native {
		c.clipEscalations++
	}

	if strategy == policy.Native && len(g.Children) == 1 {
		child := g.Children[0]
		if geom.AxisAlignedRect {
			if rect, ok := clip.NativeRect(geom); ok {
				if shrunk, ok := shrinkChildToRect(child, rect); ok {
					return c.renderNode(shrunk, mediaRelIDs)
				}
			}
		} else if frag, ok := c.renderCustGeomClip(child, geom, cp.FillRule); ok {
			return frag, nil
		}
	}

	bounds := nodeBounds(g)
	content := rasterizeNode(g, bounds)
	mask := clip.RasterMask(geom, bounds, cp.FillRule)
	masked := applyAlphaMask(content, mask)
	data, err := filter.EncodePNG(masked)
	if err != nil {
		return "", err
	}
	relID := c.reg.RegisterMedia(data, "image/png")
	*mediaRelIDs = append(*mediaRelIDs, relID)
	return mapper.Picture("Clip", bounds, &c.ids, relID), nil
}

// renderFilteredAndClipped handles the case of a single group carrying
// both a filter and a clip: neither tier can be resolved independently
// of the other without risking one silently discarding the other's
// effect, so both are folded into a single rasterize → filter → mask
// pass.
func (c *converter) renderFilteredAndClipped(g *ir.Group, mediaRelIDs *[]string) (string, error) {
	chain, chainOK := c.scene.Filters[g.FilterRef]
	cp, clipOK := c.resolveClipPath(g.ClipRef)
	if !chainOK || !clipOK {
		return c.renderPlainChildren(g, mediaRelIDs)
	}

	if c.engine.FilterStrategy(chain) != policy.Native {
		c.filterEscalations++
	}
	geom, policyGeom := clip.Analyze(cp)
	if c.engine.ClipStrategy(policyGeom) != policy.Native {
		c.clipEscalations++
	}

	bounds := nodeBounds(g)
	content := rasterizeNode(g, bounds)
	filtered, _ := filter.Rasterize(chain, content)
	mask := clip.RasterMask(geom, bounds, cp.FillRule)
	masked := applyAlphaMask(filtered, mask)
	data, err := filter.EncodePNG(masked)
	if err != nil {
		return "", err
	}
	relID := c.reg.RegisterMedia(data, "image/png")
	*mediaRelIDs = append(*mediaRelIDs, relID)
	return mapper.Picture("FilteredClip", bounds, &c.ids, relID), nil
}

// resolveClipPath follows ClipPath.Kind == ClipRef indirections to the
// underlying shape-bearing ClipPath, the same chase-the-chain shape as
// parser.parseUse's cycle guard.
func (c *converter) resolveClipPath(ref string) (ir.ClipPath, bool) {
	seen := map[string]bool{}
	for {
		cp, ok := c.scene.Clips[ref]
		if !ok {
			return ir.ClipPath{}, false
		}
		if cp.Kind != ir.ClipRef {
			return cp, true
		}
		if seen[ref] {
			return ir.ClipPath{}, false
		}
		seen[ref] = true
		ref = cp.Ref
	}
}

// shrinkChildToRect implements the Clipping Adapter's NativeRect tier:
// a Rectangle or Image's own bounds are simply intersected with the
// clip rect, needing no extra DrawingML element at all. Other shape
// kinds keep their native outline (a circle clipped to a rect isn't
// itself a rect), so they report !ok and the caller falls through to
// the Raster tier.
func shrinkChildToRect(child ir.Node, rect ir.Rect) (ir.Node, bool) {
	switch n := child.(type) {
	case *ir.Rectangle:
		out := *n
		out.Bounds = intersectRect(n.Bounds, rect)
		return &out, true
	case *ir.Image:
		out := *n
		out.Bounds = intersectRect(n.Bounds, rect)
		return &out, true
	}
	return nil, false
}

// renderCustGeomClip implements the Clipping Adapter's CustGeom tier:
// the clipped shape's own outline is replaced with the clip path's
// geometry via mapper.CustGeomShape, reusing the shape's existing
// paint/stroke/opacity.
func (c *converter) renderCustGeomClip(child ir.Node, geom clip.Geometry, fillRule ir.FillRule) (string, bool) {
	bounds, paint, stroke, opacity, ok := shapeStyle(child)
	if !ok {
		return "", false
	}
	pathLst := clip.PathListXML(geom, fillRule)
	return mapper.CustGeomShape(bounds, pathLst, paint, stroke, opacity, &c.ids), true
}

// shapeStyle extracts the bounds/paint/stroke/opacity of a leaf shape
// node, for the CustGeom clip tier's outline replacement.
func shapeStyle(node ir.Node) (ir.Rect, ir.Paint, *ir.Stroke, float64, bool) {
	switch n := node.(type) {
	case *ir.Rectangle:
		return n.Bounds, n.Paint, n.Stroke, n.Opacity, true
	case *ir.Circle:
		return ir.Rect{X: n.Center.X - n.Radius, Y: n.Center.Y - n.Radius, Width: 2 * n.Radius, Height: 2 * n.Radius}, n.Paint, n.Stroke, n.Opacity, true
	case *ir.Ellipse:
		return ir.Rect{X: n.Center.X - n.RX, Y: n.Center.Y - n.RY, Width: 2 * n.RX, Height: 2 * n.RY}, n.Paint, n.Stroke, n.Opacity, true
	case *ir.PathShape:
		return segmentsBounds(n.Segments), n.Paint, n.Stroke, n.Opacity, true
	}
	return ir.Rect{}, ir.Paint{}, nil, 0, false
}

// mediaRegistryAdapter adapts pptx's media registry to mapper.Registry
// while also recording the relationship id for the slide's own _rels
// part (spec §4.11: "each slide relates to its media"). One instance
// is created per call so nested groups' images are recorded against
// the same mediaRelIDs slice threaded through the whole recursive
// descent.
type mediaRegistryAdapter struct {
	c           *converter
	mediaRelIDs *[]string
}

func (a mediaRegistryAdapter) RegisterMedia(data []byte, mime string) string {
	id := a.c.reg.RegisterMedia(data, mime)
	*a.mediaRelIDs = append(*a.mediaRelIDs, id)
	return id
}

// ErrNoSlideProduced names the "no slide produced" failure. Convert
// does not return it: it always emits exactly one slide, which is empty
// when every top-level element was dropped.
var ErrNoSlideProduced = errors.New("convert: no slide produced")
