// Package parser implements the SVG Parser component (spec §4.5): it
// decodes SVG/XML into a DOM, walks it in document order baking the
// CTM stack into IR coordinates, expands <use> references, and
// resolves gradient paint servers. clip-path and filter attributes are
// carried only as Group.ClipRef/FilterRef names: <clipPath> and
// <filter> contents are not decoded, so the Scene's Clips and Filters
// tables come back empty.
//
// The DOM struct layout below is a direct generalization of the
// teacher package's elements.go/svg.go/elements_shapes.go/
// elements_text.go/elements_paint.go: the same encoding/xml struct-tag
// decoding approach, the same any-wrapper element-dispatch-by-tag-name
// technique, retargeted to attrtypes instead of the teacher's own
// types.go and with Transform now a plain string parsed on demand via
// the transform package instead of the teacher's unparsed stub.
package parser

import (
	"encoding/xml"
	"fmt"

	"github.com/svg2pptx/svg2pptx/attrtypes"
)

// element is any SVG element that can appear in a document, mirroring
// the teacher's Element interface.
type element interface {
	id() string
	attrs() *elementAttributes
	isElement()
}

// any wraps an element for polymorphic XML decoding, exactly as the
// teacher's `any` type does (renamed docElement here to avoid shadowing
// the predeclared `any` identifier introduced by Go 1.18).
type docElement struct {
	X element
}

func (a *docElement) UnmarshalXML(d *xml.Decoder, s xml.StartElement) error {
	switch s.Name.Local {
	case "g":
		a.X = &gGroup{}
	case "defs":
		a.X = &gDefs{}
	case "use":
		a.X = &gUse{}
	case "linearGradient":
		a.X = &gLinearGradient{}
	case "radialGradient":
		a.X = &gRadialGradient{}
	case "path":
		a.X = &gPath{}
	case "rect":
		a.X = &gRect{}
	case "circle":
		a.X = &gCircle{}
	case "ellipse":
		a.X = &gEllipse{}
	case "line":
		a.X = &gLine{}
	case "polyline":
		a.X = &gPolyline{}
	case "polygon":
		a.X = &gPolygon{}
	case "text":
		a.X = &gText{}
	case "tspan":
		a.X = &gTSpan{}
	case "image":
		a.X = &gImage{}
	case "style":
		a.X = &gStyle{}
	default:
		return fmt.Errorf("parser: unrecognized element %v:%v", s.Name.Space, s.Name.Local)
	}

	return d.DecodeElement(a.X, &s)
}

// elementAttributes holds the presentation attributes the parser reads
// while walking the document; a cut-down version of the teacher's
// ElementAttributes limited to what the IR/mapper/filter/clip/font
// components actually consume (spec §3.2/§4.5).
type elementAttributes struct {
	ID    string `xml:"id,attr"`
	Class string `xml:"class,attr"`

	Fill        *attrtypes.Paint      `xml:"fill,attr"`
	FillOpacity *float64              `xml:"fill-opacity,attr"`
	FillRule    string                `xml:"fill-rule,attr"`

	Stroke           *attrtypes.Paint     `xml:"stroke,attr"`
	StrokeWidth      *attrtypes.LengthPercentage `xml:"stroke-width,attr"`
	StrokeDasharray  *attrtypes.DashArray `xml:"stroke-dasharray,attr"`
	StrokeLinecap    string               `xml:"stroke-linecap,attr"`
	StrokeLinejoin   string               `xml:"stroke-linejoin,attr"`
	StrokeMiterlimit *float64             `xml:"stroke-miterlimit,attr"`
	StrokeOpacity    *float64             `xml:"stroke-opacity,attr"`

	Opacity *float64 `xml:"opacity,attr"`

	Transform string `xml:"transform,attr"`

	ClipPath *attrtypes.ClipPathRef `xml:"clip-path,attr"`
	Filter   *attrtypes.FilterList  `xml:"filter,attr"`
	Mask     *attrtypes.Mask        `xml:"mask,attr"`

	FontFamily *attrtypes.FontFamily `xml:"font-family,attr"`
	FontSize   *attrtypes.LengthPercentage `xml:"font-size,attr"`
	FontWeight string                `xml:"font-weight,attr"`
	FontStyle  string                `xml:"font-style,attr"`
	TextAnchor string                `xml:"text-anchor,attr"`

	VectorEffect *attrtypes.VectorEffect `xml:"vector-effect,attr"`

	Style string `xml:"style,attr"`
}

func (ea *elementAttributes) id() string                   { return ea.ID }
func (ea *elementAttributes) attrs() *elementAttributes    { return ea }

type gGroup struct {
	elementAttributes
	XMLName  xml.Name     `xml:"g"`
	Children []docElement `xml:",any"`
}

func (*gGroup) isElement() {}

type gDefs struct {
	elementAttributes
	XMLName  xml.Name     `xml:"defs"`
	Children []docElement `xml:",any"`
}

func (*gDefs) isElement() {}

type gUse struct {
	elementAttributes
	XMLName xml.Name `xml:"use"`
	// Href matches both href and xlink:href: encoding/xml attribute
	// tags without an explicit namespace compare local name only, so
	// one field covers both spellings (spec §6.2).
	Href string `xml:"href,attr"`
	X       attrtypes.LengthPercentage `xml:"x,attr"`
	Y       attrtypes.LengthPercentage `xml:"y,attr"`
}

func (*gUse) isElement() {}

type gStop struct {
	XMLName xml.Name              `xml:"stop"`
	Offset  attrtypes.LengthPercentage `xml:"offset,attr"`
	Color   *attrtypes.Color       `xml:"stop-color,attr"`
	Opacity *float64               `xml:"stop-opacity,attr"`
}

type gLinearGradient struct {
	elementAttributes
	XMLName xml.Name `xml:"linearGradient"`
	X1      *attrtypes.LengthPercentage `xml:"x1,attr"`
	Y1      *attrtypes.LengthPercentage `xml:"y1,attr"`
	X2      *attrtypes.LengthPercentage `xml:"x2,attr"`
	Y2      *attrtypes.LengthPercentage `xml:"y2,attr"`
	// Href matches both href and xlink:href; see gUse.Href.
	Href  string  `xml:"href,attr"`
	Stops []gStop `xml:"stop"`
}

func (*gLinearGradient) isElement() {}

type gRadialGradient struct {
	elementAttributes
	XMLName xml.Name `xml:"radialGradient"`
	CX      *attrtypes.LengthPercentage `xml:"cx,attr"`
	CY      *attrtypes.LengthPercentage `xml:"cy,attr"`
	R       *attrtypes.LengthPercentage `xml:"r,attr"`
	FX      *attrtypes.LengthPercentage `xml:"fx,attr"`
	FY      *attrtypes.LengthPercentage `xml:"fy,attr"`
	Href    string                      `xml:"href,attr"`
	Stops   []gStop                     `xml:"stop"`
}

func (*gRadialGradient) isElement() {}

type gPath struct {
	elementAttributes
	XMLName xml.Name `xml:"path"`
	D       string   `xml:"d,attr"`
}

func (*gPath) isElement() {}

type gRect struct {
	elementAttributes
	XMLName xml.Name `xml:"rect"`
	X       attrtypes.LengthPercentage `xml:"x,attr"`
	Y       attrtypes.LengthPercentage `xml:"y,attr"`
	Width   attrtypes.LengthPercentage `xml:"width,attr"`
	Height  attrtypes.LengthPercentage `xml:"height,attr"`
	RX      *attrtypes.LengthPercentage `xml:"rx,attr"`
	RY      *attrtypes.LengthPercentage `xml:"ry,attr"`
}

func (*gRect) isElement() {}

type gCircle struct {
	elementAttributes
	XMLName xml.Name `xml:"circle"`
	CX      attrtypes.LengthPercentage `xml:"cx,attr"`
	CY      attrtypes.LengthPercentage `xml:"cy,attr"`
	R       attrtypes.LengthPercentage `xml:"r,attr"`
}

func (*gCircle) isElement() {}

type gEllipse struct {
	elementAttributes
	XMLName xml.Name `xml:"ellipse"`
	CX      attrtypes.LengthPercentage `xml:"cx,attr"`
	CY      attrtypes.LengthPercentage `xml:"cy,attr"`
	RX      attrtypes.LengthPercentage `xml:"rx,attr"`
	RY      attrtypes.LengthPercentage `xml:"ry,attr"`
}

func (*gEllipse) isElement() {}

type gLine struct {
	elementAttributes
	XMLName xml.Name `xml:"line"`
	X1      attrtypes.LengthPercentage `xml:"x1,attr"`
	Y1      attrtypes.LengthPercentage `xml:"y1,attr"`
	X2      attrtypes.LengthPercentage `xml:"x2,attr"`
	Y2      attrtypes.LengthPercentage `xml:"y2,attr"`
}

func (*gLine) isElement() {}

type gPolyline struct {
	elementAttributes
	XMLName xml.Name `xml:"polyline"`
	Points  string   `xml:"points,attr"`
}

func (*gPolyline) isElement() {}

type gPolygon struct {
	elementAttributes
	XMLName xml.Name `xml:"polygon"`
	Points  string   `xml:"points,attr"`
}

func (*gPolygon) isElement() {}

type gText struct {
	elementAttributes
	XMLName xml.Name `xml:"text"`
	X       attrtypes.LengthPercentage `xml:"x,attr"`
	Y       attrtypes.LengthPercentage `xml:"y,attr"`
	Content string                     `xml:",chardata"`
	Spans   []gTSpan                   `xml:"tspan"`
}

func (*gText) isElement() {}

type gTSpan struct {
	elementAttributes
	XMLName xml.Name `xml:"tspan"`
	Content string   `xml:",chardata"`
}

func (*gTSpan) isElement() {}

type gImage struct {
	elementAttributes
	XMLName xml.Name `xml:"image"`
	// Href matches both href and xlink:href; see gUse.Href.
	Href string `xml:"href,attr"`
	X       attrtypes.LengthPercentage `xml:"x,attr"`
	Y       attrtypes.LengthPercentage `xml:"y,attr"`
	Width   attrtypes.LengthPercentage `xml:"width,attr"`
	Height  attrtypes.LengthPercentage `xml:"height,attr"`
	PreserveAspectRatio string `xml:"preserveAspectRatio,attr"`
}

func (*gImage) isElement() {}

// gStyle represents a <style> element: limited inline CSS, consumed by
// parser's style-sheet stage (see stylesheet.go) via internal/cssvalue.
type gStyle struct {
	elementAttributes
	XMLName xml.Name `xml:"style"`
	Content string   `xml:",chardata"`
}

func (*gStyle) isElement() {}

// elementTagName returns el's SVG tag name, used to match the type
// selectors of the limited CSS supported in <style> blocks (spec
// §4.5's "selectors of id/class/tag only").
func elementTagName(el element) string {
	switch el.(type) {
	case *gGroup:
		return "g"
	case *gDefs:
		return "defs"
	case *gUse:
		return "use"
	case *gLinearGradient:
		return "linearGradient"
	case *gRadialGradient:
		return "radialGradient"
	case *gPath:
		return "path"
	case *gRect:
		return "rect"
	case *gCircle:
		return "circle"
	case *gEllipse:
		return "ellipse"
	case *gLine:
		return "line"
	case *gPolyline:
		return "polyline"
	case *gPolygon:
		return "polygon"
	case *gText:
		return "text"
	case *gTSpan:
		return "tspan"
	case *gImage:
		return "image"
	case *gStyle:
		return "style"
	default:
		return ""
	}
}

// document is the root <svg> element.
type document struct {
	XMLName             xml.Name `xml:"svg"`
	Width               string   `xml:"width,attr"`
	Height              string   `xml:"height,attr"`
	ViewBox             string   `xml:"viewBox,attr"`
	PreserveAspectRatio string   `xml:"preserveAspectRatio,attr"`
	Children            []docElement `xml:",any"`
}
