// Package ir defines the Intermediate Representation: a tagged-variant
// scene graph produced by the parser, consumed by mappers. All
// coordinates are pre-baked into the slide's EMU frame — no IR node
// stores a transform, matching spec §3.2/§9's redesign away from a
// per-node transform field.
//
// Shape follows the teacher's elements.go Element-interface-plus-
// concrete-struct pattern (one struct per element kind, one marker
// method), retargeted from raw SVG attributes to baked scene geometry.
package ir

import "image/color"

// Node is any scene element. isNode is unexported so the variant set
// is closed to this package, mirroring the teacher's Element.isElement().
type Node interface {
	isNode()
}

// Point is a location in the slide's EMU frame.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in the slide's EMU frame.
type Rect struct {
	X, Y, Width, Height float64
}

// FillRule selects the interior test for a PathShape.
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// SpreadMethod controls gradient extension past [0,1].
type SpreadMethod int

const (
	Pad SpreadMethod = iota
	Reflect
	Repeat
)

// GradientStop is one color stop of a gradient. Offsets are clamped to
// [0,1] and stops are kept sorted by offset by the parser; duplicate
// offsets are preserved as-is to produce a hard color boundary.
type GradientStop struct {
	Offset  float64
	Color   color.Color
	Opacity float64
}

// PaintKind discriminates the Paint union.
type PaintKind int

const (
	PaintNone PaintKind = iota
	PaintSolid
	PaintLinearGradient
	PaintRadialGradient
	PaintPattern
)

// Paint is the tagged Paint union from spec §3.2. Only the fields
// relevant to Kind are populated.
type Paint struct {
	Kind PaintKind

	Solid color.Color

	Stops        []GradientStop
	SpreadMethod SpreadMethod

	// LinearGradient
	P0, P1 Point

	// RadialGradient
	Focal, Center Point
	Radius        float64

	// Pattern
	PatternRef string
	PatternBBox Rect
}

// LineCap selects stroke end-cap rendering.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin selects stroke corner rendering.
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// Stroke is a resolved stroke paint per spec §3.2.
type Stroke struct {
	Color      Paint
	Width      float64
	Dash       []float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
}

// SegmentKind discriminates PathShape segments.
type SegmentKind int

const (
	SegMoveTo SegmentKind = iota
	SegLineTo
	SegCubicBezier
	SegClose
)

// Segment is one command of a PathShape. Quadratic Beziers are
// promoted to cubic by the parser per spec §3.2, so only CubicBezier
// appears here; CP1/CP2 are populated for SegCubicBezier.
type Segment struct {
	Kind     SegmentKind
	To       Point
	CP1, CP2 Point
}

// Circle is a baked, axis-unrotated circle.
type Circle struct {
	Center  Point
	Radius  float64
	Paint   Paint
	Stroke  *Stroke
	Opacity float64
}

func (*Circle) isNode() {}

// Ellipse is a baked ellipse (the non-uniform-scale case of a circle,
// or a native SVG ellipse).
type Ellipse struct {
	Center  Point
	RX, RY  float64
	Paint   Paint
	Stroke  *Stroke
	Opacity float64
}

func (*Ellipse) isNode() {}

// Rectangle is a baked axis-aligned rectangle, optionally rounded.
type Rectangle struct {
	Bounds        Rect
	CornerRadius  float64
	Paint         Paint
	Stroke        *Stroke
	Opacity       float64
}

func (*Rectangle) isNode() {}

// PathShape is a baked sequence of path segments.
type PathShape struct {
	Segments []Segment
	Paint    Paint
	Stroke   *Stroke
	Opacity  float64
	FillRule FillRule
}

func (*PathShape) isNode() {}

// FontVariant names a resolved font family/weight/style triple.
type FontVariant struct {
	Family string
	Weight int // CSS-style weight, 400 = normal, 700 = bold
	Italic bool
}

// TextSpan is one run of uniformly-styled text within a TextRun line.
type TextSpan struct {
	Text        string
	FontVariant FontVariant
	SizePt      float64
	Fill        Paint
	Bold        bool
	Italic      bool
}

// TextRun is a baked line of text, anchored at Position in the slide
// frame, with BBox pre-computed from font metrics at parse/map time.
type TextRun struct {
	Position Point
	Runs     []TextSpan
	BBox     Rect
}

func (*TextRun) isNode() {}

// Group is a baked container. ClipRef/FilterRef name entries in the
// scene's clip-path/filter-chain tables; empty means none.
type Group struct {
	Children  []Node
	ClipRef   string
	FilterRef string
	Opacity   float64
}

func (*Group) isNode() {}

// ImageSourceKind discriminates Image.Source.
type ImageSourceKind int

const (
	ImageEmbedded ImageSourceKind = iota
	ImageDataURI
)

// ImageSource is the tagged {EmbeddedBytes | DataUri} union from spec §3.2.
type ImageSource struct {
	Kind ImageSourceKind
	Mime string
	Data []byte
	URI  string
}

// Image is a baked raster image placement.
type Image struct {
	Bounds         Rect
	Source         ImageSource
	PreserveAspect bool
}

func (*Image) isNode() {}

// FilterPrimitiveKind enumerates the FilterChain primitive variants.
type FilterPrimitiveKind int

const (
	FilterGaussianBlur FilterPrimitiveKind = iota
	FilterOffset
	FilterColorMatrix
	FilterComposite
	FilterMerge
	FilterMorphology
	FilterTurbulence
	FilterDropShadow
	FilterFlood
	FilterImage
)

// FilterPrimitive is one stage of a FilterChain. Inputs name prior
// results by symbolic handle ("SourceGraphic", "SourceAlpha", or a
// named result); Result, if non-empty, registers this stage's output
// under that name for later primitives to reference.
type FilterPrimitive struct {
	Kind   FilterPrimitiveKind
	Inputs []string
	Result string

	StdDeviationX, StdDeviationY float64 // GaussianBlur
	DX, DY                       float64 // Offset / DropShadow
	Matrix                       [20]float64 // ColorMatrix
	Operator                     string      // Composite
	Radius                       float64     // Morphology
	BaseFrequency                float64     // Turbulence
	NumOctaves                   int         // Turbulence
	Seed                         int64       // Turbulence
	FloodColor                   color.Color // Flood / DropShadow
	FloodOpacity                 float64
}

// FilterChain is an ordered list of primitives; the last primitive's
// Result (or "SourceGraphic" if empty) is the chain's output.
type FilterChain struct {
	Primitives []FilterPrimitive
}

// ClipPathKind discriminates ClipPath.
type ClipPathKind int

const (
	ClipShapes ClipPathKind = iota
	ClipRef
)

// ClipPath is either a set of IR shapes used as a mask, or a reference
// to another named clip-path.
type ClipPath struct {
	Kind     ClipPathKind
	Shapes   []Node
	FillRule FillRule
	Ref      string
}

// Scene is the root of a converted document: the shape tree plus the
// named tables referenced by Group.ClipRef and Group.FilterRef.
type Scene struct {
	Root    *Group
	Clips   map[string]ClipPath
	Filters map[string]FilterChain
}
