// Package viewport computes the root viewport matrix from an SVG
// document's viewBox/preserveAspectRatio against the target slide's EMU
// dimensions. See spec §4.4.
package viewport

import (
	"strconv"
	"strings"

	"github.com/svg2pptx/svg2pptx/matrix"
)

// Box is a parsed `viewBox` attribute.
type Box struct {
	MinX, MinY, Width, Height float64
}

// ParseBox parses a `viewBox="min-x min-y width height"` attribute
// value. Components may be separated by whitespace and/or commas.
func ParseBox(s string) (Box, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return Box{}, false
	}
	vals := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Box{}, false
		}
		vals[i] = v
	}
	return Box{MinX: vals[0], MinY: vals[1], Width: vals[2], Height: vals[3]}, true
}

// Align is the two-axis alignment selected by preserveAspectRatio.
type Align int

const (
	AlignMid Align = iota
	AlignMin
	AlignMax
)

// MeetOrSlice selects the `meet`/`slice`/`none` scaling rule.
type MeetOrSlice int

const (
	Meet MeetOrSlice = iota
	Slice
	None
)

// PreserveAspectRatio is a parsed `preserveAspectRatio` attribute.
type PreserveAspectRatio struct {
	AlignX      Align
	AlignY      Align
	MeetOrSlice MeetOrSlice
}

// DefaultPreserveAspectRatio is "xMidYMid meet", the SVG default.
var DefaultPreserveAspectRatio = PreserveAspectRatio{AlignX: AlignMid, AlignY: AlignMid, MeetOrSlice: Meet}

// ParsePreserveAspectRatio parses a `preserveAspectRatio` attribute
// value such as "xMinYMax slice". An empty string yields the default.
func ParsePreserveAspectRatio(s string) PreserveAspectRatio {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPreserveAspectRatio
	}

	fields := strings.Fields(s)
	par := DefaultPreserveAspectRatio
	for _, f := range fields {
		switch f {
		case "none":
			par.MeetOrSlice = None
			return par
		case "meet":
			par.MeetOrSlice = Meet
		case "slice":
			par.MeetOrSlice = Slice
		default:
			if len(f) == 8 && strings.HasPrefix(f, "x") {
				par.AlignX = alignFromToken(f[1:4])
				par.AlignY = alignFromToken(f[5:8])
			}
		}
	}
	return par
}

func alignFromToken(tok string) Align {
	switch tok {
	case "Min":
		return AlignMin
	case "Max":
		return AlignMax
	default:
		return AlignMid
	}
}

// Resolve computes the viewport matrix per spec §4.4: parse viewBox
// (falling back to (0,0,widthPx,heightPx) if absent), compute per-axis
// scale against the slide's EMU dimensions, choose a uniform or
// non-uniform scale factor per preserveAspectRatio, and translate for
// alignment. A degenerate viewBox (zero width or height) yields the
// identity matrix (spec's documented "degenerate document, warn" case);
// the second return value reports whether the viewBox was degenerate.
func Resolve(box Box, hasBox bool, widthPx, heightPx, slideWidthEMU, slideHeightEMU float64, par PreserveAspectRatio) (matrix.Matrix, bool) {
	if !hasBox {
		box = Box{Width: widthPx, Height: heightPx}
	}
	if box.Width == 0 || box.Height == 0 {
		return matrix.Identity, true
	}

	scaleX := slideWidthEMU / box.Width
	scaleY := slideHeightEMU / box.Height

	var sx, sy float64
	switch par.MeetOrSlice {
	case None:
		sx, sy = scaleX, scaleY
	case Slice:
		s := scaleX
		if scaleY > s {
			s = scaleY
		}
		sx, sy = s, s
	default: // Meet
		s := scaleX
		if scaleY < s {
			s = scaleY
		}
		sx, sy = s, s
	}

	contentW, contentH := box.Width*sx, box.Height*sy
	offsetX := alignOffset(par.AlignX, slideWidthEMU, contentW)
	offsetY := alignOffset(par.AlignY, slideHeightEMU, contentH)

	m := matrix.Translation(offsetX, offsetY).
		Compose(matrix.Scaling(sx, sy)).
		Compose(matrix.Translation(-box.MinX, -box.MinY))
	return m, false
}

func alignOffset(align Align, slideDim, contentDim float64) float64 {
	switch align {
	case AlignMin:
		return 0
	case AlignMax:
		return slideDim - contentDim
	default: // Mid
		return (slideDim - contentDim) / 2
	}
}
