package parser

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svg2pptx/svg2pptx/attrtypes"
	"github.com/svg2pptx/svg2pptx/ir"
)

func TestDefaultStyleFillsBlackNonZero(t *testing.T) {
	s := defaultStyle()
	assert.True(t, s.fillSet)
	assert.Equal(t, color.Black, s.fill.Color)
	assert.Equal(t, ir.NonZero, s.fillRule)
	assert.False(t, s.strokeSet)
}

func TestDeriveInheritsUnsetFields(t *testing.T) {
	parent := defaultStyle()
	child := parent.derive(&elementAttributes{})
	assert.Equal(t, parent.fill, child.fill)
	assert.Equal(t, parent.fontFamily, child.fontFamily)
}

func TestDeriveOverridesFill(t *testing.T) {
	parent := defaultStyle()
	red := attrtypes.Paint{Color: color.RGBA{R: 255, A: 255}}
	child := parent.derive(&elementAttributes{Fill: &red})
	assert.Equal(t, red, child.fill)
}

func TestDeriveOpacityIsNotInherited(t *testing.T) {
	parent := defaultStyle()
	half := 0.5
	child := parent.derive(&elementAttributes{Opacity: &half})
	// Opacity lives on ir.Group per element, not on computedStyle at all.
	assert.Equal(t, parent.opacity, child.opacity)
}

func TestDeriveStrokeDasharray(t *testing.T) {
	parent := defaultStyle()
	dash := attrtypes.DashArray{Values: []attrtypes.LengthPercentage{
		{Length: attrtypes.Length{Value: 4}},
		{Length: attrtypes.Length{Value: 2}},
	}}
	child := parent.derive(&elementAttributes{StrokeDasharray: &dash})
	assert.Equal(t, []float64{4, 2}, child.strokeDasharray)
}

func TestStrokeIRNilWhenNotSet(t *testing.T) {
	s := defaultStyle()
	st := &parserState{gradients: map[string]ir.Paint{}}
	assert.Nil(t, s.strokeIR(st))
}

func TestStrokeIRResolvesColorAndWidth(t *testing.T) {
	s := defaultStyle()
	s.strokeSet = true
	s.strokeWidth = 2
	s.strokePaint = attrtypes.Paint{Color: color.RGBA{B: 255, A: 255}}
	s.strokeOpacity = 1

	st := &parserState{gradients: map[string]ir.Paint{}}
	stroke := s.strokeIR(st)
	if assert.NotNil(t, stroke) {
		assert.Equal(t, 2.0, stroke.Width)
		assert.Equal(t, ir.PaintSolid, stroke.Color.Kind)
	}
}

func TestResolvePaintURLReferencesGradientTable(t *testing.T) {
	st := &parserState{gradients: map[string]ir.Paint{
		"grad1": {Kind: ir.PaintLinearGradient},
	}}
	paint := attrtypes.Paint{URL: "#grad1"}
	resolved := st.resolvePaint(paint, 1)
	assert.Equal(t, ir.PaintLinearGradient, resolved.Kind)
}

func TestResolvePaintUnresolvedURLFallsBackToNone(t *testing.T) {
	st := &parserState{gradients: map[string]ir.Paint{}}
	paint := attrtypes.Paint{URL: "#missing"}
	resolved := st.resolvePaint(paint, 1)
	assert.Equal(t, ir.PaintNone, resolved.Kind)
}

func TestResolvePaintTransparentIsNone(t *testing.T) {
	st := &parserState{gradients: map[string]ir.Paint{}}
	paint := attrtypes.Paint{Color: color.Transparent}
	resolved := st.resolvePaint(paint, 1)
	assert.Equal(t, ir.PaintNone, resolved.Kind)
}
