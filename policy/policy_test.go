package policy_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svg2pptx/svg2pptx/ir"
	"github.com/svg2pptx/svg2pptx/policy"
)

func TestFilterStrategyNativeForStraightKnownChain(t *testing.T) {
	e := policy.New(policy.Balanced, policy.Thresholds{})
	chain := ir.FilterChain{Primitives: []ir.FilterPrimitive{
		{Kind: ir.FilterGaussianBlur, Inputs: []string{"SourceGraphic"}},
	}}
	assert.Equal(t, policy.Native, e.FilterStrategy(chain))
}

func TestFilterStrategyVectorFallbackForFanOut(t *testing.T) {
	e := policy.New(policy.Balanced, policy.Thresholds{})
	chain := ir.FilterChain{Primitives: []ir.FilterPrimitive{
		{Kind: ir.FilterGaussianBlur, Inputs: []string{"SourceGraphic"}, Result: "blur"},
		{Kind: ir.FilterOffset, Inputs: []string{"blur"}, Result: "off"},
		{Kind: ir.FilterComposite, Inputs: []string{"blur", "off"}},
	}}
	assert.Equal(t, policy.VectorFallback, e.FilterStrategy(chain))
}

func TestFilterStrategyRasterForTurbulence(t *testing.T) {
	e := policy.New(policy.Balanced, policy.Thresholds{})
	chain := ir.FilterChain{Primitives: []ir.FilterPrimitive{
		{Kind: ir.FilterTurbulence, Inputs: []string{"SourceGraphic"}},
	}}
	assert.Equal(t, policy.Raster, e.FilterStrategy(chain))
}

func TestFilterStrategyCompatibilityRejectsMultiPrimitiveNative(t *testing.T) {
	e := policy.New(policy.Compatibility, policy.Thresholds{})
	chain := ir.FilterChain{Primitives: []ir.FilterPrimitive{
		{Kind: ir.FilterGaussianBlur, Inputs: []string{"SourceGraphic"}, Result: "b"},
		{Kind: ir.FilterOffset, Inputs: []string{"b"}},
	}}
	assert.Equal(t, policy.VectorFallback, e.FilterStrategy(chain))
}

func TestGradientStrategyNativeUnderThreshold(t *testing.T) {
	e := policy.New(policy.Balanced, policy.Thresholds{})
	stops := make([]ir.GradientStop, 3)
	decision := e.GradientStrategy(stops)
	assert.Equal(t, policy.Native, decision.Strategy)
	assert.Len(t, decision.KeptStops, 3)
}

func TestGradientStrategyMergesDownToThreshold(t *testing.T) {
	e := policy.New(policy.Balanced, policy.Thresholds{MaxGradientStops: 3})
	stops := []ir.GradientStop{
		{Offset: 0, Color: color.RGBA{R: 255, A: 255}},
		{Offset: 0.2, Color: color.RGBA{R: 250, A: 255}},
		{Offset: 0.4, Color: color.RGBA{R: 0, G: 255, A: 255}},
		{Offset: 0.6, Color: color.RGBA{G: 250, A: 255}},
		{Offset: 1, Color: color.RGBA{B: 255, A: 255}},
	}
	decision := e.GradientStrategy(stops)
	assert.Equal(t, policy.Native, decision.Strategy)
	assert.LessOrEqual(t, len(decision.KeptStops), 3)
	assert.Equal(t, 0, decision.KeptStops[0])
	assert.Equal(t, len(stops)-1, decision.KeptStops[len(decision.KeptStops)-1])
}

func TestClipStrategyNativeForAxisAlignedRect(t *testing.T) {
	e := policy.New(policy.Balanced, policy.Thresholds{})
	s := e.ClipStrategy(policy.ClipGeometry{AxisAlignedRect: true, SegmentCount: 10000})
	assert.Equal(t, policy.Native, s)
}

func TestClipStrategyRasterBeyondSegmentThreshold(t *testing.T) {
	e := policy.New(policy.Balanced, policy.Thresholds{MaxClipSegments: 10})
	s := e.ClipStrategy(policy.ClipGeometry{SegmentCount: 11})
	assert.Equal(t, policy.Raster, s)
}

func TestEscalateFilterLadder(t *testing.T) {
	assert.Equal(t, policy.VectorFallback, policy.EscalateFilter(policy.Native))
	assert.Equal(t, policy.Raster, policy.EscalateFilter(policy.VectorFallback))
}

func TestMultiPageSplitThreshold(t *testing.T) {
	e := policy.New(policy.Balanced, policy.Thresholds{})
	assert.True(t, e.MultiPageSplit(3.5, 2.0))
	assert.False(t, e.MultiPageSplit(1.5, 2.0))
}
