package filter_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/filter"
	"github.com/svg2pptx/svg2pptx/ir"
)

func TestNativeEffectListGaussianBlur(t *testing.T) {
	chain := ir.FilterChain{Primitives: []ir.FilterPrimitive{
		{Kind: ir.FilterGaussianBlur, StdDeviationX: 2, StdDeviationY: 2},
	}}
	frag, ok := filter.NativeEffectList(chain)
	require.True(t, ok)
	assert.Contains(t, frag, "<a:blur")
}

func TestNativeEffectListDropShadowSubDAG(t *testing.T) {
	chain := ir.FilterChain{Primitives: []ir.FilterPrimitive{
		{Kind: ir.FilterOffset, DX: 3, DY: 3, Result: "o"},
		{Kind: ir.FilterGaussianBlur, Inputs: []string{"o"}, StdDeviationX: 2, Result: "b"},
		{Kind: ir.FilterFlood, FloodColor: color.Black, FloodOpacity: 0.5, Result: "f"},
		{Kind: ir.FilterComposite, Inputs: []string{"f", "b"}, Operator: "in"},
	}}
	frag, ok := filter.NativeEffectList(chain)
	require.True(t, ok)
	assert.Contains(t, frag, "<a:outerShdw")
}

func TestNativeEffectListUnrecognizedChainNotOK(t *testing.T) {
	chain := ir.FilterChain{Primitives: []ir.FilterPrimitive{
		{Kind: ir.FilterTurbulence},
		{Kind: ir.FilterMorphology},
	}}
	_, ok := filter.NativeEffectList(chain)
	assert.False(t, ok)
}

func TestRasterizeGaussianBlurReturnsSameBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	chain := ir.FilterChain{Primitives: []ir.FilterPrimitive{
		{Kind: ir.FilterGaussianBlur, StdDeviationX: 1.5},
	}}
	out, warnings := filter.Rasterize(chain, src)
	assert.Empty(t, warnings)
	assert.Equal(t, src.Bounds(), out.Bounds())
}

func TestRasterizeUnknownPrimitiveWarnsAndNoOps(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	chain := ir.FilterChain{Primitives: []ir.FilterPrimitive{
		{Kind: ir.FilterTurbulence},
	}}
	_, warnings := filter.Rasterize(chain, src)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "no-op")
}

func TestRasterizeFloodFillsSolidColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	chain := ir.FilterChain{Primitives: []ir.FilterPrimitive{
		{Kind: ir.FilterFlood, FloodColor: color.RGBA{R: 255, A: 255}, FloodOpacity: 1},
	}}
	out, warnings := filter.Rasterize(chain, src)
	assert.Empty(t, warnings)
	r, _, _, a := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestVectorEMFProducesValidHeaderSignature(t *testing.T) {
	p := &ir.PathShape{Segments: []ir.Segment{
		{Kind: ir.SegMoveTo, To: ir.Point{X: 0, Y: 0}},
		{Kind: ir.SegLineTo, To: ir.Point{X: 10, Y: 0}},
		{Kind: ir.SegLineTo, To: ir.Point{X: 10, Y: 10}},
		{Kind: ir.SegClose},
	}}
	data := filter.VectorEMF([]*ir.PathShape{p}, ir.Rect{Width: 100, Height: 100})
	require.GreaterOrEqual(t, len(data), 88+20)
	assert.Equal(t, []byte{0x20, 0x45, 0x4d, 0x46}, data[40:44])
}

func TestEncodePNGProducesNonEmptyBytes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	data, err := filter.EncodePNG(img)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
