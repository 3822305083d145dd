package attrtypes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/attrtypes"
)

func TestLengthParsesUnit(t *testing.T) {
	var l attrtypes.Length
	require.NoError(t, l.UnmarshalText([]byte("12px")))
	assert.Equal(t, 12.0, l.Value)
	assert.Equal(t, "px", l.Units)
}

func TestLengthZeroHasNoUnit(t *testing.T) {
	var l attrtypes.Length
	require.NoError(t, l.UnmarshalText([]byte("0")))
	assert.Equal(t, attrtypes.Length{}, l)
}

func TestLengthPercentage(t *testing.T) {
	var lp attrtypes.LengthPercentage
	require.NoError(t, lp.UnmarshalText([]byte("50%")))
	assert.Equal(t, 0.5, lp.Percentage)
}

func TestColorHex3(t *testing.T) {
	var c attrtypes.Color
	require.NoError(t, c.UnmarshalText([]byte("#f00")))
	r, g, b, a := c.Value.RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestColorRGBFunction(t *testing.T) {
	var c attrtypes.Color
	require.NoError(t, c.UnmarshalText([]byte("rgb(0,128,255)")))
	r, g, b, _ := c.Value.RGBA()
	assert.Equal(t, uint32(0), r)
	assert.InDelta(t, 128, float64(g>>8), 1)
	assert.InDelta(t, 255, float64(b>>8), 1)
}

func TestColorNamedKeyword(t *testing.T) {
	var c attrtypes.Color
	require.NoError(t, c.UnmarshalText([]byte("steelblue")))
	assert.NotNil(t, c.Value)
}

func TestPaintURLReference(t *testing.T) {
	var p attrtypes.Paint
	require.NoError(t, p.UnmarshalText([]byte("url(#grad1)")))
	assert.Equal(t, "grad1", p.URL)
}

func TestPaintNone(t *testing.T) {
	var p attrtypes.Paint
	require.NoError(t, p.UnmarshalText([]byte("none")))
	r, g, b, a := p.Color.RGBA()
	assert.Equal(t, [4]uint32{0, 0, 0, 0}, [4]uint32{r, g, b, a})
}

func TestFontFamilyMultiple(t *testing.T) {
	var ff attrtypes.FontFamily
	require.NoError(t, ff.UnmarshalText([]byte(`"Helvetica Neue", Arial, sans-serif`)))
	assert.Equal(t, []string{"Helvetica Neue", "Arial", "sans-serif"}, ff.Values)
}

func TestDashArrayNone(t *testing.T) {
	var d attrtypes.DashArray
	require.NoError(t, d.UnmarshalText([]byte("none")))
	assert.Nil(t, d.Values)
}

func TestDashArrayValues(t *testing.T) {
	var d attrtypes.DashArray
	require.NoError(t, d.UnmarshalText([]byte("4, 2, 1")))
	assert.Len(t, d.Values, 3)
	assert.Equal(t, 4.0, d.Values[0].Length.Value)
}

func TestVectorEffectNonScalingStroke(t *testing.T) {
	var v attrtypes.VectorEffect
	require.NoError(t, v.UnmarshalText([]byte("non-scaling-stroke")))
	assert.Equal(t, attrtypes.VectorEffectNonScalingStroke, v)
}

func TestFilterListRef(t *testing.T) {
	var f attrtypes.FilterList
	require.NoError(t, f.UnmarshalText([]byte("url(#blur1)")))
	assert.Equal(t, "blur1", f.Ref)
}

func TestClipPathRefNone(t *testing.T) {
	var c attrtypes.ClipPathRef
	require.NoError(t, c.UnmarshalText([]byte("none")))
	assert.Equal(t, "", c.Ref)
}
