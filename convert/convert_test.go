package convert_test

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/convert"
)

func TestConvertSimpleRectProducesValidPPTX(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">
		<rect x="10" y="20" width="30" height="40" fill="#ff0000"/>
	</svg>`)

	result, err := convert.Convert(svg, convert.Config{})
	require.NoError(t, err)
	require.NotEmpty(t, result.PPTXBytes)
	assert.Equal(t, 1, result.Metrics.SlideCount)

	zr, err := zip.NewReader(bytes.NewReader(result.PPTXBytes), int64(len(result.PPTXBytes)))
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["ppt/slides/slide1.xml"])
	assert.True(t, names["[Content_Types].xml"])
}

func TestConvertEmptySVGProducesSingleEmptySlide(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10" width="10" height="10"></svg>`)
	result, err := convert.Convert(svg, convert.Config{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Metrics.SlideCount)
}

func TestConvertMalformedXMLReturnsParseError(t *testing.T) {
	_, err := convert.Convert([]byte(`<svg><rect></svg>`), convert.Config{})
	assert.Error(t, err)
}

func TestConvertAppliesDefaultSlideDimensions(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10" width="10" height="10">
		<circle cx="5" cy="5" r="2"/>
	</svg>`)
	result, err := convert.Convert(svg, convert.Config{})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(result.PPTXBytes), int64(len(result.PPTXBytes)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "ppt/presentation.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `cx="9144000" cy="6858000"`)
	}
}

func TestConvertCustomOutputTargetIsHonored(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10" width="10" height="10">
		<rect x="0" y="0" width="5" height="5"/>
	</svg>`)
	_, err := convert.Convert(svg, convert.Config{OutputTarget: 3})
	assert.NoError(t, err)
}

func TestConvertAxisAlignedClipRectShrinksChildBoundsNatively(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">
		<defs><clipPath id="c1"><rect x="0" y="0" width="20" height="20"/></clipPath></defs>
		<rect x="0" y="0" width="50" height="50" fill="#00ff00" clip-path="url(#c1)"/>
	</svg>`)
	result, err := convert.Convert(svg, convert.Config{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Metrics.ClipEscalations)
	assert.NotEmpty(t, result.PPTXBytes)
}

func TestConvertPolygonClipEscalatesToCustGeomNotRaster(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">
		<defs><clipPath id="c1"><polygon points="0,0 20,0 10,20"/></clipPath></defs>
		<rect x="0" y="0" width="50" height="50" fill="#00ff00" clip-path="url(#c1)"/>
	</svg>`)
	result, err := convert.Convert(svg, convert.Config{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.PPTXBytes)

	zr, err := zip.NewReader(bytes.NewReader(result.PPTXBytes), int64(len(result.PPTXBytes)))
	require.NoError(t, err)
	for _, f := range zr.File {
		assert.NotContains(t, f.Name, "ppt/media/")
	}
}

func TestConvertUnresolvedClipRefFallsBackToPlainChildren(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10" width="10" height="10">
		<rect x="0" y="0" width="5" height="5" clip-path="url(#missing)"/>
	</svg>`)
	result, err := convert.Convert(svg, convert.Config{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Metrics.ClipEscalations)
	assert.NotEmpty(t, result.PPTXBytes)
}

func TestConvertTextRunGetsNonZeroBBoxFromFontService(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">
		<text x="10" y="20" font-size="12">hello</text>
	</svg>`)
	result, err := convert.Convert(svg, convert.Config{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.PPTXBytes)
	assert.Empty(t, result.Errors)
}

func TestConvertMissingFontFamilyUnderErrorPolicySurfacesRecoverableError(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">
		<text x="10" y="20" font-family="DefinitelyNotInstalled9000" font-size="12">hi</text>
	</svg>`)
	result, err := convert.Convert(svg, convert.Config{FontMissing: convert.FontError})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Errors)
}
