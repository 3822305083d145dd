package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/ir"
)

const slideW, slideH = 9144000.0, 6858000.0

func TestParseSimpleRect(t *testing.T) {
	scene, warnings, err := Parse([]byte(`<svg viewBox="0 0 100 100"><rect x="10" y="10" width="20" height="20" fill="red"/></svg>`), slideW, slideH)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, scene.Root.Children, 1)

	rect, ok := scene.Root.Children[0].(*ir.Rectangle)
	require.True(t, ok)
	assert.Greater(t, rect.Bounds.Width, 0.0)
}

func TestParseNestedGroupInheritsFill(t *testing.T) {
	svg := `<svg viewBox="0 0 100 100"><g fill="blue"><circle cx="50" cy="50" r="10"/></g></svg>`
	scene, _, err := Parse([]byte(svg), slideW, slideH)
	require.NoError(t, err)
	require.Len(t, scene.Root.Children, 1)

	group, ok := scene.Root.Children[0].(*ir.Group)
	require.True(t, ok)
	require.Len(t, group.Children, 1)
	circle, ok := group.Children[0].(*ir.Circle)
	require.True(t, ok)
	assert.Equal(t, ir.PaintSolid, circle.Paint.Kind)
}

func TestParseUseExpandsReferencedElement(t *testing.T) {
	svg := `<svg viewBox="0 0 100 100">
		<defs><circle id="dot" cx="0" cy="0" r="5"/></defs>
		<use href="#dot" x="10" y="10"/>
	</svg>`
	scene, warnings, err := Parse([]byte(svg), slideW, slideH)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, scene.Root.Children, 1)
	_, ok := scene.Root.Children[0].(*ir.Circle)
	assert.True(t, ok)
}

func TestParseUseUnresolvedReferenceWarns(t *testing.T) {
	svg := `<svg viewBox="0 0 100 100"><use href="#missing"/></svg>`
	scene, warnings, err := Parse([]byte(svg), slideW, slideH)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "UnresolvedUse", warnings[0].Code)
	assert.Empty(t, scene.Root.Children)
}

func TestParseUseCycleIsFatalError(t *testing.T) {
	svg := `<svg viewBox="0 0 100 100">
		<defs>
			<g id="a"><use href="#b"/></g>
			<g id="b"><use href="#a"/></g>
		</defs>
		<use href="#a"/>
	</svg>`
	_, _, err := Parse([]byte(svg), slideW, slideH)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "ParseError", perr.Kind)
}

func TestParseLinearGradientForwardReference(t *testing.T) {
	svg := `<svg viewBox="0 0 100 100">
		<rect x="0" y="0" width="10" height="10" fill="url(#g1)"/>
		<linearGradient id="g1"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
	</svg>`
	scene, _, err := Parse([]byte(svg), slideW, slideH)
	require.NoError(t, err)
	require.Len(t, scene.Root.Children, 1)
	rect := scene.Root.Children[0].(*ir.Rectangle)
	assert.Equal(t, ir.PaintLinearGradient, rect.Paint.Kind)
	require.Len(t, rect.Paint.Stops, 2)
}

func TestParseClipPathWrapsShapeInGroup(t *testing.T) {
	svg := `<svg viewBox="0 0 100 100"><rect x="0" y="0" width="10" height="10" clip-path="url(#c1)"/></svg>`
	scene, _, err := Parse([]byte(svg), slideW, slideH)
	require.NoError(t, err)
	require.Len(t, scene.Root.Children, 1)
	group, ok := scene.Root.Children[0].(*ir.Group)
	require.True(t, ok)
	assert.Equal(t, "c1", group.ClipRef)
	require.Len(t, group.Children, 1)
	_, ok = group.Children[0].(*ir.Rectangle)
	assert.True(t, ok)
}

func TestParseMalformedTransformErrors(t *testing.T) {
	svg := `<svg viewBox="0 0 100 100"><rect x="0" y="0" width="10" height="10" transform="not-a-transform(1)"/></svg>`
	_, _, err := Parse([]byte(svg), slideW, slideH)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "MalformedTransform", perr.Kind)
}

func TestParseStyleElementAppliesClassSelector(t *testing.T) {
	svg := `<svg viewBox="0 0 100 100">
		<style>.hot { fill: red; }</style>
		<rect class="hot" x="0" y="0" width="10" height="10"/>
	</svg>`
	scene, _, err := Parse([]byte(svg), slideW, slideH)
	require.NoError(t, err)
	require.Len(t, scene.Root.Children, 1)
	rect := scene.Root.Children[0].(*ir.Rectangle)
	assert.Equal(t, ir.PaintSolid, rect.Paint.Kind)
}

func TestParseDegenerateViewBoxWarns(t *testing.T) {
	svg := `<svg viewBox="0 0 0 100"><rect x="0" y="0" width="10" height="10"/></svg>`
	_, warnings, err := Parse([]byte(svg), slideW, slideH)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "DegenerateViewBox", warnings[0].Code)
}

func TestParseRotatedRectDemotesToPathShape(t *testing.T) {
	svg := `<svg viewBox="0 0 100 100"><rect x="0" y="0" width="10" height="10" transform="rotate(45)"/></svg>`
	scene, _, err := Parse([]byte(svg), slideW, slideH)
	require.NoError(t, err)
	require.Len(t, scene.Root.Children, 1)
	_, ok := scene.Root.Children[0].(*ir.PathShape)
	assert.True(t, ok)
}

func TestParsePolygonClosesPath(t *testing.T) {
	svg := `<svg viewBox="0 0 100 100"><polygon points="0,0 10,0 10,10"/></svg>`
	scene, _, err := Parse([]byte(svg), slideW, slideH)
	require.NoError(t, err)
	require.Len(t, scene.Root.Children, 1)
	path := scene.Root.Children[0].(*ir.PathShape)
	assert.Equal(t, ir.SegClose, path.Segments[len(path.Segments)-1].Kind)
}
