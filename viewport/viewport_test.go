package viewport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svg2pptx/svg2pptx/matrix"
	"github.com/svg2pptx/svg2pptx/viewport"
)

func TestParseBoxBasic(t *testing.T) {
	box, ok := viewport.ParseBox("0 0 100 100")
	assert.True(t, ok)
	assert.Equal(t, viewport.Box{MinX: 0, MinY: 0, Width: 100, Height: 100}, box)
}

func TestParseBoxCommaSeparated(t *testing.T) {
	box, ok := viewport.ParseBox("10, 20, 200, 300")
	assert.True(t, ok)
	assert.Equal(t, viewport.Box{MinX: 10, MinY: 20, Width: 200, Height: 300}, box)
}

func TestParseBoxWrongFieldCount(t *testing.T) {
	_, ok := viewport.ParseBox("0 0 100")
	assert.False(t, ok)
}

func TestParsePreserveAspectRatioDefault(t *testing.T) {
	par := viewport.ParsePreserveAspectRatio("")
	assert.Equal(t, viewport.DefaultPreserveAspectRatio, par)
}

func TestParsePreserveAspectRatioNone(t *testing.T) {
	par := viewport.ParsePreserveAspectRatio("none")
	assert.Equal(t, viewport.None, par.MeetOrSlice)
}

func TestParsePreserveAspectRatioXMinYMaxSlice(t *testing.T) {
	par := viewport.ParsePreserveAspectRatio("xMinYMax slice")
	assert.Equal(t, viewport.AlignMin, par.AlignX)
	assert.Equal(t, viewport.AlignMax, par.AlignY)
	assert.Equal(t, viewport.Slice, par.MeetOrSlice)
}

// TestResolveScenarioA matches spec Scenario A: a 100x100 viewBox mapped
// onto a 9144000x6858000 EMU (10in x 7.5in) slide with the default
// xMidYMid meet alignment: scale = min(9144000/100, 6858000/100) = 68580,
// and the narrower axis (x here, since slide is wider than tall relative
// to a square viewBox) is centered: offset_x = (9144000-100*68580)/2 = 1143000.
func TestResolveScenarioA(t *testing.T) {
	box := viewport.Box{MinX: 0, MinY: 0, Width: 100, Height: 100}
	m, degenerate := viewport.Resolve(box, true, 100, 100, 9144000, 6858000, viewport.DefaultPreserveAspectRatio)
	assert.False(t, degenerate)

	origin := m.TransformPoint(matrix.Point{X: 0, Y: 0})
	assert.InDelta(t, 1143000, origin.X, 1e-6)
	assert.InDelta(t, 0, origin.Y, 1e-6)

	corner := m.TransformPoint(matrix.Point{X: 100, Y: 100})
	assert.InDelta(t, 1143000+100*68580, corner.X, 1e-6)
	assert.InDelta(t, 100*68580, corner.Y, 1e-6)
}

func TestResolveMissingViewBoxFallsBackToPixelSize(t *testing.T) {
	m, degenerate := viewport.Resolve(viewport.Box{}, false, 200, 100, 9144000, 6858000, viewport.DefaultPreserveAspectRatio)
	assert.False(t, degenerate)
	assert.False(t, m.IsIdentity(1e-9))
}

func TestResolveDegenerateViewBoxIsIdentity(t *testing.T) {
	box := viewport.Box{Width: 0, Height: 0}
	m, degenerate := viewport.Resolve(box, true, 100, 100, 9144000, 6858000, viewport.DefaultPreserveAspectRatio)
	assert.True(t, degenerate)
	assert.True(t, m.IsIdentity(1e-12))
}

func TestResolveNoneStretchesBothAxesIndependently(t *testing.T) {
	box := viewport.Box{Width: 100, Height: 50}
	par := viewport.PreserveAspectRatio{AlignX: viewport.AlignMid, AlignY: viewport.AlignMid, MeetOrSlice: viewport.None}
	m, _ := viewport.Resolve(box, true, 100, 50, 1000, 1000, par)
	corner := m.TransformPoint(matrix.Point{X: 100, Y: 50})
	assert.InDelta(t, 1000, corner.X, 1e-9)
	assert.InDelta(t, 1000, corner.Y, 1e-9)
}

func TestResolveSliceFillsBothAxesUniformly(t *testing.T) {
	box := viewport.Box{Width: 100, Height: 50}
	par := viewport.PreserveAspectRatio{AlignX: viewport.AlignMid, AlignY: viewport.AlignMid, MeetOrSlice: viewport.Slice}
	m, _ := viewport.Resolve(box, true, 100, 50, 1000, 1000, par)
	corner := m.TransformPoint(matrix.Point{X: 100, Y: 50})
	// scale = max(1000/100, 1000/50) = 20; content is 2000x1000, centered
	// on the x axis (since slide is only 1000 wide) giving a -500 offset.
	assert.InDelta(t, 1500, corner.X, 1e-9)
	origin := m.TransformPoint(matrix.Point{X: 0, Y: 0})
	assert.InDelta(t, -500, origin.X, 1e-9)
	assert.InDelta(t, 0, origin.Y, 1e-9)
}
