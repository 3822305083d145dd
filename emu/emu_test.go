package emu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/emu"
)

func ctx96() emu.Context {
	return emu.Context{ViewportWidthEMU: 9144000, ViewportHeightEMU: 6858000, DPI: 96}
}

func TestPxAt96DPI(t *testing.T) {
	got, err := emu.ToFractionalEMU(emu.Length{Value: 1, Unit: "px"}, emu.AxisNone, ctx96())
	require.NoError(t, err)
	assert.InDelta(t, emu.PerPx96, got, 1e-9)
}

func TestInch(t *testing.T) {
	got, err := emu.ToFractionalEMU(emu.Length{Value: 1, Unit: "in"}, emu.AxisNone, ctx96())
	require.NoError(t, err)
	assert.InDelta(t, emu.PerInch, got, 1e-9)
}

func TestPointRoundTrip(t *testing.T) {
	ctx := ctx96()
	for _, e := range []float64{0, 100, 12700, 914400, 500000.25} {
		pt := e / emu.PerPt
		got, err := emu.ToFractionalEMU(emu.Length{Value: pt, Unit: "pt"}, emu.AxisNone, ctx)
		require.NoError(t, err)
		assert.InDelta(t, e, got, 1.0)
	}
}

func TestPercentResolvesAgainstAxis(t *testing.T) {
	ctx := ctx96()
	x, err := emu.ToFractionalEMU(emu.Length{Value: 50, Unit: "%"}, emu.AxisX, ctx)
	require.NoError(t, err)
	assert.InDelta(t, ctx.ViewportWidthEMU/2, x, 1e-9)

	y, err := emu.ToFractionalEMU(emu.Length{Value: 50, Unit: "%"}, emu.AxisY, ctx)
	require.NoError(t, err)
	assert.InDelta(t, ctx.ViewportHeightEMU/2, y, 1e-9)
}

func TestOutOfRange(t *testing.T) {
	_, err := emu.ToFractionalEMU(emu.Length{Value: 2000, Unit: "in"}, emu.AxisNone, ctx96())
	var convErr *emu.Error
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, emu.KindOutOfRange, convErr.Kind)
}

func TestUnsupportedUnit(t *testing.T) {
	_, err := emu.ToFractionalEMU(emu.Length{Value: 1, Unit: "vh"}, emu.AxisNone, ctx96())
	var convErr *emu.Error
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, emu.KindUnsupportedUnit, convErr.Kind)
}

func TestRoundHalfEven(t *testing.T) {
	assert.Equal(t, int64(2), emu.RoundHalfEven(2.5))
	assert.Equal(t, int64(4), emu.RoundHalfEven(3.5))
	assert.Equal(t, int64(-2), emu.RoundHalfEven(-2.5))
}

func TestBatchMatchesScalar(t *testing.T) {
	ctx := ctx96()
	values := make([]float64, 150)
	units := make([]string, 150)
	for i := range values {
		values[i] = float64(i)
		units[i] = "px"
	}
	batch, err := emu.ToFractionalEMUBatch(values, units, emu.AxisNone, ctx)
	require.NoError(t, err)
	for i := range values {
		scalar, err := emu.ToFractionalEMU(emu.Length{Value: values[i], Unit: units[i]}, emu.AxisNone, ctx)
		require.NoError(t, err)
		assert.Equal(t, scalar, batch[i])
	}
}
