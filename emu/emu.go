// Package emu converts SVG lengths to fractional EMU (English Metric
// Units), keeping float64 precision until the caller rounds for XML
// serialization. See spec §4.1.
package emu

import (
	"fmt"
	"math"
)

// EMU constants, per spec §3.4.
const (
	PerInch = 914400.0
	PerPt   = 12700.0
	PerPx96 = 9525.0 // 1px at 96 DPI
	PerMM   = PerInch / 25.4
	PerCM   = PerInch / 2.54
)

// MaxCoordinateEMU is the largest valid per-coordinate EMU value (1000in).
const MaxCoordinateEMU = 1000 * PerInch

// Axis selects which viewport dimension a percentage length resolves
// against.
type Axis int

const (
	AxisNone Axis = iota
	AxisX
	AxisY
)

// Context carries the ambient values needed to resolve a Length to EMU.
type Context struct {
	ViewportWidthEMU  float64
	ViewportHeightEMU float64
	DPI               float64
	RootFontSizePx    float64
	ParentFontSizePx  float64
}

// Length is a parsed SVG length: a numeric value plus a unit tag. Unit is
// the empty string for bare (user-unit) numbers and "%" for percentages.
type Length struct {
	Value float64
	Unit  string
}

// Kind identifies the recoverable error categories from spec §4.1/§7.
type Kind int

const (
	KindInvalidLength Kind = iota
	KindUnsupportedUnit
	KindOutOfRange
)

// Error is the recoverable error type raised by this package.
type Error struct {
	Kind  Kind
	Value string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidLength:
		return fmt.Sprintf("emu: invalid length %q", e.Value)
	case KindUnsupportedUnit:
		return fmt.Sprintf("emu: unsupported unit %q", e.Value)
	case KindOutOfRange:
		return fmt.Sprintf("emu: value %q out of range", e.Value)
	default:
		return "emu: conversion error"
	}
}

func supportedUnit(unit string) bool {
	switch unit {
	case "", "px", "pt", "mm", "cm", "in", "em", "ex", "%", "user-unit":
		return true
	}
	return false
}

// ToFractionalEMU converts l to a fractional EMU value along axis using
// ctx for percentage/DPI/font-relative resolution. See spec §4.1.
func ToFractionalEMU(l Length, axis Axis, ctx Context) (float64, error) {
	if !supportedUnit(l.Unit) {
		return 0, &Error{Kind: KindUnsupportedUnit, Value: l.Unit}
	}
	if math.IsNaN(l.Value) || math.IsInf(l.Value, 0) {
		return 0, &Error{Kind: KindInvalidLength, Value: fmt.Sprint(l.Value)}
	}

	dpi := ctx.DPI
	if dpi == 0 {
		dpi = 96
	}

	if l.Unit == "%" {
		dim := ctx.ViewportWidthEMU
		switch axis {
		case AxisY:
			dim = ctx.ViewportHeightEMU
		case AxisNone:
			dim = math.Sqrt(ctx.ViewportWidthEMU*ctx.ViewportWidthEMU+ctx.ViewportHeightEMU*ctx.ViewportHeightEMU) / math.Sqrt2
		}
		emuVal := l.Value / 100 * dim
		if emuVal < 0 || emuVal > MaxCoordinateEMU {
			return 0, &Error{Kind: KindOutOfRange, Value: fmt.Sprintf("%gEMU", emuVal)}
		}
		return emuVal, nil
	}

	var px float64
	switch l.Unit {
	case "", "user-unit", "px":
		px = l.Value
	case "pt":
		px = l.Value * dpi / 72
	case "in":
		px = l.Value * dpi
	case "mm":
		px = l.Value * dpi / 25.4
	case "cm":
		px = l.Value * dpi / 2.54
	case "em":
		fs := ctx.ParentFontSizePx
		if fs == 0 {
			fs = 16
		}
		px = l.Value * fs
	case "ex":
		fs := ctx.ParentFontSizePx
		if fs == 0 {
			fs = 16
		}
		px = l.Value * fs * 0.5
	}

	emuVal := px / dpi * PerInch
	if emuVal < 0 || emuVal > MaxCoordinateEMU {
		return 0, &Error{Kind: KindOutOfRange, Value: fmt.Sprintf("%gEMU", emuVal)}
	}
	return emuVal, nil
}

// ToEMUInt rounds a fractional EMU conversion to int64 using round-half-to-even,
// per spec §3.4 ("x_emu_int = round_half_even(x_emu_f64)").
func ToEMUInt(l Length, axis Axis, ctx Context) (int64, error) {
	f, err := ToFractionalEMU(l, axis, ctx)
	if err != nil {
		return 0, err
	}
	return RoundHalfEven(f), nil
}

// RoundHalfEven rounds f to the nearest integer, breaking ties toward the
// even integer (banker's rounding), matching OOXML's integer EMU fields.
func RoundHalfEven(f float64) int64 {
	floor := math.Floor(f)
	diff := f - floor
	switch {
	case diff < 0.5:
		return int64(floor)
	case diff > 0.5:
		return int64(floor) + 1
	default:
		if int64(floor)%2 == 0 {
			return int64(floor)
		}
		return int64(floor) + 1
	}
}

// vectorizeThreshold is the batch size above which ToFractionalEMUBatch is
// selected automatically by callers, per spec §4.1.
const vectorizeThreshold = 100

// ToFractionalEMUBatch converts every length in values (paired with units)
// to fractional EMU. Intended for the >100-element case described in
// spec §4.1; for smaller inputs callers should prefer the scalar API to
// avoid allocation overhead.
func ToFractionalEMUBatch(values []float64, units []string, axis Axis, ctx Context) ([]float64, error) {
	if len(values) != len(units) {
		return nil, fmt.Errorf("emu: values/units length mismatch (%d vs %d)", len(values), len(units))
	}
	out := make([]float64, len(values))
	for i := range values {
		f, err := ToFractionalEMU(Length{Value: values[i], Unit: units[i]}, axis, ctx)
		if err != nil {
			return nil, fmt.Errorf("emu: element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// VectorizeThreshold exposes the batch-selection guideline for callers
// deciding whether to use the scalar or batch API.
func VectorizeThreshold() int { return vectorizeThreshold }
