// Package matrix implements immutable 2D affine matrix algebra.
//
// A Matrix represents the 2x3 affine transform
//
//	| a c e |
//	| b d f |
//	| 0 0 1 |
//
// applied to column vectors (x, y, 1). Values are never mutated in place;
// every operation returns a new Matrix.
package matrix

import "math"

// Matrix is an immutable 2D affine transform.
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix{A: 1, D: 1}

// Translation returns a translation matrix.
func Translation(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, E: tx, F: ty}
}

// Scaling returns a scale matrix.
func Scaling(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Rotation returns a rotation matrix; angle is in radians, clockwise in
// the SVG/screen coordinate system (y axis points down).
func Rotation(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return Matrix{A: c, B: s, C: -s, D: c}
}

// SkewX returns a matrix that skews along the x axis; angle is in radians.
func SkewX(angle float64) Matrix {
	return Matrix{A: 1, D: 1, C: math.Tan(angle)}
}

// SkewY returns a matrix that skews along the y axis; angle is in radians.
func SkewY(angle float64) Matrix {
	return Matrix{A: 1, D: 1, B: math.Tan(angle)}
}

// New builds a matrix directly from the SVG `matrix(a b c d e f)` components.
func New(a, b, c, d, e, f float64) Matrix {
	return Matrix{A: a, B: b, C: c, D: d, E: e, F: f}
}

// Compose returns the matrix that applies b first, then a: for any point p,
// a.Compose(b).TransformPoint(p) == a.TransformPoint(b.TransformPoint(p)).
func (a Matrix) Compose(b Matrix) Matrix {
	return Matrix{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

// Det returns the determinant of the linear part of the matrix.
func (m Matrix) Det() float64 {
	return m.A*m.D - m.B*m.C
}

// singularEpsilon is the determinant magnitude below which a matrix is
// considered non-invertible.
const singularEpsilon = 1e-12

// SingularError is returned by Inverse when the matrix is not invertible.
type SingularError struct{}

func (SingularError) Error() string { return "matrix: singular, cannot invert" }

// Inverse returns the inverse of m, or a SingularError if |det(m)| < 1e-12.
func (m Matrix) Inverse() (Matrix, error) {
	det := m.Det()
	if math.Abs(det) < singularEpsilon {
		return Matrix{}, SingularError{}
	}
	invDet := 1 / det
	a := m.D * invDet
	b := -m.B * invDet
	c := -m.C * invDet
	d := m.A * invDet
	e := -(a*m.E + c*m.F)
	f := -(b*m.E + d*m.F)
	return Matrix{A: a, B: b, C: c, D: d, E: e, F: f}, nil
}

// Point is an immutable 2D point.
type Point struct {
	X, Y float64
}

// TransformPoint applies m to a single point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// TransformVector applies only the linear part of m (no translation); used
// for relative path coordinates.
func (m Matrix) TransformVector(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y,
		Y: m.B*p.X + m.D*p.Y,
	}
}

// vectorizeThreshold is the point count above which TransformPoints uses a
// flattened loop tuned for throughput rather than per-point function calls.
const vectorizeThreshold = 100

// TransformPoints applies m to every point in pts, returning a new slice.
// Above vectorizeThreshold points the implementation still walks linearly
// (Go has no SIMD intrinsic in the standard toolchain) but avoids
// re-deriving m's coefficients per call, matching the batch/vectorization
// boundary called out in the design notes.
func (m Matrix) TransformPoints(pts []Point) []Point {
	out := make([]Point, len(pts))
	if len(pts) >= vectorizeThreshold {
		a, b, c, d, e, f := m.A, m.B, m.C, m.D, m.E, m.F
		for i, p := range pts {
			out[i] = Point{X: a*p.X + c*p.Y + e, Y: b*p.X + d*p.Y + f}
		}
		return out
	}
	for i, p := range pts {
		out[i] = m.TransformPoint(p)
	}
	return out
}

// Decomposition is the result of decomposing an affine matrix into
// translation, rotation, scale and skew components.
type Decomposition struct {
	Translation   Point
	Rotation      float64 // radians
	ScaleX, ScaleY float64
	Skew          float64 // radians
}

// Decompose performs a standard QR-style decomposition of m into
// translation, rotation, scale and skew.
func (m Matrix) Decompose() Decomposition {
	scaleX := math.Hypot(m.A, m.B)
	if scaleX == 0 {
		return Decomposition{Translation: Point{X: m.E, Y: m.F}}
	}

	a, b := m.A/scaleX, m.B/scaleX
	skewTerm := m.A*m.C + m.B*m.D
	c := m.C - a*skewTerm
	d := m.D - b*skewTerm
	scaleY := math.Hypot(c, d)
	if scaleY != 0 {
		c /= scaleY
		d /= scaleY
		skewTerm /= scaleY
	}

	if a*d-b*c < 0 {
		a, b, scaleX = -a, -b, -scaleX
		skewTerm = -skewTerm
	}

	return Decomposition{
		Translation: Point{X: m.E, Y: m.F},
		Rotation:    math.Atan2(b, a),
		ScaleX:      scaleX,
		ScaleY:      scaleY,
		Skew:        math.Atan(skewTerm),
	}
}

// IsIdentity reports whether m is the identity transform within eps.
func (m Matrix) IsIdentity(eps float64) bool {
	return math.Abs(m.A-1) < eps && math.Abs(m.B) < eps &&
		math.Abs(m.C) < eps && math.Abs(m.D-1) < eps &&
		math.Abs(m.E) < eps && math.Abs(m.F) < eps
}

// IsAxisAligned reports whether m has no rotation or skew component (the
// linear part is diagonal), within eps.
func (m Matrix) IsAxisAligned(eps float64) bool {
	return math.Abs(m.B) < eps && math.Abs(m.C) < eps
}
