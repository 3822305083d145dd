// Package coordspace maintains the Current Transformation Matrix (CTM)
// stack used by the parser while it walks an SVG document. See spec §4.3.
//
// The stack shape mirrors the teacher's renderer traversal stack
// (renderer.go's push/pop/top over *element), generalized here to carry
// matrices instead of rendering state, scoped to one parser traversal.
package coordspace

import (
	"errors"

	"github.com/svg2pptx/svg2pptx/matrix"
)

// ErrUnderflow is returned by Pop when only the viewport matrix remains.
var ErrUnderflow = errors.New("coordspace: pop would remove the viewport matrix")

// Space is a non-empty LIFO stack of matrices, with the viewport matrix
// at the bottom. It is single-threaded and scoped to one parser
// traversal; it is not safe for concurrent use.
type Space struct {
	stack []matrix.Matrix
}

// New creates a coordinate space seeded with the given viewport matrix.
func New(viewport matrix.Matrix) *Space {
	return &Space{stack: []matrix.Matrix{viewport}}
}

// Push composes the current top matrix with m and pushes the result.
// Push never fails.
func (s *Space) Push(m matrix.Matrix) {
	s.stack = append(s.stack, s.Current().Compose(m))
}

// Pop removes the top matrix, restoring the previous one. It fails with
// ErrUnderflow if only the viewport matrix remains.
func (s *Space) Pop() error {
	if len(s.stack) <= 1 {
		return ErrUnderflow
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// Current returns the matrix at the top of the stack.
func (s *Space) Current() matrix.Matrix {
	return s.stack[len(s.stack)-1]
}

// Apply transforms a point using the current top matrix. It always
// succeeds.
func (s *Space) Apply(x, y float64) (float64, float64) {
	p := s.Current().TransformPoint(matrix.Point{X: x, Y: y})
	return p.X, p.Y
}

// ApplyVector transforms a vector (no translation) using only the
// linear part of the current top matrix; used for relative path
// coordinates per spec §4.5.
func (s *Space) ApplyVector(x, y float64) (float64, float64) {
	p := s.Current().TransformVector(matrix.Point{X: x, Y: y})
	return p.X, p.Y
}

// Depth reports how many matrices are currently on the stack, including
// the viewport matrix; useful for tests asserting balanced push/pop.
func (s *Space) Depth() int {
	return len(s.stack)
}
