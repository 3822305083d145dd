// Package transform parses the SVG `transform` attribute grammar
// (translate, scale, rotate, skewX/Y, matrix) into matrix.Matrix values.
// See spec §4.3. The parser follows the same token-by-token bufio.Reader
// technique the teacher package uses for path data (see
// elements_paths.go in the retrieved reference corpus): no regexp, no
// parser-combinator dependency.
package transform

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/svg2pptx/svg2pptx/matrix"
)

// Parse parses an SVG `transform` attribute value into a single composed
// matrix. For `F1 F2 ... Fn` the result is the product F1·F2·...·Fn,
// so a point is mapped as F1(F2(... Fn(x))): the rightmost function is
// applied to the point first — SVG transform lists compose this way.
func Parse(s string) (matrix.Matrix, error) {
	r := bufio.NewReader(strings.NewReader(s))

	result := matrix.Identity
	first := true
	for {
		if err := skipSeparators(r); err != nil {
			if err == io.EOF {
				break
			}
			return matrix.Matrix{}, err
		}

		if _, err := r.Peek(1); err != nil {
			if err == io.EOF {
				break
			}
			return matrix.Matrix{}, err
		}

		name, err := readIdent(r)
		if err != nil {
			return matrix.Matrix{}, err
		}

		args, err := readArgs(r)
		if err != nil {
			return matrix.Matrix{}, err
		}

		m, err := buildMatrix(name, args)
		if err != nil {
			return matrix.Matrix{}, err
		}

		if first {
			result, first = m, false
		} else {
			result = result.Compose(m)
		}
	}

	if first {
		return matrix.Identity, nil
	}
	return result, nil
}

func isSeparator(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', ',':
		return true
	}
	return false
}

func skipSeparators(r *bufio.Reader) error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if !isSeparator(b) {
			return r.UnreadByte()
		}
	}
}

func readIdent(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}
		if c == '(' {
			if err := r.UnreadByte(); err != nil {
				return "", err
			}
			break
		}
		b.WriteByte(c)
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		return "", errors.New("transform: expected a function name")
	}
	return name, nil
}

func readArgs(r *bufio.Reader) ([]float64, error) {
	if err := expect(r, '('); err != nil {
		return nil, err
	}
	if err := skipSeparators(r); err != nil && err != io.EOF {
		return nil, err
	}

	var args []float64
	for {
		if err := skipSeparators(r); err != nil {
			if err == io.EOF {
				return nil, errors.New("transform: unterminated argument list")
			}
			return nil, err
		}

		peek, err := r.Peek(1)
		if err != nil {
			return nil, errors.New("transform: unterminated argument list")
		}
		if peek[0] == ')' {
			r.ReadByte()
			break
		}

		v, err := readNumber(r)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func expect(r *bufio.Reader, want byte) error {
	got, err := r.ReadByte()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("transform: expected %q, got %q", want, got)
	}
	return nil
}

func readNumber(r *bufio.Reader) (float64, error) {
	var b strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		if (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E' {
			b.WriteByte(c)
			continue
		}
		if err := r.UnreadByte(); err != nil {
			return 0, err
		}
		break
	}
	if b.Len() == 0 {
		return 0, errors.New("transform: expected a number")
	}
	return strconv.ParseFloat(b.String(), 64)
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

func buildMatrix(name string, args []float64) (matrix.Matrix, error) {
	switch name {
	case "translate":
		switch len(args) {
		case 1:
			return matrix.Translation(args[0], 0), nil
		case 2:
			return matrix.Translation(args[0], args[1]), nil
		}
	case "scale":
		switch len(args) {
		case 1:
			return matrix.Scaling(args[0], args[0]), nil
		case 2:
			return matrix.Scaling(args[0], args[1]), nil
		}
	case "rotate":
		switch len(args) {
		case 1:
			return matrix.Rotation(degToRad(args[0])), nil
		case 3:
			cx, cy := args[1], args[2]
			return matrix.Translation(cx, cy).
				Compose(matrix.Rotation(degToRad(args[0]))).
				Compose(matrix.Translation(-cx, -cy)), nil
		}
	case "skewX":
		if len(args) == 1 {
			return matrix.SkewX(degToRad(args[0])), nil
		}
	case "skewY":
		if len(args) == 1 {
			return matrix.SkewY(degToRad(args[0])), nil
		}
	case "matrix":
		if len(args) == 6 {
			return matrix.New(args[0], args[1], args[2], args[3], args[4], args[5]), nil
		}
	default:
		return matrix.Matrix{}, fmt.Errorf("transform: unknown function %q", name)
	}
	return matrix.Matrix{}, fmt.Errorf("transform: wrong argument count for %q (%d args)", name, len(args))
}
