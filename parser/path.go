package parser

import (
	"bufio"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// pathPoint is a raw (possibly relative, possibly NaN-masked for H/V)
// coordinate pair read off path data, prior to CTM baking.
type pathPoint struct {
	X, Y float64
}

// pathCommand is one parsed SVG path-data command. This grammar and
// its implementation are carried over directly from the teacher
// package's elements_paths.go (ParsePathCommands and its helpers):
// same bufio.Reader token-by-token technique, same grammar, ported
// from the teacher's PathCommand/Point/MoveTo/... types to the
// equivalent types here so path.go can stay self-contained within
// this package.
type pathCommand interface {
	isPathCommand()
}

type cmdMoveTo struct {
	IsAbsolute bool
	Points     []pathPoint
}

func (*cmdMoveTo) isPathCommand() {}

type cmdClosePath struct{}

func (*cmdClosePath) isPathCommand() {}

type cmdLineTo struct {
	IsAbsolute bool
	Points     []pathPoint
}

func (*cmdLineTo) isPathCommand() {}

type cubicBezierCoord struct {
	pathPoint
	X1, Y1, X2, Y2 float64
}

type cmdCubicBezier struct {
	IsAbsolute  bool
	IsSmooth    bool
	Coordinates []cubicBezierCoord
}

func (*cmdCubicBezier) isPathCommand() {}

type quadBezierCoord struct {
	pathPoint
	X1, Y1 float64
}

type cmdQuadraticBezier struct {
	IsAbsolute  bool
	IsSmooth    bool
	Coordinates []quadBezierCoord
}

func (*cmdQuadraticBezier) isPathCommand() {}

type arcCoord struct {
	pathPoint
	Rx, Ry        float64
	XAxisRotation float64
	LargeArc      bool
	Sweep         bool
}

type cmdEllipticalArc struct {
	IsAbsolute  bool
	Coordinates []arcCoord
}

func (*cmdEllipticalArc) isPathCommand() {}

// parsePathCommands parses SVG path data per the standard grammar.
func parsePathCommands(commands string) ([]pathCommand, error) {
	r := bufio.NewReader(strings.NewReader(commands))

	if err := skipPathWhitespace(r); err != nil {
		return nil, err
	}

	var cmds []pathCommand
	for {
		next, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		if next == 'Z' || next == 'z' {
			cmds = append(cmds, &cmdClosePath{})
			if err := skipPathWhitespace(r); err != nil && err != io.EOF {
				return nil, err
			}
			continue
		}

		if err = skipPathWhitespace(r); err != nil && err != io.EOF {
			return nil, err
		}

		var command pathCommand
		switch next {
		case 'M', 'm':
			command, err = parseMoveTo(r, next == 'M')
		case 'L', 'l':
			command, err = parseLineTo(r, next == 'L', false, false)
		case 'H', 'h':
			command, err = parseLineTo(r, next == 'H', true, false)
		case 'V', 'v':
			command, err = parseLineTo(r, next == 'V', false, true)
		case 'C', 'c':
			command, err = parseCubicBezier(r, next == 'C', false)
		case 'S', 's':
			command, err = parseCubicBezier(r, next == 'S', true)
		case 'Q', 'q':
			command, err = parseQuadraticBezier(r, next == 'Q', false)
		case 'T', 't':
			command, err = parseQuadraticBezier(r, next == 'T', true)
		case 'A', 'a':
			command, err = parseEllipticalArc(r, next == 'A')
		default:
			return nil, errors.New("parser: unknown path command " + string(next))
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		cmds = append(cmds, command)

		if err := skipPathWhitespace(r); err != nil && err != io.EOF {
			return nil, err
		}
	}

	return cmds, nil
}

func isPathWhitespace(b byte) bool {
	switch b {
	case 0x09, 0x0a, 0x0c, 0x0d, 0x20:
		return true
	}
	return false
}

func skipPathWhitespace(r *bufio.Reader) error {
	for {
		next, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !isPathWhitespace(next) {
			return r.UnreadByte()
		}
	}
}

func parsePathSign(r *bufio.Reader) (float64, error) {
	next, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch next {
	case '+':
		return 1.0, nil
	case '-':
		return -1.0, nil
	}
	return 1.0, r.UnreadByte()
}

func startsPathCoordinate(b byte) bool {
	return b == '-' || b == '+' || (b >= '0' && b <= '9') || b == '.'
}

func parsePathCoordinate(r *bufio.Reader) (float64, error) {
	sign, err := parsePathSign(r)
	if err != nil {
		return 0, err
	}

	var b strings.Builder
	seenDot, seenExp := false, false
	for {
		next, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		switch {
		case next >= '0' && next <= '9':
			b.WriteByte(next)
		case next == '.' && !seenDot && !seenExp:
			seenDot = true
			b.WriteByte(next)
		case (next == 'e' || next == 'E') && !seenExp && b.Len() > 0:
			seenExp = true
			b.WriteByte(next)
		case (next == '+' || next == '-') && b.Len() > 0 && (b.String()[b.Len()-1] == 'e' || b.String()[b.Len()-1] == 'E'):
			b.WriteByte(next)
		default:
			if err := r.UnreadByte(); err != nil {
				return 0, err
			}
			goto done
		}
	}
done:
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, err
	}
	return sign * f, nil
}

func parsePathOptionalComma(r *bufio.Reader) (bool, error) {
	next, err := r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	if isPathWhitespace(next) {
		if err := skipPathWhitespace(r); err != nil {
			return false, err
		}
		next, err = r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}
	}

	switch {
	case next == ',':
		return true, skipPathWhitespace(r)
	case startsPathCoordinate(next):
		return true, r.UnreadByte()
	}
	return false, r.UnreadByte()
}

func parsePathCoordinatePair(r *bufio.Reader) (pathPoint, error) {
	x, err := parsePathCoordinate(r)
	if err != nil {
		return pathPoint{}, err
	}
	if _, err := parsePathOptionalComma(r); err != nil {
		return pathPoint{}, err
	}
	y, err := parsePathCoordinate(r)
	if err != nil {
		return pathPoint{}, err
	}
	return pathPoint{X: x, Y: y}, nil
}

func parsePathCoordinateSequence(r *bufio.Reader) ([]float64, error) {
	var coords []float64
	for {
		c, err := parsePathCoordinate(r)
		if err != nil {
			return nil, err
		}
		coords = append(coords, c)

		more, err := parsePathOptionalComma(r)
		if err == io.EOF || !more {
			break
		} else if err != nil {
			return nil, err
		}
	}
	return coords, nil
}

func parsePathCoordinatePairSequence(r *bufio.Reader) ([]pathPoint, error) {
	var coords []pathPoint
	for {
		p, err := parsePathCoordinatePair(r)
		if err != nil {
			return nil, err
		}
		coords = append(coords, p)

		more, err := parsePathOptionalComma(r)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return coords, nil
}

func parsePathCoordinatePairTripletSequence(r *bufio.Reader) ([]pathPoint, error) {
	var coords []pathPoint
	for {
		for i := 0; i < 3; i++ {
			p, err := parsePathCoordinatePair(r)
			if err != nil {
				return nil, err
			}
			coords = append(coords, p)
			if i < 2 {
				if _, err := parsePathOptionalComma(r); err != nil {
					return nil, err
				}
			}
		}

		more, err := parsePathOptionalComma(r)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return coords, nil
}

func parsePathCoordinatePairDoubleSequence(r *bufio.Reader) ([]pathPoint, error) {
	var coords []pathPoint
	for {
		for i := 0; i < 2; i++ {
			p, err := parsePathCoordinatePair(r)
			if err != nil {
				return nil, err
			}
			coords = append(coords, p)
			if i < 1 {
				if _, err := parsePathOptionalComma(r); err != nil {
					return nil, err
				}
			}
		}

		more, err := parsePathOptionalComma(r)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return coords, nil
}

func parseEllipticalArcArgument(r *bufio.Reader) (arcCoord, error) {
	rx, err := parsePathCoordinate(r)
	if err != nil {
		return arcCoord{}, err
	}
	if _, err := parsePathOptionalComma(r); err != nil {
		return arcCoord{}, err
	}
	ry, err := parsePathCoordinate(r)
	if err != nil {
		return arcCoord{}, err
	}
	if _, err := parsePathOptionalComma(r); err != nil {
		return arcCoord{}, err
	}

	rot, err := parsePathCoordinate(r)
	if err != nil {
		return arcCoord{}, err
	}
	if _, err := parsePathOptionalComma(r); err != nil {
		return arcCoord{}, err
	}

	next, err := r.ReadByte()
	if err != nil {
		return arcCoord{}, err
	}
	if next != '0' && next != '1' {
		return arcCoord{}, errors.New("parser: expected an arc flag")
	}
	largeArc := next == '1'

	if _, err := parsePathOptionalComma(r); err != nil {
		return arcCoord{}, err
	}

	next, err = r.ReadByte()
	if err != nil {
		return arcCoord{}, err
	}
	if next != '0' && next != '1' {
		return arcCoord{}, errors.New("parser: expected an arc flag")
	}
	sweep := next == '1'

	if _, err := parsePathOptionalComma(r); err != nil {
		return arcCoord{}, err
	}

	point, err := parsePathCoordinatePair(r)
	if err != nil {
		return arcCoord{}, err
	}

	return arcCoord{
		pathPoint:     point,
		Rx:            rx,
		Ry:            ry,
		XAxisRotation: rot,
		LargeArc:      largeArc,
		Sweep:         sweep,
	}, nil
}

func parseMoveTo(r *bufio.Reader, isAbsolute bool) (*cmdMoveTo, error) {
	points, err := parsePathCoordinatePairSequence(r)
	if err != nil {
		return nil, err
	}
	return &cmdMoveTo{IsAbsolute: isAbsolute, Points: points}, nil
}

func parseLineTo(r *bufio.Reader, isAbsolute, isHoriz, isVert bool) (*cmdLineTo, error) {
	switch {
	case isHoriz:
		xs, err := parsePathCoordinateSequence(r)
		if err != nil {
			return nil, err
		}
		points := make([]pathPoint, len(xs))
		for i, x := range xs {
			points[i] = pathPoint{X: x, Y: math.NaN()}
		}
		return &cmdLineTo{IsAbsolute: isAbsolute, Points: points}, nil
	case isVert:
		ys, err := parsePathCoordinateSequence(r)
		if err != nil {
			return nil, err
		}
		points := make([]pathPoint, len(ys))
		for i, y := range ys {
			points[i] = pathPoint{X: math.NaN(), Y: y}
		}
		return &cmdLineTo{IsAbsolute: isAbsolute, Points: points}, nil
	}

	points, err := parsePathCoordinatePairSequence(r)
	if err != nil {
		return nil, err
	}
	return &cmdLineTo{IsAbsolute: isAbsolute, Points: points}, nil
}

func parseCubicBezier(r *bufio.Reader, isAbsolute, isSmooth bool) (*cmdCubicBezier, error) {
	var coords []cubicBezierCoord

	if !isSmooth {
		points, err := parsePathCoordinatePairTripletSequence(r)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(points); i += 3 {
			c1, c2, c := points[i], points[i+1], points[i+2]
			coords = append(coords, cubicBezierCoord{pathPoint: c, X1: c1.X, Y1: c1.Y, X2: c2.X, Y2: c2.Y})
		}
	} else {
		points, err := parsePathCoordinatePairDoubleSequence(r)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(points); i += 2 {
			c2, c := points[i], points[i+1]
			coords = append(coords, cubicBezierCoord{pathPoint: c, X2: c2.X, Y2: c2.Y})
		}
	}

	return &cmdCubicBezier{IsAbsolute: isAbsolute, IsSmooth: isSmooth, Coordinates: coords}, nil
}

func parseQuadraticBezier(r *bufio.Reader, isAbsolute, isSmooth bool) (*cmdQuadraticBezier, error) {
	var coords []quadBezierCoord

	if isSmooth {
		points, err := parsePathCoordinatePairSequence(r)
		if err != nil {
			return nil, err
		}
		for _, c := range points {
			coords = append(coords, quadBezierCoord{pathPoint: c})
		}
		return &cmdQuadraticBezier{IsAbsolute: isAbsolute, IsSmooth: true, Coordinates: coords}, nil
	}

	points, err := parsePathCoordinatePairDoubleSequence(r)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(points); i += 2 {
		c1, c := points[i], points[i+1]
		coords = append(coords, quadBezierCoord{pathPoint: c, X1: c1.X, Y1: c1.Y})
	}

	return &cmdQuadraticBezier{IsAbsolute: isAbsolute, Coordinates: coords}, nil
}

func parseEllipticalArc(r *bufio.Reader, isAbsolute bool) (*cmdEllipticalArc, error) {
	var coords []arcCoord
	for {
		c, err := parseEllipticalArcArgument(r)
		if err != nil {
			return nil, err
		}
		coords = append(coords, c)

		more, err := parsePathOptionalComma(r)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return &cmdEllipticalArc{IsAbsolute: isAbsolute, Coordinates: coords}, nil
}
