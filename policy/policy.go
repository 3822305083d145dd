// Package policy implements the Policy Engine (spec §4.6): conservative,
// monotone per-element strategy selection for filters, clips, and
// gradients, parameterized by an OutputTarget profile.
package policy

import "github.com/svg2pptx/svg2pptx/ir"

// Strategy is the rendering path chosen for one element or subsystem.
type Strategy int

const (
	Native Strategy = iota
	VectorFallback
	Raster
)

func (s Strategy) String() string {
	switch s {
	case Native:
		return "Native"
	case VectorFallback:
		return "VectorFallback"
	case Raster:
		return "Raster"
	default:
		return "Unknown"
	}
}

// OutputTarget selects a named profile from spec §4.6's table.
type OutputTarget int

const (
	Balanced OutputTarget = iota
	Speed
	Quality
	Compatibility
)

// Thresholds are the profile-dependent numeric knobs a Config may
// override; zero means "use the profile default".
type Thresholds struct {
	MaxGradientStops  int
	MaxFilterComplexity int
	MaxClipSegments   int
}

// Engine is immutable after construction (spec §5: "Policy Engine
// configuration: immutable after construction; read-only from any
// thread"), so one Engine may be shared across concurrent batch
// workers converting independent documents.
type Engine struct {
	target     OutputTarget
	thresholds Thresholds
}

// New builds an Engine for target, applying override where its fields
// are non-zero and the profile default otherwise.
func New(target OutputTarget, override Thresholds) *Engine {
	d := defaultThresholds(target)
	if override.MaxGradientStops > 0 {
		d.MaxGradientStops = override.MaxGradientStops
	}
	if override.MaxFilterComplexity > 0 {
		d.MaxFilterComplexity = override.MaxFilterComplexity
	}
	if override.MaxClipSegments > 0 {
		d.MaxClipSegments = override.MaxClipSegments
	}
	return &Engine{target: target, thresholds: d}
}

func defaultThresholds(target OutputTarget) Thresholds {
	switch target {
	case Speed:
		return Thresholds{MaxGradientStops: 6, MaxFilterComplexity: 1, MaxClipSegments: 40}
	case Quality:
		return Thresholds{MaxGradientStops: 16, MaxFilterComplexity: 6, MaxClipSegments: 400}
	case Compatibility:
		return Thresholds{MaxGradientStops: 10, MaxFilterComplexity: 0, MaxClipSegments: 200}
	default: // Balanced
		return Thresholds{MaxGradientStops: 10, MaxFilterComplexity: 3, MaxClipSegments: 200}
	}
}

// nativeFilterKinds are the primitive kinds with a native DrawingML
// effect-list analogue (spec §4.8 step 3's rewrite table).
var nativeFilterKinds = map[ir.FilterPrimitiveKind]bool{
	ir.FilterGaussianBlur: true,
	ir.FilterOffset:       true,
	ir.FilterFlood:        true,
	ir.FilterComposite:    true,
	ir.FilterDropShadow:   true,
}

// hasNoVectorEquivalent are primitives that force Raster even when the
// Vector fallback would otherwise be chosen (spec §4.6 Filter rule).
var hasNoVectorEquivalent = map[ir.FilterPrimitiveKind]bool{
	ir.FilterTurbulence: true,
}

// FilterStrategy chooses Native / VectorFallback / Raster for chain
// per spec §4.6: Native requires every primitive to have a native
// analogue and the chain to be a straight pipeline (each primitive's
// sole input is the previous stage's result or SourceGraphic, no
// primitive consumed by more than one later stage).
func (e *Engine) FilterStrategy(chain ir.FilterChain) Strategy {
	for _, p := range chain.Primitives {
		if hasNoVectorEquivalent[p.Kind] {
			return Raster
		}
	}

	straightPipeline := isStraightPipeline(chain)
	allNative := true
	for _, p := range chain.Primitives {
		if !nativeFilterKinds[p.Kind] {
			allNative = false
			break
		}
	}

	if allNative && straightPipeline {
		if e.target == Compatibility && len(chain.Primitives) > 1 {
			// Compatibility trusts only the single-primitive native
			// effects it knows render identically everywhere; longer
			// native-eligible chains still fall back to vector.
			return VectorFallback
		}
		return Native
	}

	if e.target == Compatibility {
		return VectorFallback
	}
	return VectorFallback
}

// isStraightPipeline reports whether chain has no named-input fan-out:
// every result name is consumed by at most one later primitive.
func isStraightPipeline(chain ir.FilterChain) bool {
	consumers := map[string]int{}
	for _, p := range chain.Primitives {
		for _, in := range p.Inputs {
			if in == "SourceGraphic" || in == "SourceAlpha" || in == "" {
				continue
			}
			consumers[in]++
			if consumers[in] > 1 {
				return false
			}
		}
	}
	return true
}

// GradientDecision is the outcome of GradientStrategy: whether the
// gradient renders natively, after stop-merging simplification, or via
// vector fallback, plus how many stops survive in the Native/Simplify
// cases.
type GradientDecision struct {
	Strategy   Strategy
	KeptStops  []int // indices into the original Stops slice to keep
}

// GradientStrategy applies spec §4.6's Gradient rule: native for ≤ N
// stops; otherwise merge stops within a ΔE-like threshold (here a
// simple perceptual distance in sRGB, since the IR carries no Lab
// conversion) down to N; if merging still can't fit under N, fall back
// to VectorFallback with all original stops kept for the vector path
// to render faithfully.
func (e *Engine) GradientStrategy(stops []ir.GradientStop) GradientDecision {
	n := e.thresholds.MaxGradientStops
	if len(stops) <= n {
		return GradientDecision{Strategy: Native, KeptStops: identityIndices(len(stops))}
	}

	kept := mergeStops(stops, n)
	if len(kept) <= n {
		return GradientDecision{Strategy: Native, KeptStops: kept}
	}
	return GradientDecision{Strategy: VectorFallback, KeptStops: identityIndices(len(stops))}
}

func identityIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// mergeStops greedily drops the stop whose removal least changes the
// perceived color ramp (smallest combined distance to its neighbors),
// repeating until at most target stops remain or no more can be
// dropped without losing the first/last anchor stops.
func mergeStops(stops []ir.GradientStop, target int) []int {
	kept := identityIndices(len(stops))
	for len(kept) > target && len(kept) > 2 {
		worst := -1
		worstCost := -1.0
		for i := 1; i < len(kept)-1; i++ {
			cost := colorDistance(stops[kept[i-1]].Color, stops[kept[i]].Color) +
				colorDistance(stops[kept[i]].Color, stops[kept[i+1]].Color)
			if worst == -1 || cost < worstCost {
				worst, worstCost = i, cost
			}
		}
		if worst == -1 {
			break
		}
		kept = append(kept[:worst], kept[worst+1:]...)
	}
	return kept
}

func colorDistance(a, b interface{ RGBA() (r, g, bb, al uint32) }) float64 {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb2, _ := b.RGBA()
	dr := float64(ar>>8) - float64(br>>8)
	dg := float64(ag>>8) - float64(bg>>8)
	db := float64(ab>>8) - float64(bb2>>8)
	return dr*dr + dg*dg + db*db
}

// ClipGeometry summarizes the baked clip path shape the Clipping
// Adapter hands to the policy before choosing a strategy.
type ClipGeometry struct {
	AxisAlignedRect bool
	SegmentCount    int
}

// ClipStrategy applies spec §4.6's Clip rule.
func (e *Engine) ClipStrategy(geom ClipGeometry) Strategy {
	if geom.AxisAlignedRect {
		return Native
	}
	if geom.SegmentCount <= e.thresholds.MaxClipSegments {
		return Native
	}
	return Raster
}

// MultiPageSplit reports whether content whose bounding extent is
// contentMultiple times the configured slide size should be split
// across slides along whitespace seams (spec §4.6 Multi-page rule).
// splitMultiplier is the configured slide-size multiplier threshold.
func (e *Engine) MultiPageSplit(contentMultiple, splitMultiplier float64) bool {
	return contentMultiple > splitMultiplier
}

// EscalateFilter moves s one step up the Native → Vector → Raster
// ladder, per spec §7's FilterUnsupported recoverable-error handling.
func EscalateFilter(s Strategy) Strategy {
	switch s {
	case Native:
		return VectorFallback
	default:
		return Raster
	}
}

// EscalateClip moves s one step up the Native → Raster clip ladder
// (spec §7's ClipTooComplex). Clips have no vector-fallback tier
// distinct from custGeom, which IS the Native tier for polygonal
// clips, so the only escalation target is Raster.
func EscalateClip(s Strategy) Strategy {
	return Raster
}

// Target returns the profile this Engine was constructed with.
func (e *Engine) Target() OutputTarget { return e.target }

// Thresholds returns the effective (default-filled) thresholds.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }
