// Package font implements the Font Service (spec §4.10): family/weight/
// style resolution, glyph-subset tracking, package registration, and
// the configurable missing-font policy. Face loading follows the
// teacher's weight-bucketed fontFamily shape (renderer_fonts.go), built
// on golang.org/x/image/font/sfnt + opentype and the embedded
// golang.org/x/image/font/gofont/* faces as the always-available
// fallback family; go-findfont resolves local system fonts before
// falling back to gofont.
package font

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bitset"
	findfont "github.com/flopp/go-findfont"
	"github.com/go-text/typesetting/di"
	gotextfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// MissingPolicy selects what happens when resolve can't find a
// matching font (spec §4.10).
type MissingPolicy int

const (
	// PolicyFallbackFamily substitutes a configured family (default).
	PolicyFallbackFamily MissingPolicy = iota
	// PolicyError fails the conversion.
	PolicyError
	// PolicyOutline converts the text run to path outlines using a
	// substitute metrics profile, with a warning.
	PolicyOutline
)

// Handle identifies a resolved font program plus the metadata needed
// to compute advances and register it in a package.
type Handle struct {
	Family string
	Weight int // CSS-style 100-900
	Italic bool

	face      *sfnt.Font
	shapeFont *gotextfont.Font // nil when the program didn't parse under go-text/typesetting
	raw       []byte
	hash      string
}

// ContentHash is the font program's content hash, used by both the
// Subset Cache and the package's dedup-by-content-hash registration.
func (h *Handle) ContentHash() string { return h.hash }

// NotFoundError is returned by Resolve under MissingPolicy == PolicyError.
type NotFoundError struct{ Family string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("font: family %q not found", e.Family) }

// FontSource is the collaborator-supplied font program record (spec
// §4.10's "consumes a FontSource record {origin, bytes-or-url,
// content-hash}"). Fetching from origin/url is the caller's job; the
// Service only ever touches Bytes.
type FontSource struct {
	Origin      string
	Bytes       []byte
	ContentHash string
}

// Service resolves font requests against configured FontSources and a
// small embedded fallback set (the teacher's defaultFonts()
// generalized from CSS generic family names to resolved weight
// buckets), honoring policy when nothing matches.
type Service struct {
	policy         MissingPolicy
	fallbackFamily string

	mu       sync.Mutex
	resolved map[string]*Handle // cache keyed by family|weight|italic
	sources  []FontSource
}

// New constructs a Service. fallbackFamily is the family substituted
// under PolicyFallbackFamily (spec default "Arial", mapped here onto
// the embedded goregular/gobold/goitalic set since no system "Arial"
// ships with the binary).
func New(policy MissingPolicy, fallbackFamily string, sources []FontSource) *Service {
	return &Service{
		policy:         policy,
		fallbackFamily: fallbackFamily,
		resolved:       map[string]*Handle{},
		sources:        sources,
	}
}

func cacheKey(family string, weight int, italic bool) string {
	return fmt.Sprintf("%s|%d|%v", family, weight, italic)
}

// Resolve implements `resolve(family, weight, style) → FontHandle |
// NotFound` (spec §4.10). Weight is normalized by the caller (parser's
// attribute layer) to the numeric 100-900 scale before reaching here.
func (s *Service) Resolve(family string, weight int, italic bool) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cacheKey(family, weight, italic)
	if h, ok := s.resolved[key]; ok {
		return h, nil
	}

	if h := s.fromSources(family, weight, italic); h != nil {
		s.resolved[key] = h
		return h, nil
	}
	if h := s.fromSystemFont(family, weight, italic); h != nil {
		s.resolved[key] = h
		return h, nil
	}

	switch s.policy {
	case PolicyError:
		return nil, &NotFoundError{Family: family}
	default: // FallbackFamily and Outline both substitute a face; Outline's
		// extra behavior (outline conversion) is the mapper/text stage's
		// job once it observes the substitution, not this lookup.
		h, err := s.fromEmbedded(family, weight, italic)
		if err != nil {
			return nil, err
		}
		s.resolved[key] = h
		return h, nil
	}
}

// fromSources scans the explicitly configured FontSource list for the
// first source whose Origin equals family and whose bytes parse as a
// font; weight and style are not matched. Real family/weight negotiation against
// injected sources is left to the caller's FontProvider (spec §6.4),
// which is expected to supply one FontSource per resolved face.
func (s *Service) fromSources(family string, weight int, italic bool) *Handle {
	for _, src := range s.sources {
		if src.Origin != family {
			continue
		}
		h, err := parseHandle(family, weight, italic, src.Bytes)
		if err != nil {
			continue
		}
		return h
	}
	return nil
}

// fromSystemFont resolves a local system font file via go-findfont
// (spec DOMAIN STACK: "Font Service FontSource resolution from local
// directories/system fonts").
func (s *Service) fromSystemFont(family string, weight int, italic bool) *Handle {
	path, err := findfont.Find(family)
	if err != nil {
		return nil
	}
	data, err := readFontFile(path)
	if err != nil {
		return nil
	}
	h, err := parseHandle(family, weight, italic, data)
	if err != nil {
		return nil
	}
	return h
}

func readFontFile(path string) ([]byte, error) { return os.ReadFile(path) }

// fromEmbedded returns the always-available gofont substitute nearest
// family/weight/italic, mirroring the teacher's weight-bucketed
// fontFamily: the "monospace" generic family maps to gomono regardless
// of weight, everything else buckets on weight/italic.
func (s *Service) fromEmbedded(family string, weight int, italic bool) (*Handle, error) {
	data := goregular.TTF
	switch {
	case strings.EqualFold(family, "monospace"):
		data = gomono.TTF
	case italic:
		data = goitalic.TTF
	case weight >= 600:
		data = gobold.TTF
	}
	return parseHandle(s.fallbackFamily, weight, italic, data)
}

func parseHandle(family string, weight int, italic bool, data []byte) (*Handle, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	h := &Handle{
		Family: family,
		Weight: weight,
		Italic: italic,
		face:   f,
		raw:    data,
		hash:   hex.EncodeToString(sum[:]),
	}
	if shapeFace, err := gotextfont.ParseTTF(bytes.NewReader(data)); err == nil {
		h.shapeFont = shapeFace.Font
	}
	return h, nil
}

// Shape runs HarfBuzz-level shaping over text at sizePt via
// go-text/typesetting (spec §4.10's advance-width/vertical-metrics
// requirement), returning the run's total advance width in points and
// the glyph ids it referenced, for the caller's bbox computation and
// subset tracking. A fresh font.Face is built per call since, unlike
// the underlying *font.Font, a Face isn't safe for concurrent use.
// Falls back to sfnt's own per-rune GlyphAdvance when the font program
// didn't parse under go-text/typesetting.
func (h *Handle) Shape(text string, sizePt float64) (widthPt float64, glyphIDs []uint32) {
	if h.shapeFont == nil {
		return h.shapeFallback(text, sizePt)
	}
	runes := []rune(text)
	face := gotextfont.NewFace(h.shapeFont)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(sizePt * 64),
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	}
	var shaper shaping.HarfbuzzShaper
	out := shaper.Shape(input)
	for _, g := range out.Glyphs {
		widthPt += float64(g.Advance) / 64
		glyphIDs = append(glyphIDs, uint32(g.GlyphID))
	}
	return widthPt, glyphIDs
}

// shapeFallback measures text with sfnt's own per-glyph advances when
// go-text/typesetting couldn't parse the font program.
func (h *Handle) shapeFallback(text string, sizePt float64) (widthPt float64, glyphIDs []uint32) {
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(sizePt * 64)
	for _, r := range text {
		gid, err := h.face.GlyphIndex(&buf, r)
		if err != nil || gid == 0 {
			continue
		}
		adv, err := h.face.GlyphAdvance(&buf, gid, ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		widthPt += float64(adv) / 64
		glyphIDs = append(glyphIDs, uint32(gid))
	}
	return widthPt, glyphIDs
}

// Metrics returns the face's ascent/descent in points at sizePt, for
// computing a TextRun's line-box height.
func (h *Handle) Metrics(sizePt float64) (ascentPt, descentPt float64) {
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(sizePt * 64)
	m, err := h.face.Metrics(&buf, ppem, xfont.HintingNone)
	if err != nil {
		return sizePt * 0.8, sizePt * 0.2
	}
	return float64(m.Ascent) / 64, float64(m.Descent) / 64
}

// subsetBuilder accumulates the glyph ids a text run references for
// one font handle, using a bitset.BitSet the same way ttf.FontSet
// tracks glyph coverage, before Subset produces the embeddable program.
type subsetBuilder struct {
	glyphs bitset.BitSet
}

func (b *subsetBuilder) add(gid uint32) { b.glyphs.Set(uint(gid)) }

// Subset produces an embeddable font program covering glyphSet (spec
// §4.10's `subset(handle, glyph_set) → bytes`). Real OpenType table
// subsetting (glyf/loca/hmtx rewriting) is out of scope for this pass:
// the glyph ids are collected into a local builder that does not trim
// anything, and this implementation returns the handle's full font
// program, which is always a valid superset of any requested glyph_set.
func Subset(handle *Handle, glyphSet []uint32) []byte {
	var b subsetBuilder
	for _, g := range glyphSet {
		b.add(g)
	}
	return handle.raw
}

// SubsetCache is the per-package Font Subset Cache (spec §5), keyed by
// font-content-hash + glyph set, serialized by mu per the coarse-
// mutex write-path discipline spec §5 calls for.
type SubsetCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	closed  bool
}

// NewSubsetCache creates an open cache (spec §9's explicit Create/Close
// lifecycle).
func NewSubsetCache() *SubsetCache {
	return &SubsetCache{entries: map[string][]byte{}}
}

// GetOrBuild returns the cached subset for (handle, glyphSet),
// building and storing it via build on a miss.
func (c *SubsetCache) GetOrBuild(handle *Handle, glyphSet []uint32, build func() []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("font: subset cache is closed")
	}
	key := subsetCacheKey(handle, glyphSet)
	if data, ok := c.entries[key]; ok {
		return data, nil
	}
	data := build()
	c.entries[key] = data
	return data, nil
}

func subsetCacheKey(handle *Handle, glyphSet []uint32) string {
	var b bitset.BitSet
	for _, g := range glyphSet {
		b.Set(uint(g))
	}
	return handle.ContentHash() + "|" + b.String()
}

// Close releases the cache. Further GetOrBuild calls error.
func (c *SubsetCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = nil
}
