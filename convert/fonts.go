package convert

import (
	"sort"

	"github.com/svg2pptx/svg2pptx/font"
	"github.com/svg2pptx/svg2pptx/ir"
)

// emuPerPt converts typographic points to EMU (1 pt = 1/72 in, 1 in =
// 914400 EMU), for turning the Font Service's point-based advances and
// metrics into the IR's EMU-baked TextRun.BBox.
const emuPerPt = 12700.0

// resolveFonts walks the scene resolving every TextRun's font faces and
// computing its BBox from the Font Service's shaped advances (spec
// §4.10). Resolution errors (PolicyError's NotFoundError) are collected
// rather than aborting the walk, matching the rest of convert's
// recoverable-diagnostics discipline: a run that couldn't resolve keeps
// its zero BBox and the caller surfaces the error alongside the slide.
func (c *converter) resolveFonts(node ir.Node) []error {
	var errs []error
	switch n := node.(type) {
	case *ir.TextRun:
		if err := c.resolveTextRun(n); err != nil {
			errs = append(errs, err)
		}
	case *ir.Group:
		for _, child := range n.Children {
			errs = append(errs, c.resolveFonts(child)...)
		}
	}
	return errs
}

func (c *converter) resolveTextRun(t *ir.TextRun) error {
	var width, ascent, descent float64
	for i := range t.Runs {
		span := &t.Runs[i]
		h, err := c.fonts.Resolve(span.FontVariant.Family, span.FontVariant.Weight, span.FontVariant.Italic)
		if err != nil {
			return err
		}
		w, glyphs := h.Shape(span.Text, span.SizePt)
		width += w
		a, d := h.Metrics(span.SizePt)
		if a > ascent {
			ascent = a
		}
		if d > descent {
			descent = d
		}
		c.trackGlyphs(h, glyphs)
	}
	t.BBox = ir.Rect{Width: width * emuPerPt, Height: (ascent + descent) * emuPerPt}
	return nil
}

// trackGlyphs accumulates the glyph ids a resolved font handle has been
// asked to render, keyed by the handle's content hash, for later Subset
// embedding via embedFontSubsets.
func (c *converter) trackGlyphs(h *font.Handle, glyphs []uint32) {
	if c.glyphHandles == nil {
		c.glyphHandles = map[string]*font.Handle{}
		c.glyphSets = map[string]map[uint32]bool{}
	}
	hash := h.ContentHash()
	c.glyphHandles[hash] = h
	set := c.glyphSets[hash]
	if set == nil {
		set = map[uint32]bool{}
		c.glyphSets[hash] = set
	}
	for _, g := range glyphs {
		set[g] = true
	}
}

// embedFontSubsets builds and registers one embedded font subset part
// per distinct resolved font handle via the Package Writer's
// AddFontSubset, returning their relationship ids so the slide's own
// _rels part references them (spec §4.10's "embed only the glyphs
// referenced"). Handles are visited in content-hash order so repeated
// conversions of the same document produce byte-identical output.
func (c *converter) embedFontSubsets() []string {
	hashes := make([]string, 0, len(c.glyphSets))
	for hash := range c.glyphSets {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	var relIDs []string
	for _, hash := range hashes {
		handle := c.glyphHandles[hash]
		set := c.glyphSets[hash]
		glyphIDs := make([]uint32, 0, len(set))
		for g := range set {
			glyphIDs = append(glyphIDs, g)
		}
		sort.Slice(glyphIDs, func(i, j int) bool { return glyphIDs[i] < glyphIDs[j] })

		data, err := c.subsetCache.GetOrBuild(handle, glyphIDs, func() []byte { return font.Subset(handle, glyphIDs) })
		if err != nil {
			continue
		}
		relIDs = append(relIDs, c.writer.AddFontSubset(data))
	}
	return relIDs
}
