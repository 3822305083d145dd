package font_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/font"
)

func TestResolveFallsBackToEmbeddedFont(t *testing.T) {
	svc := font.New(font.PolicyFallbackFamily, "Arial", nil)
	h, err := svc.Resolve("Nonexistent Family XYZ", 400, false)
	require.NoError(t, err)
	assert.Equal(t, "Arial", h.Family)
	assert.NotEmpty(t, h.ContentHash())
}

func TestResolveErrorsUnderPolicyError(t *testing.T) {
	svc := font.New(font.PolicyError, "Arial", nil)
	_, err := svc.Resolve("Nonexistent Family XYZ", 400, false)
	require.Error(t, err)
	var nfe *font.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestResolveCachesByFamilyWeightItalic(t *testing.T) {
	svc := font.New(font.PolicyFallbackFamily, "Arial", nil)
	h1, err := svc.Resolve("Nonexistent", 400, false)
	require.NoError(t, err)
	h2, err := svc.Resolve("Nonexistent", 400, false)
	require.NoError(t, err)
	assert.Same(t, h1, h2)
}

func TestResolveBoldWeightPicksBoldEmbeddedFace(t *testing.T) {
	svc := font.New(font.PolicyFallbackFamily, "Arial", nil)
	regular, err := svc.Resolve("Nonexistent", 400, false)
	require.NoError(t, err)
	bold, err := svc.Resolve("Nonexistent", 700, false)
	require.NoError(t, err)
	assert.NotEqual(t, regular.ContentHash(), bold.ContentHash())
}

func TestSubsetReturnsNonEmptyProgram(t *testing.T) {
	svc := font.New(font.PolicyFallbackFamily, "Arial", nil)
	h, err := svc.Resolve("Nonexistent", 400, false)
	require.NoError(t, err)
	data := font.Subset(h, []uint32{1, 2, 3})
	assert.NotEmpty(t, data)
}

func TestSubsetCacheReusesBuiltBytes(t *testing.T) {
	svc := font.New(font.PolicyFallbackFamily, "Arial", nil)
	h, err := svc.Resolve("Nonexistent", 400, false)
	require.NoError(t, err)

	cache := font.NewSubsetCache()
	calls := 0
	build := func() []byte {
		calls++
		return []byte("subset-bytes")
	}
	d1, err := cache.GetOrBuild(h, []uint32{1, 2}, build)
	require.NoError(t, err)
	d2, err := cache.GetOrBuild(h, []uint32{1, 2}, build)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Equal(t, 1, calls)
}

func TestSubsetCacheClosedRejectsFurtherBuilds(t *testing.T) {
	cache := font.NewSubsetCache()
	cache.Close()
	_, err := cache.GetOrBuild(&font.Handle{}, nil, func() []byte { return nil })
	assert.Error(t, err)
}

func TestShapeReturnsPositiveAdvanceForNonEmptyText(t *testing.T) {
	svc := font.New(font.PolicyFallbackFamily, "Arial", nil)
	h, err := svc.Resolve("Nonexistent", 400, false)
	require.NoError(t, err)

	width, glyphs := h.Shape("Hello", 12)
	assert.Greater(t, width, 0.0)
	assert.NotEmpty(t, glyphs)
}

func TestShapeEmptyTextHasZeroAdvance(t *testing.T) {
	svc := font.New(font.PolicyFallbackFamily, "Arial", nil)
	h, err := svc.Resolve("Nonexistent", 400, false)
	require.NoError(t, err)

	width, glyphs := h.Shape("", 12)
	assert.Zero(t, width)
	assert.Empty(t, glyphs)
}

func TestMetricsScalesWithSize(t *testing.T) {
	svc := font.New(font.PolicyFallbackFamily, "Arial", nil)
	h, err := svc.Resolve("Nonexistent", 400, false)
	require.NoError(t, err)

	smallAscent, _ := h.Metrics(10)
	largeAscent, _ := h.Metrics(20)
	assert.Greater(t, largeAscent, smallAscent)
}

func TestMonospaceFamilyResolvesToEmbeddedMonoFace(t *testing.T) {
	svc := font.New(font.PolicyFallbackFamily, "Arial", nil)
	mono, err := svc.Resolve("monospace", 400, false)
	require.NoError(t, err)
	regular, err := svc.Resolve("Nonexistent", 400, false)
	require.NoError(t, err)
	assert.NotEqual(t, mono.ContentHash(), regular.ContentHash())
}
