package pptx_test

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/pptx"
)

func buildAndUnzip(t *testing.T, w *pptx.Writer) map[string][]byte {
	t.Helper()
	data, err := w.Build()
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = buf.Bytes()
	}
	return out
}

func TestBuildEmptyPackageHasCoreParts(t *testing.T) {
	w := pptx.New(9144000, 6858000)
	files := buildAndUnzip(t, w)

	assert.Contains(t, files, "[Content_Types].xml")
	assert.Contains(t, files, "_rels/.rels")
	assert.Contains(t, files, "ppt/presentation.xml")
	assert.Contains(t, files, "ppt/_rels/presentation.xml.rels")
}

func TestAddSlideProducesSlidePartsAndSldIdLst(t *testing.T) {
	w := pptx.New(9144000, 6858000)
	w.AddSlide(`<p:sp/>`, nil)
	w.AddSlide(`<p:sp/>`, nil)
	files := buildAndUnzip(t, w)

	assert.Contains(t, files, "ppt/slides/slide1.xml")
	assert.Contains(t, files, "ppt/slides/slide2.xml")
	assert.Contains(t, files, "ppt/slides/_rels/slide1.xml.rels")
	assert.Contains(t, string(files["ppt/presentation.xml"]), `sldId id="256"`)
	assert.Contains(t, string(files["ppt/presentation.xml"]), `cx="9144000" cy="6858000"`)
}

func TestRegisterMediaDeduplicatesByContentHash(t *testing.T) {
	w := pptx.New(9144000, 6858000)
	reg := w.Registry()
	id1 := reg.RegisterMedia([]byte("same bytes"), "image/png")
	id2 := reg.RegisterMedia([]byte("same bytes"), "image/png")
	assert.Equal(t, id1, id2)
}

func TestRegisterMediaDifferentBytesGetDistinctParts(t *testing.T) {
	w := pptx.New(9144000, 6858000)
	reg := w.Registry()
	id1 := reg.RegisterMedia([]byte("a"), "image/png")
	id2 := reg.RegisterMedia([]byte("b"), "image/png")
	assert.NotEqual(t, id1, id2)
}

func TestSlideRelsReferenceRegisteredMedia(t *testing.T) {
	w := pptx.New(9144000, 6858000)
	reg := w.Registry()
	relID := reg.RegisterMedia([]byte("png-bytes"), "image/png")
	w.AddSlide(`<p:pic/>`, []string{relID})
	files := buildAndUnzip(t, w)

	relsXML := string(files["ppt/slides/_rels/slide1.xml.rels"])
	assert.Contains(t, relsXML, relID)
	assert.Contains(t, relsXML, "../media/image1.png")
}

func TestContentTypesListsRegisteredMediaExtension(t *testing.T) {
	w := pptx.New(9144000, 6858000)
	reg := w.Registry()
	reg.RegisterMedia([]byte("png-bytes"), "image/png")
	files := buildAndUnzip(t, w)
	assert.Contains(t, string(files["[Content_Types].xml"]), `Extension="png"`)
}

func TestDeterministicTimestampsAcrossBuilds(t *testing.T) {
	w1 := pptx.New(9144000, 6858000)
	w1.AddSlide(`<p:sp/>`, nil)
	data1, err := w1.Build()
	require.NoError(t, err)

	w2 := pptx.New(9144000, 6858000)
	w2.AddSlide(`<p:sp/>`, nil)
	data2, err := w2.Build()
	require.NoError(t, err)

	assert.Equal(t, data1, data2)
}
