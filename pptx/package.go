// Package pptx assembles the PresentationML ZIP package (spec §4.11):
// content types, relationships, slides, and the content-addressed Media
// Registry, Font Subset Cache and EMF-embedding tables referenced by
// mapper output. The writer is single-consumer; callers building slides
// concurrently (spec §5) must still call Add* sequentially or guard
// their own fan-in.
package pptx

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/h2non/filetype"
)

// epoch is the fixed ZIP modification time every part is stamped with,
// so two builds of the same content hash the same bytes (spec §4.11:
// "timestamps set to a fixed epoch for build reproducibility").
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Writer accumulates slides and named parts, then serializes them into
// a single PPTX ZIP via Build.
type Writer struct {
	mu sync.Mutex

	slideDims struct{ w, h int64 }

	slides     []slide
	media      *mediaRegistry
	embeddings []part // EMF vector-fallback parts
	fonts      []part // embedded font subset parts
}

type slide struct {
	bodyXML string
	rels    []relationship
}

type relationship struct {
	id, relType, target string
}

type part struct {
	name string
	data []byte
}

// New constructs a Writer for the given slide dimensions in EMU.
func New(slideWidthEMU, slideHeightEMU int64) *Writer {
	w := &Writer{media: newMediaRegistry()}
	w.slideDims.w, w.slideDims.h = slideWidthEMU, slideHeightEMU
	return w
}

// AddSlide appends a slide whose body is the already-mapped shape-tree
// XML (the concatenation of mapper.Node fragments for that slide's root
// group), in document order (spec §5's mapper-output-order guarantee).
// mediaRelIDs lists every media relationship id (as returned by
// Registry().RegisterMedia) the slide's fragments reference, so the
// slide's own _rels part can be built without re-walking the IR.
func (w *Writer) AddSlide(bodyXML string, mediaRelIDs []string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	var rels []relationship
	for _, id := range mediaRelIDs {
		relType, target, ok := w.relationshipFor(id)
		if !ok {
			continue
		}
		rels = append(rels, relationship{id: id, relType: relType, target: target})
	}
	w.slides = append(w.slides, slide{bodyXML: bodyXML, rels: rels})
	return len(w.slides)
}

// relationshipFor resolves a relationship id returned by
// Registry().RegisterMedia, AddEmbedding, or AddFontSubset to the
// `<Relationship>` type/target pair AddSlide needs, so the Filter
// Pipeline's Vector/Raster tiers and the Font Service's embedded
// subsets appear in the slide's own _rels part the same way media
// does, instead of only media ever being wired.
func (w *Writer) relationshipFor(relID string) (relType, target string, ok bool) {
	if entry := w.media.byRelID(relID); entry != nil {
		return "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image",
			"../media/" + entry.partName[len("ppt/media/"):], true
	}
	for idx, e := range w.embeddings {
		if relID == fmt.Sprintf("rIdEmbed%d", idx+1) {
			return "http://schemas.openxmlformats.org/officeDocument/2006/relationships/oleObject",
				"../embeddings/" + e.name[len("ppt/embeddings/"):], true
		}
	}
	for idx, f := range w.fonts {
		if relID == fmt.Sprintf("rIdFont%d", idx+1) {
			return "http://schemas.openxmlformats.org/officeDocument/2006/relationships/font",
				"../fonts/" + f.name[len("ppt/fonts/"):], true
		}
	}
	return "", "", false
}

// Registry returns the Media Registry as a mapper.Registry. Writes are
// serialized by its own mutex (spec §5's "Media Registry ... writes are
// serialized"), so it is safe to share across concurrent mapper workers
// even though the Writer itself is single-consumer.
func (w *Writer) Registry() *mediaRegistry { return w.media }

// AddEmbedding registers an EMF vector-fallback part and returns its
// relationship id. Parts are numbered in registration order; identical
// bytes are not deduplicated.
func (w *Writer) AddEmbedding(data []byte) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := len(w.embeddings) + 1
	name := fmt.Sprintf("ppt/embeddings/oleObject%d.emf", idx)
	w.embeddings = append(w.embeddings, part{name: name, data: data})
	return fmt.Sprintf("rIdEmbed%d", idx)
}

// AddFontSubset registers an embedded font program and returns its
// relationship id.
func (w *Writer) AddFontSubset(data []byte) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := len(w.fonts) + 1
	name := fmt.Sprintf("ppt/fonts/font%d.fntdata", idx)
	w.fonts = append(w.fonts, part{name: name, data: data})
	return fmt.Sprintf("rIdFont%d", idx)
}

// mediaRegistry is the content-addressed image store (spec §4.11's
// "ppt/media/* (content-addressed)" and §5's "Media Registry (per
// package): content-hash map; writes are serialized").
type mediaRegistry struct {
	mu      sync.Mutex
	byHash  map[string]*mediaEntry
	ordered []*mediaEntry
}

type mediaEntry struct {
	hash, relID, partName, ext string
	data                       []byte
}

func newMediaRegistry() *mediaRegistry {
	return &mediaRegistry{byHash: map[string]*mediaEntry{}}
}

// byRelID looks up an already-registered entry by the relationship id
// RegisterMedia returned for it.
func (m *mediaRegistry) byRelID(relID string) *mediaEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.ordered {
		if e.relID == relID {
			return e
		}
	}
	return nil
}

// RegisterMedia implements mapper.Registry. The part's extension (and
// [Content_Types].xml entry) comes from the declared mime when it is
// JPEG, PNG, GIF or SVG; for any other mime the content type is
// sniffed from the bytes via h2non/filetype.
func (m *mediaRegistry) RegisterMedia(data []byte, mime string) string {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byHash[hash]; ok {
		return existing.relID
	}

	ext := extensionFor(mime, data)
	idx := len(m.ordered) + 1
	entry := &mediaEntry{
		hash:     hash,
		relID:    fmt.Sprintf("rIdMedia%d", idx),
		partName: fmt.Sprintf("ppt/media/image%d.%s", idx, ext),
		ext:      ext,
		data:     data,
	}
	m.byHash[hash] = entry
	m.ordered = append(m.ordered, entry)
	return entry.relID
}

func extensionFor(mime string, data []byte) string {
	switch mime {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/svg+xml":
		return "svg"
	}
	kind, err := filetype.Match(data)
	if err == nil && kind != filetype.Unknown {
		return kind.Extension
	}
	return "bin"
}

func contentTypeFor(ext string) string {
	switch ext {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// Build serializes the accumulated slides and parts into a PPTX ZIP.
// File order is sorted within each part category for deterministic
// byte output given identical content (spec §4.11).
func (w *Writer) Build() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	writePart := func(name string, data []byte) error {
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		hdr.Modified = epoch
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		_, err = fw.Write(data)
		return err
	}

	if err := writePart("[Content_Types].xml", []byte(w.contentTypesXML())); err != nil {
		return nil, err
	}
	if err := writePart("_rels/.rels", []byte(rootRelsXML)); err != nil {
		return nil, err
	}
	if err := writePart("ppt/presentation.xml", []byte(w.presentationXML())); err != nil {
		return nil, err
	}
	if err := writePart("ppt/_rels/presentation.xml.rels", []byte(w.presentationRelsXML())); err != nil {
		return nil, err
	}

	for i, s := range w.slides {
		n := i + 1
		if err := writePart(fmt.Sprintf("ppt/slides/slide%d.xml", n), []byte(slideXML(s.bodyXML))); err != nil {
			return nil, err
		}
		if err := writePart(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), []byte(slideRelsXML(s.rels))); err != nil {
			return nil, err
		}
	}

	for _, m := range w.media.ordered {
		method := zip.Deflate
		if m.ext == "jpeg" || m.ext == "jpg" || m.ext == "png" || m.ext == "gif" {
			// Already-compressed raster formats are stored, not
			// re-deflated (spec §4.11: "no compression for already-
			// compressed media").
			method = zip.Store
		}
		hdr := &zip.FileHeader{Name: m.partName, Method: method}
		hdr.Modified = epoch
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(m.data); err != nil {
			return nil, err
		}
	}

	for _, e := range sortedParts(w.embeddings) {
		if err := writePart(e.name, e.data); err != nil {
			return nil, err
		}
	}
	for _, f := range sortedParts(w.fonts) {
		if err := writePart(f.name, f.data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedParts(parts []part) []part {
	out := append([]part(nil), parts...)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>` +
	`</Relationships>`

func (w *Writer) contentTypesXML() string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)

	seenExt := map[string]bool{}
	for _, m := range w.media.ordered {
		if seenExt[m.ext] {
			continue
		}
		seenExt[m.ext] = true
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, m.ext, contentTypeFor(m.ext))
	}
	if len(w.embeddings) > 0 {
		b.WriteString(`<Default Extension="emf" ContentType="image/x-emf"/>`)
	}
	if len(w.fonts) > 0 {
		b.WriteString(`<Default Extension="fntdata" ContentType="application/x-fontdata"/>`)
	}

	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	for i := range w.slides {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func (w *Writer) presentationXML() string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:sldIdLst>`)
	for i := range w.slides {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rIdSlide%d"/>`, 256+i, i+1)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, w.slideDims.w, w.slideDims.h)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func (w *Writer) presentationRelsXML() string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i := range w.slides {
		fmt.Fprintf(&b, `<Relationship Id="rIdSlide%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, i+1)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func slideXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
		`<p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
		body +
		`</p:spTree></p:cSld></p:sld>`
}

func slideRelsXML(rels []relationship) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.relType, r.target)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}
