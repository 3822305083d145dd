package parser

import (
	"strconv"
	"strings"

	"github.com/svg2pptx/svg2pptx/attrtypes"
	"github.com/svg2pptx/svg2pptx/internal/cssvalue"
)

// selKind is the kind of a single compound-selector-free simple
// selector: spec §4.5 limits <style> to id/class/tag selectors, so
// there is no combinator or attribute-selector support here.
type selKind int

const (
	selTag selKind = iota
	selClass
	selID
)

type selector struct {
	kind  selKind
	value string
}

// styleRule is one `selectors { declarations }` rule out of a <style>
// element's content.
type styleRule struct {
	selectors []selector
	decls     map[string]string
}

// parseStylesheet parses the limited CSS grammar spec §4.5 allows
// inside <style>: comma-separated id/class/tag selectors followed by a
// brace-delimited list of `property: value;` declarations. Comments
// are stripped first, matching typical CSS author tooling.
func parseStylesheet(content string) []styleRule {
	content = stripCSSComments(content)

	var rules []styleRule
	for {
		open := strings.IndexByte(content, '{')
		if open < 0 {
			break
		}
		closeIdx := strings.IndexByte(content[open:], '}')
		if closeIdx < 0 {
			break
		}
		closeIdx += open

		selectorPart := content[:open]
		declPart := content[open+1 : closeIdx]
		content = content[closeIdx+1:]

		selectors := parseSelectorList(selectorPart)
		if len(selectors) == 0 {
			continue
		}
		rules = append(rules, styleRule{selectors: selectors, decls: parseDeclarations(declPart)})
	}
	return rules
}

func stripCSSComments(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:start])
		end := strings.Index(s[start+2:], "*/")
		if end < 0 {
			break
		}
		s = s[start+2+end+2:]
	}
	return b.String()
}

func parseSelectorList(s string) []selector {
	var out []selector
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part[0] {
		case '#':
			out = append(out, selector{kind: selID, value: part[1:]})
		case '.':
			out = append(out, selector{kind: selClass, value: part[1:]})
		default:
			out = append(out, selector{kind: selTag, value: part})
		}
	}
	return out
}

func parseDeclarations(s string) map[string]string {
	decls := map[string]string{}
	for _, stmt := range strings.Split(s, ";") {
		colon := strings.IndexByte(stmt, ':')
		if colon < 0 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(stmt[:colon]))
		value := strings.TrimSpace(stmt[colon+1:])
		if prop == "" || value == "" {
			continue
		}
		decls[prop] = value
	}
	return decls
}

// matches reports whether sel applies to an element with the given tag
// name, id and space-separated class list.
func (sel selector) matches(tag, id, classAttr string) bool {
	switch sel.kind {
	case selTag:
		return sel.value == tag
	case selID:
		return sel.value == id
	case selClass:
		for _, c := range strings.Fields(classAttr) {
			if c == sel.value {
				return true
			}
		}
		return false
	}
	return false
}

// declarationGrammars names the handful of presentation properties the
// limited stylesheet support resolves, each mapped to the CSS basic
// type its numeric value is validated against via internal/cssvalue
// before being applied. Color-valued properties are instead validated
// by attrtypes.Color's own parser, which already understands named
// keywords, hex triples and rgb()/hsl() functions that cssvalue's
// grammar matcher (built for plain value-syntax checking, not full
// color-function parsing) would reject. Declarations for any other
// property, or whose value fails validation, are ignored (spec §4.5's
// "limited CSS" allowance; a malformed style block degrades rather
// than aborts the parse).
var declarationGrammars = map[string]*cssvalue.BasicType{
	"fill-opacity":   {Name: "number", Range: &cssvalue.Range{Min: 0, Max: 1}},
	"stroke-opacity": {Name: "number", Range: &cssvalue.Range{Min: 0, Max: 1}},
	"opacity":        {Name: "number", Range: &cssvalue.Range{Min: 0, Max: 1}},
	"stroke-width":   {Name: "length"},
}

var colorProperties = map[string]bool{"fill": true, "stroke": true}

func validDeclarationValue(prop, value string) bool {
	if colorProperties[prop] {
		var c attrtypes.Color
		return c.UnmarshalText([]byte(value)) == nil
	}
	grammar, ok := declarationGrammars[prop]
	if !ok {
		return true
	}
	if grammar.Name == "number" {
		// cssvalue's "number" BasicType only matches tokens the CSS
		// lexer classifies as NumberToken; SVG's bare "0.5" opacity
		// values are validated the same way the parser already
		// validates other scalar attributes, via strconv, with the
		// grammar's declared range enforced manually.
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		if grammar.Range != nil && (f < grammar.Range.Min || f > grammar.Range.Max) {
			return false
		}
		return true
	}
	captures := cssvalue.Match(&cssvalue.Context{}, grammar, strings.NewReader(value))
	return captures != nil
}

// stylesheetOverrides returns the presentation-attribute text value
// each matching rule's declarations contribute for el, in cascade
// order (later rules win ties, matching source-order precedence for
// the id/class/tag selectors this subset supports). Explicit
// presentation attributes on the element itself still take priority:
// callers only consult this map for attributes the element left unset.
func stylesheetOverrides(rules []styleRule, el element) map[string]string {
	tag := elementTagName(el)
	attrs := el.attrs()
	out := map[string]string{}
	for _, rule := range rules {
		matched := false
		for _, sel := range rule.selectors {
			if sel.matches(tag, attrs.ID, attrs.Class) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for prop, value := range rule.decls {
			if !validDeclarationValue(prop, value) {
				continue
			}
			out[prop] = value
		}
	}
	return out
}

// mergeStyleOverrides fills in presentation-attribute fields attrs left
// unset using stylesheet declarations, so an explicit attribute on the
// element always wins over a matching CSS rule. Returns attrs
// unchanged when there is nothing to merge.
func mergeStyleOverrides(attrs *elementAttributes, overrides map[string]string) *elementAttributes {
	if len(overrides) == 0 {
		return attrs
	}
	merged := *attrs

	if merged.Fill == nil {
		if v, ok := overrides["fill"]; ok {
			var p attrtypes.Paint
			if err := p.UnmarshalText([]byte(v)); err == nil {
				merged.Fill = &p
			}
		}
	}
	if merged.Stroke == nil {
		if v, ok := overrides["stroke"]; ok {
			var p attrtypes.Paint
			if err := p.UnmarshalText([]byte(v)); err == nil {
				merged.Stroke = &p
			}
		}
	}
	if merged.FillOpacity == nil {
		if v, ok := overrides["fill-opacity"]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				merged.FillOpacity = &f
			}
		}
	}
	if merged.StrokeOpacity == nil {
		if v, ok := overrides["stroke-opacity"]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				merged.StrokeOpacity = &f
			}
		}
	}
	if merged.Opacity == nil {
		if v, ok := overrides["opacity"]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				merged.Opacity = &f
			}
		}
	}
	if merged.StrokeWidth == nil {
		if v, ok := overrides["stroke-width"]; ok {
			var lp attrtypes.LengthPercentage
			if err := lp.UnmarshalText([]byte(v)); err == nil {
				merged.StrokeWidth = &lp
			}
		}
	}

	return &merged
}
