package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStylesheetTagSelector(t *testing.T) {
	rules := parseStylesheet("rect { fill: red; }")
	require.Len(t, rules, 1)
	require.Len(t, rules[0].selectors, 1)
	assert.Equal(t, selector{kind: selTag, value: "rect"}, rules[0].selectors[0])
	assert.Equal(t, "red", rules[0].decls["fill"])
}

func TestParseStylesheetClassAndIDSelectors(t *testing.T) {
	rules := parseStylesheet(".big, #hero { stroke-width: 2; }")
	require.Len(t, rules, 1)
	require.Len(t, rules[0].selectors, 2)
	assert.Equal(t, selector{kind: selClass, value: "big"}, rules[0].selectors[0])
	assert.Equal(t, selector{kind: selID, value: "hero"}, rules[0].selectors[1])
}

func TestParseStylesheetMultipleRules(t *testing.T) {
	rules := parseStylesheet("circle { fill: blue; } .tag { opacity: 0.5; }")
	require.Len(t, rules, 2)
	assert.Equal(t, "blue", rules[0].decls["fill"])
	assert.Equal(t, "0.5", rules[1].decls["opacity"])
}

func TestParseStylesheetStripsComments(t *testing.T) {
	rules := parseStylesheet("/* comment */ rect { fill: red; /* inline */ }")
	require.Len(t, rules, 1)
	assert.Equal(t, "red", rules[0].decls["fill"])
}

func TestSelectorMatchesTag(t *testing.T) {
	sel := selector{kind: selTag, value: "rect"}
	assert.True(t, sel.matches("rect", "", ""))
	assert.False(t, sel.matches("circle", "", ""))
}

func TestSelectorMatchesClassList(t *testing.T) {
	sel := selector{kind: selClass, value: "big"}
	assert.True(t, sel.matches("rect", "", "small big"))
	assert.False(t, sel.matches("rect", "", "small"))
}

func TestStylesheetOverridesHonorsSelectorAndSkipsInvalidValues(t *testing.T) {
	rules := parseStylesheet("rect { fill: red; opacity: not-a-number; }")
	el := &gRect{}

	overrides := stylesheetOverrides(rules, el)
	assert.Equal(t, "red", overrides["fill"])
	_, hasOpacity := overrides["opacity"]
	assert.False(t, hasOpacity)
}

func TestMergeStyleOverridesDoesNotClobberExplicitAttr(t *testing.T) {
	explicit := 0.25
	attrs := &elementAttributes{FillOpacity: &explicit}
	merged := mergeStyleOverrides(attrs, map[string]string{"fill-opacity": "0.9"})
	assert.Equal(t, 0.25, *merged.FillOpacity)
}

func TestMergeStyleOverridesFillsUnsetAttr(t *testing.T) {
	attrs := &elementAttributes{}
	merged := mergeStyleOverrides(attrs, map[string]string{"fill-opacity": "0.9"})
	require.NotNil(t, merged.FillOpacity)
	assert.Equal(t, 0.9, *merged.FillOpacity)
}

func TestValidDeclarationValueRejectsBadColor(t *testing.T) {
	assert.False(t, validDeclarationValue("fill", "not a color !!"))
	assert.True(t, validDeclarationValue("fill", "red"))
}

func TestValidDeclarationValueRejectsOutOfRangeOpacity(t *testing.T) {
	assert.True(t, validDeclarationValue("opacity", "0.5"))
	assert.False(t, validDeclarationValue("opacity", "not-a-number"))
	assert.False(t, validDeclarationValue("opacity", "2"))
}
