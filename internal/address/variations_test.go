package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariationsEmptyInput(t *testing.T) {
	assert.Nil(t, Variations(""))
	assert.Nil(t, Variations("   "))
}

func TestVariationsStartsWithVerbatim(t *testing.T) {
	vs := Variations("123 Main St, Minneapolis, MN 55401")
	if assert.NotEmpty(t, vs) {
		assert.Equal(t, "123 Main St, Minneapolis, MN 55401", vs[0])
	}
}

func TestVariationsStripsUnitQualifiers(t *testing.T) {
	vs := Variations("500 Oak Ave Suite 210, St Paul, MN")
	assert.Contains(t, vs, "500 Oak Ave, St Paul, MN")
}

func TestVariationsExpandsAbbreviations(t *testing.T) {
	vs := Variations("123 Main St, Minneapolis, MN")
	assert.Contains(t, vs, "123 Main Street, Minneapolis, MN")
}

func TestExpandAbbreviationsAppliesAllInOrder(t *testing.T) {
	// Several abbreviations in one address expand in a single
	// deterministic pass.
	got := ExpandAbbreviations("100 St Paul Ave W, Hwy 7 Frontage Rd")
	assert.Equal(t, "100 Street Paul Avenue W, Highway 7 Frontage Road", got)
}

func TestVariationsDropsLeadingStreetNumber(t *testing.T) {
	vs := Variations("9821 Wildflower Ln, Eden Prairie, MN")
	assert.Contains(t, vs, "Wildflower Ln, Eden Prairie, MN")
}

func TestVariationsDeduplicates(t *testing.T) {
	// An address with nothing to strip or expand should not repeat itself.
	vs := Variations("Wildflower Lane, Eden Prairie, MN")
	seen := map[string]int{}
	for _, v := range vs {
		seen[v]++
	}
	for v, n := range seen {
		assert.Equal(t, 1, n, "variation %q repeated", v)
	}
}

func TestVariationsCollapsesWhitespace(t *testing.T) {
	vs := Variations("  123   Main  St,  Minneapolis  ")
	if assert.NotEmpty(t, vs) {
		assert.Equal(t, "123 Main St, Minneapolis", vs[0])
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a \t b \n c "))
	assert.Equal(t, "", Normalize("   "))
}
