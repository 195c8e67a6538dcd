package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testAugmenter() *Augmenter {
	return NewAugmenter(map[string]string{
		"heel":  "plantar sole foot calcaneal",
		"itchy": "pruritus pruritic",
	})
}

func TestExpand_AppendsSynonyms(t *testing.T) {
	a := testAugmenter()

	got := a.Expand("cracked plaque on the heel")
	assert.Equal(t, "cracked plaque on the heel plantar sole foot calcaneal", got)
}

func TestExpand_CaseInsensitive(t *testing.T) {
	a := testAugmenter()
	assert.Contains(t, a.Expand("Erythema over the HEEL"), "plantar")
}

func TestExpand_NoMatchUnchanged(t *testing.T) {
	a := testAugmenter()
	desc := "silvery plaques on the elbows"
	assert.Equal(t, desc, a.Expand(desc))
}

func TestExpand_MultipleTermsSortedOrder(t *testing.T) {
	a := testAugmenter()

	got := a.Expand("itchy heel")
	// Terms are applied in sorted order: heel before itchy.
	assert.Equal(t, "itchy heel plantar sole foot calcaneal pruritus pruritic", got)
}

func TestCleanDescription(t *testing.T) {
	a := testAugmenter()

	raw := "1. **Primary Lesion:** Plaque\n2. **Color:** Erythematous\n" +
		"3. **Texture/Surface:** Scaly\n4. **Distribution:** Plantar\n" +
		"5. **Likely Conditions:** Tinea Pedis, Psoriasis"

	got := a.CleanDescription(raw)
	assert.Equal(t, "Plaque Erythematous Scaly Plantar Tinea Pedis, Psoriasis", got)
}

func TestCleanDescription_Empty(t *testing.T) {
	a := testAugmenter()
	assert.Empty(t, a.CleanDescription(""))
}

func TestMerge_NoVisionQueryUntouched(t *testing.T) {
	a := testAugmenter()

	// Without a description the query passes through verbatim, even
	// when it contains lay terms from the synonym table.
	assert.Equal(t, "pain in my heel", a.Merge("pain in my heel", ""))
}

func TestMerge_ExpandsDescriptionNotQuery(t *testing.T) {
	a := testAugmenter()

	got := a.Merge("what is this", "scaly patch localized to the heel")
	assert.Contains(t, got, "plantar sole foot calcaneal")
	// The expansion attaches to the visual terms, ahead of the query.
	assert.True(t, strings.HasPrefix(got, "scaly patch localized to the heel plantar"))
	assert.True(t, strings.HasSuffix(got, "what is this"))
}

func TestMerge_ShortQueryVisionLeads(t *testing.T) {
	a := testAugmenter()

	got := a.Merge("what disease", "Plaque Erythematous Scaly")
	assert.True(t, strings.HasPrefix(got, "Plaque Erythematous Scaly"))
}

func TestMerge_DeicticQueryVisionLeads(t *testing.T) {
	a := testAugmenter()

	got := a.Merge("could you tell me what condition matches this picture", "Vesicle Interdigital")
	assert.True(t, strings.HasPrefix(got, "Vesicle Interdigital"))
}

func TestMerge_LongSpecificQueryLeads(t *testing.T) {
	a := testAugmenter()

	got := a.Merge("which topical treatments are recommended for plaque psoriasis", "Plaque Erythematous")
	assert.True(t, strings.HasPrefix(got, "which topical treatments"))
	assert.True(t, strings.HasSuffix(got, "Plaque Erythematous"))
}
