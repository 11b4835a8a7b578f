package extract_test

import (
	"testing"

	"github.com/Aayan-01/CLOT/internal/extract"

	"github.com/stretchr/testify/require"
)

const sampleNarrative = `1. BRAND IDENTIFICATION
Brand: **Carhartt**
Confidence: 85%
Alternatives: Dickies, Stan Ray

2. AUTHENTICITY ASSESSMENT
Stitching and hardware are consistent with genuine production.

3. CONDITION ASSESSMENT
Score: 4/5. Light fading at the elbows, otherwise excellent shape with no stains.

4. ERA & DATING
This is a vintage piece, most likely from the 1990s based on the union-made tag.
The square label places it before the 2002 logo change.

5. RARITY ASSESSMENT
Desirable but not hard to find. Rare colorways exist, this is not one.

6. DETAILED FEATURES
- Material: 12oz cotton duck
- Color: Hamilton brown
- Size: L (fits oversized)
- Country of manufacture: USA

7. ADDITIONAL OBSERVATIONS
Cultural significance: Workwear staple adopted by skate culture.
Investment potential: Stable, slow appreciation.
Resale platforms: Grailed, Depop or eBay
Please upload a close-up photo of the inner tag to confirm the production run.`

func TestNarrativeFullSample(t *testing.T) {
	f := extract.Narrative(sampleNarrative)

	require.Equal(t, "Carhartt", f.Brand.Name)
	require.Equal(t, 85, f.Brand.Confidence)
	require.Equal(t, []string{"Dickies", "Stan Ray"}, f.Brand.Alternatives)

	require.Equal(t, 4, f.Condition.Score)
	require.Equal(t, "Light fading at the elbows, otherwise excellent shape with no stains", f.Condition.Description)
	require.Contains(t, f.Condition.Tags, "fading")
	require.Contains(t, f.Condition.Tags, "excellent")

	require.Equal(t, "Vintage", f.Era.Classification)
	require.Equal(t, "1990s", f.Era.Decade)
	require.NotEmpty(t, f.Era.Rationale)

	require.Equal(t, "rare", f.Rarity)

	require.NotNil(t, f.Features)
	require.Equal(t, "12oz cotton duck", f.Features.Material)
	require.Equal(t, "Hamilton brown", f.Features.Color)
	require.Equal(t, "L (fits oversized)", f.Features.Size)
	require.Equal(t, "USA", f.Features.CountryOfManufacture)
	require.Empty(t, f.Features.Pattern)

	require.NotNil(t, f.Observations)
	require.Equal(t, []string{"Grailed", "Depop", "eBay"}, f.Observations.ResalePlatforms)
	require.Equal(t, "Workwear staple adopted by skate culture", f.Observations.CulturalSignificance)

	require.True(t, f.NeedsMoreImages)
}

func TestNarrativeDefaults(t *testing.T) {
	f := extract.Narrative("The photos are too dark to make out much detail.")

	require.Equal(t, "Unknown", f.Brand.Name)
	require.Equal(t, 0, f.Brand.Confidence)
	require.Equal(t, 3, f.Condition.Score)
	require.Equal(t, "Good condition", f.Condition.Description)
	require.Equal(t, "Modern", f.Era.Classification)
	require.Empty(t, f.Era.Decade)
	require.Equal(t, "common", f.Rarity)
	require.Nil(t, f.Features)
	require.Nil(t, f.Observations)
	require.False(t, f.NeedsMoreImages)
}

func TestRarityTokenCase(t *testing.T) {
	require.Equal(t, "rare", extract.Rarity("RARITY ASSESSMENT\nRare. Few of these surface each year."))
	require.Equal(t, "legendary", extract.Rarity("A legendary grail for collectors."))
	require.Equal(t, "common", extract.Rarity("Nothing notable about availability."))
}

func TestEraWithoutSection(t *testing.T) {
	era := extract.EraInfo("CONDITION ASSESSMENT\nScore: 5/5. Pristine, made in the 1980s style.")
	require.Equal(t, "Modern", era.Classification)
	require.Empty(t, era.Decade)
	require.Empty(t, era.Rationale)
}

func TestEraDecadeNormalized(t *testing.T) {
	era := extract.EraInfo("ERA & DATING\nRetro cut from the 1970's, possibly earlier.")
	require.Equal(t, "Retro", era.Classification)
	require.Equal(t, "1970s", era.Decade)
}

func TestConditionOutOfFivePattern(t *testing.T) {
	cond := extract.ConditionInfo("CONDITION ASSESSMENT\nI would rate this 2 out of 5, heavily worn with holes at the cuff.")
	require.Equal(t, 2, cond.Score)
	require.Contains(t, cond.Tags, "worn")
	require.Contains(t, cond.Tags, "holes")
}

func TestConditionTagsPreferLongestMatch(t *testing.T) {
	cond := extract.ConditionInfo("CONDITION ASSESSMENT\nVery good overall, minor pilling on the collar.")
	require.Contains(t, cond.Tags, "very good")
	require.NotContains(t, cond.Tags, "good")
	require.Contains(t, cond.Tags, "pilling")
}

func TestConditionDescriptionSkipsScoreLine(t *testing.T) {
	cond := extract.ConditionInfo("CONDITION ASSESSMENT\nScore: 4/5.\nLight wear on the cuffs with intact seams.")
	require.Equal(t, 4, cond.Score)
	require.Equal(t, "Light wear on the cuffs with intact seams", cond.Description)

	// a score folded into prose is still a real description
	cond = extract.ConditionInfo("CONDITION ASSESSMENT\nSolid 4/5 with even fading throughout.")
	require.Equal(t, 4, cond.Score)
	require.Equal(t, "Solid 4/5 with even fading throughout", cond.Description)
}

func TestNeedsMoreImagesPhrasings(t *testing.T) {
	require.True(t, extract.NeedsMoreImages("Please provide a photo of the care label for a firmer verdict."))
	require.True(t, extract.NeedsMoreImages("Send a close-up shot showing the stitching along the hem."))
	require.False(t, extract.NeedsMoreImages("The label is clearly visible in the second image."))
}
