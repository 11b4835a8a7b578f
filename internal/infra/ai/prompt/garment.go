package prompt

import (
	"fmt"
	"strings"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
)

// GetAnalysisPrompt is the full garment inspection brief. The section
// headings are load-bearing: the narrative extractor locates fields by
// them, so changes here must be mirrored there.
func GetAnalysisPrompt() string {
	return `You are a senior clothing authenticator and vintage fashion appraiser with deep knowledge of brand histories, garment construction, fabric technology and the Indian resale market. You will receive one to three photos of a single clothing item.

Inspect everything visible: logos, woven and printed tags, care labels, stitching density and type, hardware (zippers, buttons, rivets), fabric weave and weight, print quality, wash and wear patterns.

Write your assessment as numbered sections with exactly these headings:

1. BRAND IDENTIFICATION
State the brand name, your confidence as a percentage, and alternative brands if uncertain. Use "Brand: <name>" and "Confidence: <n>%" lines.

2. AUTHENTICITY ASSESSMENT
Discuss construction details that support or undermine authenticity.

3. CONDITION ASSESSMENT
Give a score from 1 to 5 in the form "Score: <n>/5", then describe wear, fading, stains, repairs or damage.

4. ERA & DATING
Classify the garment (vintage, retro, Y2K, contemporary, modern) and name the decade (for example "1990s") with your dating evidence.

5. RARITY ASSESSMENT
Characterize availability using one of: common, uncommon, rare, epic, legendary, mythic.

6. DETAILED FEATURES
Labeled lines for Material, Color, Pattern, Size, Care instructions and Country of manufacture, as far as visible.

7. ADDITIONAL OBSERVATIONS
Labeled lines for Cultural significance, Investment potential and "Resale platforms: <list>". If the brand or authenticity cannot be pinned down from these photos, ask the user to upload close-up photos of tags, labels or stitching.

Be specific and honest about uncertainty. Never invent tag text you cannot read.`
}

// GetAuthenticityPrompt provides strict directions and schema for the
// JSON authenticity verdict, grounded on the prior narrative.
func GetAuthenticityPrompt(narrative string) string {
	return fmt.Sprintf(`You are scoring the authenticity of the clothing item in the attached photos. Your earlier inspection notes:

%s

Respond with one valid JSON object only (no markdown, no commentary, no code fences) following this schema:
{
  "score": <0-100 integer, likelihood the item is genuine>,
  "confidence": <0-100 integer, how sure you are of the score>,
  "verdict": "<AUTHENTIC|LIKELY AUTHENTIC|QUESTIONABLE|COUNTERFEIT>",
  "explanation": ["<observation supporting the verdict>"],
  "red_flags": ["<suspicious detail, empty array if none>"],
  "authenticity_markers": ["<genuine production marker, empty array if none>"],
  "detected_brand": "<brand name, or Unknown>"
}`, strings.TrimSpace(narrative))
}

// GetPricePrompt provides strict directions and schema for the JSON
// price estimate. All amounts are Indian rupees; dollar figures are
// derived by the caller, never requested.
func GetPricePrompt(narrative string, auth analysis.Authenticity) string {
	brand := auth.DetectedBrand
	if brand == "" {
		brand = "Unknown"
	}
	return fmt.Sprintf(`You are pricing the clothing item in the attached photos for the Indian resale market. Your earlier inspection notes:

%s

Authenticity verdict: %s (score %d/100). Brand: %s. Price the item as assessed; a questionable or counterfeit item is priced as such.

Respond with one valid JSON object only (no markdown, no commentary, no code fences) following this schema:
{
  "retail_inr": <original retail price in INR, omit if unknowable>,
  "current_low_inr": <low resale price in INR>,
  "current_median_inr": <typical resale price in INR>,
  "current_high_inr": <high resale price in INR>,
  "confidence": <0-100 integer>,
  "reasoning": "<how you arrived at the numbers>",
  "market_insights": "<demand, seasonality, where this sells>"
}`, strings.TrimSpace(narrative), auth.Verdict, auth.Score, brand)
}

// GetChatPrompt builds the follow-up question prompt around the stored
// session context.
func GetChatPrompt(message, contextSummary string) string {
	return fmt.Sprintf(`You are a clothing resale assistant continuing a conversation about an item you already analyzed.

Analysis context:
%s

Answer the user's question below. Stay grounded in the analysis; say so plainly when something cannot be known from the photos. Keep answers short and practical.

User: %s`, strings.TrimSpace(contextSummary), strings.TrimSpace(message))
}
