package prompt_test

import (
	"testing"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/infra/ai/prompt"

	"github.com/stretchr/testify/require"
)

// The extractor locates narrative fields by these headings, so the
// analysis prompt must keep asking for them verbatim.
func TestAnalysisPromptSectionHeadings(t *testing.T) {
	p := prompt.GetAnalysisPrompt()
	for _, heading := range []string{
		"BRAND IDENTIFICATION",
		"AUTHENTICITY ASSESSMENT",
		"CONDITION ASSESSMENT",
		"ERA & DATING",
		"RARITY ASSESSMENT",
		"DETAILED FEATURES",
		"ADDITIONAL OBSERVATIONS",
	} {
		require.Contains(t, p, heading)
	}
}

func TestAuthenticityPromptEmbedsNarrative(t *testing.T) {
	p := prompt.GetAuthenticityPrompt("The stitching is chain-stitched throughout.")
	require.Contains(t, p, "The stitching is chain-stitched throughout.")
	for _, verdict := range []string{
		analysis.VerdictAuthentic,
		analysis.VerdictLikelyAuthentic,
		analysis.VerdictQuestionable,
		analysis.VerdictCounterfeit,
	} {
		require.Contains(t, p, verdict)
	}
}

func TestPricePromptEmbedsVerdict(t *testing.T) {
	p := prompt.GetPricePrompt("Notes.", analysis.Authenticity{Verdict: "QUESTIONABLE", Score: 35})
	require.Contains(t, p, "QUESTIONABLE")
	require.Contains(t, p, "score 35/100")
	require.Contains(t, p, "current_median_inr")
	require.NotContains(t, p, "usd")
}

func TestChatPromptEmbedsContextAndMessage(t *testing.T) {
	p := prompt.GetChatPrompt("Is it worth relisting in winter?", "Item: Carhartt (Vintage)")
	require.Contains(t, p, "Item: Carhartt (Vintage)")
	require.Contains(t, p, "Is it worth relisting in winter?")
}
