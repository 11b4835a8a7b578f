package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
)

// Section headings the analysis prompt asks the model to emit. The
// model usually numbers them ("4. ERA & DATING") and sometimes wraps
// them in markdown; the heading regexes tolerate both.
const (
	sectionBrand        = "BRAND IDENTIFICATION"
	sectionAuthenticity = "AUTHENTICITY ASSESSMENT"
	sectionCondition    = "CONDITION ASSESSMENT"
	sectionEra          = "ERA & DATING"
	sectionRarity       = "RARITY ASSESSMENT"
	sectionFeatures     = "DETAILED FEATURES"
	sectionObservations = "ADDITIONAL OBSERVATIONS"
)

var sectionLabels = []string{
	sectionBrand,
	sectionAuthenticity,
	sectionCondition,
	sectionEra,
	sectionRarity,
	sectionFeatures,
	sectionObservations,
}

var sectionHeadingRes = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(sectionLabels))
	for _, label := range sectionLabels {
		m[label] = regexp.MustCompile(
			`(?im)^[ \t]*(?:#{1,6}[ \t]*)?(?:\*\*)?[ \t]*(?:\d+[.)][ \t]*)?` +
				regexp.QuoteMeta(label) + `[^\n]*$`)
	}
	return m
}()

// section returns the body of the named section: the text between its
// heading line and the next known heading (or end of input).
func section(narrative, label string) (string, bool) {
	loc := sectionHeadingRes[label].FindStringIndex(narrative)
	if loc == nil {
		return "", false
	}
	body := narrative[loc[1]:]
	end := len(body)
	for _, other := range sectionLabels {
		if other == label {
			continue
		}
		if m := sectionHeadingRes[other].FindStringIndex(body); m != nil && m[0] < end {
			end = m[0]
		}
	}
	return strings.TrimSpace(body[:end]), true
}

// labeled-line patterns, first match wins
var (
	brandNameRes = []*regexp.Regexp{
		labeledLineRe(`(?:most likely )?brand(?: name)?`),
		labeledLineRe(`(?:maker|label|designer)`),
	}
	brandAlternativesRe = labeledLineRe(`alternat\w+(?: brands| possibilities)?`)
	percentRe           = regexp.MustCompile(`(\d{1,3})[ \t]*%`)

	conditionScoreRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b([1-5])(?:\.\d)?[ \t]*(?:/|out of)[ \t]*5\b`),
		regexp.MustCompile(`(?i)(?:score|rating)[ \t]*[:\-]?[ \t]*([1-5])\b`),
	}

	eraClassRe = regexp.MustCompile(`(?i)\b(vintage|retro|y2k|antique|archival|contemporary|modern)\b`)
	decadeRe   = regexp.MustCompile(`(?i)\b((?:18|19|20)\d0)(?:'?s)\b`)

	rarityRe = regexp.MustCompile(`(?i)\b(mythic|legendary|epic|rare|uncommon|common)\b`)

	materialRe = labeledLineRe(`(?:material|fabric)(?: composition)?`)
	colorRe    = labeledLineRe(`colou?r(?:way)?`)
	patternRe  = labeledLineRe(`pattern`)
	sizeRe     = labeledLineRe(`size|sizing|fit`)
	careRe     = labeledLineRe(`care(?: instructions| label)?`)
	countryRe  = labeledLineRe(`(?:country of (?:manufacture|origin)|made in|origin)`)

	culturalRe   = labeledLineRe(`cultural (?:significance|relevance)`)
	investmentRe = labeledLineRe(`investment (?:potential|outlook)`)
	platformsRe  = labeledLineRe(`(?:resale|recommended|best) platforms?|where to sell`)

	needsMoreImagesRe = regexp.MustCompile(
		`(?i)(?:upload|provide|share|send|take)[^.\n]{0,80}?(?:tag|label|stitching|hardware)[^.\n]{0,80}?(?:photo|image|picture|close-?up|shot)` +
			`|(?:photo|image|picture|close-?up)s?[^.\n]{0,80}?(?:of|showing)[^.\n]{0,60}?(?:tag|label|stitching|hardware)`)

	conditionTags = []string{
		"deadstock", "like new", "excellent", "very good", "good", "fair", "poor",
		"worn", "faded", "fading", "stained", "stains", "pilling", "holes", "torn",
		"repaired", "distressed", "discoloration", "cracking",
	}

	// sentences that carry nothing but the numeric score
	scoreOnlySentenceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^[ \t*-]*(?:condition[ \t]+)?(?:score|rating)[ \t]*[:\-]?[ \t]*[1-5](?:\.\d)?(?:[ \t]*(?:/|out of)[ \t]*5)?[ \t.!?*]*$`),
		regexp.MustCompile(`(?i)^[ \t*-]*[1-5](?:\.\d)?[ \t]*(?:/|out of)[ \t]*5[ \t.!?*]*$`),
	}
)

// conditionTagsByLen orders the tags longest first so "very good"
// claims its words before "good" can match inside them.
var conditionTagsByLen = func() []string {
	tags := append([]string(nil), conditionTags...)
	sort.SliceStable(tags, func(i, j int) bool { return len(tags[i]) > len(tags[j]) })
	return tags
}()

// labeledLineRe builds a pattern for "Label: value" lines, tolerating
// list bullets and markdown emphasis around the label.
func labeledLineRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:[-*•][ \t]*)?(?:\*\*)?(?:` + label + `)(?:\*\*)?[ \t]*[:\-][ \t]*(.+)$`)
}

func labeledValue(text string, res ...*regexp.Regexp) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); m != nil {
			return cleanValue(m[1])
		}
	}
	return ""
}

func cleanValue(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, ".,;")
}

// Fields is everything the narrative contributes to a result.
type Fields struct {
	Brand           analysis.Brand
	Condition       analysis.Condition
	Era             analysis.Era
	Rarity          string
	Features        *analysis.DetailedFeatures
	Observations    *analysis.AdditionalObservations
	NeedsMoreImages bool
}

// Narrative runs every field rule over the free-text analysis. Absent
// sections and unmatched patterns fall back to defaults; nothing here
// fails the pipeline.
func Narrative(text string) Fields {
	return Fields{
		Brand:           BrandInfo(text),
		Condition:       ConditionInfo(text),
		Era:             EraInfo(text),
		Rarity:          Rarity(text),
		Features:        Features(text),
		Observations:    Observations(text),
		NeedsMoreImages: NeedsMoreImages(text),
	}
}

// BrandInfo pulls the brand name, confidence percentage and alternative
// candidates out of the brand section. Defaults: "Unknown" at zero
// confidence.
func BrandInfo(narrative string) analysis.Brand {
	out := analysis.Brand{Name: "Unknown"}
	body, ok := section(narrative, sectionBrand)
	if !ok {
		return out
	}
	if name := labeledValue(body, brandNameRes...); name != "" {
		out.Name = name
	}
	if m := percentRe.FindStringSubmatch(body); m != nil {
		out.Confidence = clampPercent(atoiSafe(m[1]))
	}
	if alts := labeledValue(body, brandAlternativesRe); alts != "" {
		out.Alternatives = splitList(alts, 0)
	}
	return out
}

// ConditionInfo pulls the 1..5 score, a one-line description and any
// wear keywords. Defaults: 3, "Good condition".
func ConditionInfo(narrative string) analysis.Condition {
	out := analysis.Condition{Score: 3, Description: "Good condition"}
	body, ok := section(narrative, sectionCondition)
	if !ok {
		return out
	}
	for _, re := range conditionScoreRes {
		if m := re.FindStringSubmatch(body); m != nil {
			out.Score = clampScore(atoiSafe(m[1]))
			break
		}
	}
	if desc := conditionDescription(body); desc != "" {
		out.Description = desc
	}
	out.Tags = conditionTagMatches(strings.ToLower(body))
	return out
}

// conditionDescription picks the first sentence with actual prose,
// stepping over bare score lines like "Score: 4/5."
func conditionDescription(body string) string {
	for _, s := range splitSentences(body, 4) {
		if scoreOnlySentence(s) {
			continue
		}
		return cleanValue(strings.ReplaceAll(s, "\n", " "))
	}
	return ""
}

func scoreOnlySentence(s string) bool {
	for _, re := range scoreOnlySentenceRes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// conditionTagMatches scans for wear keywords, longest tag first;
// matched phrases are masked out so their words cannot re-match as
// shorter tags. Output keeps the conditionTags list order.
func conditionTagMatches(lower string) []string {
	matched := make(map[string]bool, 4)
	for _, tag := range conditionTagsByLen {
		if containsWord(lower, tag) {
			matched[tag] = true
			lower = strings.ReplaceAll(lower, tag, strings.Repeat("#", len(tag)))
		}
	}
	var tags []string
	for _, tag := range conditionTags {
		if matched[tag] {
			tags = append(tags, tag)
		}
	}
	return tags
}

// EraInfo classifies the garment's era from the ERA & DATING section.
// Without the section the item is reported as "Modern" with no decade.
func EraInfo(narrative string) analysis.Era {
	out := analysis.Era{Classification: "Modern"}
	body, ok := section(narrative, sectionEra)
	if !ok {
		return out
	}
	if m := eraClassRe.FindStringSubmatch(body); m != nil {
		out.Classification = canonicalEra(m[1])
	}
	if m := decadeRe.FindStringSubmatch(body); m != nil {
		out.Decade = m[1] + "s"
	}
	out.Rationale = firstSentences(body, 2)
	return out
}

func canonicalEra(s string) string {
	if strings.EqualFold(s, "y2k") {
		return "Y2K"
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Rarity matches the first rarity tier named in the rarity section, or
// anywhere in the narrative when the section is missing. Default is
// "common".
func Rarity(narrative string) string {
	scope := narrative
	if body, ok := section(narrative, sectionRarity); ok {
		scope = body
	}
	if m := rarityRe.FindStringSubmatch(scope); m != nil {
		return strings.ToLower(m[1])
	}
	return "common"
}

// Features pulls the labeled garment attributes from the detailed
// features section. Returns nil when nothing matched.
func Features(narrative string) *analysis.DetailedFeatures {
	body, ok := section(narrative, sectionFeatures)
	if !ok {
		return nil
	}
	f := analysis.DetailedFeatures{
		Material:             labeledValue(body, materialRe),
		Color:                labeledValue(body, colorRe),
		Pattern:              labeledValue(body, patternRe),
		Size:                 labeledValue(body, sizeRe),
		CareInstructions:     labeledValue(body, careRe),
		CountryOfManufacture: labeledValue(body, countryRe),
	}
	if f == (analysis.DetailedFeatures{}) {
		return nil
	}
	return &f
}

// Observations pulls cultural/investment notes and the resale platform
// list. Returns nil when nothing matched.
func Observations(narrative string) *analysis.AdditionalObservations {
	body, ok := section(narrative, sectionObservations)
	if !ok {
		return nil
	}
	o := analysis.AdditionalObservations{
		CulturalSignificance: labeledValue(body, culturalRe),
		InvestmentPotential:  labeledValue(body, investmentRe),
	}
	if raw := labeledValue(body, platformsRe); raw != "" {
		o.ResalePlatforms = Platforms([]string{raw})
	}
	if o.CulturalSignificance == "" && o.InvestmentPotential == "" && len(o.ResalePlatforms) == 0 {
		return nil
	}
	return &o
}

// NeedsMoreImages reports whether the narrative asks the user for
// close-ups of tags, labels or stitching.
func NeedsMoreImages(narrative string) bool {
	return needsMoreImagesRe.MatchString(narrative)
}

// splitSentences returns up to max leading sentences, terminator
// included, trimmed of surrounding whitespace.
func splitSentences(text string, max int) []string {
	text = strings.TrimSpace(text)
	var out []string
	for text != "" && len(out) < max {
		idx := strings.IndexAny(text, ".!?")
		if idx == -1 {
			out = append(out, text)
			break
		}
		out = append(out, text[:idx+1])
		text = strings.TrimSpace(text[idx+1:])
	}
	return out
}

func firstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	rest := text
	end := 0
	for i := 0; i < n; i++ {
		idx := strings.IndexAny(rest, ".!?")
		if idx == -1 {
			end = len(text)
			break
		}
		end += idx + 1
		rest = text[end:]
	}
	if end == 0 {
		end = len(text)
	}
	return cleanValue(strings.ReplaceAll(text[:end], "\n", " "))
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i == -1 {
			return false
		}
		i += idx
		before := i == 0 || !isWordByte(haystack[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(haystack) || !isWordByte(haystack[afterIdx])
		if before && after {
			return true
		}
		idx = i + len(word)
	}
}

func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func clampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func clampScore(n int) int {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}
