package extract

import "strings"

// knownPlatforms is the canonical resale platform list. Order here is
// output order, so "Grailed, Depop or eBay" comes back exactly so.
var knownPlatforms = []string{
	"Grailed",
	"Depop",
	"eBay",
	"Poshmark",
	"Vestiaire Collective",
	"The RealReal",
	"Vinted",
	"Mercari",
	"ThredUp",
	"StockX",
	"GOAT",
	"Etsy",
	"Facebook Marketplace",
	"Instagram",
}

const (
	maxPlatformFragments   = 5
	maxPlatformFragmentLen = 30
)

// Platforms normalizes free-text platform mentions. Known names win
// and come back in canonical casing and order. Failing that the text
// is split into short fragments, capped at five. Failing that too, the
// candidates pass through untouched.
func Platforms(candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	hay := strings.ToLower(strings.Join(candidates, " | "))
	var out []string
	for _, p := range knownPlatforms {
		if strings.Contains(hay, strings.ToLower(p)) {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, c := range candidates {
		for _, frag := range splitList(c, maxPlatformFragmentLen) {
			out = append(out, frag)
			if len(out) == maxPlatformFragments {
				return out
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	return candidates
}

// splitList breaks "a, b and c" style enumerations apart. maxLen drops
// fragments at or over the limit; zero disables the check.
func splitList(s string, maxLen int) []string {
	s = strings.NewReplacer(";", ",", " and ", ",", " or ", ",").Replace(s)
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if maxLen > 0 && len(part) >= maxLen {
			continue
		}
		out = append(out, part)
	}
	return out
}
