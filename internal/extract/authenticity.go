package extract

import (
	"math"
	"strings"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
)

// authenticityJSON mirrors the keys the authenticity prompt asks for.
type authenticityJSON struct {
	Score               float64  `json:"score"`
	Confidence          float64  `json:"confidence"`
	Verdict             string   `json:"verdict"`
	Explanation         []string `json:"explanation"`
	RedFlags            []string `json:"red_flags"`
	AuthenticityMarkers []string `json:"authenticity_markers"`
	DetectedBrand       string   `json:"detected_brand"`
}

// Authenticity parses the authenticity stage output. The verdict is
// passed through verbatim, whatever the model answered. A missing or
// unparseable JSON body is fatal for the pipeline.
func Authenticity(raw string) (analysis.Authenticity, error) {
	var body authenticityJSON
	if err := decodeObject(raw, &body); err != nil {
		return analysis.Authenticity{}, &analysis.UnparseableError{Stage: "authenticity", Raw: raw, Err: err}
	}
	out := analysis.Authenticity{
		Score:               roundInt(body.Score),
		Confidence:          roundInt(body.Confidence),
		Verdict:             strings.TrimSpace(body.Verdict),
		Explanation:         cleanStrings(body.Explanation),
		RedFlags:            cleanStrings(body.RedFlags),
		AuthenticityMarkers: cleanStrings(body.AuthenticityMarkers),
	}
	if brand := strings.TrimSpace(body.DetectedBrand); !strings.EqualFold(brand, "unknown") {
		out.DetectedBrand = brand
	}
	return out, nil
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func cleanStrings(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
